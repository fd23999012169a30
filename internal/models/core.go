package models

import (
	"time"
)

// Core domain models

// LLMConfig represents one member of the evaluation panel
type LLMConfig struct {
	ID       string            `json:"id" yaml:"id,omitempty"`
	Name     string            `json:"name" yaml:"name"`         // Label reported in results, e.g. CHATGPT
	Provider string            `json:"provider" yaml:"provider"` // openai, anthropic, google, ollama, perplexity
	Model    string            `json:"model" yaml:"model"`
	APIKey   string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL  string            `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Config   map[string]string `json:"config,omitempty" yaml:"config,omitempty"` // Additional provider-specific config
	Enabled  bool              `json:"enabled" yaml:"enabled"`
}

// Schedule represents a periodic competitive analysis of a prompt watchlist
type Schedule struct {
	ID        string     `json:"id" yaml:"id,omitempty"`
	Name      string     `json:"name" yaml:"name"`
	CronExpr  string     `json:"cron_expr" yaml:"cron_expr"` // Cron expression for scheduling
	BrandName string     `json:"brand_name,omitempty" yaml:"brand_name,omitempty"`
	Prompts   []string   `json:"prompts" yaml:"prompts"`
	Enabled   bool       `json:"enabled" yaml:"enabled"`
	LastRun   *time.Time `json:"last_run,omitempty" yaml:"-"`
	NextRun   *time.Time `json:"next_run,omitempty" yaml:"-"`
}

// Brand is a brand tracked by the backend
type Brand struct {
	Name        string   `json:"name"`
	Competitors []string `json:"competitors"`
}

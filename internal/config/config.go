package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AI2HU/promptpulse/internal/models"
)

// ConfigPathEnv overrides the default configuration path
const ConfigPathEnv = "PROMPTPULSE_CONFIG_PATH"

// Config represents the application configuration
type Config struct {
	Backend   BackendConfig      `yaml:"backend"`
	Analysis  AnalysisConfig     `yaml:"analysis"`
	Server    ServerConfig       `yaml:"server"`
	Panel     []models.LLMConfig `yaml:"panel"`
	Schedules []models.Schedule  `yaml:"schedules,omitempty"`
	LogLevel  string             `yaml:"log_level"`
}

// BackendConfig configures the client of the prompt evaluation backend
type BackendConfig struct {
	BaseURL            string        `yaml:"base_url"`
	DefaultBrand       string        `yaml:"default_brand"`
	DefaultCompetitors []string      `yaml:"default_competitors"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	RequestsPerSecond  float64       `yaml:"requests_per_second"` // 0 disables rate limiting
}

// AnalysisConfig holds competitive analysis policy
type AnalysisConfig struct {
	MaxPrompts       int `yaml:"max_prompts"`       // Prompts tested concurrently per analysis
	OpportunityLimit int `yaml:"opportunity_limit"` // Distinct opportunities kept in a report
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Defaults for the evaluation backend
var (
	DefaultBrand       = "Tesla"
	DefaultCompetitors = []string{"Ford", "GM", "Rivian", "Mercedes", "BMW"}
)

const (
	DefaultBaseURL          = "http://localhost:8000"
	DefaultRequestTimeout   = 60 * time.Second
	DefaultMaxPrompts       = 3
	DefaultOpportunityLimit = 5
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:            DefaultBaseURL,
			DefaultBrand:       DefaultBrand,
			DefaultCompetitors: append([]string(nil), DefaultCompetitors...),
			RequestTimeout:     DefaultRequestTimeout,
		},
		Analysis: AnalysisConfig{
			MaxPrompts:       DefaultMaxPrompts,
			OpportunityLimit: DefaultOpportunityLimit,
		},
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       8000,
			CORSOrigin: "*",
		},
		Panel: []models.LLMConfig{
			{Name: "CHATGPT", Provider: "openai", Model: "gpt-4o-mini", APIKey: "${OPENAI_API_KEY}", Enabled: true},
			{Name: "CLAUDE", Provider: "anthropic", Model: "claude-3-5-sonnet-20241022", APIKey: "${ANTHROPIC_API_KEY}", Enabled: true},
			{Name: "GEMINI", Provider: "google", Model: "gemini-1.5-flash", APIKey: "${GOOGLE_API_KEY}", Enabled: true},
		},
		LogLevel: "info",
	}
}

// Load loads configuration from file. Missing fields fall back to defaults and
// ${VAR} references in panel API keys are expanded from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML document into a Config
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()
	config.Panel = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	for i := range config.Panel {
		config.Panel[i].APIKey = expandEnv(config.Panel[i].APIKey)
		config.Panel[i].BaseURL = expandEnv(config.Panel[i].BaseURL)
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBaseURL
	}
	if c.Backend.DefaultBrand == "" {
		c.Backend.DefaultBrand = DefaultBrand
	}
	if len(c.Backend.DefaultCompetitors) == 0 {
		c.Backend.DefaultCompetitors = append([]string(nil), DefaultCompetitors...)
	}
	if c.Backend.RequestTimeout <= 0 {
		c.Backend.RequestTimeout = DefaultRequestTimeout
	}
	if c.Analysis.MaxPrompts <= 0 {
		c.Analysis.MaxPrompts = DefaultMaxPrompts
	}
	if c.Analysis.OpportunityLimit <= 0 {
		c.Analysis.OpportunityLimit = DefaultOpportunityLimit
	}
}

func expandEnv(value string) string {
	if strings.Contains(value, "$") {
		return os.ExpandEnv(value)
	}
	return value
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must start with http:// or https://")
	}
	if c.Backend.RequestsPerSecond < 0 {
		return fmt.Errorf("backend.requests_per_second cannot be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}

	names := make(map[string]bool)
	for _, member := range c.Panel {
		if member.Name == "" {
			return fmt.Errorf("panel member with provider %q has no name", member.Provider)
		}
		if names[member.Name] {
			return fmt.Errorf("duplicate panel member name: %s", member.Name)
		}
		names[member.Name] = true
		if member.Provider == "" {
			return fmt.Errorf("panel member %s has no provider", member.Name)
		}
	}

	for _, schedule := range c.Schedules {
		if len(strings.Fields(schedule.CronExpr)) != 5 {
			return fmt.Errorf("schedule %s: invalid cron expression %q (must have 5 parts)", schedule.Name, schedule.CronExpr)
		}
		if len(schedule.Prompts) == 0 {
			return fmt.Errorf("schedule %s has no prompts", schedule.Name)
		}
	}

	return nil
}

// EnabledPanel returns the enabled panel members
func (c *Config) EnabledPanel() []models.LLMConfig {
	var enabled []models.LLMConfig
	for _, member := range c.Panel {
		if member.Enabled {
			enabled = append(enabled, member)
		}
	}
	return enabled
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the config file path, honoring PROMPTPULSE_CONFIG_PATH
func GetConfigPath() string {
	if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		return envPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".promptpulse/config.yaml"
	}
	return filepath.Join(home, ".promptpulse", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

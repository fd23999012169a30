// Package panel builds the provider registry of the evaluation backend from
// the configured panel members.
package panel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AI2HU/promptpulse/internal/llm"
	"github.com/AI2HU/promptpulse/internal/llm/anthropic"
	"github.com/AI2HU/promptpulse/internal/llm/google"
	"github.com/AI2HU/promptpulse/internal/llm/ollama"
	"github.com/AI2HU/promptpulse/internal/llm/openai"
	"github.com/AI2HU/promptpulse/internal/llm/perplexity"
	"github.com/AI2HU/promptpulse/internal/models"
)

// SupportedProviders lists the provider kinds a panel member may use
var SupportedProviders = []string{"openai", "anthropic", "google", "ollama", "perplexity"}

// NewProvider creates the provider serving a panel member
func NewProvider(member models.LLMConfig) (llm.Provider, error) {
	var provider llm.Provider
	switch strings.ToLower(member.Provider) {
	case "openai":
		provider = openai.New(member.APIKey, member.BaseURL)
	case "anthropic":
		provider = anthropic.New(member.APIKey, member.BaseURL)
	case "google":
		provider = google.New(member.APIKey, member.BaseURL)
	case "ollama":
		provider = ollama.New(member.BaseURL)
	case "perplexity":
		provider = perplexity.New(member.APIKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q (must be one of: %s)", member.Provider, strings.Join(SupportedProviders, ", "))
	}

	rps, err := floatOption(member.Config, "requests_per_second")
	if err != nil {
		return nil, err
	}
	return llm.RateLimited(provider, rps), nil
}

// GenerationConfig reads the generation parameters of a panel member
func GenerationConfig(member models.LLMConfig) (llm.Config, error) {
	config := llm.Config{Model: member.Model}

	var err error
	if config.Temperature, err = floatOption(member.Config, "temperature"); err != nil {
		return config, err
	}
	if config.TopP, err = floatOption(member.Config, "top_p"); err != nil {
		return config, err
	}
	if config.TopK, err = floatOption(member.Config, "top_k"); err != nil {
		return config, err
	}
	if raw, ok := member.Config["max_tokens"]; ok && raw != "" {
		config.MaxTokens, err = strconv.Atoi(raw)
		if err != nil {
			return config, fmt.Errorf("invalid max_tokens %q: %w", raw, err)
		}
	}
	return config, nil
}

// Build registers every enabled panel member. A member that cannot be built
// fails the whole panel.
func Build(members []models.LLMConfig) (*llm.Registry, error) {
	registry := llm.NewRegistry()
	for _, member := range members {
		if !member.Enabled {
			continue
		}

		provider, err := NewProvider(member)
		if err != nil {
			return nil, fmt.Errorf("panel member %s: %w", member.Name, err)
		}
		config, err := GenerationConfig(member)
		if err != nil {
			return nil, fmt.Errorf("panel member %s: %w", member.Name, err)
		}
		registry.Register(member.Name, provider, config)
	}
	return registry, nil
}

func floatOption(options map[string]string, key string) (float64, error) {
	raw, ok := options[key]
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

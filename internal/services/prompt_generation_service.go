package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/AI2HU/promptpulse/internal/llm"
)

const maxPromptLength = 500

// PromptGenerationService discovers candidate prompts for a topic with one panel member
type PromptGenerationService struct {
	llmRegistry *llm.Registry
}

// NewPromptGenerationService creates a new prompt generation service
func NewPromptGenerationService(registry *llm.Registry) *PromptGenerationService {
	return &PromptGenerationService{
		llmRegistry: registry,
	}
}

// GenerationConfig represents configuration for prompt generation
type GenerationConfig struct {
	Generator       string   `json:"generator"` // panel member label; empty means the first member
	LanguageCode    string   `json:"language_code"`
	Topic           string   `json:"topic"`
	BrandName       string   `json:"brand_name"`
	PromptCount     int      `json:"prompt_count"`
	ExistingPrompts []string `json:"existing_prompts"`
}

// ValidateGenerationConfig validates generation configuration
func (s *PromptGenerationService) ValidateGenerationConfig(config *GenerationConfig) error {
	if err := ValidateLanguageCode(config.LanguageCode); err != nil {
		return err
	}
	if strings.TrimSpace(config.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if config.PromptCount < 1 {
		return fmt.Errorf("prompt count must be at least 1")
	}
	if config.PromptCount > 100 {
		return fmt.Errorf("prompt count cannot exceed 100")
	}
	return nil
}

// GeneratePrompts asks a panel member for new prompts about the topic.
// Numbering is stripped and prompts already known are dropped.
func (s *PromptGenerationService) GeneratePrompts(ctx context.Context, config *GenerationConfig) ([]string, error) {
	if err := s.ValidateGenerationConfig(config); err != nil {
		return nil, err
	}

	member, err := s.generator(config.Generator)
	if err != nil {
		return nil, err
	}

	prePrompt := llm.DiscoveryPrompt(
		config.Topic,
		config.BrandName,
		config.ExistingPrompts,
		config.LanguageCode,
		config.PromptCount,
	)

	response, err := member.Provider.Generate(ctx, prePrompt, member.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate prompts: %w", err)
	}

	existing := make(map[string]bool, len(config.ExistingPrompts))
	for _, p := range config.ExistingPrompts {
		existing[strings.ToLower(strings.TrimSpace(p))] = true
	}

	var generatedPrompts []string
	for _, line := range strings.Split(strings.TrimSpace(response.Text), "\n") {
		line = stripNumbering(strings.TrimSpace(line))
		if ValidateGeneratedPrompt(line) != nil {
			continue
		}

		key := strings.ToLower(line)
		if existing[key] {
			continue
		}
		existing[key] = true
		generatedPrompts = append(generatedPrompts, line)

		if len(generatedPrompts) == config.PromptCount {
			break
		}
	}

	if len(generatedPrompts) == 0 {
		return nil, fmt.Errorf("no valid prompts were generated")
	}

	return generatedPrompts, nil
}

func (s *PromptGenerationService) generator(label string) (*llm.Member, error) {
	if label != "" {
		return s.llmRegistry.Get(label)
	}
	members := s.llmRegistry.Members()
	if len(members) == 0 {
		return nil, ErrNoProviders
	}
	return members[0], nil
}

// stripNumbering removes list markers such as "1.", "12)" or "-"
func stripNumbering(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}
	return strings.TrimSpace(strings.TrimLeft(line, "-*• "))
}

// GetLanguageName returns the display name for a language code
func GetLanguageName(languageCode string) string {
	languageNames := map[string]string{
		"EN": "English", "FR": "Français", "IT": "Italiano", "ES": "Español", "DE": "Deutsch",
		"PT": "Português", "NL": "Nederlands", "SV": "Svenska", "NO": "Norsk", "DA": "Dansk",
		"FI": "Suomi", "PL": "Polski", "JA": "日本語", "KO": "한국어", "ZH": "中文",
	}

	languageName := languageNames[strings.ToUpper(languageCode)]
	if languageName == "" {
		return languageCode
	}
	return languageName
}

// ValidateLanguageCode validates a language code
func ValidateLanguageCode(languageCode string) error {
	languageCode = strings.ToUpper(strings.TrimSpace(languageCode))
	if languageCode == "" {
		return fmt.Errorf("language code is required")
	}
	if len(languageCode) < 2 || len(languageCode) > 3 {
		return fmt.Errorf("language code should be 2-3 characters (e.g., FR, EN, IT)")
	}
	return nil
}

// ValidateGeneratedPrompt validates a generated prompt
func ValidateGeneratedPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if len(prompt) > maxPromptLength {
		return fmt.Errorf("prompt too long (max %d characters)", maxPromptLength)
	}
	return nil
}

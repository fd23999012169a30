package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/AI2HU/promptpulse/internal/llm"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 1000
)

// Provider implements the LLM Provider interface for OpenAI and any
// OpenAI-compatible endpoint (e.g. OpenRouter) through BaseURL
type Provider struct {
	client openai.Client
}

// New creates a new OpenAI provider
func New(apiKey, baseURL string) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Provider{
		client: openai.NewClient(opts...),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openai"
}

// Generate sends a prompt to the chat completions API
func (p *Provider) Generate(ctx context.Context, prompt string, config llm.Config) (*llm.Response, error) {
	startTime := time.Now()

	model := defaultModel
	if config.Model != "" {
		model = config.Model
	}

	maxTokens := defaultMaxTokens
	if config.MaxTokens > 0 {
		maxTokens = config.MaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	}
	if config.Temperature > 0 {
		params.Temperature = openai.Float(config.Temperature)
	}
	if config.TopP > 0 {
		params.TopP = openai.Float(config.TopP)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from API")
	}

	return &llm.Response{
		Text:       completion.Choices[0].Message.Content,
		TokensUsed: int(completion.Usage.TotalTokens),
		LatencyMs:  llm.Since(startTime),
		Model:      completion.Model,
		Provider:   p.Name(),
	}, nil
}

package google

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/AI2HU/promptpulse/internal/llm"
)

const defaultModel = "gemini-1.5-flash"

// Provider implements the LLM Provider interface for Google Gemini
type Provider struct {
	apiKey  string
	baseURL string

	once    sync.Once
	client  *genai.Client
	initErr error
}

// New creates a new Google provider. The SDK client is created on first use.
func New(apiKey, baseURL string) *Provider {
	return &Provider{
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "google"
}

func (p *Provider) getClient(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if p.baseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
		}
		p.client, p.initErr = genai.NewClient(ctx, cfg)
	})
	if p.initErr != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", p.initErr)
	}
	return p.client, nil
}

// Generate sends a prompt to Gemini and returns the response
func (p *Provider) Generate(ctx context.Context, prompt string, config llm.Config) (*llm.Response, error) {
	startTime := time.Now()

	model := defaultModel
	if config.Model != "" {
		model = config.Model
	}

	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	content := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	generationConfig := &genai.GenerateContentConfig{}
	if config.Temperature > 0 {
		generationConfig.Temperature = float32Ptr(float32(config.Temperature))
	}
	if config.TopP > 0 {
		generationConfig.TopP = float32Ptr(float32(config.TopP))
	}
	if config.TopK > 0 {
		generationConfig.TopK = float32Ptr(float32(config.TopK))
	}
	if config.MaxTokens > 0 {
		generationConfig.MaxOutputTokens = int32(config.MaxTokens)
	}

	result, err := client.Models.GenerateContent(ctx, model, content, generationConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("no content returned from API")
	}

	tokensUsed := 0
	if result.UsageMetadata != nil {
		tokensUsed = int(result.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Text:       text,
		TokensUsed: tokensUsed,
		LatencyMs:  llm.Since(startTime),
		Model:      model,
		Provider:   p.Name(),
	}, nil
}

func float32Ptr(f float32) *float32 {
	return &f
}

package perplexity

import (
	"context"
	"fmt"
	"time"

	"github.com/sgaunet/perplexity-go/v2"

	"github.com/AI2HU/promptpulse/internal/llm"
)

const defaultModel = "sonar"

// Provider implements the LLM Provider interface for Perplexity
type Provider struct {
	client *perplexity.Client
}

// New creates a new Perplexity provider
func New(apiKey string) *Provider {
	return &Provider{
		client: perplexity.NewClient(apiKey),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "perplexity"
}

type completion struct {
	text string
	err  error
}

// Generate sends a prompt to Perplexity and returns the response.
// The SDK call is not context aware, so cancellation abandons the request.
func (p *Provider) Generate(ctx context.Context, prompt string, config llm.Config) (*llm.Response, error) {
	startTime := time.Now()

	model := defaultModel
	if config.Model != "" {
		model = config.Model
	}

	req := perplexity.NewCompletionRequest(
		perplexity.WithMessages([]perplexity.Message{{Role: "user", Content: prompt}}),
		perplexity.WithModel(model),
	)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid perplexity request: %w", err)
	}

	done := make(chan completion, 1)
	go func() {
		res, err := p.client.SendCompletionRequest(req)
		if err != nil {
			done <- completion{err: err}
			return
		}
		done <- completion{text: res.GetLastContent()}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("perplexity request: %w", ctx.Err())
	case c := <-done:
		if c.err != nil {
			return nil, fmt.Errorf("perplexity request failed: %w", c.err)
		}
		if c.text == "" {
			return nil, fmt.Errorf("no content returned from API")
		}
		return &llm.Response{
			Text:      c.text,
			LatencyMs: llm.Since(startTime),
			Model:     model,
			Provider:  p.Name(),
		}, nil
	}
}

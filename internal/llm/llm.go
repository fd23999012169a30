// Package llm defines the provider abstraction used by the evaluation backend
// to put prompts to the panel of AI assistants.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrProviderNotFound is returned when a panel member is not registered
var ErrProviderNotFound = errors.New("provider not found")

// Provider is one AI assistant that can answer a prompt
type Provider interface {
	// Name returns the provider kind, e.g. openai
	Name() string
	// Generate sends prompt and returns the assistant's answer
	Generate(ctx context.Context, prompt string, config Config) (*Response, error)
}

// Config holds per-request generation parameters. Zero values mean the
// provider's default.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
	TopK        float64
}

// Response is a provider's answer
type Response struct {
	Text       string
	TokensUsed int
	LatencyMs  int64
	Model      string
	Provider   string
}

// Member is a registered panel member: the label reported in results, the
// provider serving it and the parameters sent with every request.
type Member struct {
	Label    string
	Provider Provider
	Config   Config
}

// Registry holds the panel members in registration order
type Registry struct {
	mu      sync.RWMutex
	members []*Member
	byLabel map[string]*Member
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byLabel: make(map[string]*Member),
	}
}

// Register adds a panel member under label, replacing any previous member
// with the same label
func (r *Registry) Register(label string, provider Provider, config Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	member := &Member{Label: label, Provider: provider, Config: config}
	if _, exists := r.byLabel[label]; exists {
		for i, m := range r.members {
			if m.Label == label {
				r.members[i] = member
			}
		}
	} else {
		r.members = append(r.members, member)
	}
	r.byLabel[label] = member
}

// Get returns the member registered under label
func (r *Registry) Get(label string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.byLabel[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, label)
	}
	return member, nil
}

// Members returns every member in registration order
func (r *Registry) Members() []*Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Member, len(r.members))
	copy(out, r.members)
	return out
}

// Len returns the number of registered members
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// rateLimited throttles calls to the wrapped provider
type rateLimited struct {
	Provider
	limiter *rate.Limiter
}

// RateLimited wraps provider so that at most rps requests per second reach it.
// A non-positive rps returns provider unchanged.
func RateLimited(provider Provider, rps float64) Provider {
	if rps <= 0 {
		return provider
	}
	return &rateLimited{
		Provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (p *rateLimited) Generate(ctx context.Context, prompt string, config Config) (*Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return p.Provider.Generate(ctx, prompt, config)
}

// Since returns the latency in milliseconds since start
func Since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

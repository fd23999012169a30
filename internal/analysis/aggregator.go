// Package analysis runs batches of prompt tests and reduces them to a
// competitive analysis.
package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AI2HU/promptpulse/internal/logger"
	"github.com/AI2HU/promptpulse/internal/models"
)

const (
	// DefaultMaxPrompts bounds how many prompts of a batch are tested
	DefaultMaxPrompts = 3
	// DefaultOpportunityLimit bounds the distinct opportunities in a report
	DefaultOpportunityLimit = 5
)

// PromptTester evaluates one prompt across the provider panel
type PromptTester interface {
	TestPrompt(ctx context.Context, prompt, brandName string, competitors []string) (*models.PromptTestOutcome, error)
}

// Aggregator tests a batch of prompts concurrently and folds the successful
// outcomes into an AggregatedAnalysis
type Aggregator struct {
	tester           PromptTester
	maxPrompts       int
	opportunityLimit int
	competitors      []string
	now              func() time.Time
	log              *logger.Logger
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithMaxPrompts sets how many prompts of a batch are tested. Non-positive
// values keep the default.
func WithMaxPrompts(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxPrompts = n
		}
	}
}

// WithOpportunityLimit sets how many distinct opportunities are kept
func WithOpportunityLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.opportunityLimit = n
		}
	}
}

// WithCompetitors sets the competitor panel sent with every prompt.
// Without it the tester's default panel applies.
func WithCompetitors(competitors []string) Option {
	return func(a *Aggregator) {
		a.competitors = append([]string(nil), competitors...)
	}
}

// WithClock sets the clock used for the analysis timestamp
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(a *Aggregator) {
		a.log = l
	}
}

// New creates an aggregator over tester
func New(tester PromptTester, opts ...Option) *Aggregator {
	a := &Aggregator{
		tester:           tester,
		maxPrompts:       DefaultMaxPrompts,
		opportunityLimit: DefaultOpportunityLimit,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.GetLogger().Named("analysis")
	}
	return a
}

type promptResult struct {
	prompt  string
	outcome *models.PromptTestOutcome
	err     error
}

// Run tests the first prompts of the batch concurrently, waits for every test
// to settle and reduces the successful ones. A failed prompt is logged and
// contributes nothing to the result. Run never fails: when no prompt succeeds
// the analysis is empty and Success is false.
func (a *Aggregator) Run(ctx context.Context, prompts []string, brandName string) *models.AggregatedAnalysis {
	selected := prompts
	if len(selected) > a.maxPrompts {
		selected = selected[:a.maxPrompts]
	}

	results := make([]promptResult, len(selected))
	var wg sync.WaitGroup
	for i, prompt := range selected {
		wg.Add(1)
		go func(i int, prompt string) {
			defer wg.Done()
			outcome, err := a.tester.TestPrompt(ctx, prompt, brandName, a.competitors)
			results[i] = promptResult{prompt: prompt, outcome: outcome, err: err}
		}(i, prompt)
	}
	wg.Wait()

	outcomes := make([]models.PromptTestOutcome, 0, len(results))
	failed := make([]string, 0)
	for _, r := range results {
		if r.err != nil || r.outcome == nil {
			a.log.Warning("prompt %q excluded from analysis: %v", r.prompt, r.err)
			failed = append(failed, r.prompt)
			continue
		}
		outcomes = append(outcomes, *r.outcome)
	}

	analysis := &models.AggregatedAnalysis{
		ID:                  uuid.New().String(),
		BrandName:           brandName,
		AnalysisTimestamp:   a.now(),
		Success:             len(outcomes) > 0,
		PromptsRequested:    len(selected),
		PromptsAnalyzed:     len(outcomes),
		TotalProviderTests:  TotalProviderTests(outcomes),
		AverageRanking:      AverageRanking(outcomes),
		CompetitiveGaps:     AggregateCompetitiveGaps(outcomes),
		TopOpportunities:    TopOpportunities(outcomes, a.opportunityLimit),
		ProviderPerformance: AnalyzeProviderPerformance(outcomes),
		FailedPrompts:       failed,
		Results:             outcomes,
	}

	a.log.Info("analysis %s for %s: %d/%d prompts analyzed, %d provider tests",
		analysis.ID, brandName, analysis.PromptsAnalyzed, analysis.PromptsRequested, analysis.TotalProviderTests)
	return analysis
}

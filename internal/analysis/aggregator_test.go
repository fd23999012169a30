package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/promptpulse/internal/logger"
	"github.com/AI2HU/promptpulse/internal/models"
)

// fakeTester answers from a table of outcomes keyed by prompt; prompts
// without an entry fail.
type fakeTester struct {
	mu       sync.Mutex
	calls    []string
	outcomes map[string]*models.PromptTestOutcome
}

func (f *fakeTester) TestPrompt(ctx context.Context, prompt, brandName string, competitors []string) (*models.PromptTestOutcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()

	outcome, ok := f.outcomes[prompt]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return outcome, nil
}

func result(provider string, rank *int, sentiment, confidence float64) models.ProviderResult {
	return models.ProviderResult{
		Provider:       provider,
		RankPosition:   rank,
		SentimentScore: sentiment,
		Confidence:     confidence,
	}
}

func quietAggregator(tester PromptTester, opts ...Option) *Aggregator {
	opts = append(opts, WithLogger(logger.New(logger.ERROR, io.Discard)))
	return New(tester, opts...)
}

func TestRunEndToEndScenario(t *testing.T) {
	fixed := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	tester := &fakeTester{outcomes: map[string]*models.PromptTestOutcome{
		"best EV charging network": {
			Prompt: "best EV charging network",
			Results: []models.ProviderResult{
				result("CHATGPT", models.IntPtr(1), 4, 80),
				result("CLAUDE", models.IntPtr(2), 3.5, 70),
				result("GEMINI", nil, 3, 40),
			},
		},
		"EV tax incentives": {
			Prompt: "EV tax incentives",
			Results: []models.ProviderResult{
				result("CHATGPT", models.IntPtr(3), 3, 90),
				result("CLAUDE", nil, 3, 50),
			},
		},
	}}

	analysis := quietAggregator(tester, WithClock(func() time.Time { return fixed })).Run(
		context.Background(),
		[]string{"best EV charging network", "EV tax incentives", "EV maintenance costs"},
		"Tesla",
	)

	assert.True(t, analysis.Success)
	assert.Equal(t, "Tesla", analysis.BrandName)
	assert.Equal(t, fixed, analysis.AnalysisTimestamp)
	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, 3, analysis.PromptsRequested)
	assert.Equal(t, 2, analysis.PromptsAnalyzed)
	assert.Equal(t, 5, analysis.TotalProviderTests)
	require.NotNil(t, analysis.AverageRanking)
	assert.Equal(t, 2.0, *analysis.AverageRanking)
	assert.Equal(t, []string{"EV maintenance costs"}, analysis.FailedPrompts)
	require.Len(t, analysis.Results, 2)
	assert.Equal(t, "best EV charging network", analysis.Results[0].Prompt)
	assert.Equal(t, "EV tax incentives", analysis.Results[1].Prompt)

	chatgpt := analysis.ProviderPerformance["CHATGPT"]
	require.NotNil(t, chatgpt)
	assert.Equal(t, 2, chatgpt.TotalTests)
	assert.Equal(t, 85, chatgpt.AverageConfidence)
	require.NotNil(t, chatgpt.AverageRank)
	assert.Equal(t, 2.0, *chatgpt.AverageRank)
	assert.Equal(t, 3.5, chatgpt.AverageSentiment)

	gemini := analysis.ProviderPerformance["GEMINI"]
	require.NotNil(t, gemini)
	assert.Nil(t, gemini.AverageRank)
	assert.Equal(t, 1, gemini.TotalTests)
}

func TestRankAveragingExcludesUnranked(t *testing.T) {
	outcomes := []models.PromptTestOutcome{{
		Results: []models.ProviderResult{
			result("A", models.IntPtr(2), 3, 50),
			result("B", nil, 3, 50),
			result("C", models.IntPtr(4), 3, 50),
		},
	}}

	avg := AverageRanking(outcomes)
	require.NotNil(t, avg)
	assert.Equal(t, 3.0, *avg)
}

func TestAverageRankingRoundsToOneDecimal(t *testing.T) {
	outcomes := []models.PromptTestOutcome{{
		Results: []models.ProviderResult{
			result("A", models.IntPtr(1), 3, 50),
			result("B", models.IntPtr(1), 3, 50),
			result("C", models.IntPtr(2), 3, 50),
		},
	}}

	avg := AverageRanking(outcomes)
	require.NotNil(t, avg)
	assert.Equal(t, 1.3, *avg)
}

func TestRunWithNoSuccessfulPrompts(t *testing.T) {
	tester := &fakeTester{}

	analysis := quietAggregator(tester).Run(context.Background(), []string{"a", "b"}, "Tesla")

	assert.False(t, analysis.Success)
	assert.Nil(t, analysis.AverageRanking)
	assert.Equal(t, 0, analysis.PromptsAnalyzed)
	assert.Equal(t, 0, analysis.TotalProviderTests)
	assert.Equal(t, 2, analysis.PromptsRequested)
	assert.NotNil(t, analysis.CompetitiveGaps)
	assert.NotNil(t, analysis.TopOpportunities)
	assert.NotNil(t, analysis.ProviderPerformance)
	assert.Empty(t, analysis.ProviderPerformance)
	assert.ElementsMatch(t, []string{"a", "b"}, analysis.FailedPrompts)
}

func TestRunWithEmptyBatch(t *testing.T) {
	tester := &fakeTester{}

	analysis := quietAggregator(tester).Run(context.Background(), nil, "Tesla")

	assert.False(t, analysis.Success)
	assert.Nil(t, analysis.AverageRanking)
	assert.Empty(t, tester.calls)
}

func TestRunIsolatesPartialFailure(t *testing.T) {
	tester := &fakeTester{outcomes: map[string]*models.PromptTestOutcome{
		"first": {Prompt: "first", Results: []models.ProviderResult{result("A", models.IntPtr(1), 4, 60)}},
		"third": {Prompt: "third", Results: []models.ProviderResult{result("A", models.IntPtr(3), 2, 80)}},
	}}

	analysis := quietAggregator(tester).Run(context.Background(), []string{"first", "second", "third"}, "Tesla")

	assert.Equal(t, 2, analysis.PromptsAnalyzed)
	assert.Equal(t, []string{"second"}, analysis.FailedPrompts)
	require.NotNil(t, analysis.AverageRanking)
	assert.Equal(t, 2.0, *analysis.AverageRanking)
	assert.Equal(t, 2, analysis.ProviderPerformance["A"].TotalTests)
	assert.Equal(t, 70, analysis.ProviderPerformance["A"].AverageConfidence)
}

func TestTopOpportunitiesDedupAndCap(t *testing.T) {
	outcomes := []models.PromptTestOutcome{
		{ImprovementOpportunities: []string{"o1", "o2", "o1", "o3"}},
		{ImprovementOpportunities: []string{"o2", "o4", "o5", "o6", "o7"}},
	}

	assert.Equal(t, []string{"o1", "o2", "o3", "o4", "o5"}, TopOpportunities(outcomes, DefaultOpportunityLimit))
	assert.Equal(t, []string{"o1", "o2"}, TopOpportunities(outcomes, 2))
	assert.Empty(t, TopOpportunities(nil, DefaultOpportunityLimit))
}

func TestRunCapsBatchSize(t *testing.T) {
	tester := &fakeTester{outcomes: map[string]*models.PromptTestOutcome{}}
	prompts := make([]string, 10)
	for i := range prompts {
		prompts[i] = fmt.Sprintf("prompt %d", i)
		tester.outcomes[prompts[i]] = &models.PromptTestOutcome{Prompt: prompts[i]}
	}

	analysis := quietAggregator(tester).Run(context.Background(), prompts, "Tesla")

	assert.Len(t, tester.calls, 3)
	assert.ElementsMatch(t, prompts[:3], tester.calls)
	assert.Equal(t, 3, analysis.PromptsRequested)
	assert.Equal(t, 3, analysis.PromptsAnalyzed)
}

func TestWithMaxPromptsOverridesCap(t *testing.T) {
	tester := &fakeTester{}
	prompts := []string{"a", "b", "c", "d", "e"}

	quietAggregator(tester, WithMaxPrompts(4)).Run(context.Background(), prompts, "Tesla")

	assert.Len(t, tester.calls, 4)
}

func TestProviderPerformanceCompleteness(t *testing.T) {
	outcomes := []models.PromptTestOutcome{
		{Results: []models.ProviderResult{result("ChatGPT", models.IntPtr(2), 4, 80), result("Claude", nil, 3, 60)}},
		{Results: []models.ProviderResult{result("Claude", models.IntPtr(1), 5, 70)}},
		{Results: []models.ProviderResult{result("ChatGPT", nil, 3, 90)}},
	}

	performance := AnalyzeProviderPerformance(outcomes)

	require.Len(t, performance, 2)
	chatgpt := performance["ChatGPT"]
	assert.Equal(t, 2, chatgpt.TotalTests)
	assert.Equal(t, 1, chatgpt.RankedTests)
	assert.Equal(t, 85, chatgpt.AverageConfidence)
	require.NotNil(t, chatgpt.AverageRank)
	assert.Equal(t, 2.0, *chatgpt.AverageRank)
	assert.Equal(t, 3.5, chatgpt.AverageSentiment)

	_, ok := performance["Gemini"]
	assert.False(t, ok)
}

func TestAverageConfidenceRoundsHalfAwayFromZero(t *testing.T) {
	outcomes := []models.PromptTestOutcome{
		{Results: []models.ProviderResult{result("A", nil, 3, 84), result("A", nil, 3, 85)}},
	}

	assert.Equal(t, 85, AnalyzeProviderPerformance(outcomes)["A"].AverageConfidence)
}

func TestAggregateCompetitiveGaps(t *testing.T) {
	outcomes := []models.PromptTestOutcome{
		{CompetitiveGaps: []models.CompetitiveGap{
			{Provider: "CLAUDE", CurrentRank: 2, GapSize: 1},
			{Provider: "GEMINI", CurrentRank: 4, GapSize: 3},
		}},
		{CompetitiveGaps: []models.CompetitiveGap{
			{Provider: "CLAUDE", CurrentRank: 3, GapSize: 2},
			{Provider: "CLAUDE", CurrentRank: 3, GapSize: 2},
		}},
	}

	gaps := AggregateCompetitiveGaps(outcomes)

	require.Len(t, gaps, 2)
	assert.Equal(t, models.GapSummary{Provider: "CLAUDE", GapCount: 3, AverageGapSize: 1.7, WorstGap: 2}, gaps[0])
	assert.Equal(t, models.GapSummary{Provider: "GEMINI", GapCount: 1, AverageGapSize: 3.0, WorstGap: 3}, gaps[1])
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.5, Round(2.45, 1))
	assert.Equal(t, 1.7, Round(5.0/3.0, 1))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, -3.0, Round(-2.5, 0))
}

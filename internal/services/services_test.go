package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/promptpulse/internal/analysis"
	"github.com/AI2HU/promptpulse/internal/llm"
	"github.com/AI2HU/promptpulse/internal/logger"
	"github.com/AI2HU/promptpulse/internal/models"
)

var quiet = logger.New(logger.ERROR, io.Discard)

// scriptedProvider answers every prompt with the same text, or fails
type scriptedProvider struct {
	answer string
	err    error

	mu   sync.Mutex
	seen []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, config llm.Config) (*llm.Response, error) {
	p.mu.Lock()
	p.seen = append(p.seen, prompt)
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Text: p.answer, Provider: p.Name()}, nil
}

func registryOf(members map[string]*scriptedProvider, order ...string) *llm.Registry {
	r := llm.NewRegistry()
	for _, label := range order {
		r.Register(label, members[label], llm.Config{Model: strings.ToLower(label)})
	}
	return r
}

var competitors = []string{"Ford", "GM", "Rivian", "Mercedes", "BMW"}

func TestEstimateRank(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     *int
	}{
		{"explicit lead phrase", "Ford is good, but Tesla is the best overall.", models.IntPtr(1)},
		{"top choice phrase", "Honestly, Ford and GM trail. Top choice is Tesla.", models.IntPtr(1)},
		{"mentioned first", "Tesla, then Ford and GM.", models.IntPtr(1)},
		{"two competitors before", "Ford and Rivian come first, Tesla follows.", models.IntPtr(3)},
		{"mentioned after a competitor", "Ford first, then Tesla.", models.IntPtr(2)},
		{"case insensitive", "RIVIAN beats tesla here.", models.IntPtr(2)},
		{"not mentioned", "Ford and GM dominate this segment.", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateRank(tt.response, "Tesla", competitors))
		})
	}
}

func TestSentimentScore(t *testing.T) {
	assert.Equal(t, 3.0, SentimentScore("Ford is excellent.", "Tesla"), "absent brand is neutral")
	assert.Equal(t, 3.6, SentimentScore("Tesla is reliable and innovative.", "Tesla"))
	assert.Equal(t, 2.7, SentimentScore("Tesla is expensive.", "Tesla"))

	glowing := "Tesla: best excellent superior leading outstanding reliable innovative efficient"
	assert.Equal(t, 5.0, SentimentScore(glowing, "Tesla"))

	awful := "Tesla: worst poor inferior problems issues concerns expensive limited lacking"
	assert.Equal(t, 1.0, SentimentScore(awful, "Tesla"))
}

func TestExtractCitations(t *testing.T) {
	response := "See https://example.com/ev-report) for details. According to Consumer Reports, range matters.\nSource: EPA data"

	citations := ExtractCitations(response)

	assert.Equal(t, []string{"https://example.com/ev-report", "Consumer Reports", "EPA data"}, citations)
	assert.NotNil(t, ExtractCitations("no sources here"))
	assert.Empty(t, ExtractCitations("no sources here"))
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.0, Confidence("", false, 0))

	// 30 for 1000+ chars, 25 for the brand, 30 capped competitors, 15 capped numbers
	long := strings.Repeat("1 2 3 4 5 6 7 8 ", 70)
	assert.Equal(t, 100.0, Confidence(long, true, 5))

	// 0.57 for 19 chars, 25 brand, 20 competitors, 4 for two numbers
	assert.Equal(t, 49.6, Confidence("Tesla 3 vs Ford 150", true, 2))
}

func TestAnalyzeResponse(t *testing.T) {
	result := AnalyzeResponse("Ford leads trucks but Tesla is the best EV. Source: EPA", "Tesla", competitors)

	assert.Equal(t, []string{"Tesla"}, result.BrandMentions)
	assert.Equal(t, []string{"Ford"}, result.CompetitorMentions)
	require.NotNil(t, result.RankPosition)
	assert.Equal(t, 1, *result.RankPosition)
	assert.Equal(t, []string{"EPA"}, result.Citations)
	assert.Contains(t, result.ResponseExcerpt, "Tesla is the best")
}

func TestBuildOutcome(t *testing.T) {
	results := []models.ProviderResult{
		{Provider: "CHATGPT", RankPosition: models.IntPtr(3), CompetitorMentions: []string{"Ford", "GM", "Rivian"}},
		{Provider: "CLAUDE", RankPosition: models.IntPtr(2), CompetitorMentions: []string{"GM"}},
		{Provider: "GEMINI"},
	}

	outcome := BuildOutcome("best EV", "Tesla", results)

	assert.Equal(t, "CLAUDE", outcome.BestPerformer)
	assert.Equal(t, map[string]int{"CHATGPT": 3, "CLAUDE": 2}, outcome.RankingSummary)
	assert.Equal(t, 3, outcome.ProvidersTested)
	require.Len(t, outcome.CompetitiveGaps, 2)
	assert.Equal(t, models.CompetitiveGap{
		Provider:         "CHATGPT",
		CurrentRank:      3,
		GapSize:          2,
		MainCompetitors:  []string{"Ford", "GM"},
		OpportunityScore: 55,
	}, outcome.CompetitiveGaps[0])
	assert.Equal(t, []string{
		"Focus on best EV - average rank is 2.5, opportunity to improve",
		"Challenge GM - most frequently mentioned competitor",
	}, outcome.ImprovementOpportunities)
}

func TestBuildOutcomeWithoutRanks(t *testing.T) {
	outcome := BuildOutcome("best EV", "Tesla", []models.ProviderResult{{Provider: "GEMINI"}})

	assert.Empty(t, outcome.BestPerformer)
	assert.Empty(t, outcome.RankingSummary)
	assert.NotNil(t, outcome.CompetitiveGaps)
	assert.Empty(t, outcome.ImprovementOpportunities)
}

func TestEvaluateExcludesFailedProviders(t *testing.T) {
	members := map[string]*scriptedProvider{
		"CHATGPT": {answer: "Tesla is the best EV maker, ahead of Ford."},
		"CLAUDE":  {err: errors.New("rate limited")},
		"GEMINI":  {answer: "Rivian and Ford are strong; Tesla is solid too."},
	}
	svc := NewEvaluationService(registryOf(members, "CHATGPT", "CLAUDE", "GEMINI"), nil)
	svc.SetLogger(quiet)
	fixed := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	evaluation, err := svc.Evaluate(context.Background(), "best EV", "Tesla", competitors)
	require.NoError(t, err)

	assert.Equal(t, []string{"CLAUDE"}, evaluation.FailedProviders)
	outcome := evaluation.Outcome
	assert.Equal(t, fixed, outcome.TestedAt)
	require.Len(t, outcome.Results, 2)
	assert.Equal(t, "CHATGPT", outcome.Results[0].Provider)
	assert.Equal(t, 1, *outcome.Results[0].RankPosition)
	assert.Equal(t, "GEMINI", outcome.Results[1].Provider)
	assert.Equal(t, 3, *outcome.Results[1].RankPosition)
	assert.Equal(t, "CHATGPT", outcome.BestPerformer)

	require.Len(t, members["CHATGPT"].seen, 1)
	assert.Contains(t, members["CHATGPT"].seen[0], `Query: "best EV"`)
}

func TestEvaluateErrors(t *testing.T) {
	empty := NewEvaluationService(llm.NewRegistry(), competitors)
	empty.SetLogger(quiet)
	_, err := empty.Evaluate(context.Background(), "best EV", "Tesla", nil)
	assert.ErrorIs(t, err, ErrNoProviders)

	_, err = empty.Evaluate(context.Background(), " ", "Tesla", nil)
	assert.Error(t, err)

	members := map[string]*scriptedProvider{"CHATGPT": {err: errors.New("boom")}}
	failing := NewEvaluationService(registryOf(members, "CHATGPT"), competitors)
	failing.SetLogger(quiet)
	_, err = failing.TestPrompt(context.Background(), "best EV", "Tesla", nil)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Contains(t, err.Error(), "CHATGPT")
}

func TestEvaluationServiceBacksAggregator(t *testing.T) {
	members := map[string]*scriptedProvider{
		"CHATGPT": {answer: "Ford first, then Tesla."},
		"GEMINI":  {answer: "No clear winner."},
	}
	svc := NewEvaluationService(registryOf(members, "CHATGPT", "GEMINI"), competitors)
	svc.SetLogger(quiet)

	report := analysis.New(svc, analysis.WithLogger(quiet)).Run(context.Background(), []string{"best EV", "cheap EV"}, "Tesla")

	assert.Equal(t, 2, report.PromptsAnalyzed)
	assert.Equal(t, 4, report.TotalProviderTests)
	require.NotNil(t, report.AverageRanking)
	assert.Equal(t, 2.0, *report.AverageRanking)
	assert.Nil(t, report.ProviderPerformance["GEMINI"].AverageRank)
}

func TestEvaluateUsesDefaultCompetitors(t *testing.T) {
	members := map[string]*scriptedProvider{"CHATGPT": {answer: "Ford first, then Tesla."}}
	svc := NewEvaluationService(registryOf(members, "CHATGPT"), []string{"Ford", "GM"})
	svc.SetLogger(quiet)

	outcome, err := svc.TestPrompt(context.Background(), "best EV", "Tesla", nil)
	require.NoError(t, err)

	require.Len(t, outcome.Results, 1)
	require.NotNil(t, outcome.Results[0].RankPosition)
	assert.Equal(t, 2, *outcome.Results[0].RankPosition)
	assert.Equal(t, []string{"Ford"}, outcome.Results[0].CompetitorMentions)
	assert.Contains(t, members["CHATGPT"].seen[0], "Ford, GM")

	explicit, err := svc.TestPrompt(context.Background(), "best EV", "Tesla", []string{"Rivian"})
	require.NoError(t, err)
	assert.Equal(t, 1, *explicit.Results[0].RankPosition)
}

func TestGradeContentParsesJSONAnswer(t *testing.T) {
	grader := &scriptedProvider{answer: "Here is the grade:\n```json\n{\"overall_grade\": \"a\", \"numerical_score\": 91.6, \"strengths\": [\"Data rich\"]}\n```"}
	svc := NewGradingService(registryOf(map[string]*scriptedProvider{"CLAUDE": grader}, "CLAUDE"), "", "Tesla", competitors)
	svc.SetLogger(quiet)

	grade, err := svc.GradeContent(context.Background(), "best EV", "Tesla Model 3 has 358 miles of range.", "")
	require.NoError(t, err)

	assert.Equal(t, "A", grade.OverallGrade)
	assert.Equal(t, 92, grade.NumericalScore)
	assert.Equal(t, 70, grade.Authority, "missing fields take defaults")
	assert.Equal(t, []string{"Data rich"}, grade.Strengths)
	assert.Equal(t, []string{"Could be more comprehensive"}, grade.Weaknesses)
	assert.Equal(t, "Tesla", grade.BrandName)
	assert.Equal(t, 8, grade.WordCount)
}

func TestGradeContentFallsBackOnGraderFailure(t *testing.T) {
	grader := &scriptedProvider{err: errors.New("timeout")}
	svc := NewGradingService(registryOf(map[string]*scriptedProvider{"CLAUDE": grader}, "CLAUDE"), "CLAUDE", "Tesla", competitors)
	svc.SetLogger(quiet)

	grade, err := svc.Analyze(context.Background(), strings.Repeat("word ", 150), "best EV")
	require.NoError(t, err)

	assert.Equal(t, "C", grade.OverallGrade)
	assert.Equal(t, 70, grade.NumericalScore)
	assert.Equal(t, 65, grade.Authority)
	assert.Equal(t, 60, grade.Completeness)
	assert.Equal(t, 150, grade.WordCount)
}

func TestGradeContentRejectsEmptyContent(t *testing.T) {
	svc := NewGradingService(llm.NewRegistry(), "", "Tesla", nil)
	_, err := svc.GradeContent(context.Background(), "best EV", "   ", "")
	assert.Error(t, err)
}

func TestGradeContentReadsKeywordAndCompetitiveAnalysis(t *testing.T) {
	grader := &scriptedProvider{answer: `{"overall_grade": "B",
		"keyword_analysis": {"primary_keywords": ["range"], "missing_keywords": ["price", "warranty"]},
		"competitive_analysis": "Strong against Ford, silent on GM."}`}
	svc := NewGradingService(registryOf(map[string]*scriptedProvider{"CLAUDE": grader}, "CLAUDE"), "", "Tesla", competitors)
	svc.SetLogger(quiet)

	grade, err := svc.GradeContent(context.Background(), "best EV range", "Tesla has more range than Ford.", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"range"}, grade.KeywordAnalysis.PrimaryKeywords)
	assert.Equal(t, []string{"price", "warranty"}, grade.KeywordAnalysis.MissingKeywords)
	assert.Equal(t, "Strong against Ford, silent on GM.", grade.CompetitiveAnalysis)
	assert.Contains(t, grader.seen[0], "keyword_analysis")
	assert.Contains(t, grader.seen[0], "competitors like Ford, GM, Rivian")
}

func TestGradeContentFillsMissingAnalyses(t *testing.T) {
	grader := &scriptedProvider{answer: `{"overall_grade": "B"}`}
	svc := NewGradingService(registryOf(map[string]*scriptedProvider{"CLAUDE": grader}, "CLAUDE"), "", "Tesla", competitors)
	svc.SetLogger(quiet)

	grade, err := svc.GradeContent(context.Background(), "Which electric SUV has the longest range?", "Tesla beats Rivian on range.", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"range"}, grade.KeywordAnalysis.PrimaryKeywords)
	assert.Equal(t, []string{"electric", "suv", "longest"}, grade.KeywordAnalysis.MissingKeywords)
	assert.Equal(t, "Compares Tesla with Rivian", grade.CompetitiveAnalysis)
}

func TestKeywordCoverage(t *testing.T) {
	coverage := KeywordCoverage("What is the best EV charging network?", "Tesla's Supercharger network is the largest.")

	assert.Equal(t, []string{"network"}, coverage.PrimaryKeywords)
	assert.Equal(t, []string{"charging"}, coverage.MissingKeywords)

	empty := KeywordCoverage("is it ok?", "anything")
	assert.NotNil(t, empty.PrimaryKeywords)
	assert.NotNil(t, empty.MissingKeywords)
}

func TestCompetitivePositioning(t *testing.T) {
	assert.Equal(t, "Compares Tesla with Ford, GM", CompetitivePositioning("Tesla outsells Ford and GM.", "Tesla", competitors))
	assert.Equal(t, "Mentions Ford without naming Tesla", CompetitivePositioning("Ford is great.", "Tesla", competitors))
	assert.Equal(t, "Does not position Tesla against competitors such as Ford, GM, Rivian", CompetitivePositioning("Tesla is great.", "Tesla", competitors))
	assert.Equal(t, "Does not compare Tesla with any competitor", CompetitivePositioning("Tesla is great.", "Tesla", nil))
}

func TestParseGradeFreeText(t *testing.T) {
	text := "Overall grade: C\nStrengths:\n- Clear intro\n- Good data\nWeaknesses:\n- No sources\nRecommendations:\n- Cite studies"

	grade, err := ParseGrade(text)
	require.NoError(t, err)

	assert.Equal(t, "C", grade.OverallGrade)
	assert.Equal(t, []string{"Clear intro", "Good data"}, grade.Strengths)
	assert.Equal(t, []string{"No sources"}, grade.Weaknesses)
	assert.Equal(t, []string{"Cite studies"}, grade.Recommendations)
}

func TestFallbackGrade(t *testing.T) {
	tests := []struct {
		words int
		grade string
		score int
	}{
		{10, "D", 60},
		{99, "D", 60},
		{100, "C", 70},
		{299, "C", 70},
		{300, "B", 80},
		{600, "A", 90},
	}

	for _, tt := range tests {
		grade := FallbackGrade("best EV", strings.Repeat("w ", tt.words), "Tesla", competitors)
		assert.Equal(t, tt.grade, grade.OverallGrade, "words=%d", tt.words)
		assert.Equal(t, tt.score, grade.NumericalScore, "words=%d", tt.words)
	}

	grade := FallbackGrade("best EV range", "Tesla range leads Ford.", "Tesla", competitors)
	assert.Equal(t, []string{"range"}, grade.KeywordAnalysis.PrimaryKeywords)
	assert.Equal(t, []string{}, grade.KeywordAnalysis.MissingKeywords)
	assert.Equal(t, "Compares Tesla with Ford", grade.CompetitiveAnalysis)
}

func TestGeneratePrompts(t *testing.T) {
	generator := &scriptedProvider{answer: "1. Which EV has the longest range?\n2) best EV charging network\n\n- Are electric SUVs worth it?\n3. Which EV has the longest range?"}
	svc := NewPromptGenerationService(registryOf(map[string]*scriptedProvider{"CHATGPT": generator}, "CHATGPT"))

	prompts, err := svc.GeneratePrompts(context.Background(), &GenerationConfig{
		LanguageCode:    "en",
		Topic:           "electric cars",
		BrandName:       "Tesla",
		PromptCount:     5,
		ExistingPrompts: []string{"Best EV charging network"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Which EV has the longest range?", "Are electric SUVs worth it?"}, prompts)
	assert.Contains(t, generator.seen[0], "electric cars")
}

func TestGeneratePromptsValidation(t *testing.T) {
	svc := NewPromptGenerationService(llm.NewRegistry())

	_, err := svc.GeneratePrompts(context.Background(), &GenerationConfig{LanguageCode: "english", Topic: "ev", PromptCount: 1})
	assert.Error(t, err)

	_, err = svc.GeneratePrompts(context.Background(), &GenerationConfig{LanguageCode: "EN", Topic: "ev", PromptCount: 0})
	assert.Error(t, err)

	_, err = svc.GeneratePrompts(context.Background(), &GenerationConfig{LanguageCode: "EN", Topic: "ev", PromptCount: 3})
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestAnalysisServiceKeepsLatestPerBrand(t *testing.T) {
	members := map[string]*scriptedProvider{"CHATGPT": {answer: "Tesla and Rivian lead."}}
	evaluator := NewEvaluationService(registryOf(members, "CHATGPT"), competitors)
	evaluator.SetLogger(quiet)
	svc := NewAnalysisService(analysis.New(evaluator, analysis.WithLogger(quiet)), "Tesla")

	_, ok := svc.Latest("")
	assert.False(t, ok)

	_, err := svc.RunAnalysis(context.Background(), []string{" ", ""}, "")
	assert.Error(t, err)

	tesla, err := svc.RunAnalysis(context.Background(), []string{"best EV"}, "")
	require.NoError(t, err)
	assert.Equal(t, "Tesla", tesla.BrandName)

	rivian, err := svc.RunAnalysis(context.Background(), []string{"best EV"}, "Rivian")
	require.NoError(t, err)

	latest, ok := svc.Latest("")
	require.True(t, ok)
	assert.Equal(t, rivian.ID, latest.ID)

	byBrand, ok := svc.Latest("tesla")
	require.True(t, ok)
	assert.Equal(t, tesla.ID, byBrand.ID)
}

func TestProviderStandings(t *testing.T) {
	rank := func(v float64) *float64 { return &v }
	report := &models.AggregatedAnalysis{ProviderPerformance: map[string]*models.ProviderPerformance{
		"GEMINI":  {TotalTests: 2},
		"CLAUDE":  {TotalTests: 2, AverageRank: rank(2.5)},
		"CHATGPT": {TotalTests: 2, AverageRank: rank(1.5)},
		"ALPHA":   {TotalTests: 1},
	}}

	standings := ProviderStandings(report)

	var order []string
	for _, s := range standings {
		order = append(order, s.Provider)
	}
	assert.Equal(t, []string{"CHATGPT", "CLAUDE", "ALPHA", "GEMINI"}, order)
}

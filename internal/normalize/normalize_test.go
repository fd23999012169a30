package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/promptpulse/internal/models"
)

const testPromptBody = `{
  "test_timestamp": "2025-03-14T09:26:53.589793",
  "providers_tested": 3,
  "best_performer": "CHATGPT",
  "ranking_summary": {"CHATGPT": 1, "CLAUDE": 2},
  "competitive_gaps": [
    {"provider": "CLAUDE", "current_rank": 2, "gap_size": 1, "main_competitors": ["Ford"], "opportunity_score": 70}
  ],
  "improvement_opportunities": ["Challenge Ford - most frequently mentioned competitor"],
  "detailed_results": [
    {"provider": "CHATGPT", "rank_position": 1, "sentiment_score": 4.2, "confidence": 80, "response_time": 1.234,
     "brand_mentions": ["Tesla"], "competitor_mentions": ["Ford"], "citations": ["https://example.com"], "response_excerpt": "Tesla leads"},
    {"provider": "CLAUDE", "rank_position": 2.0, "sentiment_score": 3.1, "confidence": 65, "response_time": 0.5},
    {"provider": "GEMINI", "rank_position": null, "sentiment_score": 3, "confidence": 40, "response_time": 2}
  ]
}`

func decode(t *testing.T, body string) *TestPromptResponse {
	t.Helper()
	var wire TestPromptResponse
	require.NoError(t, json.Unmarshal([]byte(body), &wire))
	return &wire
}

func TestOutcome(t *testing.T) {
	outcome := Outcome("best EV charging network", "Tesla", decode(t, testPromptBody))

	assert.Equal(t, "best EV charging network", outcome.Prompt)
	assert.Equal(t, "Tesla", outcome.BrandName)
	assert.Equal(t, 3, outcome.ProvidersTested)
	assert.Equal(t, "CHATGPT", outcome.BestPerformer)
	assert.Equal(t, 2025, outcome.TestedAt.Year())
	assert.Equal(t, map[string]int{"CHATGPT": 1, "CLAUDE": 2}, outcome.RankingSummary)

	require.Len(t, outcome.CompetitiveGaps, 1)
	assert.Equal(t, models.CompetitiveGap{
		Provider:         "CLAUDE",
		CurrentRank:      2,
		GapSize:          1,
		MainCompetitors:  []string{"Ford"},
		OpportunityScore: 70,
	}, outcome.CompetitiveGaps[0])

	require.Len(t, outcome.Results, 3)
	first := outcome.Results[0]
	require.NotNil(t, first.RankPosition)
	assert.Equal(t, 1, *first.RankPosition)
	assert.Equal(t, int64(1234), first.ResponseTimeMs)
	assert.Equal(t, []string{"https://example.com"}, first.Citations)

	require.NotNil(t, outcome.Results[1].RankPosition)
	assert.Equal(t, 2, *outcome.Results[1].RankPosition)
	assert.NotNil(t, outcome.Results[1].BrandMentions)

	assert.Nil(t, outcome.Results[2].RankPosition)
	assert.False(t, outcome.Results[2].Ranked())
}

func TestOutcomeKeepsMissingAndZeroRanksUnranked(t *testing.T) {
	wire := decode(t, `{"detailed_results": [
		{"provider": "A"},
		{"provider": "B", "rank_position": 0},
		{"provider": "C", "rank_position": -3}
	]}`)

	outcome := Outcome("p", "Tesla", wire)

	require.Len(t, outcome.Results, 3)
	for _, r := range outcome.Results {
		assert.Nil(t, r.RankPosition, r.Provider)
	}
	assert.Equal(t, 3, outcome.ProvidersTested, "falls back to result count")
	assert.True(t, outcome.TestedAt.IsZero())
}

func TestOutcomeAcceptsFloatRankingSummary(t *testing.T) {
	wire := decode(t, `{
		"ranking_summary": {"CHATGPT": 2.0, "CLAUDE": 2.6},
		"detailed_results": [{"provider": "CHATGPT", "rank_position": 2.0}]
	}`)

	outcome := Outcome("p", "Tesla", wire)

	assert.Equal(t, map[string]int{"CHATGPT": 2, "CLAUDE": 3}, outcome.RankingSummary)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, 2, *outcome.Results[0].RankPosition)
}

func TestOutcomeNilWire(t *testing.T) {
	outcome := Outcome("p", "Tesla", nil)

	assert.NotNil(t, outcome.Results)
	assert.NotNil(t, outcome.CompetitiveGaps)
	assert.NotNil(t, outcome.RankingSummary)
	assert.Empty(t, outcome.Results)
}

func TestFromOutcomeRoundTrip(t *testing.T) {
	original := Outcome("p", "Tesla", decode(t, testPromptBody))

	back := Outcome("p", "Tesla", FromOutcome(original))

	assert.Equal(t, original.Results, back.Results)
	assert.Equal(t, original.CompetitiveGaps, back.CompetitiveGaps)
	assert.Equal(t, original.BestPerformer, back.BestPerformer)
	assert.True(t, original.TestedAt.Equal(back.TestedAt))
}

func TestFromOutcomeEmitsNullRank(t *testing.T) {
	outcome := &models.PromptTestOutcome{
		Results: []models.ProviderResult{{Provider: "GEMINI"}},
	}

	data, err := json.Marshal(FromOutcome(outcome))
	require.NoError(t, err)

	assert.Contains(t, string(data), `"rank_position":null`)
	assert.Contains(t, string(data), `"ranking_summary":{}`)
}

func TestGrade(t *testing.T) {
	wire := &GradeResponse{
		OverallGrade:      "B",
		NumericalScore:    79.6,
		AuthorityScore:    75,
		RelevanceScore:    80,
		CompletenessScore: 70,
		Strengths:         []string{"Clear structure"},
		WordCount:         420,
		ContentLength:     2500,
		GradedAt:          "2025-03-14T09:26:53Z",
	}

	grade := Grade("best EV", "Tesla", wire)

	assert.Equal(t, "B", grade.OverallGrade)
	assert.Equal(t, 80, grade.NumericalScore)
	assert.Equal(t, 75, grade.Authority)
	assert.Equal(t, []string{"Clear structure"}, grade.Strengths)
	assert.NotNil(t, grade.Weaknesses)
	assert.Equal(t, 420, grade.WordCount)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC), grade.GradedAt)
}

func TestGradeKeywordAndCompetitiveAnalysis(t *testing.T) {
	var wire GradeResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"overall_grade": "B",
		"keyword_analysis": {"primary_keywords": ["range", "charging"], "missing_keywords": ["price"]},
		"competitive_analysis": "Compares well against Ford but ignores GM."
	}`), &wire))

	grade := Grade("best EV", "Tesla", &wire)

	assert.Equal(t, []string{"range", "charging"}, grade.KeywordAnalysis.PrimaryKeywords)
	assert.Equal(t, []string{"price"}, grade.KeywordAnalysis.MissingKeywords)
	assert.Equal(t, "Compares well against Ford but ignores GM.", grade.CompetitiveAnalysis)

	back := Grade("best EV", "Tesla", FromGrade(grade))
	assert.Equal(t, grade.KeywordAnalysis, back.KeywordAnalysis)
	assert.Equal(t, grade.CompetitiveAnalysis, back.CompetitiveAnalysis)
}

func TestGradeCompetitiveAnalysisObject(t *testing.T) {
	var wire GradeResponse
	require.NoError(t, json.Unmarshal([]byte(`{"competitive_analysis": {"vs_ford": "stronger", "score": 70}}`), &wire))

	grade := Grade("best EV", "Tesla", &wire)

	assert.Equal(t, `{"vs_ford":"stronger","score":70}`, grade.CompetitiveAnalysis)
	assert.NotNil(t, grade.KeywordAnalysis.PrimaryKeywords)
	assert.NotNil(t, grade.KeywordAnalysis.MissingKeywords)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"2025-03-14T09:26:53Z", false},
		{"2025-03-14T09:26:53.123+02:00", false},
		{"2025-03-14T09:26:53.589793", false},
		{"2025-03-14 09:26:53", false},
		{"yesterday", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.zero, ParseTimestamp(tt.in).IsZero())
		})
	}
}

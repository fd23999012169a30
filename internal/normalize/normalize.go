// Package normalize converts between the evaluation backend's wire format and
// the canonical models. Every function here is pure.
package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/AI2HU/promptpulse/internal/models"
)

// timestamp layouts accepted from the backend, tried in order
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Outcome builds a PromptTestOutcome from a test-prompt response.
// An absent or non-positive rank_position stays unranked.
func Outcome(prompt, brandName string, wire *TestPromptResponse) *models.PromptTestOutcome {
	if wire == nil {
		wire = &TestPromptResponse{}
	}

	results := make([]models.ProviderResult, 0, len(wire.DetailedResults))
	for _, r := range wire.DetailedResults {
		results = append(results, ProviderResult(r))
	}

	gaps := make([]models.CompetitiveGap, 0, len(wire.CompetitiveGaps))
	for _, g := range wire.CompetitiveGaps {
		gaps = append(gaps, models.CompetitiveGap{
			Provider:         g.Provider,
			CurrentRank:      roundInt(g.CurrentRank),
			GapSize:          roundInt(g.GapSize),
			MainCompetitors:  copyStrings(g.MainCompetitors),
			OpportunityScore: roundInt(g.OpportunityScore),
		})
	}

	summary := make(map[string]int, len(wire.RankingSummary))
	for provider, rank := range wire.RankingSummary {
		summary[provider] = roundInt(rank)
	}

	providersTested := wire.ProvidersTested
	if providersTested <= 0 {
		providersTested = len(results)
	}

	return &models.PromptTestOutcome{
		Prompt:                   prompt,
		BrandName:                brandName,
		TestedAt:                 ParseTimestamp(wire.TestTimestamp),
		ProvidersTested:          providersTested,
		BestPerformer:            wire.BestPerformer,
		RankingSummary:           summary,
		CompetitiveGaps:          gaps,
		ImprovementOpportunities: copyStrings(wire.ImprovementOpportunities),
		Results:                  results,
	}
}

// ProviderResult converts one detailed_results entry
func ProviderResult(r DetailedResult) models.ProviderResult {
	return models.ProviderResult{
		Provider:           r.Provider,
		RankPosition:       rank(r.RankPosition),
		SentimentScore:     r.SentimentScore,
		Confidence:         r.Confidence,
		ResponseTimeMs:     int64(math.Round(r.ResponseTime * 1000)),
		BrandMentions:      copyStrings(r.BrandMentions),
		CompetitorMentions: copyStrings(r.CompetitorMentions),
		Citations:          copyStrings(r.Citations),
		ResponseExcerpt:    r.ResponseExcerpt,
	}
}

// FromOutcome is the inverse of Outcome, used when serving test-prompt responses
func FromOutcome(outcome *models.PromptTestOutcome) *TestPromptResponse {
	wire := &TestPromptResponse{
		TestTimestamp:            outcome.TestedAt.UTC().Format(time.RFC3339Nano),
		ProvidersTested:          outcome.ProvidersTested,
		BestPerformer:            outcome.BestPerformer,
		RankingSummary:           make(map[string]float64, len(outcome.RankingSummary)),
		CompetitiveGaps:          make([]WireGap, 0, len(outcome.CompetitiveGaps)),
		ImprovementOpportunities: nonNil(outcome.ImprovementOpportunities),
		DetailedResults:          make([]DetailedResult, 0, len(outcome.Results)),
	}
	for provider, rank := range outcome.RankingSummary {
		wire.RankingSummary[provider] = float64(rank)
	}

	for _, g := range outcome.CompetitiveGaps {
		wire.CompetitiveGaps = append(wire.CompetitiveGaps, WireGap{
			Provider:         g.Provider,
			CurrentRank:      float64(g.CurrentRank),
			GapSize:          float64(g.GapSize),
			MainCompetitors:  g.MainCompetitors,
			OpportunityScore: float64(g.OpportunityScore),
		})
	}

	for _, r := range outcome.Results {
		var rankPosition *float64
		if r.RankPosition != nil {
			v := float64(*r.RankPosition)
			rankPosition = &v
		}
		wire.DetailedResults = append(wire.DetailedResults, DetailedResult{
			Provider:           r.Provider,
			RankPosition:       rankPosition,
			SentimentScore:     r.SentimentScore,
			Confidence:         r.Confidence,
			ResponseTime:       float64(r.ResponseTimeMs) / 1000,
			BrandMentions:      nonNil(r.BrandMentions),
			CompetitorMentions: nonNil(r.CompetitorMentions),
			Citations:          nonNil(r.Citations),
			ResponseExcerpt:    r.ResponseExcerpt,
		})
	}

	return wire
}

// Grade builds a ContentGrade from a grade-content response
func Grade(prompt, brandName string, wire *GradeResponse) *models.ContentGrade {
	if wire == nil {
		wire = &GradeResponse{}
	}
	return &models.ContentGrade{
		Prompt:          prompt,
		BrandName:       brandName,
		OverallGrade:    wire.OverallGrade,
		NumericalScore:  roundInt(wire.NumericalScore),
		Authority:       roundInt(wire.AuthorityScore),
		Relevance:       roundInt(wire.RelevanceScore),
		Completeness:    roundInt(wire.CompletenessScore),
		Strengths:       nonNil(wire.Strengths),
		Weaknesses:      nonNil(wire.Weaknesses),
		Recommendations: nonNil(wire.Recommendations),
		KeywordAnalysis: models.KeywordAnalysis{
			PrimaryKeywords: nonNil(wire.KeywordAnalysis.PrimaryKeywords),
			MissingKeywords: nonNil(wire.KeywordAnalysis.MissingKeywords),
		},
		CompetitiveAnalysis: CompetitiveAnalysis(wire.CompetitiveAnalysis),
		ContentLength:       wire.ContentLength,
		WordCount:           wire.WordCount,
		GradedAt:            ParseTimestamp(wire.GradedAt),
	}
}

// CompetitiveAnalysis reads a competitive_analysis value. Graders answer with
// either a string or an object; objects are kept as compact JSON text.
func CompetitiveAnalysis(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return ""
	}
	return compact.String()
}

// FromGrade is the inverse of Grade
func FromGrade(grade *models.ContentGrade) *GradeResponse {
	wire := &GradeResponse{
		OverallGrade:      grade.OverallGrade,
		NumericalScore:    float64(grade.NumericalScore),
		AuthorityScore:    float64(grade.Authority),
		RelevanceScore:    float64(grade.Relevance),
		CompletenessScore: float64(grade.Completeness),
		Strengths:         nonNil(grade.Strengths),
		Weaknesses:        nonNil(grade.Weaknesses),
		Recommendations:   nonNil(grade.Recommendations),
		KeywordAnalysis: WireKeywords{
			PrimaryKeywords: nonNil(grade.KeywordAnalysis.PrimaryKeywords),
			MissingKeywords: nonNil(grade.KeywordAnalysis.MissingKeywords),
		},
		ContentLength: grade.ContentLength,
		WordCount:     grade.WordCount,
		GradedAt:      grade.GradedAt.UTC().Format(time.RFC3339Nano),
	}
	if grade.CompetitiveAnalysis != "" {
		wire.CompetitiveAnalysis, _ = json.Marshal(grade.CompetitiveAnalysis)
	}
	return wire
}

// ParseTimestamp parses a backend timestamp; unparsable input yields the zero time
func ParseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func rank(v *float64) *int {
	if v == nil || math.IsNaN(*v) || *v < 1 {
		return nil
	}
	r := int(math.Round(*v))
	return &r
}

func roundInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

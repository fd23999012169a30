package models

import (
	"time"
)

// ProviderResult is one provider's evaluation of one prompt.
// A nil RankPosition means the provider did not rank the brand at all.
type ProviderResult struct {
	Provider           string   `json:"provider"`
	RankPosition       *int     `json:"rank_position"`
	SentimentScore     float64  `json:"sentiment_score"`
	Confidence         float64  `json:"confidence"`
	ResponseTimeMs     int64    `json:"response_time_ms"`
	BrandMentions      []string `json:"brand_mentions"`
	CompetitorMentions []string `json:"competitor_mentions"`
	Citations          []string `json:"citations"`
	ResponseExcerpt    string   `json:"response_excerpt"`
}

// Ranked reports whether the provider placed the brand anywhere
func (r ProviderResult) Ranked() bool {
	return r.RankPosition != nil
}

// CompetitiveGap is the distance between the brand's rank and first place for one provider
type CompetitiveGap struct {
	Provider         string   `json:"provider"`
	CurrentRank      int      `json:"current_rank"`
	GapSize          int      `json:"gap_size"`
	MainCompetitors  []string `json:"main_competitors,omitempty"`
	OpportunityScore int      `json:"opportunity_score"`
}

// PromptTestOutcome is the result of testing one prompt across every provider
type PromptTestOutcome struct {
	Prompt                   string           `json:"prompt"`
	BrandName                string           `json:"brand_name"`
	TestedAt                 time.Time        `json:"tested_at"`
	ProvidersTested          int              `json:"providers_tested"`
	BestPerformer            string           `json:"best_performer"`
	RankingSummary           map[string]int   `json:"ranking_summary"`
	CompetitiveGaps          []CompetitiveGap `json:"competitive_gaps"`
	ImprovementOpportunities []string         `json:"improvement_opportunities"`
	Results                  []ProviderResult `json:"results"`
}

// GapSummary groups the competitive gaps of one provider across a batch of prompts
type GapSummary struct {
	Provider       string  `json:"provider"`
	GapCount       int     `json:"gap_count"`
	AverageGapSize float64 `json:"average_gap_size"`
	WorstGap       int     `json:"worst_gap"`
}

// ProviderPerformance holds averages for one provider over every test it returned
type ProviderPerformance struct {
	TotalTests        int      `json:"total_tests"`
	RankedTests       int      `json:"ranked_tests"`
	AverageRank       *float64 `json:"average_rank"`
	AverageSentiment  float64  `json:"average_sentiment"`
	AverageConfidence int      `json:"average_confidence"`
}

// AggregatedAnalysis is the reduction of a batch of prompt tests
type AggregatedAnalysis struct {
	ID                  string                          `json:"id"`
	BrandName           string                          `json:"brand_name"`
	AnalysisTimestamp   time.Time                       `json:"analysis_timestamp"`
	Success             bool                            `json:"success"`
	PromptsRequested    int                             `json:"prompts_requested"`
	PromptsAnalyzed     int                             `json:"prompts_analyzed"`
	TotalProviderTests  int                             `json:"total_provider_tests"`
	AverageRanking      *float64                        `json:"average_ranking"`
	CompetitiveGaps     []GapSummary                    `json:"competitive_gaps"`
	TopOpportunities    []string                        `json:"top_opportunities"`
	ProviderPerformance map[string]*ProviderPerformance `json:"provider_performance"`
	FailedPrompts       []string                        `json:"failed_prompts,omitempty"`
	Results             []PromptTestOutcome             `json:"results"`
}

// ContentGrade is the evaluation of a piece of content against a prompt
type ContentGrade struct {
	Prompt              string          `json:"prompt"`
	BrandName           string          `json:"brand_name"`
	OverallGrade        string          `json:"overall_grade"`
	NumericalScore      int             `json:"numerical_score"`
	Authority           int             `json:"authority_score"`
	Relevance           int             `json:"relevance_score"`
	Completeness        int             `json:"completeness_score"`
	Strengths           []string        `json:"strengths"`
	Weaknesses          []string        `json:"weaknesses"`
	Recommendations     []string        `json:"recommendations"`
	KeywordAnalysis     KeywordAnalysis `json:"keyword_analysis"`
	CompetitiveAnalysis string          `json:"competitive_analysis,omitempty"`
	ContentLength       int             `json:"content_length"`
	WordCount           int             `json:"word_count"`
	GradedAt            time.Time       `json:"graded_at"`
}

// KeywordAnalysis lists the keywords a piece of content covers and misses
type KeywordAnalysis struct {
	PrimaryKeywords []string `json:"primary_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// IntPtr returns a pointer to an int value
func IntPtr(i int) *int {
	return &i
}

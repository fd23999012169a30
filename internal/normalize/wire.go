package normalize

import "encoding/json"

// Wire shapes exchanged with the prompt evaluation backend. Field names follow
// the backend's snake_case JSON.

// TestPromptRequest is the body of POST /api/brands/test-prompt
type TestPromptRequest struct {
	Prompt      string   `json:"prompt" binding:"required"`
	BrandName   string   `json:"brand_name"`
	Competitors []string `json:"competitors"`
}

// TestPromptResponse is the success body of POST /api/brands/test-prompt
type TestPromptResponse struct {
	TestTimestamp            string             `json:"test_timestamp"`
	ProvidersTested          int                `json:"providers_tested"`
	BestPerformer            string             `json:"best_performer"`
	RankingSummary           map[string]float64 `json:"ranking_summary"`
	CompetitiveGaps          []WireGap          `json:"competitive_gaps"`
	ImprovementOpportunities []string           `json:"improvement_opportunities"`
	DetailedResults          []DetailedResult   `json:"detailed_results"`
	FailedProviders          []string           `json:"failed_providers,omitempty"`
}

// DetailedResult is one provider's entry in detailed_results.
// Numbers are decoded as floats since the backend does not guarantee integers.
type DetailedResult struct {
	Provider           string   `json:"provider"`
	RankPosition       *float64 `json:"rank_position"`
	SentimentScore     float64  `json:"sentiment_score"`
	Confidence         float64  `json:"confidence"`
	ResponseTime       float64  `json:"response_time"` // seconds
	BrandMentions      []string `json:"brand_mentions"`
	CompetitorMentions []string `json:"competitor_mentions"`
	Citations          []string `json:"citations"`
	ResponseExcerpt    string   `json:"response_excerpt"`
}

// WireGap is one entry of competitive_gaps
type WireGap struct {
	Provider         string   `json:"provider"`
	CurrentRank      float64  `json:"current_rank"`
	GapSize          float64  `json:"gap_size"`
	MainCompetitors  []string `json:"main_competitors,omitempty"`
	OpportunityScore float64  `json:"opportunity_score"`
}

// GradeContentRequest is the body of POST /api/brands/grade-content
type GradeContentRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	Content   string `json:"content" binding:"required"`
	BrandName string `json:"brand_name"`
}

// GradeResponse is the success body of POST /api/brands/grade-content
type GradeResponse struct {
	OverallGrade        string          `json:"overall_grade"`
	NumericalScore      float64         `json:"numerical_score"`
	AuthorityScore      float64         `json:"authority_score"`
	RelevanceScore      float64         `json:"relevance_score"`
	CompletenessScore   float64         `json:"completeness_score"`
	Strengths           []string        `json:"strengths"`
	Weaknesses          []string        `json:"weaknesses"`
	Recommendations     []string        `json:"recommendations"`
	KeywordAnalysis     WireKeywords    `json:"keyword_analysis"`
	CompetitiveAnalysis json.RawMessage `json:"competitive_analysis,omitempty"` // string or object
	ContentLength       int             `json:"content_length"`
	WordCount           int             `json:"word_count"`
	GradedAt            string          `json:"graded_at"`
}

// WireKeywords is the keyword_analysis object of a grade
type WireKeywords struct {
	PrimaryKeywords []string `json:"primary_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

// MentionsResponse is the success body of GET /api/brands/realtime-mentions
type MentionsResponse struct {
	BrandName             string         `json:"brand_name"`
	SearchTimestamp       string         `json:"search_timestamp"`
	Summary               MentionSummary `json:"summary"`
	VisibilityScore       float64        `json:"visibility_score"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	AverageConfidence     float64        `json:"avg_confidence"`
	UniqueSources         int            `json:"unique_sources"`
	ProvidersUsed         []string       `json:"providers_used"`
	FailedProviders       []string       `json:"failed_providers,omitempty"`
	Mentions              []WireMention  `json:"mentions"`
}

// MentionSummary is the summary block of a mentions response
type MentionSummary struct {
	TotalMentions     int      `json:"total_mentions"`
	PositiveSentiment int      `json:"positive_sentiment"`
	NeutralSentiment  int      `json:"neutral_sentiment"`
	NegativeSentiment int      `json:"negative_sentiment"`
	SentimentScore    float64  `json:"sentiment_score"`
	TrendingTopics    []string `json:"trending_topics"`
	MentionsToday     int      `json:"mentions_today"`
}

// WireMention is one entry of mentions. Source is the provider label.
type WireMention struct {
	ID                   string   `json:"id"`
	Content              string   `json:"content"`
	Source               string   `json:"source"`
	Prompt               string   `json:"prompt"`
	Sentiment            string   `json:"sentiment"`
	SentimentScore       float64  `json:"sentiment_score"`
	Timestamp            string   `json:"timestamp"`
	Context              string   `json:"context"`
	CompetitorsMentioned []string `json:"competitors_mentioned"`
	RankPosition         *float64 `json:"rank_position"`
	Confidence           float64  `json:"confidence"`
	SourceURLs           []string `json:"source_urls"`
	KeywordsFound        []string `json:"keywords_found"`
}

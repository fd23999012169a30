package models

import "time"

// Sentiment labels of a brand mention, from a 1-5 sentiment score
const (
	SentimentVeryPositive = "very_positive"
	SentimentPositive     = "positive"
	SentimentNeutral      = "neutral"
	SentimentNegative     = "negative"
	SentimentVeryNegative = "very_negative"
)

// SentimentLabels lists every label, most positive first
var SentimentLabels = []string{
	SentimentVeryPositive,
	SentimentPositive,
	SentimentNeutral,
	SentimentNegative,
	SentimentVeryNegative,
}

// BrandMention is one passage of an assistant answer that names the brand
type BrandMention struct {
	ID                   string    `json:"id"`
	Provider             string    `json:"provider"`
	Prompt               string    `json:"prompt"`
	Content              string    `json:"content"`
	Context              string    `json:"context"`
	Sentiment            string    `json:"sentiment"`
	SentimentScore       float64   `json:"sentiment_score"`
	Confidence           float64   `json:"confidence"`
	RankPosition         *int      `json:"rank_position"`
	CompetitorsMentioned []string  `json:"competitors_mentioned"`
	SourceURLs           []string  `json:"source_urls"`
	KeywordsFound        []string  `json:"keywords_found"`
	Timestamp            time.Time `json:"timestamp"`
}

// VisibilityReport summarizes how visible a brand is across the panel's answers
type VisibilityReport struct {
	BrandName             string         `json:"brand_name"`
	SearchedAt            time.Time      `json:"searched_at"`
	TotalMentions         int            `json:"total_mentions"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	VisibilityScore       float64        `json:"visibility_score"` // 0-100
	AverageSentiment      float64        `json:"average_sentiment"`
	AverageConfidence     float64        `json:"average_confidence"`
	UniqueSources         int            `json:"unique_sources"`
	ProvidersUsed         []string       `json:"providers_used"`
	FailedProviders       []string       `json:"failed_providers,omitempty"`
	TrendingTopics        []string       `json:"trending_topics"`
	Mentions              []BrandMention `json:"mentions"`
}

// Positive counts positive and very positive mentions
func (r *VisibilityReport) Positive() int {
	return r.SentimentDistribution[SentimentVeryPositive] + r.SentimentDistribution[SentimentPositive]
}

// Negative counts negative and very negative mentions
func (r *VisibilityReport) Negative() int {
	return r.SentimentDistribution[SentimentVeryNegative] + r.SentimentDistribution[SentimentNegative]
}

package normalize

import (
	"time"

	"github.com/AI2HU/promptpulse/internal/models"
)

// FromVisibility renders a visibility report, listing at most limit mentions.
// Totals always cover every mention; limit <= 0 lists them all.
func FromVisibility(report *models.VisibilityReport, limit int) *MentionsResponse {
	mentions := report.Mentions
	if limit > 0 && len(mentions) > limit {
		mentions = mentions[:limit]
	}

	wire := &MentionsResponse{
		BrandName:       report.BrandName,
		SearchTimestamp: report.SearchedAt.UTC().Format(time.RFC3339Nano),
		Summary: MentionSummary{
			TotalMentions:     report.TotalMentions,
			PositiveSentiment: report.Positive(),
			NeutralSentiment:  report.SentimentDistribution[models.SentimentNeutral],
			NegativeSentiment: report.Negative(),
			SentimentScore:    report.AverageSentiment,
			TrendingTopics:    nonNil(report.TrendingTopics),
			MentionsToday:     mentionsOn(report.Mentions, report.SearchedAt),
		},
		VisibilityScore:       report.VisibilityScore,
		SentimentDistribution: make(map[string]int, len(report.SentimentDistribution)),
		AverageConfidence:     report.AverageConfidence,
		UniqueSources:         report.UniqueSources,
		ProvidersUsed:         nonNil(report.ProvidersUsed),
		FailedProviders:       report.FailedProviders,
		Mentions:              make([]WireMention, 0, len(mentions)),
	}
	for label, n := range report.SentimentDistribution {
		wire.SentimentDistribution[label] = n
	}

	for _, m := range mentions {
		var rankPosition *float64
		if m.RankPosition != nil {
			v := float64(*m.RankPosition)
			rankPosition = &v
		}
		wire.Mentions = append(wire.Mentions, WireMention{
			ID:                   m.ID,
			Content:              m.Content,
			Source:               m.Provider,
			Prompt:               m.Prompt,
			Sentiment:            m.Sentiment,
			SentimentScore:       m.SentimentScore,
			Timestamp:            m.Timestamp.UTC().Format(time.RFC3339Nano),
			Context:              m.Context,
			CompetitorsMentioned: nonNil(m.CompetitorsMentioned),
			RankPosition:         rankPosition,
			Confidence:           m.Confidence,
			SourceURLs:           nonNil(m.SourceURLs),
			KeywordsFound:        nonNil(m.KeywordsFound),
		})
	}
	return wire
}

// Visibility builds a report from a mentions response. Mentions the response
// left out are not recovered: TotalMentions may exceed len(Mentions).
func Visibility(wire *MentionsResponse) *models.VisibilityReport {
	if wire == nil {
		wire = &MentionsResponse{}
	}

	report := &models.VisibilityReport{
		BrandName:             wire.BrandName,
		SearchedAt:            ParseTimestamp(wire.SearchTimestamp),
		TotalMentions:         wire.Summary.TotalMentions,
		SentimentDistribution: make(map[string]int, len(models.SentimentLabels)),
		VisibilityScore:       wire.VisibilityScore,
		AverageSentiment:      wire.Summary.SentimentScore,
		AverageConfidence:     wire.AverageConfidence,
		UniqueSources:         wire.UniqueSources,
		ProvidersUsed:         copyStrings(wire.ProvidersUsed),
		FailedProviders:       wire.FailedProviders,
		TrendingTopics:        copyStrings(wire.Summary.TrendingTopics),
		Mentions:              make([]models.BrandMention, 0, len(wire.Mentions)),
	}
	for _, label := range models.SentimentLabels {
		report.SentimentDistribution[label] = wire.SentimentDistribution[label]
	}

	for _, m := range wire.Mentions {
		report.Mentions = append(report.Mentions, models.BrandMention{
			ID:                   m.ID,
			Provider:             m.Source,
			Prompt:               m.Prompt,
			Content:              m.Content,
			Context:              m.Context,
			Sentiment:            m.Sentiment,
			SentimentScore:       m.SentimentScore,
			Confidence:           m.Confidence,
			RankPosition:         rank(m.RankPosition),
			CompetitorsMentioned: copyStrings(m.CompetitorsMentioned),
			SourceURLs:           copyStrings(m.SourceURLs),
			KeywordsFound:        copyStrings(m.KeywordsFound),
			Timestamp:            ParseTimestamp(m.Timestamp),
		})
	}
	return report
}

func mentionsOn(mentions []models.BrandMention, day time.Time) int {
	y, m, d := day.UTC().Date()
	n := 0
	for _, mention := range mentions {
		my, mm, md := mention.Timestamp.UTC().Date()
		if my == y && mm == m && md == d {
			n++
		}
	}
	return n
}

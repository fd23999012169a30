package analysis

import (
	"math"

	"github.com/AI2HU/promptpulse/internal/models"
)

// Round rounds v to places decimals, halves away from zero
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// TotalProviderTests counts the provider results actually returned
func TotalProviderTests(outcomes []models.PromptTestOutcome) int {
	total := 0
	for _, o := range outcomes {
		total += len(o.Results)
	}
	return total
}

// AverageRanking is the mean of every defined rank position, to one decimal.
// It is nil when no provider ranked the brand.
func AverageRanking(outcomes []models.PromptTestOutcome) *float64 {
	sum, count := 0, 0
	for _, o := range outcomes {
		for _, r := range o.Results {
			if r.RankPosition == nil {
				continue
			}
			sum += *r.RankPosition
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := Round(float64(sum)/float64(count), 1)
	return &avg
}

// AggregateCompetitiveGaps groups gaps by provider, in order of first appearance
func AggregateCompetitiveGaps(outcomes []models.PromptTestOutcome) []models.GapSummary {
	type acc struct {
		count, sum, worst int
	}

	var order []string
	byProvider := make(map[string]*acc)
	for _, o := range outcomes {
		for _, gap := range o.CompetitiveGaps {
			a, ok := byProvider[gap.Provider]
			if !ok {
				a = &acc{worst: gap.GapSize}
				byProvider[gap.Provider] = a
				order = append(order, gap.Provider)
			}
			a.count++
			a.sum += gap.GapSize
			if gap.GapSize > a.worst {
				a.worst = gap.GapSize
			}
		}
	}

	summaries := make([]models.GapSummary, 0, len(order))
	for _, provider := range order {
		a := byProvider[provider]
		summaries = append(summaries, models.GapSummary{
			Provider:       provider,
			GapCount:       a.count,
			AverageGapSize: Round(float64(a.sum)/float64(a.count), 1),
			WorstGap:       a.worst,
		})
	}
	return summaries
}

// TopOpportunities returns up to limit distinct opportunities in order of first occurrence
func TopOpportunities(outcomes []models.PromptTestOutcome, limit int) []string {
	seen := make(map[string]bool)
	top := make([]string, 0, limit)
	for _, o := range outcomes {
		for _, opportunity := range o.ImprovementOpportunities {
			if len(top) >= limit {
				return top
			}
			if seen[opportunity] {
				continue
			}
			seen[opportunity] = true
			top = append(top, opportunity)
		}
	}
	return top
}

// AnalyzeProviderPerformance averages rank, sentiment and confidence per
// provider over every result it returned. Providers that never returned a
// result are absent.
func AnalyzeProviderPerformance(outcomes []models.PromptTestOutcome) map[string]*models.ProviderPerformance {
	type acc struct {
		tests         int
		ranked        int
		rankSum       int
		sentimentSum  float64
		confidenceSum float64
	}

	byProvider := make(map[string]*acc)
	for _, o := range outcomes {
		for _, r := range o.Results {
			a, ok := byProvider[r.Provider]
			if !ok {
				a = &acc{}
				byProvider[r.Provider] = a
			}
			a.tests++
			if r.RankPosition != nil {
				a.ranked++
				a.rankSum += *r.RankPosition
			}
			a.sentimentSum += r.SentimentScore
			a.confidenceSum += r.Confidence
		}
	}

	performance := make(map[string]*models.ProviderPerformance, len(byProvider))
	for provider, a := range byProvider {
		p := &models.ProviderPerformance{
			TotalTests:        a.tests,
			RankedTests:       a.ranked,
			AverageSentiment:  Round(a.sentimentSum/float64(a.tests), 1),
			AverageConfidence: int(math.Round(a.confidenceSum / float64(a.tests))),
		}
		if a.ranked > 0 {
			avg := Round(float64(a.rankSum)/float64(a.ranked), 1)
			p.AverageRank = &avg
		}
		performance[provider] = p
	}
	return performance
}

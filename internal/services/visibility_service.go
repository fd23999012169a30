package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AI2HU/promptpulse/internal/analysis"
	"github.com/AI2HU/promptpulse/internal/llm"
	"github.com/AI2HU/promptpulse/internal/logger"
	"github.com/AI2HU/promptpulse/internal/models"
)

const (
	mentionContextLength = 200
	maxTrendingTopics    = 5
)

// MentionQuery selects what a visibility search asks the panel
type MentionQuery struct {
	BrandName string
	Keywords  []string
	Prompts   []string // empty means the default search prompts
}

// VisibilityService asks every panel member about a brand and reports how
// visible and how well regarded the brand is in the answers
type VisibilityService struct {
	registry     *llm.Registry
	defaultBrand string
	competitors  []string
	now          func() time.Time
	log          *logger.Logger
}

// NewVisibilityService creates a new visibility service
func NewVisibilityService(registry *llm.Registry, defaultBrand string, competitors []string) *VisibilityService {
	return &VisibilityService{
		registry:     registry,
		defaultBrand: defaultBrand,
		competitors:  append([]string(nil), competitors...),
		now:          time.Now,
		log:          logger.GetLogger().Named("visibility"),
	}
}

// SetLogger replaces the service logger
func (s *VisibilityService) SetLogger(l *logger.Logger) {
	s.log = l
}

type memberMentions struct {
	label    string
	mentions []models.BrandMention
	failures int
}

// SearchMentions puts the search prompts to every panel member concurrently,
// one member's prompts in sequence. A member whose every prompt failed is
// reported in FailedProviders.
func (s *VisibilityService) SearchMentions(ctx context.Context, query MentionQuery) (*models.VisibilityReport, error) {
	brand := strings.TrimSpace(query.BrandName)
	if brand == "" {
		brand = s.defaultBrand
	}
	if brand == "" {
		return nil, fmt.Errorf("brand name cannot be empty")
	}

	prompts := make([]string, 0, len(query.Prompts))
	for _, p := range query.Prompts {
		if p = strings.TrimSpace(p); p != "" {
			prompts = append(prompts, p)
		}
	}
	if len(prompts) == 0 {
		prompts = llm.MentionSearchPrompts(brand, query.Keywords)
	}

	members := s.registry.Members()
	if len(members) == 0 {
		return nil, ErrNoProviders
	}

	searchedAt := s.now()
	found := make([]memberMentions, len(members))
	var wg sync.WaitGroup
	for i, member := range members {
		wg.Add(1)
		go func(i int, member *llm.Member) {
			defer wg.Done()

			found[i].label = member.Label
			for _, prompt := range prompts {
				resp, err := member.Provider.Generate(ctx, prompt, member.Config)
				if err != nil {
					s.log.Warning("provider %s failed mention search: %v", member.Label, err)
					found[i].failures++
					continue
				}
				found[i].mentions = append(found[i].mentions,
					ExtractMentions(resp.Text, brand, query.Keywords, s.competitors, member.Label, prompt, searchedAt)...)
			}
		}(i, member)
	}
	wg.Wait()

	var mentions []models.BrandMention
	var used, failed []string
	for _, f := range found {
		if f.failures == len(prompts) {
			failed = append(failed, f.label)
			continue
		}
		used = append(used, f.label)
		mentions = append(mentions, f.mentions...)
	}
	if len(used) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrAllProvidersFailed, strings.Join(failed, ", "))
	}

	report := AnalyzeVisibility(brand, mentions)
	report.SearchedAt = searchedAt
	report.ProvidersUsed = used
	report.FailedProviders = failed
	s.log.Debug("%s: %d mentions across %d providers, visibility %.1f", brand, report.TotalMentions, len(used), report.VisibilityScore)
	return report, nil
}

// ExtractMentions returns one mention per paragraph of answer that names brandName.
// Rank is judged on the whole answer; everything else on the paragraph.
func ExtractMentions(answer, brandName string, keywords, competitors []string, provider, prompt string, at time.Time) []models.BrandMention {
	brand := strings.ToLower(brandName)
	if brand == "" {
		return nil
	}
	rank := EstimateRank(answer, brandName, competitors)

	var mentions []models.BrandMention
	for _, section := range strings.Split(answer, "\n\n") {
		section = strings.TrimSpace(section)
		lower := strings.ToLower(section)
		if section == "" || !strings.Contains(lower, brand) {
			continue
		}

		result := AnalyzeResponse(section, brandName, competitors)
		keywordsFound := []string{}
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				keywordsFound = append(keywordsFound, kw)
			}
		}

		var mentionRank *int
		if rank != nil {
			mentionRank = models.IntPtr(*rank)
		}

		mentions = append(mentions, models.BrandMention{
			ID:                   uuid.NewString(),
			Provider:             provider,
			Prompt:               prompt,
			Content:              section,
			Context:              excerpt(section, mentionContextLength),
			Sentiment:            SentimentLabel(result.SentimentScore),
			SentimentScore:       result.SentimentScore,
			Confidence:           result.Confidence,
			RankPosition:         mentionRank,
			CompetitorsMentioned: result.CompetitorMentions,
			SourceURLs:           append([]string{}, urlPattern.FindAllString(section, -1)...),
			KeywordsFound:        keywordsFound,
			Timestamp:            at,
		})
	}
	return mentions
}

// SentimentLabel buckets a 1-5 sentiment score
func SentimentLabel(score float64) string {
	switch {
	case score >= 4.5:
		return models.SentimentVeryPositive
	case score >= 3.5:
		return models.SentimentPositive
	case score > 2.5:
		return models.SentimentNeutral
	case score > 1.5:
		return models.SentimentNegative
	default:
		return models.SentimentVeryNegative
	}
}

// AnalyzeVisibility reduces mentions to a report. Without mentions the report
// is zeroed, with every sentiment label present.
func AnalyzeVisibility(brandName string, mentions []models.BrandMention) *models.VisibilityReport {
	report := &models.VisibilityReport{
		BrandName:             brandName,
		TotalMentions:         len(mentions),
		SentimentDistribution: make(map[string]int, len(models.SentimentLabels)),
		ProvidersUsed:         []string{},
		TrendingTopics:        []string{},
		Mentions:              append([]models.BrandMention{}, mentions...),
	}
	for _, label := range models.SentimentLabels {
		report.SentimentDistribution[label] = 0
	}
	if len(mentions) == 0 {
		return report
	}

	sources := make(map[string]bool)
	sentimentSum, confidenceSum := 0.0, 0.0
	for _, m := range mentions {
		report.SentimentDistribution[m.Sentiment]++
		sentimentSum += m.SentimentScore
		confidenceSum += m.Confidence
		for _, url := range m.SourceURLs {
			sources[url] = true
		}
	}

	n := float64(len(mentions))
	report.AverageSentiment = analysis.Round(sentimentSum/n, 1)
	report.AverageConfidence = analysis.Round(confidenceSum/n, 1)
	report.UniqueSources = len(sources)
	report.VisibilityScore = VisibilityScore(len(mentions), report.SentimentDistribution, confidenceSum/n, len(sources))
	report.TrendingTopics = trendingTopics(mentions)
	return report
}

// VisibilityScore scores from 0 to 100: up to 50 for mention volume, a
// sentiment term weighing positive at 30 and neutral at 15 against negative at
// 10, up to 10 for confidence and up to 10 for distinct sources.
func VisibilityScore(mentions int, distribution map[string]int, averageConfidence float64, uniqueSources int) float64 {
	if mentions == 0 {
		return 0
	}
	n := float64(mentions)

	volume := min(50, n*2)
	positive := (float64(distribution[models.SentimentVeryPositive]) + float64(distribution[models.SentimentPositive])*0.8) / n
	negative := (float64(distribution[models.SentimentVeryNegative]) + float64(distribution[models.SentimentNegative])*0.8) / n
	neutral := float64(distribution[models.SentimentNeutral]) / n
	sentiment := positive*30 + neutral*15 - negative*10
	confidence := averageConfidence / 100 * 10
	sources := min(10, float64(uniqueSources)*2)

	return analysis.Round(max(0, min(100, volume+sentiment+confidence+sources)), 1)
}

// trendingTopics ranks keywords, then competitors, by how many mentions carry them
func trendingTopics(mentions []models.BrandMention) []string {
	counts := make(map[string]int)
	var order []string
	count := func(topic string) {
		if counts[topic] == 0 {
			order = append(order, topic)
		}
		counts[topic]++
	}
	for _, m := range mentions {
		for _, kw := range m.KeywordsFound {
			count(kw)
		}
	}
	for _, m := range mentions {
		for _, c := range m.CompetitorsMentioned {
			count(c)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxTrendingTopics {
		order = order[:maxTrendingTopics]
	}
	return append([]string{}, order...)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/AI2HU/promptpulse/internal/analysis"
	"github.com/AI2HU/promptpulse/internal/llm"
	"github.com/AI2HU/promptpulse/internal/logger"
	"github.com/AI2HU/promptpulse/internal/models"
)

var (
	// ErrNoProviders is returned when the panel has no enabled member
	ErrNoProviders = errors.New("no providers configured")
	// ErrAllProvidersFailed is returned when every panel member failed to answer
	ErrAllProvidersFailed = errors.New("all providers failed")
)

const excerptLength = 500

var (
	positiveWords = []string{
		"best", "excellent", "superior", "leading", "top", "outstanding",
		"reliable", "innovative", "efficient", "advanced", "popular",
		"recommended", "preferred", "winner", "impressive", "strong",
	}
	negativeWords = []string{
		"worst", "poor", "inferior", "problems", "issues", "concerns",
		"expensive", "limited", "lacking", "disappointing", "weak",
		"behind", "struggling", "fails", "unable", "difficult",
	}

	urlPattern     = regexp.MustCompile(`https?://[^\s\)>]+`)
	numberPattern  = regexp.MustCompile(`\d+`)
	sourcePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)according to ([^,\n]+)`),
		regexp.MustCompile(`(?i)source: ([^,\n]+)`),
		regexp.MustCompile(`(?i)study by ([^,\n]+)`),
		regexp.MustCompile(`(?i)research from ([^,\n]+)`),
	}
)

// Evaluation is the result of putting one prompt to the panel
type Evaluation struct {
	Outcome         *models.PromptTestOutcome
	FailedProviders []string
}

// EvaluationService puts prompts to every panel member and analyses how each
// answer positions the brand against its competitors
type EvaluationService struct {
	registry           *llm.Registry
	defaultCompetitors []string
	now                func() time.Time
	log                *logger.Logger
}

// NewEvaluationService creates a new evaluation service. defaultCompetitors
// is the panel compared against when a request names no competitor.
func NewEvaluationService(registry *llm.Registry, defaultCompetitors []string) *EvaluationService {
	return &EvaluationService{
		registry:           registry,
		defaultCompetitors: append([]string(nil), defaultCompetitors...),
		now:                time.Now,
		log:                logger.GetLogger().Named("evaluation"),
	}
}

// SetLogger replaces the service logger
func (s *EvaluationService) SetLogger(l *logger.Logger) {
	s.log = l
}

type memberAnswer struct {
	label  string
	result models.ProviderResult
	err    error
}

// Evaluate sends prompt to every panel member concurrently. Members that fail
// are reported in FailedProviders and left out of the outcome. An empty
// competitor list is replaced by the default competitors.
func (s *EvaluationService) Evaluate(ctx context.Context, prompt, brandName string, competitors []string) (*Evaluation, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	if strings.TrimSpace(brandName) == "" {
		return nil, fmt.Errorf("brand name cannot be empty")
	}
	if len(competitors) == 0 {
		competitors = s.defaultCompetitors
	}

	members := s.registry.Members()
	if len(members) == 0 {
		return nil, ErrNoProviders
	}

	query := llm.CompetitivePrompt(prompt, brandName, competitors)

	answers := make([]memberAnswer, len(members))
	var wg sync.WaitGroup
	for i, member := range members {
		wg.Add(1)
		go func(i int, member *llm.Member) {
			defer wg.Done()

			start := time.Now()
			resp, err := member.Provider.Generate(ctx, query, member.Config)
			if err != nil {
				answers[i] = memberAnswer{label: member.Label, err: err}
				return
			}

			result := AnalyzeResponse(resp.Text, brandName, competitors)
			result.Provider = member.Label
			result.ResponseTimeMs = time.Since(start).Milliseconds()
			answers[i] = memberAnswer{label: member.Label, result: result}
		}(i, member)
	}
	wg.Wait()

	results := make([]models.ProviderResult, 0, len(answers))
	failed := make([]string, 0)
	for _, a := range answers {
		if a.err != nil {
			s.log.Warning("provider %s failed for prompt %q: %v", a.label, prompt, a.err)
			failed = append(failed, a.label)
			continue
		}
		results = append(results, a.result)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrAllProvidersFailed, strings.Join(failed, ", "))
	}

	outcome := BuildOutcome(prompt, brandName, results)
	outcome.TestedAt = s.now()
	s.log.Debug("prompt %q: %d providers answered, best performer %q", prompt, len(results), outcome.BestPerformer)

	return &Evaluation{Outcome: outcome, FailedProviders: failed}, nil
}

// TestPrompt evaluates prompt in process, so the service can back an aggregator directly
func (s *EvaluationService) TestPrompt(ctx context.Context, prompt, brandName string, competitors []string) (*models.PromptTestOutcome, error) {
	evaluation, err := s.Evaluate(ctx, prompt, brandName, competitors)
	if err != nil {
		return nil, err
	}
	return evaluation.Outcome, nil
}

// AnalyzeResponse extracts the brand's position from one assistant answer
func AnalyzeResponse(response, brandName string, competitors []string) models.ProviderResult {
	lower := strings.ToLower(response)

	brandMentions := []string{}
	if strings.Contains(lower, strings.ToLower(brandName)) {
		brandMentions = append(brandMentions, brandName)
	}

	competitorMentions := []string{}
	for _, competitor := range competitors {
		if competitor != "" && strings.Contains(lower, strings.ToLower(competitor)) {
			competitorMentions = append(competitorMentions, competitor)
		}
	}

	return models.ProviderResult{
		RankPosition:       EstimateRank(response, brandName, competitors),
		SentimentScore:     SentimentScore(response, brandName),
		Confidence:         Confidence(response, len(brandMentions) > 0, len(competitorMentions)),
		BrandMentions:      brandMentions,
		CompetitorMentions: competitorMentions,
		Citations:          ExtractCitations(response),
		ResponseExcerpt:    excerpt(response, excerptLength),
	}
}

// EstimateRank places the brand at 1 when the answer calls it the best or
// mentions it before any competitor, and otherwise one behind the number of
// competitors mentioned first. An answer that never names the brand is unranked.
//
// A mention alone does not earn rank 1: mention order counts, so
// "Ford first, then Tesla" ranks Tesla 2nd.
func EstimateRank(response, brandName string, competitors []string) *int {
	lower := strings.ToLower(response)
	brand := strings.ToLower(brandName)
	if brand == "" {
		return nil
	}

	brandAt := strings.Index(lower, brand)
	if brandAt < 0 {
		return nil
	}

	leadPhrases := []string{
		brand + " is the best",
		brand + " leads",
		brand + " tops",
		"top choice is " + brand,
		"#1 is " + brand,
		"first place: " + brand,
	}
	for _, phrase := range leadPhrases {
		if strings.Contains(lower, phrase) {
			return models.IntPtr(1)
		}
	}

	before := 0
	for _, competitor := range competitors {
		if competitor == "" {
			continue
		}
		if at := strings.Index(lower, strings.ToLower(competitor)); at >= 0 && at < brandAt {
			before++
		}
	}
	return models.IntPtr(before + 1)
}

// SentimentScore scores the answer from 1 to 5. Each positive or negative
// word present moves the neutral 3 by 0.3, capped at 2 either way.
func SentimentScore(response, brandName string) float64 {
	lower := strings.ToLower(response)
	if brandName == "" || !strings.Contains(lower, strings.ToLower(brandName)) {
		return 3.0
	}

	positive, negative := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	score := 3.0 + min(float64(positive)*0.3, 2.0) - min(float64(negative)*0.3, 2.0)
	return analysis.Round(max(1.0, min(score, 5.0)), 1)
}

// ExtractCitations returns the URLs in the answer followed by named sources
func ExtractCitations(response string) []string {
	citations := append([]string{}, urlPattern.FindAllString(response, -1)...)
	for _, pattern := range sourcePatterns {
		for _, match := range pattern.FindAllStringSubmatch(response, -1) {
			citations = append(citations, strings.TrimSpace(match[1]))
		}
	}
	return citations
}

// Confidence scores from 0 to 100 how informative the answer is
func Confidence(response string, brandMentioned bool, competitorMentions int) float64 {
	confidence := min(float64(len(response))/1000, 1.0) * 30
	if brandMentioned {
		confidence += 25
	}
	confidence += min(float64(competitorMentions)*10, 30)
	confidence += min(float64(len(numberPattern.FindAllString(response, -1)))*2, 15)
	return analysis.Round(min(confidence, 100), 1)
}

// BuildOutcome derives the per-prompt competitive picture from the panel's results
func BuildOutcome(prompt, brandName string, results []models.ProviderResult) *models.PromptTestOutcome {
	outcome := &models.PromptTestOutcome{
		Prompt:                   prompt,
		BrandName:                brandName,
		ProvidersTested:          len(results),
		RankingSummary:           make(map[string]int),
		CompetitiveGaps:          []models.CompetitiveGap{},
		ImprovementOpportunities: []string{},
		Results:                  results,
	}

	bestRank, rankSum := 0, 0
	for _, r := range results {
		if r.RankPosition == nil {
			continue
		}
		rank := *r.RankPosition
		outcome.RankingSummary[r.Provider] = rank
		rankSum += rank
		if outcome.BestPerformer == "" || rank < bestRank {
			outcome.BestPerformer = r.Provider
			bestRank = rank
		}
		if rank > 1 {
			main := r.CompetitorMentions
			if len(main) > 2 {
				main = main[:2]
			}
			outcome.CompetitiveGaps = append(outcome.CompetitiveGaps, models.CompetitiveGap{
				Provider:         r.Provider,
				CurrentRank:      rank,
				GapSize:          rank - 1,
				MainCompetitors:  append([]string{}, main...),
				OpportunityScore: max(0, 100-rank*15),
			})
		}
	}

	if n := len(outcome.RankingSummary); n > 0 {
		avg := float64(rankSum) / float64(n)
		if avg > 2 {
			outcome.ImprovementOpportunities = append(outcome.ImprovementOpportunities,
				fmt.Sprintf("Focus on %s - average rank is %.1f, opportunity to improve", prompt, avg))
		}
	}

	if top := mostMentionedCompetitor(results); top != "" {
		outcome.ImprovementOpportunities = append(outcome.ImprovementOpportunities,
			fmt.Sprintf("Challenge %s - most frequently mentioned competitor", top))
	}

	return outcome
}

// mostMentionedCompetitor breaks ties by first mention
func mostMentionedCompetitor(results []models.ProviderResult) string {
	counts := make(map[string]int)
	var order []string
	for _, r := range results {
		for _, c := range r.CompetitorMentions {
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
	}

	top, best := "", 0
	for _, c := range order {
		if counts[c] > best {
			top, best = c, counts[c]
		}
	}
	return top
}

func excerpt(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}

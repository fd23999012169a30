package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/AI2HU/promptpulse/internal/analysis"
	"github.com/AI2HU/promptpulse/internal/models"
)

// AnalysisService runs competitive analyses and keeps the latest report per
// brand in memory. Reports are lost on restart.
type AnalysisService struct {
	aggregator   *analysis.Aggregator
	defaultBrand string

	mu      sync.RWMutex
	byBrand map[string]*models.AggregatedAnalysis
	latest  *models.AggregatedAnalysis
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(aggregator *analysis.Aggregator, defaultBrand string) *AnalysisService {
	return &AnalysisService{
		aggregator:   aggregator,
		defaultBrand: defaultBrand,
		byBrand:      make(map[string]*models.AggregatedAnalysis),
	}
}

// RunAnalysis analyses prompts for brandName and records the report
func (s *AnalysisService) RunAnalysis(ctx context.Context, prompts []string, brandName string) (*models.AggregatedAnalysis, error) {
	cleaned := make([]string, 0, len(prompts))
	for _, p := range prompts {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("at least one prompt is required")
	}
	if brandName == "" {
		brandName = s.defaultBrand
	}

	report := s.aggregator.Run(ctx, cleaned, brandName)

	s.mu.Lock()
	s.byBrand[brandKey(brandName)] = report
	s.latest = report
	s.mu.Unlock()

	return report, nil
}

// Latest returns the most recent report for brandName, or the most recent
// report of any brand when brandName is empty
func (s *AnalysisService) Latest(brandName string) (*models.AggregatedAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if brandName == "" {
		return s.latest, s.latest != nil
	}
	report, ok := s.byBrand[brandKey(brandName)]
	return report, ok
}

// ProviderStanding is one provider's line in a report's leaderboard
type ProviderStanding struct {
	Provider string `json:"provider"`
	models.ProviderPerformance
}

// ProviderStandings orders the providers of a report by average rank, best
// first. Providers that never ranked the brand come last, then by name.
func ProviderStandings(report *models.AggregatedAnalysis) []ProviderStanding {
	standings := make([]ProviderStanding, 0, len(report.ProviderPerformance))
	for provider, perf := range report.ProviderPerformance {
		standings = append(standings, ProviderStanding{Provider: provider, ProviderPerformance: *perf})
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i].AverageRank, standings[j].AverageRank
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return standings[i].Provider < standings[j].Provider
	})
	return standings
}

func brandKey(brandName string) string {
	return strings.ToLower(strings.TrimSpace(brandName))
}

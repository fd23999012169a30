package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/AI2HU/promptpulse/internal/models"
	"github.com/AI2HU/promptpulse/internal/services"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printAnalysis renders an aggregated analysis as tables
func printAnalysis(w io.Writer, report *models.AggregatedAnalysis) {
	fmt.Fprintf(w, "%s📊 Competitive Analysis: %s%s\n", HeaderStyle, FormatValue(report.BrandName), Reset)
	fmt.Fprintf(w, "%s==========================%s\n", DimStyle, Reset)
	fmt.Fprintln(w)

	if !report.Success {
		fmt.Fprintf(w, "%s❌ No prompt could be analyzed (%d requested)%s\n", ErrorStyle, report.PromptsRequested, Reset)
		printFailedPrompts(w, report.FailedPrompts)
		return
	}

	fmt.Fprintln(w, FormatLabelValue("Prompts analyzed:", fmt.Sprintf("%d/%d", report.PromptsAnalyzed, report.PromptsRequested)))
	fmt.Fprintln(w, FormatLabelValue("Provider tests:", fmt.Sprintf("%d", report.TotalProviderTests)))
	fmt.Fprintf(w, "%sAverage ranking:%s %s\n", LabelStyle, Reset, FormatRank(report.AverageRanking))
	fmt.Fprintln(w)

	printProviderStandings(w, services.ProviderStandings(report))

	if len(report.CompetitiveGaps) > 0 {
		fmt.Fprintf(w, "%sCompetitive Gaps:%s\n", WarningStyle, Reset)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "%sPROVIDER\tGAPS\tAVG GAP\tWORST%s\n", LabelStyle, Reset)
		for _, gap := range report.CompetitiveGaps {
			fmt.Fprintf(tw, "%s\t%d\t%.1f\t%d\n", gap.Provider, gap.GapCount, gap.AverageGapSize, gap.WorstGap)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	if len(report.TopOpportunities) > 0 {
		fmt.Fprintf(w, "%sTop Opportunities:%s\n", SuccessStyle, Reset)
		for i, opportunity := range report.TopOpportunities {
			fmt.Fprintf(w, "  %s%d.%s %s\n", CountStyle, i+1, Reset, opportunity)
		}
		fmt.Fprintln(w)
	}

	printFailedPrompts(w, report.FailedPrompts)
}

func printProviderStandings(w io.Writer, standings []services.ProviderStanding) {
	if len(standings) == 0 {
		return
	}

	fmt.Fprintf(w, "%sProvider Performance:%s\n", SuccessStyle, Reset)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%sPROVIDER\tTESTS\tRANKED\tAVG RANK\tSENTIMENT\tCONFIDENCE%s\n", LabelStyle, Reset)
	fmt.Fprintf(tw, "%s────────\t─────\t──────\t────────\t─────────\t──────────%s\n", DimStyle, Reset)
	for _, s := range standings {
		avg := "-"
		if s.AverageRank != nil {
			avg = fmt.Sprintf("%.1f", *s.AverageRank)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%.1f\t%d\n",
			s.Provider, s.TotalTests, s.RankedTests, avg, s.AverageSentiment, s.AverageConfidence)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func printFailedPrompts(w io.Writer, failed []string) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(w, "%sFailed prompts:%s\n", ErrorStyle, Reset)
	for _, prompt := range failed {
		fmt.Fprintf(w, "  %s- %s%s\n", MetaStyle, truncateMiddle(prompt, 80), Reset)
	}
	fmt.Fprintln(w)
}

// printOutcome renders one prompt tested across the panel
func printOutcome(w io.Writer, outcome *models.PromptTestOutcome) {
	fmt.Fprintf(w, "%s🔍 %s%s\n", HeaderStyle, outcome.Prompt, Reset)
	fmt.Fprintln(w, FormatLabelValue("Brand:", outcome.BrandName))
	if outcome.BestPerformer != "" {
		fmt.Fprintln(w, FormatLabelValue("Best performer:", outcome.BestPerformer))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%sPROVIDER\tRANK\tSENTIMENT\tCONFIDENCE\tTIME\tCOMPETITORS%s\n", LabelStyle, Reset)
	for _, r := range outcome.Results {
		rank := "-"
		if r.RankPosition != nil {
			rank = fmt.Sprintf("%d", *r.RankPosition)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%dms\t%s\n",
			r.Provider, rank, r.SentimentScore, r.Confidence, r.ResponseTimeMs, strings.Join(r.CompetitorMentions, ", "))
	}
	tw.Flush()
	fmt.Fprintln(w)

	for _, opportunity := range outcome.ImprovementOpportunities {
		fmt.Fprintf(w, "%s💡 %s%s\n", InfoStyle, opportunity, Reset)
	}
}

// printGrade renders a content grade
func printGrade(w io.Writer, grade *models.ContentGrade) {
	fmt.Fprintf(w, "%s📝 Content Grade: %s%s\n", HeaderStyle, FormatGrade(grade.OverallGrade), Reset)
	fmt.Fprintf(w, "%s=================%s\n", DimStyle, Reset)

	scores := map[string]int{
		"Overall":      grade.NumericalScore,
		"Authority":    grade.Authority,
		"Relevance":    grade.Relevance,
		"Completeness": grade.Completeness,
	}
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "%s%s%s\t%d/100\n", LabelStyle, name, Reset, scores[name])
	}
	fmt.Fprintf(tw, "%sWords%s\t%d\n", LabelStyle, Reset, grade.WordCount)
	tw.Flush()

	printList(w, "Strengths", SuccessStyle, grade.Strengths)
	printList(w, "Weaknesses", WarningStyle, grade.Weaknesses)
	printList(w, "Recommendations", InfoStyle, grade.Recommendations)

	if len(grade.KeywordAnalysis.PrimaryKeywords) > 0 || len(grade.KeywordAnalysis.MissingKeywords) > 0 {
		fmt.Fprintf(w, "\n%sKeywords:%s\n", LabelStyle, Reset)
		fmt.Fprintf(w, "  covered: %s\n", joinOrDash(grade.KeywordAnalysis.PrimaryKeywords))
		fmt.Fprintf(w, "  missing: %s\n", joinOrDash(grade.KeywordAnalysis.MissingKeywords))
	}
	if grade.CompetitiveAnalysis != "" {
		fmt.Fprintf(w, "\n%sCompetitive positioning:%s\n  %s\n", LabelStyle, Reset, grade.CompetitiveAnalysis)
	}
}

// printVisibility renders a brand visibility report
func printVisibility(w io.Writer, report *models.VisibilityReport) {
	fmt.Fprintf(w, "%s📡 Brand Visibility: %s%s\n", HeaderStyle, FormatValue(report.BrandName), Reset)
	fmt.Fprintf(w, "%s====================%s\n", DimStyle, Reset)
	fmt.Fprintln(w)

	fmt.Fprintln(w, FormatLabelValue("Visibility score:", fmt.Sprintf("%.1f/100", report.VisibilityScore)))
	fmt.Fprintln(w, FormatLabelValue("Mentions:", fmt.Sprintf("%d", report.TotalMentions)))
	fmt.Fprintln(w, FormatLabelValue("Sentiment:", fmt.Sprintf("%d positive, %d neutral, %d negative (avg %.1f)",
		report.Positive(), report.SentimentDistribution[models.SentimentNeutral], report.Negative(), report.AverageSentiment)))
	fmt.Fprintln(w, FormatLabelValue("Sources:", fmt.Sprintf("%d", report.UniqueSources)))
	fmt.Fprintln(w, FormatLabelValue("Trending:", joinOrDash(report.TrendingTopics)))
	if len(report.FailedProviders) > 0 {
		fmt.Fprintf(w, "%sFailed providers:%s %s\n", ErrorStyle, Reset, strings.Join(report.FailedProviders, ", "))
	}
	fmt.Fprintln(w)

	if len(report.Mentions) == 0 {
		fmt.Fprintf(w, "%sNo mentions found%s\n", MetaStyle, Reset)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%sPROVIDER\tSENTIMENT\tRANK\tMENTION%s\n", LabelStyle, Reset)
	for _, m := range report.Mentions {
		rank := "-"
		if m.RankPosition != nil {
			rank = fmt.Sprintf("%d", *m.RankPosition)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Provider, m.Sentiment, rank, truncateMiddle(m.Context, 60))
	}
	tw.Flush()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func printList(w io.Writer, title, style string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s%s:%s\n", style, title, Reset)
	for _, item := range items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
}

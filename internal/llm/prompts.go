package llm

import (
	"fmt"
	"strings"
)

// maxComparedCompetitors is how many competitors are named in a competitive query
const maxComparedCompetitors = 3

// CompetitivePrompt wraps a user query so the assistant compares brandName
// against the first competitors and names its sources.
func CompetitivePrompt(query, brandName string, competitors []string) string {
	named := competitors
	if len(named) > maxComparedCompetitors {
		named = named[:maxComparedCompetitors]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %q\n\n", query)
	b.WriteString("Please provide a comprehensive response to this query. I need to analyze:\n")
	if len(named) > 0 {
		fmt.Fprintf(&b, "1. How %s compares to competitors like %s\n", brandName, strings.Join(named, ", "))
	} else {
		fmt.Fprintf(&b, "1. How %s compares to its main competitors\n", brandName)
	}
	b.WriteString("2. Specific rankings or recommendations\n")
	b.WriteString("3. Any citations or sources you reference\n")
	b.WriteString("4. Key factors that influence recommendations\n\n")
	b.WriteString("Please be thorough and specific in your analysis.")
	return b.String()
}

// GradingPrompt asks the assistant to grade content against a query and answer in JSON
func GradingPrompt(query, content, brandName string, competitors []string) string {
	rivals := "its main competitors"
	if len(competitors) > 0 {
		named := competitors
		if len(named) > maxComparedCompetitors {
			named = named[:maxComparedCompetitors]
		}
		rivals = "competitors like " + strings.Join(named, ", ")
	}

	return fmt.Sprintf(`Analyze this content written for %s for the prompt %q and provide detailed grading.

CONTENT TO ANALYZE:
%s

Respond with a single JSON object with these fields:
- overall_grade (A-F)
- numerical_score (0-100)
- authority_score (0-100): how authoritative and expert the content appears
- relevance_score (0-100): how well it matches the prompt
- completeness_score (0-100): how comprehensive the coverage is
- strengths (array of 3-5 specific strengths)
- weaknesses (array of 3-5 specific areas for improvement)
- recommendations (array of 3-5 specific improvement suggestions)
- keyword_analysis (object with primary_keywords and missing_keywords arrays)
- competitive_analysis (string: how well it positions %s against %s)

Focus on practical, actionable feedback for improving AI search rankings.`, brandName, query, content, brandName, rivals)
}

// DiscoveryPrompt asks the assistant for count natural-language questions a
// user could put to an AI assistant about topic, avoiding the existing ones.
func DiscoveryPrompt(topic, brandName string, existing []string, languageCode string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d distinct questions that people ask AI assistants about: %s.\n", count, topic)
	if brandName != "" {
		fmt.Fprintf(&b, "The questions should be ones where %s or its competitors could be recommended, without naming %s.\n", brandName, brandName)
	}
	fmt.Fprintf(&b, "Write every question in language %s.\n", strings.ToUpper(languageCode))
	if len(existing) > 0 {
		b.WriteString("Do not repeat or paraphrase any of these existing questions:\n")
		for _, p := range existing {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	b.WriteString("Return one question per line, numbered, with no other text.")
	return b.String()
}

// MentionSearchPrompts returns the questions used to surface what assistants
// say about brandName, focused on keywords when given
func MentionSearchPrompts(brandName string, keywords []string) []string {
	focus := "its products and services"
	if len(keywords) > 0 {
		focus = strings.Join(keywords, ", ")
	}

	return []string{
		fmt.Sprintf("Search your knowledge for recent mentions, discussions and news about %s, focusing on %s. Give specific examples with context and any sources or links.", brandName, focus),
		fmt.Sprintf("What are people saying about %s in relation to %s? Include positive and negative opinions and any notable controversies.", brandName, focus),
		fmt.Sprintf("Analyze the public perception and reputation of %s regarding %s. Include customer feedback and media coverage.", brandName, focus),
		fmt.Sprintf("Find product reviews, news articles and expert opinions about %s related to %s. Include source context where available.", brandName, focus),
		fmt.Sprintf("What recent developments or announcements mention %s in connection with %s? Summarize each one.", brandName, focus),
	}
}

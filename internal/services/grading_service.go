package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/AI2HU/promptpulse/internal/llm"
	"github.com/AI2HU/promptpulse/internal/logger"
	"github.com/AI2HU/promptpulse/internal/models"
	"github.com/AI2HU/promptpulse/internal/normalize"
)

// ContentAnalyzer grades a piece of content against the prompt it targets
type ContentAnalyzer interface {
	Analyze(ctx context.Context, content, prompt string) (*models.ContentGrade, error)
}

const gradingTemperature = 0.3

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// GradingService grades content with one panel member and falls back to a
// word-count heuristic when the grader is unavailable or unparsable
type GradingService struct {
	registry     *llm.Registry
	grader       string
	defaultBrand string
	competitors  []string
	now          func() time.Time
	log          *logger.Logger
}

// NewGradingService creates a grading service. grader names the panel member
// used for grading; empty means the first member. competitors are the brands
// the content's positioning is judged against.
func NewGradingService(registry *llm.Registry, grader, defaultBrand string, competitors []string) *GradingService {
	return &GradingService{
		registry:     registry,
		grader:       grader,
		defaultBrand: defaultBrand,
		competitors:  append([]string(nil), competitors...),
		now:          time.Now,
		log:          logger.GetLogger().Named("grading"),
	}
}

// SetLogger replaces the service logger
func (s *GradingService) SetLogger(l *logger.Logger) {
	s.log = l
}

// Analyze grades content for prompt on behalf of the default brand
func (s *GradingService) Analyze(ctx context.Context, content, prompt string) (*models.ContentGrade, error) {
	return s.GradeContent(ctx, prompt, content, "")
}

// GradeContent grades content written for prompt. Only invalid input fails:
// grader errors degrade to the heuristic grade.
func (s *GradingService) GradeContent(ctx context.Context, prompt, content, brandName string) (*models.ContentGrade, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("content cannot be empty")
	}
	if brandName == "" {
		brandName = s.defaultBrand
	}

	grade, err := s.gradeWithLLM(ctx, prompt, content, brandName)
	if err != nil {
		s.log.Warning("grading with LLM failed, using heuristic grade: %v", err)
		grade = FallbackGrade(prompt, content, brandName, s.competitors)
	}

	// graders often skip the optional analyses
	if len(grade.KeywordAnalysis.PrimaryKeywords) == 0 && len(grade.KeywordAnalysis.MissingKeywords) == 0 {
		grade.KeywordAnalysis = KeywordCoverage(prompt, content)
	}
	if grade.CompetitiveAnalysis == "" {
		grade.CompetitiveAnalysis = CompetitivePositioning(content, brandName, s.competitors)
	}

	grade.Prompt = prompt
	grade.BrandName = brandName
	grade.ContentLength = len(content)
	grade.WordCount = len(strings.Fields(content))
	grade.GradedAt = s.now()
	return grade, nil
}

func (s *GradingService) gradeWithLLM(ctx context.Context, prompt, content, brandName string) (*models.ContentGrade, error) {
	member, err := s.graderMember()
	if err != nil {
		return nil, err
	}

	config := member.Config
	config.Temperature = gradingTemperature
	if config.MaxTokens < 1500 {
		config.MaxTokens = 1500
	}

	resp, err := member.Provider.Generate(ctx, llm.GradingPrompt(prompt, content, brandName, s.competitors), config)
	if err != nil {
		return nil, fmt.Errorf("grader %s: %w", member.Label, err)
	}

	return ParseGrade(resp.Text)
}

func (s *GradingService) graderMember() (*llm.Member, error) {
	if s.grader != "" {
		return s.registry.Get(s.grader)
	}
	members := s.registry.Members()
	if len(members) == 0 {
		return nil, ErrNoProviders
	}
	return members[0], nil
}

// gradeJSON mirrors the grader's JSON answer; pointers tell missing fields apart
type gradeJSON struct {
	OverallGrade      *string   `json:"overall_grade"`
	NumericalScore    *float64  `json:"numerical_score"`
	AuthorityScore    *float64  `json:"authority_score"`
	RelevanceScore    *float64  `json:"relevance_score"`
	CompletenessScore *float64  `json:"completeness_score"`
	Strengths         *[]string `json:"strengths"`
	Weaknesses        *[]string `json:"weaknesses"`
	Recommendations   *[]string `json:"recommendations"`

	KeywordAnalysis     *models.KeywordAnalysis `json:"keyword_analysis"`
	CompetitiveAnalysis json.RawMessage         `json:"competitive_analysis"`
}

// ParseGrade reads a grader answer. A JSON object is preferred; otherwise the
// grade letter and bulleted sections are scraped from free text. Missing
// fields take neutral defaults.
func ParseGrade(text string) (*models.ContentGrade, error) {
	grade := &models.ContentGrade{
		OverallGrade:    "B",
		NumericalScore:  75,
		Authority:       70,
		Relevance:       80,
		Completeness:    75,
		Strengths:       []string{"Well-structured content"},
		Weaknesses:      []string{"Could be more comprehensive"},
		Recommendations: []string{"Add more specific examples"},
		KeywordAnalysis: models.KeywordAnalysis{PrimaryKeywords: []string{}, MissingKeywords: []string{}},
	}

	match := jsonObjectPattern.FindString(text)
	if match == "" {
		parseGradeText(text, grade)
		return grade, nil
	}

	var parsed gradeJSON
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse grader answer: %w", err)
	}

	if parsed.OverallGrade != nil && *parsed.OverallGrade != "" {
		grade.OverallGrade = strings.ToUpper(strings.TrimSpace(*parsed.OverallGrade))
	}
	setScore(&grade.NumericalScore, parsed.NumericalScore)
	setScore(&grade.Authority, parsed.AuthorityScore)
	setScore(&grade.Relevance, parsed.RelevanceScore)
	setScore(&grade.Completeness, parsed.CompletenessScore)
	if parsed.Strengths != nil {
		grade.Strengths = *parsed.Strengths
	}
	if parsed.Weaknesses != nil {
		grade.Weaknesses = *parsed.Weaknesses
	}
	if parsed.Recommendations != nil {
		grade.Recommendations = *parsed.Recommendations
	}
	if parsed.KeywordAnalysis != nil {
		if parsed.KeywordAnalysis.PrimaryKeywords != nil {
			grade.KeywordAnalysis.PrimaryKeywords = parsed.KeywordAnalysis.PrimaryKeywords
		}
		if parsed.KeywordAnalysis.MissingKeywords != nil {
			grade.KeywordAnalysis.MissingKeywords = parsed.KeywordAnalysis.MissingKeywords
		}
	}
	grade.CompetitiveAnalysis = normalize.CompetitiveAnalysis(parsed.CompetitiveAnalysis)
	return grade, nil
}

func setScore(dst *int, v *float64) {
	if v != nil {
		*dst = int(math.Round(*v))
	}
}

func parseGradeText(text string, grade *models.ContentGrade) {
	sections := map[string]*[]string{
		"strengths":       &grade.Strengths,
		"weaknesses":      &grade.Weaknesses,
		"recommendations": &grade.Recommendations,
	}
	reset := map[string]bool{}

	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•"):
			if current == "" {
				continue
			}
			item := strings.TrimSpace(strings.TrimLeft(line, "-• "))
			if item == "" {
				continue
			}
			if !reset[current] {
				*sections[current] = nil
				reset[current] = true
			}
			*sections[current] = append(*sections[current], item)
		case strings.Contains(lower, "grade"):
			for _, letter := range []string{"A", "B", "C", "D", "F"} {
				if strings.Contains(line, letter) {
					grade.OverallGrade = letter
					break
				}
			}
		case strings.Contains(lower, "strength"):
			current = "strengths"
		case strings.Contains(lower, "weakness") || strings.Contains(lower, "improvement"):
			current = "weaknesses"
		case strings.Contains(lower, "recommend"):
			current = "recommendations"
		}
	}
}

// FallbackGrade grades content by length alone. Keywords come from the prompt
// and positioning from the competitors the content names.
func FallbackGrade(prompt, content, brandName string, competitors []string) *models.ContentGrade {
	words := len(strings.Fields(content))

	letter, score := "A", 90
	switch {
	case words < 100:
		letter, score = "D", 60
	case words < 300:
		letter, score = "C", 70
	case words < 600:
		letter, score = "B", 80
	}

	return &models.ContentGrade{
		OverallGrade:   letter,
		NumericalScore: score,
		Authority:      score - 5,
		Relevance:      score,
		Completeness:   score - 10,
		Strengths: []string{
			"Content addresses the topic",
			"Appropriate length for the subject",
		},
		Weaknesses: []string{
			"Could benefit from more specific examples",
			"Consider adding authoritative sources",
		},
		Recommendations: []string{
			"Add specific data and statistics",
			"Include expert quotes or citations",
			"Expand on competitive comparisons",
		},
		KeywordAnalysis:     KeywordCoverage(prompt, content),
		CompetitiveAnalysis: CompetitivePositioning(content, brandName, competitors),
	}
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "what": true, "which": true,
	"who": true, "how": true, "why": true, "when": true, "with": true, "does": true,
	"best": true, "most": true, "top": true, "that": true, "this": true, "from": true,
	"into": true, "about": true, "should": true, "can": true, "you": true, "your": true,
	"there": true, "their": true, "has": true, "have": true, "than": true, "all": true,
}

// KeywordCoverage splits the prompt's significant words into those the
// content uses and those it misses
func KeywordCoverage(prompt, content string) models.KeywordAnalysis {
	coverage := models.KeywordAnalysis{PrimaryKeywords: []string{}, MissingKeywords: []string{}}
	lower := strings.ToLower(content)

	seen := make(map[string]bool)
	words := strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len([]rune(w)) < 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		if strings.Contains(lower, w) {
			coverage.PrimaryKeywords = append(coverage.PrimaryKeywords, w)
		} else {
			coverage.MissingKeywords = append(coverage.MissingKeywords, w)
		}
	}
	return coverage
}

// CompetitivePositioning summarizes how content places brandName among competitors
func CompetitivePositioning(content, brandName string, competitors []string) string {
	lower := strings.ToLower(content)

	var named []string
	for _, c := range competitors {
		if c != "" && strings.Contains(lower, strings.ToLower(c)) {
			named = append(named, c)
		}
	}
	brandNamed := brandName != "" && strings.Contains(lower, strings.ToLower(brandName))

	switch {
	case len(named) == 0 && len(competitors) == 0:
		return fmt.Sprintf("Does not compare %s with any competitor", brandName)
	case len(named) == 0:
		rivals := competitors
		if len(rivals) > 3 {
			rivals = rivals[:3]
		}
		return fmt.Sprintf("Does not position %s against competitors such as %s", brandName, strings.Join(rivals, ", "))
	case !brandNamed:
		return fmt.Sprintf("Mentions %s without naming %s", strings.Join(named, ", "), brandName)
	default:
		return fmt.Sprintf("Compares %s with %s", brandName, strings.Join(named, ", "))
	}
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/promptpulse/internal/models"
	"github.com/AI2HU/promptpulse/internal/normalize"
	"github.com/AI2HU/promptpulse/internal/services"
	"github.com/AI2HU/promptpulse/internal/shared"
)

const defaultMentionLimit = 10

// The /api/brands endpoints answer with bare payloads, not the APIResponse
// envelope, since the backend client decodes them directly.

// listBrands handles GET /api/brands/
func (s *Server) listBrands(c *gin.Context) {
	c.JSON(http.StatusOK, []models.Brand{{
		Name:        s.cfg.Backend.DefaultBrand,
		Competitors: s.cfg.Backend.DefaultCompetitors,
	}})
}

// testPrompt handles POST /api/brands/test-prompt
func (s *Server) testPrompt(c *gin.Context) {
	var req normalize.TestPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if req.BrandName == "" {
		req.BrandName = s.cfg.Backend.DefaultBrand
	}
	if len(req.Competitors) == 0 {
		req.Competitors = s.cfg.Backend.DefaultCompetitors
	}

	evaluation, err := s.evaluation.Evaluate(c.Request.Context(), req.Prompt, req.BrandName, req.Competitors)
	if err != nil {
		s.errorResponse(c, statusForEvaluation(err), "Failed to test prompt: "+err.Error())
		return
	}

	resp := normalize.FromOutcome(evaluation.Outcome)
	resp.FailedProviders = evaluation.FailedProviders
	c.JSON(http.StatusOK, resp)
}

// gradeContent handles POST /api/brands/grade-content
func (s *Server) gradeContent(c *gin.Context) {
	var req normalize.GradeContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	grade, err := s.grading.GradeContent(c.Request.Context(), req.Prompt, req.Content, req.BrandName)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Failed to grade content: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, normalize.FromGrade(grade))
}

// realtimeMentions handles GET /api/brands/realtime-mentions
func (s *Server) realtimeMentions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultMentionLimit)))
	if err != nil || limit < 1 {
		limit = defaultMentionLimit
	}
	if limit > shared.MaxPageLimit {
		limit = shared.MaxPageLimit
	}

	report, err := s.visibility.SearchMentions(c.Request.Context(), services.MentionQuery{
		BrandName: c.Query("brand_name"),
		Keywords:  c.QueryArray("keywords"),
		Prompts:   c.QueryArray("prompts"),
	})
	if err != nil {
		s.errorResponse(c, statusForEvaluation(err), "Failed to search mentions: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, normalize.FromVisibility(report, limit))
}

func statusForEvaluation(err error) int {
	switch {
	case errors.Is(err, services.ErrNoProviders):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrAllProvidersFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

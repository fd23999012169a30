package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/promptpulse/internal/models"
	"github.com/AI2HU/promptpulse/internal/services"
)

// CreateAnalysisRequest starts a competitive analysis
type CreateAnalysisRequest struct {
	Prompts   []string `json:"prompts" binding:"required"`
	BrandName string   `json:"brand_name,omitempty"`
}

// createAnalysis handles POST /api/v1/analyses
func (s *Server) createAnalysis(c *gin.Context) {
	var req CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	report, err := s.analyses.RunAnalysis(c.Request.Context(), req.Prompts, req.BrandName)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Failed to run analysis: "+err.Error())
		return
	}

	message := "Analysis completed"
	if !report.Success {
		message = "No prompt could be analyzed"
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    report,
		Message: message,
	})
}

// getLatestAnalysis handles GET /api/v1/analyses/latest
func (s *Server) getLatestAnalysis(c *gin.Context) {
	report, ok := s.analyses.Latest(c.Query("brand"))
	if !ok {
		s.errorResponse(c, http.StatusNotFound, "No analysis available yet")
		return
	}

	s.successResponse(c, report)
}

// getProviderStandings handles GET /api/v1/analyses/latest/providers
func (s *Server) getProviderStandings(c *gin.Context) {
	report, ok := s.analyses.Latest(c.Query("brand"))
	if !ok {
		s.errorResponse(c, http.StatusNotFound, "No analysis available yet")
		return
	}

	s.successResponse(c, services.ProviderStandings(report))
}

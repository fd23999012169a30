package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/promptpulse/internal/llm"
	"github.com/AI2HU/promptpulse/internal/services"
)

// GeneratePromptsRequest asks the panel for new prompts about a topic
type GeneratePromptsRequest struct {
	Topic           string   `json:"topic" binding:"required"`
	BrandName       string   `json:"brand_name,omitempty"`
	LanguageCode    string   `json:"language_code,omitempty"`
	Count           int      `json:"count,omitempty"`
	ExistingPrompts []string `json:"existing_prompts,omitempty"`
	Generator       string   `json:"generator,omitempty"`
}

// generatePrompts handles POST /api/v1/prompts/generate
func (s *Server) generatePrompts(c *gin.Context) {
	var req GeneratePromptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	genConfig := &services.GenerationConfig{
		Generator:       req.Generator,
		LanguageCode:    req.LanguageCode,
		Topic:           req.Topic,
		BrandName:       req.BrandName,
		PromptCount:     req.Count,
		ExistingPrompts: req.ExistingPrompts,
	}
	if genConfig.LanguageCode == "" {
		genConfig.LanguageCode = "EN"
	}
	if genConfig.PromptCount == 0 {
		genConfig.PromptCount = 5
	}
	if genConfig.BrandName == "" {
		genConfig.BrandName = s.cfg.Backend.DefaultBrand
	}

	if err := s.generation.ValidateGenerationConfig(genConfig); err != nil {
		s.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	prompts, err := s.generation.GeneratePrompts(c.Request.Context(), genConfig)
	if err != nil {
		code := http.StatusBadGateway
		switch {
		case errors.Is(err, llm.ErrProviderNotFound):
			code = http.StatusBadRequest
		case errors.Is(err, services.ErrNoProviders):
			code = http.StatusServiceUnavailable
		}
		s.errorResponse(c, code, "Failed to generate prompts: "+err.Error())
		return
	}

	s.successResponse(c, prompts)
}

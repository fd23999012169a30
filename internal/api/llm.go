package api

import (
	"github.com/gin-gonic/gin"

	"github.com/AI2HU/promptpulse/internal/shared"
)

// LLMResponse describes one panel member with its API key masked
type LLMResponse struct {
	Name     string            `json:"name"`
	Provider string            `json:"provider"`
	Model    string            `json:"model"`
	APIKey   string            `json:"api_key,omitempty"`
	BaseURL  string            `json:"base_url,omitempty"`
	Config   map[string]string `json:"config,omitempty"`
	Enabled  bool              `json:"enabled"`
	Active   bool              `json:"active"` // registered in the running panel
}

// listLLMs handles GET /api/v1/llms
func (s *Server) listLLMs(c *gin.Context) {
	enabled := shared.ParseEnabledFilter(c)

	responses := make([]LLMResponse, 0, len(s.cfg.Panel))
	for _, member := range s.cfg.Panel {
		if enabled != nil && member.Enabled != *enabled {
			continue
		}

		_, err := s.registry.Get(member.Name)
		responses = append(responses, LLMResponse{
			Name:     member.Name,
			Provider: member.Provider,
			Model:    member.Model,
			APIKey:   shared.MaskAPIKey(member.APIKey),
			BaseURL:  member.BaseURL,
			Config:   member.Config,
			Enabled:  member.Enabled,
			Active:   err == nil,
		})
	}

	s.successResponse(c, responses)
}

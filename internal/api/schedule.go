package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/promptpulse/internal/shared"
)

// ScheduleResponse describes a configured periodic analysis
type ScheduleResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CronExpr  string     `json:"cron_expr"`
	BrandName string     `json:"brand_name"`
	Prompts   []string   `json:"prompts"`
	Enabled   bool       `json:"enabled"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}

// listSchedules handles GET /api/v1/schedules
func (s *Server) listSchedules(c *gin.Context) {
	enabled := shared.ParseEnabledFilter(c)
	page, limit := s.parsePagination(c)

	responses := make([]ScheduleResponse, 0)
	for _, schedule := range s.schedules.Schedules() {
		if enabled != nil && schedule.Enabled != *enabled {
			continue
		}

		brand := schedule.BrandName
		if brand == "" {
			brand = s.cfg.Backend.DefaultBrand
		}
		responses = append(responses, ScheduleResponse{
			ID:        schedule.ID,
			Name:      schedule.Name,
			CronExpr:  schedule.CronExpr,
			BrandName: brand,
			Prompts:   schedule.Prompts,
			Enabled:   schedule.Enabled,
			LastRun:   schedule.LastRun,
			NextRun:   schedule.NextRun,
		})
	}

	total := len(responses)
	start, end := shared.Paginate(total, page, limit)
	s.paginatedResponse(c, responses[start:end], page, limit, total)
}

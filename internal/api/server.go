// Package api serves the prompt evaluation backend and the management API.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/promptpulse/internal/analysis"
	"github.com/AI2HU/promptpulse/internal/config"
	"github.com/AI2HU/promptpulse/internal/llm"
	"github.com/AI2HU/promptpulse/internal/logger"
	"github.com/AI2HU/promptpulse/internal/models"
	"github.com/AI2HU/promptpulse/internal/services"
	"github.com/AI2HU/promptpulse/internal/shared"
)

// Version is reported by the health check
const Version = "1.0.0"

// ScheduleSource lists the configured schedules with their run times
type ScheduleSource interface {
	Schedules() []models.Schedule
}

type staticSchedules []models.Schedule

func (s staticSchedules) Schedules() []models.Schedule { return s }

// Server represents the API server
type Server struct {
	router     *gin.Engine
	cfg        *config.Config
	registry   *llm.Registry
	evaluation *services.EvaluationService
	grading    *services.GradingService
	generation *services.PromptGenerationService
	visibility *services.VisibilityService
	analyses   *services.AnalysisService
	schedules  ScheduleSource
	corsOrigin string
	log        *logger.Logger
}

// Option configures a Server
type Option func(*Server)

// WithAnalysisService shares an analysis service, and so its reports, with
// other components such as the scheduler
func WithAnalysisService(a *services.AnalysisService) Option {
	return func(s *Server) {
		s.analyses = a
	}
}

// WithScheduleSource replaces the schedules read from the configuration
func WithScheduleSource(src ScheduleSource) Option {
	return func(s *Server) {
		s.schedules = src
	}
}

// WithCORSOrigin overrides the configured CORS origin
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.corsOrigin = origin
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// NewServer creates a new API server answering with the given panel
func NewServer(cfg *config.Config, registry *llm.Registry, opts ...Option) *Server {
	s := &Server{
		cfg:        cfg,
		registry:   registry,
		schedules:  staticSchedules(cfg.Schedules),
		corsOrigin: cfg.Server.CORSOrigin,
		log:        logger.GetLogger().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.evaluation = services.NewEvaluationService(registry, cfg.Backend.DefaultCompetitors)
	s.evaluation.SetLogger(s.log)
	s.grading = services.NewGradingService(registry, "", cfg.Backend.DefaultBrand, cfg.Backend.DefaultCompetitors)
	s.grading.SetLogger(s.log)
	s.generation = services.NewPromptGenerationService(registry)
	s.visibility = services.NewVisibilityService(registry, cfg.Backend.DefaultBrand, cfg.Backend.DefaultCompetitors)
	s.visibility.SetLogger(s.log)

	if s.analyses == nil {
		aggregator := analysis.New(s.evaluation,
			analysis.WithMaxPrompts(cfg.Analysis.MaxPrompts),
			analysis.WithOpportunityLimit(cfg.Analysis.OpportunityLimit),
			analysis.WithCompetitors(cfg.Backend.DefaultCompetitors),
			analysis.WithLogger(s.log),
		)
		s.analyses = services.NewAnalysisService(aggregator, cfg.Backend.DefaultBrand)
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}

	gin.SetMode(gin.ReleaseMode)
	if logger.IsDebugEnabled() {
		gin.SetMode(gin.DebugMode)
	}
	s.router = gin.New()
	s.router.Use(gin.Recovery(), s.requestLogger(), s.cors())
	s.setupRoutes()

	return s
}

// Evaluation returns the service answering test-prompt requests
func (s *Server) Evaluation() *services.EvaluationService {
	return s.evaluation
}

// Analyses returns the service holding the latest reports
func (s *Server) Analyses() *services.AnalysisService {
	return s.analyses
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the API server
func (s *Server) Run(address string) error {
	s.log.Info("API server listening on %s", address)
	return s.router.Run(address)
}

func (s *Server) setupRoutes() {
	// Evaluation backend, consumed by the backend client
	brands := s.router.Group("/api/brands")
	{
		brands.GET("/", s.listBrands)
		brands.POST("/test-prompt", s.testPrompt)
		brands.POST("/grade-content", s.gradeContent)
		brands.GET("/realtime-mentions", s.realtimeMentions)
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.healthCheck)

		v1.GET("/llms", s.listLLMs)

		v1.POST("/analyses", s.createAnalysis)
		v1.GET("/analyses/latest", s.getLatestAnalysis)
		v1.GET("/analyses/latest/providers", s.getProviderStandings)

		v1.GET("/schedules", s.listSchedules)

		v1.POST("/prompts/generate", s.generatePrompts)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", s.corsOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// healthCheck handles GET /api/v1/health
func (s *Server) healthCheck(c *gin.Context) {
	if s.registry.Len() == 0 {
		c.JSON(http.StatusServiceUnavailable, models.APIResponse{
			Success: false,
			Error:   "No provider configured in the panel",
		})
		return
	}

	s.successResponse(c, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   Version,
		"providers": s.registry.Len(),
	})
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (s *Server) paginatedResponse(c *gin.Context, data interface{}, page, limit, total int) {
	c.JSON(http.StatusOK, models.PaginatedResponse{
		Data: data,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      int64(total),
			TotalPages: (total + limit - 1) / limit,
		},
	})
}

func (s *Server) parsePagination(c *gin.Context) (int, int) {
	return shared.ParsePagination(c)
}

// Address returns the listen address from the server configuration
func Address(cfg config.ServerConfig) string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AI2HU/promptpulse/internal/api"
	"github.com/AI2HU/promptpulse/internal/scheduler"
	"github.com/AI2HU/promptpulse/internal/services"
)

var (
	servePort      int
	serveHost      string
	corsOrigin     string
	serveSchedules bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"api"},
	Short:   "Start the evaluation backend and management API",
	Long: `Start the HTTP server that evaluates prompts with the configured LLM panel:
- POST /api/brands/test-prompt and /api/brands/grade-content for the backend client
- /api/v1 management endpoints (health, panel, analyses, schedules, prompt generation)

With --schedules, enabled schedules run in process and their reports are
served by /api/v1/analyses/latest.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run the API server on (default from config)")
	serveCmd.Flags().StringVarP(&serveHost, "host", "H", "", "Host to bind the API server to (default from config)")
	serveCmd.Flags().StringVarP(&corsOrigin, "cors-origin", "c", "", "CORS origin to allow (overrides config file, use '*' for all origins)")
	serveCmd.Flags().BoolVar(&serveSchedules, "schedules", false, "Run enabled schedules in process")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	registry, err := buildPanel()
	if err != nil {
		return err
	}

	opts := []api.Option{api.WithCORSOrigin(corsOrigin)}

	var sched *scheduler.Scheduler
	if serveSchedules {
		// Schedules evaluate in process through the served panel
		analyses := services.NewAnalysisService(newAggregator(services.NewEvaluationService(registry, cfg.Backend.DefaultCompetitors), nil), cfg.Backend.DefaultBrand)
		sched = scheduler.New(analyses, cfg.Schedules)
		opts = append(opts, api.WithAnalysisService(analyses), api.WithScheduleSource(sched))
	}

	server := api.NewServer(cfg, registry, opts...)
	address := api.Address(cfg.Server)

	fmt.Printf("🚀 Starting PromptPulse API Server\n")
	fmt.Printf("==================================\n")
	fmt.Printf("Host: %s\n", cfg.Server.Host)
	fmt.Printf("Port: %d\n", cfg.Server.Port)
	fmt.Printf("Panel: %d provider(s)\n", registry.Len())
	fmt.Printf("URL: http://%s/api/v1\n", address)
	fmt.Println()

	if registry.Len() == 0 {
		fmt.Printf("%s⚠️  No LLM provider enabled: test-prompt requests will fail with 503%s\n", WarningStyle, Reset)
	}

	if sched != nil {
		if err := sched.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		fmt.Printf("📅 Scheduler running %s schedule(s)\n", FormatCount(sched.Registered()))
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\n🛑 Shutting down API server...")
		if sched != nil {
			sched.Stop()
		}
		os.Exit(0)
	}()

	fmt.Println("🌐 API Server is running!")
	fmt.Println()
	fmt.Println("📚 Available Endpoints:")
	fmt.Println("  Evaluation backend:")
	fmt.Println("    GET    /api/brands/                  - Configured brand")
	fmt.Println("    POST   /api/brands/test-prompt       - Test a prompt across the panel")
	fmt.Println("    POST   /api/brands/grade-content     - Grade content for a prompt")
	fmt.Println()
	fmt.Println("  Management:")
	fmt.Println("    GET    /api/v1/health                - Health check")
	fmt.Println("    GET    /api/v1/llms                  - List panel members")
	fmt.Println("    POST   /api/v1/analyses              - Run a competitive analysis")
	fmt.Println("    GET    /api/v1/analyses/latest       - Latest analysis")
	fmt.Println("    GET    /api/v1/analyses/latest/providers - Provider standings")
	fmt.Println("    GET    /api/v1/schedules             - List schedules")
	fmt.Println("    POST   /api/v1/prompts/generate      - Generate prompts")
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop the server")

	return server.Run(address)
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AI2HU/promptpulse/internal/analysis"
	"github.com/AI2HU/promptpulse/internal/backend"
	"github.com/AI2HU/promptpulse/internal/config"
	"github.com/AI2HU/promptpulse/internal/llm"
	"github.com/AI2HU/promptpulse/internal/llm/panel"
	"github.com/AI2HU/promptpulse/internal/logger"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "promptpulse",
	Short: "Competitive visibility of a brand in AI assistant answers",
	Long: `PromptPulse puts the prompts your customers ask to a panel of AI assistants
and measures where your brand ranks against its competitors in the answers.

Run one-off analyses against an evaluation backend, serve that backend yourself
from a panel of LLM providers, grade content and schedule recurring analyses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip loading for the init command itself
		if cmd.Name() == "init" {
			return nil
		}

		if cfgFile == "" {
			cfgFile = config.GetConfigPath()
		}

		if config.Exists(cfgFile) {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		} else {
			cfg = config.DefaultConfig()
			fmt.Fprintf(os.Stderr, "%sNo configuration found at %s, using defaults. Run 'promptpulse init' to create one.%s\n", WarningStyle, cfgFile, Reset)
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger.Init(logger.ParseLogLevel(level), os.Stderr)

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by --version
func SetVersion(version string) {
	rootCmd.Version = version
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.promptpulse/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warning, error (overrides config file)")

	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(mentionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schedulerCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(panelCmd)
}

// newBackendClient returns a client of the configured evaluation backend
func newBackendClient() *backend.Client {
	return backend.New(cfg.Backend)
}

// newAggregator returns an aggregator testing prompts through the backend client
func newAggregator(tester analysis.PromptTester, competitors []string) *analysis.Aggregator {
	if len(competitors) == 0 {
		competitors = cfg.Backend.DefaultCompetitors
	}
	return analysis.New(tester,
		analysis.WithMaxPrompts(cfg.Analysis.MaxPrompts),
		analysis.WithOpportunityLimit(cfg.Analysis.OpportunityLimit),
		analysis.WithCompetitors(competitors),
	)
}

// buildPanel initializes the LLM providers of the enabled panel members
func buildPanel() (*llm.Registry, error) {
	registry, err := panel.Build(cfg.EnabledPanel())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM providers: %w", err)
	}
	return registry, nil
}

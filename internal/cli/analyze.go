package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	analyzeBrand       string
	analyzeCompetitors []string
	analyzeFile        string
	analyzeMaxPrompts  int
	analyzeJSON        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [prompt...]",
	Short: "Run a competitive analysis of prompts",
	Long: `Test a batch of prompts against the evaluation backend and aggregate how the
brand ranks across providers. Only the first prompts of the batch are tested
(see analysis.max_prompts); a prompt that fails is reported and skipped.`,
	Example: `  promptpulse analyze "best EV charging network" "EV tax incentives"
  promptpulse analyze --file prompts.txt --brand Rivian --competitors Ford,Tesla`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeBrand, "brand", "b", "", "Brand to analyze (default from config)")
	analyzeCmd.Flags().StringSliceVar(&analyzeCompetitors, "competitors", nil, "Competitors to compare against (default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Read prompts from a file, one per line")
	analyzeCmd.Flags().IntVar(&analyzeMaxPrompts, "max-prompts", 0, "Prompts tested per analysis (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	prompts := args
	if analyzeFile != "" {
		fromFile, err := readPromptsFile(analyzeFile)
		if err != nil {
			return err
		}
		prompts = append(prompts, fromFile...)
	}
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts given: pass prompts as arguments or use --file")
	}

	brand := analyzeBrand
	if brand == "" {
		brand = cfg.Backend.DefaultBrand
	}
	if analyzeMaxPrompts > 0 {
		cfg.Analysis.MaxPrompts = analyzeMaxPrompts
	}

	client := newBackendClient()
	ctx := context.Background()

	if !client.Ping(ctx) {
		fmt.Fprintf(os.Stderr, "%s⚠️  Evaluation backend at %s did not answer the health check%s\n", WarningStyle, client.BaseURL(), Reset)
	}

	if !analyzeJSON {
		tested := min(len(prompts), cfg.Analysis.MaxPrompts)
		fmt.Printf("%s🔄 Testing %s of %s prompt(s) for %s...%s\n", InfoStyle, FormatCount(tested), FormatCount(len(prompts)), FormatValue(brand), Reset)
	}

	start := time.Now()
	report := newAggregator(client, analyzeCompetitors).Run(ctx, prompts, brand)

	if analyzeJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}

	fmt.Printf("%sCompleted in %s%s\n\n", MetaStyle, formatDuration(time.Since(start)), Reset)
	printAnalysis(cmd.OutOrStdout(), report)

	if !report.Success {
		return fmt.Errorf("analysis failed: no prompt could be analyzed")
	}
	return nil
}

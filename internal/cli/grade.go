package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	gradePrompt string
	gradeFile   string
	gradeBrand  string
	gradeJSON   bool
)

var gradeCmd = &cobra.Command{
	Use:   "grade [content]",
	Short: "Grade content for a prompt",
	Long: `Grade how well a piece of content answers a prompt: authority, relevance and
completeness, with strengths, weaknesses and recommendations. Content is read
from the argument, from --file, or from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGrade,
}

func init() {
	gradeCmd.Flags().StringVarP(&gradePrompt, "prompt", "p", "", "Prompt the content targets (required)")
	gradeCmd.Flags().StringVarP(&gradeFile, "file", "f", "", "Read content from a file")
	gradeCmd.Flags().StringVarP(&gradeBrand, "brand", "b", "", "Brand the content is written for (default from config)")
	gradeCmd.Flags().BoolVar(&gradeJSON, "json", false, "Print the grade as JSON")
	_ = gradeCmd.MarkFlagRequired("prompt")
}

func runGrade(cmd *cobra.Command, args []string) error {
	var content string
	switch {
	case len(args) == 1:
		content = args[0]
	case gradeFile != "":
		data, err := os.ReadFile(gradeFile)
		if err != nil {
			return fmt.Errorf("failed to read content file: %w", err)
		}
		content = string(data)
	default:
		data, err := readAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read content from stdin: %w", err)
		}
		content = data
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("no content to grade")
	}

	grade, err := newBackendClient().GradeContent(context.Background(), gradePrompt, content, gradeBrand)
	if err != nil {
		return fmt.Errorf("failed to grade content: %w", err)
	}

	if gradeJSON {
		return printJSON(cmd.OutOrStdout(), grade)
	}
	printGrade(cmd.OutOrStdout(), grade)
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	mentionsBrand    string
	mentionsKeywords []string
	mentionsPrompts  []string
	mentionsLimit    int
	mentionsJSON     bool
)

var mentionsCmd = &cobra.Command{
	Use:   "mentions",
	Short: "Search the panel for brand mentions",
	Long: `Ask every panel provider about the brand and report how visible it is:
mention count, sentiment split, trending topics and a 0-100 visibility score.
Without --prompt a default set of search prompts is used.`,
	Args: cobra.NoArgs,
	RunE: runMentions,
}

func init() {
	mentionsCmd.Flags().StringVarP(&mentionsBrand, "brand", "b", "", "Brand to search for (default from config)")
	mentionsCmd.Flags().StringSliceVarP(&mentionsKeywords, "keyword", "k", nil, "Keyword to focus the search on (repeatable)")
	mentionsCmd.Flags().StringArrayVarP(&mentionsPrompts, "prompt", "p", nil, "Search prompt to use instead of the defaults (repeatable)")
	mentionsCmd.Flags().IntVarP(&mentionsLimit, "limit", "l", 10, "Maximum number of mentions to list")
	mentionsCmd.Flags().BoolVar(&mentionsJSON, "json", false, "Print the report as JSON")
}

func runMentions(cmd *cobra.Command, args []string) error {
	if mentionsLimit < 1 {
		return fmt.Errorf("--limit must be at least 1")
	}

	report, err := newBackendClient().RealtimeMentions(context.Background(), mentionsBrand, mentionsKeywords, mentionsPrompts, mentionsLimit)
	if err != nil {
		return fmt.Errorf("failed to search mentions: %w", err)
	}

	if mentionsJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}
	printVisibility(cmd.OutOrStdout(), report)
	return nil
}

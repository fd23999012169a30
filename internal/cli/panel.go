package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AI2HU/promptpulse/internal/llm/panel"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Inspect the LLM panel",
}

var panelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the LLM providers of the panel",
	RunE:  runPanelList,
}

func init() {
	panelCmd.AddCommand(panelListCmd)
}

func runPanelList(cmd *cobra.Command, args []string) error {
	if len(cfg.Panel) == 0 {
		fmt.Printf("%sNo LLM provider configured.%s\n", WarningStyle, Reset)
		fmt.Printf("Supported providers: %s\n", FormatSecondary(strings.Join(panel.SupportedProviders, ", ")))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%sNAME\tPROVIDER\tMODEL\tAPI KEY\tSTATUS%s\n", LabelStyle, Reset)
	for _, member := range cfg.Panel {
		status := FormatMeta("disabled")
		if member.Enabled {
			if _, err := panel.NewProvider(member); err != nil {
				status = FormatError("invalid: " + err.Error())
			} else {
				status = FormatSuccess("enabled")
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", member.Name, member.Provider, member.Model, maskSensitiveData(member.APIKey), status)
	}
	return w.Flush()
}

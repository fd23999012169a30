package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [schedule]",
	Short: "Run schedules once",
	Long:  `Run every enabled schedule, or the named one, immediately. Use 'promptpulse scheduler start' for scheduled execution.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCommand,
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sched := newScheduler()

	var names []string
	if len(args) == 1 {
		names = args
	} else {
		for _, schedule := range sched.Schedules() {
			if schedule.Enabled {
				names = append(names, schedule.ID)
			}
		}
	}

	if len(names) == 0 {
		return fmt.Errorf("no enabled schedules found")
	}

	failed := 0
	for _, name := range names {
		report, err := sched.ExecuteNow(ctx, name)
		if report != nil {
			printAnalysis(cmd.OutOrStdout(), report)
		}
		if err != nil {
			failed++
			fmt.Printf("%s❌ %v%s\n\n", ErrorStyle, err, Reset)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d schedule(s) failed", failed, len(names))
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AI2HU/promptpulse/internal/scheduler"
	"github.com/AI2HU/promptpulse/internal/services"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the scheduler",
	Long:  `Run the schedules of the configuration file: periodic competitive analyses of prompt watchlists.`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler",
	RunE:  runSchedulerStart,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured schedules",
	RunE:  runSchedulerList,
}

func init() {
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
}

// newScheduler runs schedules through the evaluation backend client
func newScheduler() *scheduler.Scheduler {
	analyses := services.NewAnalysisService(newAggregator(newBackendClient(), nil), cfg.Backend.DefaultBrand)
	return scheduler.New(analyses, cfg.Schedules)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Printf("%s🚀 Start Scheduler%s\n", HeaderStyle, Reset)
	fmt.Printf("%s================%s\n", DimStyle, Reset)
	fmt.Println()

	sched := newScheduler()
	enabled := 0
	for _, schedule := range sched.Schedules() {
		if schedule.Enabled {
			enabled++
		}
	}

	if enabled == 0 {
		fmt.Printf("%s❌ No enabled schedules found%s\n", ErrorStyle, Reset)
		fmt.Printf("%s💡 Add schedules to the 'schedules' section of %s%s\n", InfoStyle, cfgFile, Reset)
		return nil
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	fmt.Printf("%sStarted Schedules:%s\n", LabelStyle, Reset)
	for i, schedule := range sched.Schedules() {
		if schedule.NextRun == nil {
			continue
		}
		fmt.Printf("  %s%d. %s%s\n", CountStyle, i+1, Reset, FormatValue(schedule.Name))
		fmt.Printf("     %sCron: %s | Next run: %s%s\n", DimStyle, schedule.CronExpr, schedule.NextRun.Format("2006-01-02 15:04"), Reset)
	}
	fmt.Println()

	fmt.Printf("%s📅 Running %s schedule(s)%s\n", InfoStyle, FormatCount(sched.Registered()), Reset)
	fmt.Printf("%s📝 Press Ctrl+C to stop the scheduler%s\n", InfoStyle, Reset)
	fmt.Println()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	fmt.Printf("\n%s⏹️  Stopping scheduler...%s\n", InfoStyle, Reset)
	sched.Stop()
	fmt.Printf("%s✅ Scheduler stopped%s\n", SuccessStyle, Reset)

	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	if len(cfg.Schedules) == 0 {
		fmt.Printf("%sNo schedules configured.%s\n", WarningStyle, Reset)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%sNAME\tCRON\tBRAND\tPROMPTS\tENABLED%s\n", LabelStyle, Reset)
	for _, schedule := range cfg.Schedules {
		brand := schedule.BrandName
		if brand == "" {
			brand = cfg.Backend.DefaultBrand
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", schedule.Name, schedule.CronExpr, brand, len(schedule.Prompts), schedule.Enabled)
	}
	return w.Flush()
}

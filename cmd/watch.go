package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/artisan/internal/config"
	"github.com/manav03panchal/artisan/internal/daemon"
	"github.com/manav03panchal/artisan/internal/logging"
	"github.com/manav03panchal/artisan/internal/output"
	"github.com/manav03panchal/artisan/internal/scheduler"
)

var watchFlagNow bool

// watchCmd runs the scans on a schedule until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the reminder scans on a schedule",
	Long: `Run both escalation scans on the cron schedule from the config
(scheduler.spec, every 15 minutes by default) until interrupted.

A run that fires long after the previous one, as after the machine slept,
is skipped and the next one proceeds normally. Only one watcher runs per
database.

Examples:
  artisan watch
  artisan watch --now
  ARTISAN_SCHEDULER_SPEC="@hourly" artisan watch`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchFlagNow, "now", false, "Run the scans once immediately")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	pidFile := daemon.NewPIDFile(daemon.PIDFilePath(filepath.Join(xdg.StateHome, config.AppName), ctx.DB.Path()))
	if err := pidFile.Acquire(); err != nil {
		return err
	}
	defer pidFile.Release()

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scheduler.New(ctx.Engine, ctx.Scope(),
		scheduler.WithSpec(ctx.Config.Scheduler.Spec),
		scheduler.WithSleepThreshold(ctx.Config.Scheduler.SleepThreshold),
		scheduler.WithClock(ctx.Clock),
		scheduler.WithReporter(reportRun),
	)

	if watchFlagNow {
		reportRun(s.RunNow(sigCtx))
	}
	if err := s.Start(sigCtx); err != nil {
		return err
	}

	if !ctx.IsJSON() {
		ctx.CLIFormatter().Muted("Watching; next run " + output.FormatTimeShort(s.NextRun()) + ". Press Ctrl+C to stop.")
	}
	<-sigCtx.Done()
	s.Stop()
	return nil
}

// reportRun prints the outcome of one scheduled run.
func reportRun(run scheduler.Run) {
	if run.Stale {
		return
	}
	if ctx.IsJSON() {
		if err := ctx.JSONFormatter().PrintScan(output.NewScanResponse(run.RunID, &run.Invoices, &run.Interventions)); err != nil {
			logging.Error("printing scan result", logging.KeyError, err)
		}
		return
	}
	cli := ctx.CLIFormatter()
	cli.Title(output.FormatTimeShort(run.At))
	cli.PrintInvoiceScan(run.Invoices)
	cli.PrintInterventionScan(run.Interventions)
	if run.Err != nil {
		cli.Error(run.Err.Error())
	}
}

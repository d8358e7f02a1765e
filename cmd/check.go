package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/artisan/internal/escalation"
	"github.com/manav03panchal/artisan/internal/logging"
	"github.com/manav03panchal/artisan/internal/output"
)

// checkCmd runs the escalation scans once.
var checkCmd = &cobra.Command{
	Use:   "check [invoices|interventions]",
	Short: "Issue due reminders now",
	Long: `Run the overdue invoice scan and the intervention reminder scan once.
Running it again the same day issues nothing new.

Examples:
  artisan check
  artisan check invoices
  artisan check interventions --format json`,
	ValidArgs: []string{"invoices", "interventions"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE:      runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)
	scope := ctx.Scope()
	now := ctx.Now()

	which := ""
	if len(args) > 0 {
		which = args[0]
	}

	var (
		invRes *escalation.InvoiceScanResult
		ivRes  *escalation.InterventionScanResult
		errs   []error
	)
	if which == "" || which == "invoices" {
		res, err := ctx.Engine.RunOverdueInvoiceScan(runCtx, scope, now)
		invRes = &res
		errs = append(errs, err)
	}
	if which == "" || which == "interventions" {
		res, err := ctx.Engine.RunInterventionReminderScan(runCtx, scope, now)
		ivRes = &res
		errs = append(errs, err)
	}

	if ctx.IsJSON() {
		resp := output.NewScanResponse(logging.RunIDFromContext(runCtx), invRes, ivRes)
		if err := ctx.JSONFormatter().PrintScan(resp); err != nil {
			return err
		}
	} else {
		cli := ctx.CLIFormatter()
		if invRes != nil {
			cli.PrintInvoiceScan(*invRes)
		}
		if ivRes != nil {
			cli.PrintInterventionScan(*ivRes)
		}
	}
	return errors.Join(errs...)
}

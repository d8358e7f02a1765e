package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/artisan/internal/clock"
	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/escalation"
	"github.com/manav03panchal/artisan/internal/model"
	"github.com/manav03panchal/artisan/internal/parser"
	"github.com/manav03panchal/artisan/internal/storage"
	"github.com/manav03panchal/artisan/internal/validate"
)

// interventionCmd represents the intervention command.
var interventionCmd = &cobra.Command{
	Use:     "intervention",
	Aliases: []string{"interventions", "iv", "job"},
	Short:   "Schedule interventions and update their status",
	Long: `Schedule on-site interventions, list them and record their outcome.

A status must fit the scheduled day: past interventions can only be completed
or cancelled, future ones can only be todo or cancelled. Today accepts all.

Examples:
  artisan intervention add "Boiler service" --at "tomorrow 9am" --duration 90 --client dup
  artisan intervention list --days 14
  artisan intervention status 0193 done
  artisan intervention status 0193 0194 cancelled`,
	RunE: runInterventionList,
}

// Intervention subcommand flags.
var (
	interventionAddFlagAt       string
	interventionAddFlagDuration string
	interventionAddFlagClient   string
	interventionAddFlagAddress  string

	interventionStatusFlagAutoCorrect bool

	interventionListFlagFrom   string
	interventionListFlagDays   int
	interventionListFlagStatus string
	interventionListFlagAll    bool
)

// interventionAddCmd schedules an intervention.
var interventionAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Schedule an intervention",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInterventionAdd,
}

// interventionStatusCmd changes the status of one or more interventions.
var interventionStatusCmd = &cobra.Command{
	Use:   "status ID... STATUS",
	Short: "Change the status of interventions",
	Long: `Change the status of one or more interventions. With several ids the
change is all or nothing: if any intervention cannot take the status, none
is updated.

Statuses: todo, completed (done), cancelled`,
	Args: cobra.MinimumNArgs(2),
	RunE: runInterventionStatus,
}

// interventionListCmd lists interventions.
var interventionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List interventions",
	Args:    cobra.NoArgs,
	RunE:    runInterventionList,
}

func init() {
	interventionAddCmd.Flags().StringVarP(&interventionAddFlagAt, "at", "a", "", "When it starts, e.g. 'tomorrow 9am'")
	interventionAddCmd.Flags().StringVarP(&interventionAddFlagDuration, "duration", "d", "60", "Length, e.g. 90, 45m, 1h30m")
	interventionAddCmd.Flags().StringVarP(&interventionAddFlagClient, "client", "c", "", "Client id or id prefix")
	interventionAddCmd.Flags().StringVar(&interventionAddFlagAddress, "address", "", "Site address")
	interventionAddCmd.MarkFlagRequired("at")

	interventionStatusCmd.Flags().BoolVar(&interventionStatusFlagAutoCorrect, "auto-correct", false,
		"Apply the allowed fallback instead of failing (single intervention)")

	interventionListCmd.Flags().StringVar(&interventionListFlagFrom, "from", "today", "First day to list")
	interventionListCmd.Flags().IntVar(&interventionListFlagDays, "days", 7, "Number of days to list")
	interventionListCmd.Flags().StringVarP(&interventionListFlagStatus, "status", "s", "", "Only this status")
	interventionListCmd.Flags().BoolVar(&interventionListFlagAll, "all", false, "List every intervention")

	interventionCmd.AddCommand(interventionAddCmd)
	interventionCmd.AddCommand(interventionStatusCmd)
	interventionCmd.AddCommand(interventionListCmd)
	rootCmd.AddCommand(interventionCmd)
}

func runInterventionAdd(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)
	now := ctx.Now()

	at, err := parser.ParseTimestamp(interventionAddFlagAt, now)
	if err != nil {
		return err
	}
	minutes, err := parser.ParseMinutes(interventionAddFlagDuration)
	if err != nil {
		return err
	}
	clientID, err := resolveClientID(runCtx, interventionAddFlagClient)
	if err != nil {
		return err
	}

	iv := model.NewIntervention(ctx.Config.ArtisanID, clientID, validate.Sanitize(strings.Join(args, " ")), at, minutes)
	iv.Address = validate.Sanitize(interventionAddFlagAddress)
	if err := validate.Title(iv.Title); err != nil {
		return err
	}
	if err := validate.Address(iv.Address); err != nil {
		return err
	}
	if err := ctx.Engine.Schedule(runCtx, iv, now); err != nil {
		return err
	}
	ctx.Debugf(runCtx, "scheduled intervention %s at %s", iv.ID, iv.ScheduledAt.Format(time.RFC3339))

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintInterventions([]*model.Intervention{iv})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Scheduled %s on %s (%s)",
		iv.Title, iv.ScheduledAt.Format("Mon 2 Jan 15:04"), model.ShortID(iv.ID)))
	return nil
}

func runInterventionStatus(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)
	refs, statusArg := args[:len(args)-1], args[len(args)-1]

	status, err := parseStatus(statusArg)
	if err != nil {
		return err
	}

	if len(refs) > 1 {
		if interventionStatusFlagAutoCorrect {
			return apperrors.NewUserError("--auto-correct applies to a single intervention",
				"Run the command once per intervention, or drop --auto-correct.")
		}
		updates, err := ctx.Engine.BulkUpdateStatus(runCtx, refs, status, ctx.Now())
		printStatusUpdates(updates)
		return err
	}

	u, err := ctx.Engine.UpdateStatus(runCtx, refs[0], status, ctx.Now(), interventionStatusFlagAutoCorrect)
	if u != nil {
		printStatusUpdates([]*escalation.StatusUpdate{u})
	}
	return err
}

func printStatusUpdates(updates []*escalation.StatusUpdate) {
	if len(updates) == 0 {
		return
	}
	if ctx.IsJSON() {
		if len(updates) == 1 {
			ctx.JSONFormatter().PrintStatusUpdate(updates[0])
			return
		}
		ctx.JSONFormatter().PrintStatusUpdates(updates)
		return
	}
	cli := ctx.CLIFormatter()
	for _, u := range updates {
		cli.PrintStatusUpdate(u)
	}
}

func runInterventionList(cmd *cobra.Command, args []string) error {
	runCtx := runContext(cmd)
	filter := storage.InterventionFilter{ArtisanID: ctx.Config.ArtisanID}

	if interventionListFlagStatus != "" {
		status, err := parseStatus(interventionListFlagStatus)
		if err != nil {
			return err
		}
		filter.Status = status
	}
	if !interventionListFlagAll {
		from, err := parser.ParseDay(interventionListFlagFrom, ctx.Now())
		if err != nil {
			return err
		}
		filter.From = from
		filter.To = clock.StartOfDay(from.AddDate(0, 0, max(interventionListFlagDays, 1)))
	}

	ivs, err := ctx.Interventions.List(runCtx, filter)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintInterventions(ivs)
	}
	ctx.CLIFormatter().PrintInterventions(ivs)
	return nil
}

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/artisan/internal/clock"
	"github.com/manav03panchal/artisan/internal/layout"
	"github.com/manav03panchal/artisan/internal/parser"
	"github.com/manav03panchal/artisan/internal/storage"
)

// calendarCmd represents the calendar command.
var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Show interventions laid out on a calendar",
	Long: `Show interventions laid out in columns. Interventions closer than the
layout buffer share a group and are placed side by side.

Examples:
  artisan calendar
  artisan calendar day tomorrow
  artisan calendar week "next monday"
  artisan calendar month 2026-06-01`,
	RunE: runCalendarDay,
}

var calendarDayCmd = &cobra.Command{
	Use:   "day [DATE]",
	Short: "Show one day",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCalendarDay,
}

var calendarWeekCmd = &cobra.Command{
	Use:   "week [DATE]",
	Short: "Show the week (Monday to Sunday) containing DATE",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCalendarWeek,
}

var calendarMonthCmd = &cobra.Command{
	Use:   "month [DATE]",
	Short: "Show the first interventions of every day of the month",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCalendarMonth,
}

func init() {
	calendarCmd.AddCommand(calendarDayCmd)
	calendarCmd.AddCommand(calendarWeekCmd)
	calendarCmd.AddCommand(calendarMonthCmd)
	rootCmd.AddCommand(calendarCmd)
}

func calendarDate(args []string) (time.Time, error) {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}
	return parser.ParseDay(input, ctx.Now())
}

// loadEvents returns the calendar events starting in [from, to).
func loadEvents(cmd *cobra.Command, from, to time.Time) ([]layout.Event, map[string]string, error) {
	ivs, err := ctx.Interventions.List(runContext(cmd), storage.InterventionFilter{
		ArtisanID: ctx.Config.ArtisanID,
		From:      from,
		To:        to,
	})
	if err != nil {
		return nil, nil, err
	}
	events, titles := calendarEvents(ivs)
	return events, titles, nil
}

func runCalendarDay(cmd *cobra.Command, args []string) error {
	day, err := calendarDate(args)
	if err != nil {
		return err
	}
	events, titles, err := loadEvents(cmd, day, clock.NextDay(day))
	if err != nil {
		return err
	}

	dl := layout.Day(events, day, ctx.LayoutOptions())
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintCalendar([]layout.DayLayout{dl}, titles)
	}
	ctx.CLIFormatter().PrintDay(dl, titles)
	return nil
}

func runCalendarWeek(cmd *cobra.Command, args []string) error {
	day, err := calendarDate(args)
	if err != nil {
		return err
	}
	start := layout.WeekStart(day)
	events, titles, err := loadEvents(cmd, start, start.AddDate(0, 0, 7))
	if err != nil {
		return err
	}

	days := layout.Week(events, day, ctx.LayoutOptions())
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintCalendar(days, titles)
	}
	ctx.CLIFormatter().PrintWeek(days, titles)
	return nil
}

func runCalendarMonth(cmd *cobra.Command, args []string) error {
	day, err := calendarDate(args)
	if err != nil {
		return err
	}
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	events, titles, err := loadEvents(cmd, first, first.AddDate(0, 1, 0))
	if err != nil {
		return err
	}

	cells := layout.MonthTop(events, first, ctx.Config.Layout.MonthLimit)
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintMonth(cells)
	}
	ctx.CLIFormatter().PrintMonth(cells, titles)
	return nil
}

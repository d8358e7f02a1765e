package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/artisan/internal/config"
	"github.com/manav03panchal/artisan/internal/output"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg", "settings"},
	Short:   "Show the effective configuration",
	Long: `Show the configuration in effect after applying the config file and
ARTISAN_* environment variables over the defaults.

Keys:
  artisan_id                       Artisan the records belong to
  escalation.first_after_days      Days past due of the first reminder (0)
  escalation.second_after_days     Days past due of the second reminder (7)
  escalation.final_after_days      Days past due of the final notice (14)
  escalation.workers               Invoices processed in parallel (1)
  layout.buffer                    Gap that keeps interventions in one column (2h)
  layout.margin                    Gap between columns, percent (1)
  layout.month_limit               Interventions listed per month cell (3)
  scheduler.spec                   Watch schedule, cron syntax ("0 */15 * * * *")
  scheduler.sleep_threshold        Gap after which a watch run is skipped (1h)
  storage.path                     Badger directory
  storage.backend                  Escalation log store: badger or sqlite
  storage.sqlite_path              SQLite file of the sqlite backend
  log.level, log.json              Logging

Examples:
  artisan config
  artisan config path
  ARTISAN_ESCALATION_WORKERS=4 artisan config`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = config.DefaultConfigPath()
		}
		cmd.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	c := ctx.Config
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"artisan_id": c.ArtisanID,
			"escalation": map[string]int{
				"first_after_days":  c.Escalation.FirstAfterDays,
				"second_after_days": c.Escalation.SecondAfterDays,
				"final_after_days":  c.Escalation.FinalAfterDays,
				"workers":           c.Escalation.Workers,
			},
			"layout": map[string]any{
				"buffer":      c.Layout.Buffer.String(),
				"margin":      c.Layout.Margin,
				"month_limit": c.Layout.MonthLimit,
			},
			"scheduler": map[string]string{
				"spec":            c.Scheduler.Spec,
				"sleep_threshold": c.Scheduler.SleepThreshold.String(),
			},
			"storage": map[string]string{
				"path":        c.Storage.Path,
				"backend":     c.Storage.Backend,
				"sqlite_path": c.Storage.SQLitePath,
			},
			"log": map[string]any{
				"level": c.Log.Level,
				"json":  c.Log.JSON,
			},
		})
	}

	cli := ctx.CLIFormatter()
	rows := []output.TableRow{
		{Columns: []string{"artisan_id", c.ArtisanID}},
		{Columns: []string{"escalation.thresholds", fmt.Sprintf("%d, %d, %d days",
			c.Escalation.FirstAfterDays, c.Escalation.SecondAfterDays, c.Escalation.FinalAfterDays)}},
		{Columns: []string{"escalation.workers", fmt.Sprint(c.Escalation.Workers)}},
		{Columns: []string{"layout.buffer", c.Layout.Buffer.String()}},
		{Columns: []string{"layout.margin", fmt.Sprintf("%g%%", c.Layout.Margin)}},
		{Columns: []string{"layout.month_limit", fmt.Sprint(c.Layout.MonthLimit)}},
		{Columns: []string{"scheduler.spec", c.Scheduler.Spec}},
		{Columns: []string{"scheduler.sleep_threshold", c.Scheduler.SleepThreshold.String()}},
		{Columns: []string{"storage.path", c.Storage.Path}},
		{Columns: []string{"storage.backend", c.Storage.Backend}},
		{Columns: []string{"storage.sqlite_path", c.Storage.SQLitePath}},
		{Columns: []string{"log.level", c.Log.Level}},
	}
	cli.PrintTable([]string{"KEY", "VALUE"}, rows)
	return nil
}

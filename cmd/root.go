// Package cmd provides the CLI commands for artisan.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/artisan/internal/logging"
	"github.com/manav03panchal/artisan/internal/output"
	"github.com/manav03panchal/artisan/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagConfig string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "artisan",
	Short: "Schedule interventions and chase unpaid invoices",
	Long: `Artisan keeps a craftsman's calendar of on-site interventions and
escalates reminders for overdue invoices.

Examples:
  artisan client add "Dupont"
  artisan intervention add "Boiler service" --at "tomorrow 9am" --duration 90 --client dup
  artisan calendar week
  artisan invoice add F-2026-014 --client dup --amount 1250 --due "in 30 days"
  artisan check
  artisan watch`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for commands that never touch storage
		switch cmd.Name() {
		case "completion", "help", "version", "path":
			return nil
		}

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		colorMode, err := output.ParseColorMode(flagColor)
		if err != nil {
			return err
		}

		opts := runtime.DefaultOptions()
		opts.ConfigPath = flagConfig
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		ctx, err = runtime.New(opts)
		if err != nil {
			return err
		}
		ctx.Formatter.Writer = cmd.OutOrStdout()

		initLogging(cmd)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeContext()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show today's calendar
		return runCalendarDay(cmd, nil)
	},
}

// initLogging applies the configured log level. --debug wins, and watch logs
// each run at info level.
func initLogging(cmd *cobra.Command) {
	cfg := logging.DefaultConfig()
	switch {
	case flagDebug:
		cfg = logging.DebugConfig()
	case cmd.Name() == "watch":
		cfg = logging.WatchConfig()
		if lvl := logging.ParseLevel(ctx.Config.Log.Level); lvl < cfg.Level {
			cfg.Level = lvl
		}
	default:
		cfg.Level = logging.ParseLevel(ctx.Config.Log.Level)
	}
	cfg.JSON = cfg.JSON || ctx.Config.Log.JSON
	cfg.Output = cmd.ErrOrStderr()
	logging.Init(cfg)
}

func closeContext() error {
	if ctx == nil {
		return nil
	}
	err := ctx.Close()
	ctx = nil
	return err
}

// runContext derives the context of one command run, tagged with a run id.
func runContext(cmd *cobra.Command) context.Context {
	return logging.NewRunContext(cmd.Context())
}

// Execute adds all child commands to the root command and runs it. Errors are
// printed here, as JSON when --format json is set.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
		closeContext()
	}
	return err
}

func printError(err error) {
	if ctx != nil && ctx.IsJSON() {
		ctx.JSONFormatter().PrintError(err.Error(), runtime.Suggestion(err))
		return
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error: "+runtime.FormatError(err, flagDebug))
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/artisan/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("artisan %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		cmd.Println("")
		cmd.Println("Based on Zeit (https://github.com/mrusme/zeit)")
		cmd.Println("Licensed under SEGV License v1.0")
	},
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if runtime.IsDiskFullError(err) {
		return 3
	}
	return 1
}

// Exit terminates the process with the status matching err.
func Exit(err error) {
	os.Exit(exitCode(err))
}

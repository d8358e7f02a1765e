// Package config provides the runtime configuration of artisan: built-in
// defaults, overridden by an optional YAML file, overridden by ARTISAN_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// AppName names the config and data directories.
const AppName = "artisan"

// EnvPrefix prefixes environment overrides, e.g. ARTISAN_ESCALATION_WORKERS.
const EnvPrefix = "ARTISAN"

// Storage backends for the escalation log.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// CronParser parses the watch schedule; the seconds field is optional.
var CronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// RuntimeConfig holds every tunable value of the engine and the CLI.
type RuntimeConfig struct {
	// ArtisanID scopes every record this installation reads or writes.
	ArtisanID string `mapstructure:"artisan_id"`

	Escalation EscalationConfig `mapstructure:"escalation"`
	Layout     LayoutConfig     `mapstructure:"layout"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Log        LogConfig        `mapstructure:"log"`
}

// EscalationConfig tunes the reminder scans.
type EscalationConfig struct {
	// Days past the due date at which each invoice reminder tier fires.
	// Default: 0, 7, 14
	FirstAfterDays  int `mapstructure:"first_after_days"`
	SecondAfterDays int `mapstructure:"second_after_days"`
	FinalAfterDays  int `mapstructure:"final_after_days"`

	// Workers bounds how many invoices are processed concurrently.
	// Default: 1
	Workers int `mapstructure:"workers"`
}

// LayoutConfig tunes the calendar column packing.
type LayoutConfig struct {
	// Buffer is the minimum gap between two interventions sharing a column.
	// Default: 2h
	Buffer time.Duration `mapstructure:"buffer"`

	// Margin is the gap between columns, in percent of the day width.
	// Default: 1
	Margin float64 `mapstructure:"margin"`

	// MonthLimit is how many interventions a month cell lists.
	// Default: 3
	MonthLimit int `mapstructure:"month_limit"`
}

// SchedulerConfig tunes the watch loop.
type SchedulerConfig struct {
	// Spec is the cron schedule of the scans.
	// Default: every 15 minutes
	Spec string `mapstructure:"spec"`

	// SleepThreshold is the time gap that indicates the machine was asleep.
	// A tick arriving later than this after the previous one is skipped.
	// Default: 1h
	SleepThreshold time.Duration `mapstructure:"sleep_threshold"`
}

// StorageConfig locates the databases.
type StorageConfig struct {
	// Path is the Badger directory holding clients, interventions and invoices.
	Path string `mapstructure:"path"`

	// Backend selects the escalation log store: badger or sqlite.
	// Default: badger
	Backend string `mapstructure:"backend"`

	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/artisan/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	return &RuntimeConfig{
		ArtisanID: "default",
		Escalation: EscalationConfig{
			FirstAfterDays:  0,
			SecondAfterDays: 7,
			FinalAfterDays:  14,
			Workers:         1,
		},
		Layout: LayoutConfig{
			Buffer:     2 * time.Hour,
			Margin:     1,
			MonthLimit: 3,
		},
		Scheduler: SchedulerConfig{
			Spec:           "0 */15 * * * *",
			SleepThreshold: time.Hour,
		},
		Storage: StorageConfig{
			Path:       filepath.Join(dataDir, "db"),
			Backend:    BackendBadger,
			SQLitePath: filepath.Join(dataDir, "escalation.db"),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *RuntimeConfig) {
	v.SetDefault("artisan_id", d.ArtisanID)

	v.SetDefault("escalation.first_after_days", d.Escalation.FirstAfterDays)
	v.SetDefault("escalation.second_after_days", d.Escalation.SecondAfterDays)
	v.SetDefault("escalation.final_after_days", d.Escalation.FinalAfterDays)
	v.SetDefault("escalation.workers", d.Escalation.Workers)

	v.SetDefault("layout.buffer", d.Layout.Buffer)
	v.SetDefault("layout.margin", d.Layout.Margin)
	v.SetDefault("layout.month_limit", d.Layout.MonthLimit)

	v.SetDefault("scheduler.spec", d.Scheduler.Spec)
	v.SetDefault("scheduler.sleep_threshold", d.Scheduler.SleepThreshold)

	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

// Load reads the YAML file at path, when it exists, and applies environment
// overrides. An empty path uses DefaultConfigPath.
func Load(path string) (*RuntimeConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	v := viper.New()
	setDefaults(v, DefaultRuntimeConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &RuntimeConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *RuntimeConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.ArtisanID) == "" {
		errs = append(errs, errors.New("artisan_id must not be empty"))
	}

	e := c.Escalation
	if e.FirstAfterDays < 0 || e.SecondAfterDays <= e.FirstAfterDays || e.FinalAfterDays <= e.SecondAfterDays {
		errs = append(errs, fmt.Errorf("escalation thresholds must be increasing from 0: got %d, %d, %d",
			e.FirstAfterDays, e.SecondAfterDays, e.FinalAfterDays))
	}
	if e.Workers < 1 {
		errs = append(errs, fmt.Errorf("escalation.workers must be at least 1, got %d", e.Workers))
	}

	if c.Layout.Buffer < 0 {
		errs = append(errs, fmt.Errorf("layout.buffer must not be negative, got %s", c.Layout.Buffer))
	}
	if c.Layout.Margin < 0 || c.Layout.Margin >= 50 {
		errs = append(errs, fmt.Errorf("layout.margin must be in [0, 50), got %g", c.Layout.Margin))
	}

	if _, err := CronParser.Parse(c.Scheduler.Spec); err != nil {
		errs = append(errs, fmt.Errorf("scheduler.spec %q: %w", c.Scheduler.Spec, err))
	}

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q",
			BackendBadger, BackendSQLite, c.Storage.Backend))
	}

	return errors.Join(errs...)
}

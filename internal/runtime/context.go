// Package runtime wires configuration, storage, the escalation engine and
// output formatting into the context shared by every artisan command.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/manav03panchal/artisan/internal/clock"
	"github.com/manav03panchal/artisan/internal/config"
	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/escalation"
	"github.com/manav03panchal/artisan/internal/layout"
	"github.com/manav03panchal/artisan/internal/logging"
	"github.com/manav03panchal/artisan/internal/output"
	"github.com/manav03panchal/artisan/internal/reminder"
	"github.com/manav03panchal/artisan/internal/storage"
	"github.com/manav03panchal/artisan/internal/storage/sqlite"
)

// MemoryPath as storage.path keeps every store in memory.
const MemoryPath = ":memory:"

// Context holds the application runtime context.
type Context struct {
	Config    *config.RuntimeConfig
	DB        *storage.DB
	Log       storage.EscalationLog
	Engine    *escalation.Engine
	Formatter *output.Formatter
	Clock     clock.Clock

	// Repositories
	Clients       *storage.ClientRepo
	Interventions *storage.InterventionRepo
	Invoices      *storage.InvoiceRepo

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	// Config is used as is when set; otherwise ConfigPath is loaded.
	Config     *config.RuntimeConfig
	ConfigPath string
	InMemory   bool
	Format     output.Format
	ColorMode  output.ColorMode
	Debug      bool
	Clock      clock.Clock
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
		Clock:     clock.Real{},
	}
}

// New creates a new runtime context.
func New(opts Options) (*Context, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	inMemory := opts.InMemory || cfg.Storage.Path == MemoryPath

	db, err := storage.Open(storage.Options{
		Path:     cfg.Storage.Path,
		InMemory: inMemory,
	})
	if err != nil {
		return nil, WrapDiskFullError(
			apperrors.NewSystemErrorWithOp("open "+cfg.Storage.Path, "database unavailable", err), "open", cfg.Storage.Path)
	}

	escLog, err := openEscalationLog(cfg, db, inMemory)
	if err != nil {
		db.Close()
		return nil, err
	}

	clients := storage.NewClientRepo(db)
	interventions := storage.NewInterventionRepo(db)
	invoices := storage.NewInvoiceRepo(db)

	esc := cfg.Escalation
	engine := escalation.New(invoices, interventions, clients, escLog,
		escalation.WithPolicy(reminder.NewPolicy(esc.FirstAfterDays, esc.SecondAfterDays, esc.FinalAfterDays)),
		escalation.WithWorkers(esc.Workers),
		escalation.WithClock(opts.Clock),
	)

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		Config:        cfg,
		DB:            db,
		Log:           escLog,
		Engine:        engine,
		Formatter:     formatter,
		Clock:         opts.Clock,
		Clients:       clients,
		Interventions: interventions,
		Invoices:      invoices,
		Debug:         opts.Debug,
	}, nil
}

// openEscalationLog picks the reminder and notification store. The badger
// backend shares db; sqlite opens its own file.
func openEscalationLog(cfg *config.RuntimeConfig, db *storage.DB, inMemory bool) (storage.EscalationLog, error) {
	if cfg.Storage.Backend != config.BackendSQLite {
		return storage.NewNotificationRepo(db), nil
	}
	path := cfg.Storage.SQLitePath
	if inMemory {
		path = MemoryPath
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, WrapDiskFullError(
			apperrors.NewSystemErrorWithOp("open "+path, "escalation log unavailable", err), "open", path)
	}
	return store, nil
}

// Close closes the escalation log, then the database.
func (c *Context) Close() error {
	var logErr error
	if c.Log != nil {
		logErr = c.Log.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return err
		}
	}
	return logErr
}

// Scope returns the artisan every command acts for.
func (c *Context) Scope() escalation.Scope {
	return escalation.Scope{ArtisanID: c.Config.ArtisanID}
}

// Now returns the current time from the context clock.
func (c *Context) Now() time.Time {
	return c.Clock.Now()
}

// LayoutOptions returns the calendar packing options from config.
func (c *Context) LayoutOptions() layout.Options {
	return layout.Options{Buffer: c.Config.Layout.Buffer, Margin: c.Config.Layout.Margin}
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.IsJSON()
}

// Debugf logs a debug line tagged with the run id of ctx.
func (c *Context) Debugf(ctx context.Context, format string, args ...any) {
	if c.Debug {
		logging.DebugContext(ctx, fmt.Sprintf(format, args...))
	}
}

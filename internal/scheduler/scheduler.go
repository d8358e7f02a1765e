// Package scheduler triggers the escalation scans on a cron schedule for
// "artisan watch".
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/artisan/internal/clock"
	"github.com/manav03panchal/artisan/internal/config"
	"github.com/manav03panchal/artisan/internal/escalation"
	"github.com/manav03panchal/artisan/internal/logging"
)

// Scanner runs the escalation scans.
type Scanner interface {
	RunOverdueInvoiceScan(ctx context.Context, scope escalation.Scope, today time.Time) (escalation.InvoiceScanResult, error)
	RunInterventionReminderScan(ctx context.Context, scope escalation.Scope, now time.Time) (escalation.InterventionScanResult, error)
}

// Run is the outcome of one trigger.
type Run struct {
	RunID         string
	At            time.Time
	Stale         bool // skipped after a long sleep
	Invoices      escalation.InvoiceScanResult
	Interventions escalation.InterventionScanResult
	Err           error
}

// Scheduler manages the scan job using cron.
type Scheduler struct {
	cron           *cron.Cron
	scanner        Scanner
	scope          escalation.Scope
	clock          clock.Clock
	spec           string
	sleepThreshold time.Duration
	staleAfter     time.Duration
	report         func(Run)

	mu        sync.Mutex
	lastCheck time.Time
	entry     cron.EntryID
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSpec sets the cron spec of the scan job.
func WithSpec(spec string) Option {
	return func(s *Scheduler) { s.spec = spec }
}

// WithSleepThreshold sets the gap after which a run is considered stale.
func WithSleepThreshold(d time.Duration) Option {
	return func(s *Scheduler) { s.sleepThreshold = d }
}

// WithClock sets the clock the runs are stamped with.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithReporter registers a callback invoked after every run.
func WithReporter(fn func(Run)) Option {
	return func(s *Scheduler) { s.report = fn }
}

// New creates a scheduler for scope. It does not start until Start is called.
func New(scanner Scanner, scope escalation.Scope, opts ...Option) *Scheduler {
	defaults := config.DefaultRuntimeConfig().Scheduler
	s := &Scheduler{
		scanner:        scanner,
		scope:          scope,
		clock:          clock.Real{},
		spec:           defaults.Spec,
		sleepThreshold: defaults.SleepThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithParser(config.CronParser))
	return s
}

// Start registers the scan job and starts the cron loop. Runs use ctx, so
// cancelling it aborts an in-flight scan.
func (s *Scheduler) Start(ctx context.Context) error {
	sched, err := config.CronParser.Parse(s.spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	now := s.clock.Now()
	first := sched.Next(now)
	s.staleAfter = max(s.sleepThreshold, 2*sched.Next(first).Sub(first))

	s.mu.Lock()
	s.lastCheck = now
	s.mu.Unlock()

	s.entry = s.cron.Schedule(sched, cron.FuncJob(func() {
		s.tick(ctx)
	}))
	s.cron.Start()

	logging.Info("scheduler started", "spec", s.spec, "next", first)
	return nil
}

// Stop stops the cron loop and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	logging.Info("scheduler stopped")
}

// tick runs both scans unless the previous tick is older than the stale
// threshold, which happens after the machine was asleep.
func (s *Scheduler) tick(ctx context.Context) Run {
	now := s.clock.Now()

	s.mu.Lock()
	elapsed := now.Sub(s.lastCheck)
	s.lastCheck = now
	s.mu.Unlock()

	if s.staleAfter > 0 && elapsed > s.staleAfter {
		logging.Info("skipping stale run after sleep", "elapsed", elapsed.Round(time.Second))
		run := Run{At: now, Stale: true}
		s.emit(run)
		return run
	}

	run := s.RunNow(ctx)
	s.emit(run)
	return run
}

// RunNow runs the invoice scan then the intervention scan. A failing invoice
// scan does not prevent the intervention scan.
func (s *Scheduler) RunNow(ctx context.Context) Run {
	ctx = logging.NewRunContext(ctx)
	run := Run{RunID: logging.RunIDFromContext(ctx), At: s.clock.Now()}

	inv, invErr := s.scanner.RunOverdueInvoiceScan(ctx, s.scope, run.At)
	run.Invoices = inv
	ivs, ivErr := s.scanner.RunInterventionReminderScan(ctx, s.scope, run.At)
	run.Interventions = ivs

	switch {
	case invErr != nil && ivErr != nil:
		run.Err = fmt.Errorf("invoice scan: %w; intervention scan: %w", invErr, ivErr)
	case invErr != nil:
		run.Err = fmt.Errorf("invoice scan: %w", invErr)
	case ivErr != nil:
		run.Err = fmt.Errorf("intervention scan: %w", ivErr)
	}
	if run.Err != nil {
		logging.ErrorContext(ctx, "scan run failed", logging.KeyError, run.Err)
	}
	return run
}

func (s *Scheduler) emit(run Run) {
	if s.report != nil {
		s.report(run)
	}
}

// NextRun returns the next scheduled run time, or the zero time when the
// scheduler is not started.
func (s *Scheduler) NextRun() time.Time {
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// Entries returns all scheduled entries.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

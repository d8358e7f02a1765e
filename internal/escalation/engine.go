// Package escalation drives the reminder pipeline: overdue invoice scans,
// upcoming intervention reminders and status-change notifications.
//
// Scans are idempotent. Every write goes through the escalation log's atomic
// insert-if-absent, so running a scan twice on the same day, or from two
// processes at once, issues each reminder once.
package escalation

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/manav03panchal/artisan/internal/clock"
	"github.com/manav03panchal/artisan/internal/model"
	"github.com/manav03panchal/artisan/internal/reminder"
)

// InvoiceSource lists the invoices a scan may chase.
type InvoiceSource interface {
	ListReminderCandidates(ctx context.Context, artisanID string, today time.Time) ([]*model.Invoice, error)
	MarkOverdue(ctx context.Context, id string, at time.Time) error
}

// InterventionStore reads and writes interventions.
type InterventionStore interface {
	Create(ctx context.Context, iv *model.Intervention) error
	Get(ctx context.Context, ref string) (*model.Intervention, error)
	Update(ctx context.Context, iv *model.Intervention) error
	ListScheduledBetween(ctx context.Context, artisanID string, from, to time.Time) ([]*model.Intervention, error)
}

// ClientDirectory resolves the client names used in messages.
type ClientDirectory interface {
	Get(ctx context.Context, ref string) (*model.Client, error)
}

// Log is the part of the escalation log the engine writes to.
type Log interface {
	RecordInvoiceReminder(ctx context.Context, r *model.InvoiceReminder, n *model.Notification) (bool, error)
	InsertNotification(ctx context.Context, n *model.Notification) (bool, error)
	ListInvoiceReminders(ctx context.Context, invoiceID string) ([]model.InvoiceReminder, error)
}

// Scope restricts a scan to one artisan's records.
type Scope struct {
	ArtisanID string
}

// ItemFailure is a record a scan could not process.
type ItemFailure struct {
	SubjectID string
	Err       error
}

func (f ItemFailure) Error() string {
	return f.SubjectID + ": " + f.Err.Error()
}

// MarshalJSON encodes the failure with its error message.
func (f ItemFailure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SubjectID string `json:"subject_id"`
		Error     string `json:"error"`
	}{f.SubjectID, f.Err.Error()})
}

// Engine runs the escalation scans.
type Engine struct {
	invoices      InvoiceSource
	interventions InterventionStore
	clients       ClientDirectory
	log           Log
	policy        reminder.Policy
	workers       int
	clock         clock.Clock
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy replaces the default 0/7/14 day reminder cadence.
func WithPolicy(p reminder.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithWorkers bounds how many invoices are processed concurrently.
// Values below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithClock sets the clock used to stamp status-change notifications.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates an engine. clients may be nil, in which case messages fall
// back to a generic client name.
func New(invoices InvoiceSource, interventions InterventionStore, clients ClientDirectory, log Log, opts ...Option) *Engine {
	e := &Engine{
		invoices:      invoices,
		interventions: interventions,
		clients:       clients,
		log:           log,
		policy:        reminder.DefaultPolicy(),
		workers:       1,
		clock:         clock.Real{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the reminder cadence in use.
func (e *Engine) Policy() reminder.Policy {
	return e.policy
}

// clientName looks up a client for message templates. Lookup failures are
// not fatal to a reminder.
func (e *Engine) clientName(ctx context.Context, clientID string) string {
	if e.clients == nil || clientID == "" {
		return ""
	}
	c, err := e.clients.Get(ctx, clientID)
	if err != nil {
		return ""
	}
	return c.Name
}

func sortFailures(failures []ItemFailure) {
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].SubjectID < failures[j].SubjectID
	})
}

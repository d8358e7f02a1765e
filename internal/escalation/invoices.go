package escalation

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/logging"
	"github.com/manav03panchal/artisan/internal/model"
	"github.com/manav03panchal/artisan/internal/reminder"
)

// InvoiceScanResult aggregates one overdue invoice scan.
type InvoiceScanResult struct {
	Scanned  int           `json:"scanned"`
	Created  int           `json:"created"`
	Skipped  int           `json:"skipped"`
	Promoted int           `json:"promoted"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

type invoiceOutcome int

const (
	invoiceSkipped invoiceOutcome = iota
	invoiceReminded
	invoiceRemindedAndPromoted
)

// RunOverdueInvoiceScan issues the next due reminder tier of every unpaid
// invoice of scope whose due day is today or earlier. At most one tier is
// issued per invoice and scan. A failure on one invoice is recorded in the
// result and the scan moves on; the returned error is reserved for failures
// that stop the whole scan.
func (e *Engine) RunOverdueInvoiceScan(ctx context.Context, scope Scope, today time.Time) (InvoiceScanResult, error) {
	defer logging.LogOperation(ctx, "invoice_scan", time.Now(), logging.KeyArtisan, scope.ArtisanID)

	var res InvoiceScanResult
	candidates, err := e.invoices.ListReminderCandidates(ctx, scope.ArtisanID, today)
	if err != nil {
		return res, apperrors.NewSystemErrorWithOp("invoice scan", "listing reminder candidates failed", err)
	}
	res.Scanned = len(candidates)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, inv := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := e.remindInvoice(gctx, inv, today)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				logging.WarnContext(gctx, "invoice reminder failed",
					logging.KeyInvoiceID, inv.ID, logging.KeyError, err)
				res.Failures = append(res.Failures, ItemFailure{SubjectID: inv.ID, Err: err})
			case outcome == invoiceSkipped:
				res.Skipped++
			default:
				res.Created++
				if outcome == invoiceRemindedAndPromoted {
					res.Promoted++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	sortFailures(res.Failures)
	logging.InfoContext(ctx, "invoice scan finished",
		logging.KeyCount, res.Created, "skipped", res.Skipped, "failed", len(res.Failures))
	return res, nil
}

// remindInvoice issues the next tier of one invoice, if any is due.
func (e *Engine) remindInvoice(ctx context.Context, inv *model.Invoice, today time.Time) (invoiceOutcome, error) {
	if inv.DueDate == nil {
		return invoiceSkipped, nil
	}

	history, err := e.log.ListInvoiceReminders(ctx, inv.ID)
	if err != nil {
		return invoiceSkipped, apperrors.Wrap(err, "loading reminders")
	}
	tier, ok := e.policy.NextTier(*inv.DueDate, today, history)
	if !ok {
		// A sent invoice whose promotion failed on an earlier scan.
		if len(history) > 0 && e.promote(ctx, inv, today) {
			logging.DebugContext(ctx, "late overdue promotion", logging.KeyInvoiceID, inv.ID)
		}
		return invoiceSkipped, nil
	}

	msg := reminder.Render(tier, reminder.Params{
		ClientName:    e.clientName(ctx, inv.ClientID),
		InvoiceNumber: inv.Number,
		AmountCents:   inv.TotalCents,
		DaysOverdue:   reminder.DaysOverdue(*inv.DueDate, today),
	})
	rem := &model.InvoiceReminder{
		InvoiceID: inv.ID,
		Tier:      tier,
		Method:    model.MethodNotification,
		Message:   msg.Body,
		SentAt:    today,
	}
	n := model.NewNotification(inv.ArtisanID, model.NotifyInvoiceOverdue, msg.Title, msg.Body, today).
		WithInvoice(inv.ID).
		WithTag(model.TierTag(tier)).
		WithUrgent(msg.Urgent)

	inserted, err := e.log.RecordInvoiceReminder(ctx, rem, n)
	if err != nil {
		return invoiceSkipped, apperrors.Wrapf(err, "recording %s", tier)
	}
	if !inserted {
		logging.DebugContext(ctx, "reminder already recorded",
			logging.KeyInvoiceID, inv.ID, logging.KeyTier, int(tier))
		return invoiceSkipped, nil
	}
	logging.DebugContext(ctx, "reminder issued",
		logging.KeyInvoiceID, inv.ID, logging.KeyTier, int(tier), logging.KeyNotificationID, n.ID)

	if e.promote(ctx, inv, today) {
		return invoiceRemindedAndPromoted, nil
	}
	return invoiceReminded, nil
}

// promote moves a sent invoice to overdue. A failure leaves the invoice sent
// for the next scan to retry and does not undo the recorded reminder.
func (e *Engine) promote(ctx context.Context, inv *model.Invoice, at time.Time) bool {
	if inv.Status != model.InvoiceSent {
		return false
	}
	if err := e.invoices.MarkOverdue(ctx, inv.ID, at); err != nil {
		logging.WarnContext(ctx, "promoting invoice to overdue failed",
			logging.KeyInvoiceID, inv.ID, logging.KeyError, err)
		return false
	}
	return true
}

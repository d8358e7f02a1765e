package storage

import (
	"context"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/manav03panchal/artisan/internal/clock"
	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/model"
)

// InvoiceRepo provides operations for Invoice entities.
type InvoiceRepo struct {
	db *DB
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(db *DB) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

func newInvoice() *model.Invoice {
	return &model.Invoice{}
}

// Create stores a new invoice.
func (r *InvoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if inv.Status == "" {
		inv.Status = model.InvoiceDraft
	}
	if !inv.Status.IsValid() {
		return apperrors.NewUserErrorWithField("status", string(inv.Status),
			"Unknown invoice status", "Use one of: draft, sent, overdue, paid, cancelled").
			WithSentinel(apperrors.ErrInvalidStatus)
	}
	if inv.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		inv.ID = id.String()
	}
	if inv.UpdatedAt.IsZero() {
		inv.UpdatedAt = inv.CreatedAt
	}
	return r.db.Set(inv)
}

// Get retrieves an invoice by id or id prefix.
func (r *InvoiceRepo) Get(ctx context.Context, ref string) (*model.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inv, err := ResolveByPrefix(r.db, model.PrefixInvoice, ref, newInvoice)
	if err != nil {
		return nil, notFound(err, apperrors.ErrInvoiceNotFound, ref)
	}
	return inv, nil
}

// Update overwrites an existing invoice.
func (r *InvoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.modify(inv.ID, func(stored *model.Invoice) error {
		*stored = *inv
		return nil
	})
}

// List returns the artisan's invoices, oldest due date first. An empty
// status lists every invoice.
func (r *InvoiceRepo) List(ctx context.Context, artisanID string, status model.InvoiceStatus) ([]*model.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	invoices, err := GetFilteredByPrefix(r.db, model.PrefixInvoice+":", newInvoice, func(inv *model.Invoice) bool {
		return inv.ArtisanID == artisanID && (status == "" || inv.Status == status)
	})
	if err != nil {
		return nil, err
	}
	sortByDueDate(invoices)
	return invoices, nil
}

// ListReminderCandidates returns unpaid invoices whose due day is today or
// earlier. Invoices without a due date are never chased.
func (r *InvoiceRepo) ListReminderCandidates(ctx context.Context, artisanID string, today time.Time) ([]*model.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	invoices, err := GetFilteredByPrefix(r.db, model.PrefixInvoice+":", newInvoice, func(inv *model.Invoice) bool {
		if inv.ArtisanID != artisanID || !inv.Status.AwaitsPayment() || inv.DueDate == nil {
			return false
		}
		return clock.CompareDay(*inv.DueDate, today) <= 0
	})
	if err != nil {
		return nil, err
	}
	sortByDueDate(invoices)
	return invoices, nil
}

// MarkOverdue promotes a sent invoice to overdue. Other statuses are left alone.
func (r *InvoiceRepo) MarkOverdue(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.modify(id, func(inv *model.Invoice) error {
		if inv.Status == model.InvoiceSent {
			inv.Status = model.InvoiceOverdue
			inv.UpdatedAt = at
		}
		return nil
	})
}

// MarkPaid records the payment of an invoice, which ends its reminders.
func (r *InvoiceRepo) MarkPaid(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.modify(id, func(inv *model.Invoice) error {
		if inv.Status == model.InvoiceCancelled {
			return apperrors.NewUserError("A cancelled invoice cannot be paid", "").
				WithSentinel(apperrors.ErrInvalidStatus)
		}
		inv.Status = model.InvoicePaid
		inv.UpdatedAt = at
		return nil
	})
}

// modify reads, changes and writes an invoice in one transaction.
func (r *InvoiceRepo) modify(id string, fn func(*model.Invoice) error) error {
	key := model.GenerateKey(model.PrefixInvoice, id)
	return r.db.db.Update(func(txn *badger.Txn) error {
		inv := newInvoice()
		if err := getTxn(txn, key, inv); err != nil {
			return notFound(err, apperrors.ErrInvoiceNotFound, id)
		}
		if err := fn(inv); err != nil {
			return err
		}
		inv.ID = id
		return setTxn(txn, inv)
	})
}

func sortByDueDate(invoices []*model.Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i].DueDate, invoices[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

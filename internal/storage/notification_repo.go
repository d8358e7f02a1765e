package storage

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/model"
)

// NotificationRepo is the Badger EscalationLog. The existence check and the
// insert run inside one serializable transaction, so two concurrent scans can
// never both write the same escalation key: the loser gets ErrConflict and is
// reported as already handled.
type NotificationRepo struct {
	db *DB
}

// NewNotificationRepo creates a new notification repository.
func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

var _ EscalationLog = (*NotificationRepo)(nil)

func newNotification() *model.Notification {
	return &model.Notification{}
}

func assignID(id *string) error {
	if *id != "" {
		return nil
	}
	v, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = v.String()
	return nil
}

// indexValue is the payload of an escalation index key: the notification it
// points at.
func indexValue(n *model.Notification) []byte {
	return []byte(n.ID)
}

// putNotification writes n and, when tagged, its escalation index key. It
// reports false when the key is already taken.
func putNotification(txn *badger.Txn, n *model.Notification) (bool, error) {
	if n.Deduplicated() {
		taken, err := existsTxn(txn, n.EscalationKey())
		if err != nil || taken {
			return false, err
		}
		if err := txn.Set([]byte(n.EscalationKey()), indexValue(n)); err != nil {
			return false, err
		}
	}
	return true, setTxn(txn, n)
}

// update runs fn in a read-write transaction, turning a commit conflict into
// "not inserted".
func (r *NotificationRepo) update(fn func(txn *badger.Txn) (bool, error)) (bool, error) {
	var inserted bool
	err := r.db.db.Update(func(txn *badger.Txn) error {
		var err error
		inserted, err = fn(txn)
		return err
	})
	if errors.Is(err, badger.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// InsertNotification stores n unless its escalation key already exists.
func (r *NotificationRepo) InsertNotification(ctx context.Context, n *model.Notification) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := assignID(&n.ID); err != nil {
		return false, err
	}
	return r.update(func(txn *badger.Txn) (bool, error) {
		return putNotification(txn, n)
	})
}

// RecordInvoiceReminder stores the reminder and its notification atomically.
func (r *NotificationRepo) RecordInvoiceReminder(ctx context.Context, reminder *model.InvoiceReminder, n *model.Notification) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !reminder.Tier.IsValid() {
		return false, apperrors.Wrapf(apperrors.ErrTierOutOfOrder, "tier %d", int(reminder.Tier))
	}
	if err := assignID(&reminder.ID); err != nil {
		return false, err
	}
	if err := assignID(&n.ID); err != nil {
		return false, err
	}

	return r.update(func(txn *badger.Txn) (bool, error) {
		taken, err := existsTxn(txn, reminder.GetKey())
		if err != nil || taken {
			return false, err
		}
		if reminder.Tier > model.TierFirst {
			prev, err := existsTxn(txn, model.InvoiceReminderKey(reminder.InvoiceID, reminder.Tier-1))
			if err != nil {
				return false, err
			}
			if !prev {
				return false, apperrors.Wrapf(apperrors.ErrTierOutOfOrder,
					"invoice %s has no %s reminder", reminder.InvoiceID, reminder.Tier-1)
			}
		}

		inserted, err := putNotification(txn, n)
		if err != nil || !inserted {
			return false, err
		}
		return true, setTxn(txn, reminder)
	})
}

// ListInvoiceReminders returns an invoice's reminders ordered by tier.
func (r *NotificationRepo) ListInvoiceReminders(ctx context.Context, invoiceID string) ([]model.InvoiceReminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found, err := GetAllByPrefix(r.db, model.PrefixInvoiceReminder+":"+invoiceID+":", func() *model.InvoiceReminder {
		return &model.InvoiceReminder{}
	})
	if err != nil {
		return nil, err
	}
	reminders := make([]model.InvoiceReminder, 0, len(found))
	for _, rem := range found {
		reminders = append(reminders, *rem)
	}
	model.SortReminders(reminders)
	return reminders, nil
}

// ListNotifications returns matching notifications, newest first.
func (r *NotificationRepo) ListNotifications(ctx context.Context, filter NotificationFilter) ([]*model.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ns, err := GetFilteredByPrefix(r.db, model.PrefixNotification+":", newNotification, filter.Match)
	if err != nil {
		return nil, err
	}
	return SortNotifications(ns, filter.Limit), nil
}

// GetNotification retrieves a notification by id or id prefix.
func (r *NotificationRepo) GetNotification(ctx context.Context, ref string) (*model.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := ResolveByPrefix(r.db, model.PrefixNotification, ref, newNotification)
	if err != nil {
		return nil, notFound(err, apperrors.ErrNotificationNotFound, ref)
	}
	return n, nil
}

// MarkNotificationRead flags a notification as read.
func (r *NotificationRepo) MarkNotificationRead(ctx context.Context, ref string) error {
	n, err := r.GetNotification(ctx, ref)
	if err != nil {
		return err
	}
	if !n.IsUnread() {
		return nil
	}
	n.Status = model.NotificationRead
	return r.db.Set(n)
}

// MarkAllRead flags every unread notification of the artisan as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, artisanID string) (int, error) {
	unread, err := r.ListNotifications(ctx, NotificationFilter{ArtisanID: artisanID, UnreadOnly: true})
	if err != nil {
		return 0, err
	}
	err = r.db.db.Update(func(txn *badger.Txn) error {
		for _, n := range unread {
			n.Status = model.NotificationRead
			if err := setTxn(txn, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// DeleteNotification removes a notification and frees its escalation key.
// Invoice reminders are kept, so a deleted overdue notice does not re-issue
// its tier.
func (r *NotificationRepo) DeleteNotification(ctx context.Context, ref string) error {
	n, err := r.GetNotification(ctx, ref)
	if err != nil {
		return err
	}
	return r.db.db.Update(func(txn *badger.Txn) error {
		if n.Deduplicated() {
			if err := txn.Delete([]byte(n.EscalationKey())); err != nil {
				return err
			}
		}
		return txn.Delete([]byte(n.GetKey()))
	})
}

// CountUnread returns the number of unread notifications of the artisan.
func (r *NotificationRepo) CountUnread(ctx context.Context, artisanID string) (int, error) {
	unread, err := r.ListNotifications(ctx, NotificationFilter{ArtisanID: artisanID, UnreadOnly: true})
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// Close is a no-op; the DB is closed by its owner.
func (r *NotificationRepo) Close() error {
	return nil
}

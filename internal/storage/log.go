package storage

import (
	"context"
	"sort"
	"time"

	"github.com/manav03panchal/artisan/internal/model"
)

// EscalationLog is the append-only record of issued invoice reminders and
// notifications. Both backends enforce uniqueness atomically: at most one
// reminder per (invoice, tier) and at most one tagged notification per
// (subject, type, tag, day bucket). A duplicate insert is reported as
// inserted == false with a nil error.
type EscalationLog interface {
	// RecordInvoiceReminder stores a reminder and its notification together.
	// Tiers must be issued in order; skipping one fails with ErrTierOutOfOrder.
	RecordInvoiceReminder(ctx context.Context, reminder *model.InvoiceReminder, n *model.Notification) (bool, error)
	// InsertNotification stores n unless an equal escalation key already exists.
	// Untagged notifications are always inserted.
	InsertNotification(ctx context.Context, n *model.Notification) (bool, error)
	// ListInvoiceReminders returns an invoice's reminders ordered by tier.
	ListInvoiceReminders(ctx context.Context, invoiceID string) ([]model.InvoiceReminder, error)

	ListNotifications(ctx context.Context, filter NotificationFilter) ([]*model.Notification, error)
	GetNotification(ctx context.Context, ref string) (*model.Notification, error)
	MarkNotificationRead(ctx context.Context, ref string) error
	MarkAllRead(ctx context.Context, artisanID string) (int, error)
	DeleteNotification(ctx context.Context, ref string) error
	CountUnread(ctx context.Context, artisanID string) (int, error)

	Close() error
}

// NotificationFilter narrows ListNotifications.
type NotificationFilter struct {
	ArtisanID  string
	UnreadOnly bool
	Type       model.NotificationType
	SubjectID  string
	Since      time.Time
	Limit      int
}

// Match reports whether n passes the filter.
func (f NotificationFilter) Match(n *model.Notification) bool {
	if f.ArtisanID != "" && n.ArtisanID != f.ArtisanID {
		return false
	}
	if f.UnreadOnly && !n.IsUnread() {
		return false
	}
	if f.Type != "" && n.Type != f.Type {
		return false
	}
	if f.SubjectID != "" && n.SubjectID() != f.SubjectID {
		return false
	}
	if !f.Since.IsZero() && n.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// SortNotifications orders newest first and applies limit.
func SortNotifications(ns []*model.Notification, limit int) []*model.Notification {
	sort.SliceStable(ns, func(i, j int) bool {
		if !ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].CreatedAt.After(ns[j].CreatedAt)
		}
		return ns[i].ID > ns[j].ID
	})
	if limit > 0 && len(ns) > limit {
		ns = ns[:limit]
	}
	return ns
}

package model

import (
	"fmt"
	"sort"
	"time"
)

// InvoiceStatus is the billing status of an invoice.
type InvoiceStatus string

// Invoice statuses.
const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// IsValid reports whether s is a known invoice status.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoiceOverdue, InvoicePaid, InvoiceCancelled:
		return true
	}
	return false
}

// AwaitsPayment reports whether invoices in this status can be chased.
func (s InvoiceStatus) AwaitsPayment() bool {
	return s == InvoiceDraft || s == InvoiceSent || s == InvoiceOverdue
}

// Tier is the escalation level of an invoice reminder.
type Tier int

// Reminder tiers.
const (
	TierFirst  Tier = 1
	TierSecond Tier = 2
	TierFinal  Tier = 3
)

// Tiers returns every tier in issuing order.
func Tiers() []Tier {
	return []Tier{TierFirst, TierSecond, TierFinal}
}

// IsValid reports whether t is within 1..3.
func (t Tier) IsValid() bool {
	return t >= TierFirst && t <= TierFinal
}

func (t Tier) String() string {
	return fmt.Sprintf("tier %d", int(t))
}

// ReminderMethod is the channel a reminder was issued through.
type ReminderMethod string

// Reminder methods.
const (
	MethodNotification ReminderMethod = "notification"
)

// InvoiceReminder is one issued reminder. Reminders are append-only.
type InvoiceReminder struct {
	ID        string         `json:"id"`
	InvoiceID string         `json:"invoice_id"`
	Tier      Tier           `json:"tier"`
	Method    ReminderMethod `json:"method"`
	Message   string         `json:"message"`
	SentAt    time.Time      `json:"sent_at"`
}

// SetKey is a no-op; reminder keys are derived from invoice and tier.
func (r *InvoiceReminder) SetKey(string) {}

// GetKey returns the database key for this reminder.
func (r *InvoiceReminder) GetKey() string {
	return InvoiceReminderKey(r.InvoiceID, r.Tier)
}

// InvoiceReminderKey builds the key of the reminder of the given tier.
// One key per (invoice, tier) keeps at most one reminder per tier.
func InvoiceReminderKey(invoiceID string, tier Tier) string {
	return fmt.Sprintf("%s:%s:%d", PrefixInvoiceReminder, invoiceID, int(tier))
}

// Invoice is a bill sent to a client.
type Invoice struct {
	ID         string        `json:"id"`
	ArtisanID  string        `json:"artisan_id"`
	ClientID   string        `json:"client_id"`
	Number     string        `json:"number"`
	DueDate    *time.Time    `json:"due_date,omitempty"`
	Status     InvoiceStatus `json:"status"`
	TotalCents int64         `json:"total_cents"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Reminders is loaded from the escalation log, never stored on the invoice.
	Reminders []InvoiceReminder `json:"-"`
}

// SetKey sets the database key for this invoice.
func (i *Invoice) SetKey(key string) {
	i.ID = IDFromKey(PrefixInvoice, key)
}

// GetKey returns the database key for this invoice.
func (i *Invoice) GetKey() string {
	return GenerateKey(PrefixInvoice, i.ID)
}

// HighestTier returns the highest tier already issued, or 0.
func (i *Invoice) HighestTier() Tier {
	var highest Tier
	for _, r := range i.Reminders {
		if r.Tier > highest {
			highest = r.Tier
		}
	}
	return highest
}

// SortReminders orders reminders by tier ascending.
func SortReminders(reminders []InvoiceReminder) {
	sort.SliceStable(reminders, func(a, b int) bool {
		return reminders[a].Tier < reminders[b].Tier
	})
}

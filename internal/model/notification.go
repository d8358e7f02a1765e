package model

import (
	"time"
)

// NotificationType defines the type of notification.
type NotificationType string

// Notification types.
const (
	NotifyInterventionStatus   NotificationType = "intervention_status"
	NotifyInvoiceOverdue       NotificationType = "invoice_overdue"
	NotifyInterventionReminder NotificationType = "intervention_reminder"
)

// IsValid reports whether t is a known notification type.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotifyInterventionStatus, NotifyInvoiceOverdue, NotifyInterventionReminder:
		return true
	}
	return false
}

// NotificationStatus is the read state of a notification.
type NotificationStatus string

// Notification statuses.
const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

// Notification is one entry of the artisan's inbox.
type Notification struct {
	ID                    string             `json:"id"`
	ArtisanID             string             `json:"artisan_id"`
	Type                  NotificationType   `json:"type"`
	Title                 string             `json:"title"`
	Message               string             `json:"message"`
	Status                NotificationStatus `json:"status"`
	Urgent                bool               `json:"urgent,omitempty"`
	SubjectInterventionID string             `json:"subject_intervention_id,omitempty"`
	SubjectInvoiceID      string             `json:"subject_invoice_id,omitempty"`
	Tag                   EscalationTag      `json:"tag"`
	DayBucket             string             `json:"day_bucket"`
	CreatedAt             time.Time          `json:"created_at"`
}

// SetKey sets the database key for this notification.
func (n *Notification) SetKey(key string) {
	n.ID = IDFromKey(PrefixNotification, key)
}

// GetKey returns the database key for this notification.
func (n *Notification) GetKey() string {
	return GenerateKey(PrefixNotification, n.ID)
}

// SubjectID returns the id of the intervention or invoice the notification is about.
func (n *Notification) SubjectID() string {
	if n.SubjectInvoiceID != "" {
		return n.SubjectInvoiceID
	}
	return n.SubjectInterventionID
}

// IsUnread returns true if the notification has not been read.
func (n *Notification) IsUnread() bool {
	return n.Status != NotificationRead
}

// Deduplicated reports whether the notification is subject to the
// one-per-(subject, type, tag, day) rule.
func (n *Notification) Deduplicated() bool {
	return !n.Tag.IsZero()
}

// EscalationKey returns the uniqueness key of a tagged notification.
func (n *Notification) EscalationKey() string {
	return EscalationIndexKey(n.SubjectID(), n.Type, n.Tag, n.DayBucket)
}

// EscalationIndexKey builds the index key enforcing one notification per
// (subject, type, tag, day bucket).
func EscalationIndexKey(subjectID string, t NotificationType, tag EscalationTag, dayBucket string) string {
	return PrefixEscalationIndex + ":" + subjectID + ":" + string(t) + ":" + tag.String() + ":" + dayBucket
}

// NewNotification creates an unread notification stamped at createdAt.
func NewNotification(artisanID string, t NotificationType, title, message string, createdAt time.Time) *Notification {
	return &Notification{
		ArtisanID: artisanID,
		Type:      t,
		Title:     title,
		Message:   message,
		Status:    NotificationUnread,
		DayBucket: createdAt.Format("2006-01-02"),
		CreatedAt: createdAt,
	}
}

// WithIntervention sets the intervention subject.
func (n *Notification) WithIntervention(id string) *Notification {
	n.SubjectInterventionID = id
	return n
}

// WithInvoice sets the invoice subject.
func (n *Notification) WithInvoice(id string) *Notification {
	n.SubjectInvoiceID = id
	return n
}

// WithTag sets the escalation tag.
func (n *Notification) WithTag(tag EscalationTag) *Notification {
	n.Tag = tag
	return n
}

// WithUrgent marks the notification as urgent.
func (n *Notification) WithUrgent(urgent bool) *Notification {
	n.Urgent = urgent
	return n
}

// Icon returns an emoji short-code for the notification type.
func (n *Notification) Icon() string {
	switch n.Type {
	case NotifyInterventionStatus:
		return "wrench"
	case NotifyInvoiceOverdue:
		if n.Urgent {
			return "rotating_light"
		}
		return "receipt"
	case NotifyInterventionReminder:
		return "bell"
	default:
		return "bell"
	}
}

// TypeLabel returns a human-readable label for the notification type.
func (n *Notification) TypeLabel() string {
	switch n.Type {
	case NotifyInterventionStatus:
		return "Intervention Status"
	case NotifyInvoiceOverdue:
		return "Overdue Invoice"
	case NotifyInterventionReminder:
		return "Intervention Reminder"
	default:
		return "Notification"
	}
}

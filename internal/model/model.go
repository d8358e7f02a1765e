// Package model defines the domain models for the artisan scheduling engine.
package model

import (
	"fmt"
	"strings"
)

// Model is the interface that all database models must implement.
type Model interface {
	// SetKey sets the database key for this model.
	SetKey(key string)
	// GetKey returns the database key for this model.
	GetKey() string
}

// KeyPrefix constants for database key generation.
const (
	PrefixClient          = "client"
	PrefixIntervention    = "intervention"
	PrefixInvoice         = "invoice"
	PrefixInvoiceReminder = "invreminder"
	PrefixNotification    = "notification"
	PrefixEscalationIndex = "escalation"
)

// GenerateKey builds a "prefix:id" database key.
func GenerateKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// IDFromKey strips the "prefix:" part of a database key.
func IDFromKey(prefix, key string) string {
	return strings.TrimPrefix(key, prefix+":")
}

// ShortIDLength covers the millisecond timestamp of a UUIDv7, so ids created
// by separate commands have distinct short forms.
const ShortIDLength = 13

// ShortID returns the first ShortIDLength characters of an id for display.
func ShortID(id string) string {
	if len(id) > ShortIDLength {
		return id[:ShortIDLength]
	}
	return id
}

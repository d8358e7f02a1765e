package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Intervention Tests
// =============================================================================

func TestNewIntervention(t *testing.T) {
	at := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	iv := NewIntervention("artisan1", "client1", "Leak repair", at, 45)

	assert.Equal(t, StatusTodo, iv.Status)
	assert.Equal(t, "Leak repair", iv.Title)
	assert.Equal(t, at.Add(45*time.Minute), iv.End())
}

func TestInterventionSetGetKey(t *testing.T) {
	iv := &Intervention{}
	iv.SetKey("intervention:abc123")
	assert.Equal(t, "abc123", iv.ID)
	assert.Equal(t, "intervention:abc123", iv.GetKey())
}

func TestInterventionStatusIsPersisted(t *testing.T) {
	assert.True(t, StatusTodo.IsPersisted())
	assert.True(t, StatusCompleted.IsPersisted())
	assert.True(t, StatusCancelled.IsPersisted())
	assert.False(t, StatusInProgress.IsPersisted())
	assert.False(t, InterventionStatus("done").IsPersisted())
}

// =============================================================================
// Invoice Tests
// =============================================================================

func TestInvoiceStatusAwaitsPayment(t *testing.T) {
	assert.True(t, InvoiceDraft.AwaitsPayment())
	assert.True(t, InvoiceSent.AwaitsPayment())
	assert.True(t, InvoiceOverdue.AwaitsPayment())
	assert.False(t, InvoicePaid.AwaitsPayment())
	assert.False(t, InvoiceCancelled.AwaitsPayment())
}

func TestInvoiceHighestTier(t *testing.T) {
	inv := &Invoice{}
	assert.Equal(t, Tier(0), inv.HighestTier())

	inv.Reminders = []InvoiceReminder{{Tier: TierSecond}, {Tier: TierFirst}}
	assert.Equal(t, TierSecond, inv.HighestTier())

	SortReminders(inv.Reminders)
	assert.Equal(t, TierFirst, inv.Reminders[0].Tier)
}

func TestInvoiceReminderKey(t *testing.T) {
	r := &InvoiceReminder{InvoiceID: "inv1", Tier: TierFinal}
	assert.Equal(t, "invreminder:inv1:3", r.GetKey())
}

// =============================================================================
// EscalationTag Tests
// =============================================================================

func TestParseEscalationTag(t *testing.T) {
	tests := []struct {
		in      string
		want    EscalationTag
		wantErr bool
	}{
		{"", NoTag, false},
		{"24h", TwentyFourHourTag, false},
		{"today", TodayTag, false},
		{"tier:1", TierTag(TierFirst), false},
		{"tier:3", TierTag(TierFinal), false},
		{"tier:4", NoTag, true},
		{"tier:x", NoTag, true},
		{"status:completed", StatusTag(StatusCompleted), false},
		{"status:in_progress", StatusTag(StatusInProgress), false},
		{"status:finished", NoTag, true},
		{"status:", NoTag, true},
		{"{\"reminderType\":\"24h\"}", NoTag, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEscalationTag(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestEscalationTagMatches(t *testing.T) {
	assert.True(t, TodayTag.Matches(TodayTag))
	assert.True(t, TierTag(TierSecond).Matches(TierTag(TierSecond)))
	assert.False(t, TierTag(TierFirst).Matches(TierTag(TierSecond)))
	assert.False(t, NoTag.Matches(NoTag))
	assert.False(t, TodayTag.Matches(TwentyFourHourTag))
	assert.True(t, StatusTag(StatusCancelled).Matches(StatusTag(StatusCancelled)))
	assert.False(t, StatusTag(StatusCancelled).Matches(StatusTag(StatusCompleted)))
}

func TestEscalationTagMalformedJSONDecodesAsNoTag(t *testing.T) {
	var n Notification
	err := json.Unmarshal([]byte(`{"id":"n1","tag":"garbage"}`), &n)
	require.NoError(t, err)
	assert.True(t, n.Tag.IsZero())

	data, err := json.Marshal(&Notification{Tag: TierTag(TierSecond)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tag":"tier:2"`)
}

// =============================================================================
// Notification Tests
// =============================================================================

func TestNewNotification(t *testing.T) {
	at := time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)
	n := NewNotification("artisan1", NotifyInvoiceOverdue, "title", "msg", at).
		WithInvoice("inv1").
		WithTag(TierTag(TierFirst)).
		WithUrgent(true)

	assert.Equal(t, NotificationUnread, n.Status)
	assert.True(t, n.IsUnread())
	assert.Equal(t, "2026-04-02", n.DayBucket)
	assert.Equal(t, "inv1", n.SubjectID())
	assert.True(t, n.Deduplicated())
	assert.Equal(t, "escalation:inv1:invoice_overdue:tier:1:2026-04-02", n.EscalationKey())
	assert.Equal(t, "rotating_light", n.Icon())
	assert.Equal(t, "Overdue Invoice", n.TypeLabel())
}

func TestNotificationWithoutTagIsNotDeduplicated(t *testing.T) {
	n := NewNotification("a", NotifyInterventionStatus, "t", "m", time.Now()).WithIntervention("iv1")
	assert.False(t, n.Deduplicated())
	assert.Equal(t, "iv1", n.SubjectID())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "n1", ShortID("n1"))
	assert.Equal(t, "0193a1b2-c3d4", ShortID("0193a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"))
}

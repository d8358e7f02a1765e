package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/manav03panchal/artisan/internal/model"
)

var today = time.Date(2026, 3, 20, 9, 15, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func history(tiers ...model.Tier) []model.InvoiceReminder {
	out := make([]model.InvoiceReminder, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, model.InvoiceReminder{InvoiceID: "inv", Tier: t})
	}
	return out
}

func TestNextTier(t *testing.T) {
	tests := []struct {
		name     string
		overdue  int
		history  []model.InvoiceReminder
		wantTier model.Tier
		wantOK   bool
	}{
		{"not yet due", -3, nil, 0, false},
		{"due today", 0, nil, 0, false},
		{"one day late", 1, nil, model.TierFirst, true},
		{"ten days late without history", 10, nil, model.TierFirst, true},
		{"ten days late after tier 1", 10, history(model.TierFirst), model.TierSecond, true},
		{"six days late after tier 1", 6, history(model.TierFirst), 0, false},
		{"fourteen days late after tier 2", 14, history(model.TierFirst, model.TierSecond), model.TierFinal, true},
		{"thirteen days late after tier 2", 13, history(model.TierFirst, model.TierSecond), 0, false},
		{"all tiers issued", 40, history(model.TierFirst, model.TierSecond, model.TierFinal), 0, false},
		{"history order does not matter", 20, history(model.TierSecond, model.TierFirst), model.TierFinal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, ok := NextTier(daysAgo(tt.overdue), today, tt.history)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTier, tier)
		})
	}
}

func TestNextTierCatchesUpOneTierPerScan(t *testing.T) {
	due := daysAgo(30)
	var issued []model.InvoiceReminder
	for i := 0; i < 5; i++ {
		tier, ok := NextTier(due, today, issued)
		if !ok {
			break
		}
		issued = append(issued, model.InvoiceReminder{Tier: tier})
	}
	assert.Len(t, issued, 3)
	for i, r := range issued {
		assert.Equal(t, model.Tier(i+1), r.Tier)
	}
}

func TestNextTierUsesCalendarDays(t *testing.T) {
	// Due late in the evening, checked early the next morning: one day.
	due := time.Date(2026, 3, 19, 23, 30, 0, 0, time.UTC)
	now := time.Date(2026, 3, 20, 0, 15, 0, 0, time.UTC)
	tier, ok := NextTier(due, now, nil)
	assert.True(t, ok)
	assert.Equal(t, model.TierFirst, tier)
}

func TestCustomPolicy(t *testing.T) {
	p := NewPolicy(3, 10, 20)
	_, ok := p.NextTier(daysAgo(2), today, nil)
	assert.False(t, ok)

	tier, ok := p.NextTier(daysAgo(3), today, nil)
	assert.True(t, ok)
	assert.Equal(t, model.TierFirst, tier)

	assert.Equal(t, 20, p.Threshold(model.TierFinal))
	assert.Equal(t, DefaultSecondAfter, Policy{}.Threshold(model.TierSecond))
}

// =============================================================================
// Message Tests
// =============================================================================

func TestRender(t *testing.T) {
	p := Params{ClientName: "Dupont", InvoiceNumber: "F-2026-014", AmountCents: 125000, DaysOverdue: 10}

	first := Render(model.TierFirst, p)
	assert.Equal(t, "Invoice F-2026-014 overdue", first.Title)
	assert.Contains(t, first.Body, "Dupont")
	assert.Contains(t, first.Body, "1,250.00")
	assert.Contains(t, first.Body, "10 days")
	assert.False(t, first.Urgent)

	second := Render(model.TierSecond, p)
	assert.Contains(t, second.Title, "Second reminder")
	assert.False(t, second.Urgent)

	final := Render(model.TierFinal, p)
	assert.Contains(t, final.Title, "Final notice")
	assert.True(t, final.Urgent)
}

func TestRenderSingleDayAndMissingClient(t *testing.T) {
	m := Render(model.TierFirst, Params{InvoiceNumber: "F-1", AmountCents: 999, DaysOverdue: 1})
	assert.Contains(t, m.Body, "1 day past due")
	assert.Contains(t, m.Body, "client")
	assert.Contains(t, m.Body, "9.99")
}

// Package reminder decides which escalation tier an overdue invoice is due for
// and renders the matching message.
package reminder

import (
	"time"

	"github.com/manav03panchal/artisan/internal/clock"
	"github.com/manav03panchal/artisan/internal/model"
)

// Default thresholds in days past the due date.
const (
	DefaultFirstAfter  = 0
	DefaultSecondAfter = 7
	DefaultFinalAfter  = 14
)

// Policy maps each tier to the number of days past due at which it may fire.
// Thresholds are measured from the due date, never from the previous reminder.
type Policy struct {
	Thresholds map[model.Tier]int
}

// DefaultPolicy returns the 0/7/14 day policy.
func DefaultPolicy() Policy {
	return Policy{Thresholds: map[model.Tier]int{
		model.TierFirst:  DefaultFirstAfter,
		model.TierSecond: DefaultSecondAfter,
		model.TierFinal:  DefaultFinalAfter,
	}}
}

// NewPolicy builds a policy from explicit thresholds.
func NewPolicy(first, second, final int) Policy {
	return Policy{Thresholds: map[model.Tier]int{
		model.TierFirst:  first,
		model.TierSecond: second,
		model.TierFinal:  final,
	}}
}

// Threshold returns the days-past-due at which tier becomes eligible.
func (p Policy) Threshold(t model.Tier) int {
	if d, ok := p.Thresholds[t]; ok {
		return d
	}
	return DefaultPolicy().Thresholds[t]
}

// DaysOverdue counts calendar days from due to today. Zero on the due day,
// negative before it.
func DaysOverdue(due, today time.Time) int {
	return clock.DaysBetween(due, today)
}

// NextTier returns the tier to issue for an invoice due on due, given the
// reminders already issued. The lowest tier not yet covered wins, so an
// invoice found 10 days late with no history gets tier 1 first, and each
// later scan catches up by one tier.
func (p Policy) NextTier(due, today time.Time, history []model.InvoiceReminder) (model.Tier, bool) {
	overdue := DaysOverdue(due, today)
	if overdue <= 0 {
		return 0, false
	}

	var highest model.Tier
	for _, r := range history {
		if r.Tier > highest {
			highest = r.Tier
		}
	}

	for _, t := range model.Tiers() {
		if t <= highest {
			continue
		}
		if overdue >= p.Threshold(t) {
			return t, true
		}
		return 0, false
	}
	return 0, false
}

// NextTier applies the default policy.
func NextTier(due, today time.Time, history []model.InvoiceReminder) (model.Tier, bool) {
	return DefaultPolicy().NextTier(due, today, history)
}

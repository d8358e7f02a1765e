// Package parser turns command-line arguments into dates, durations and
// amounts.
package parser

import (
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/manav03panchal/artisan/internal/clock"
)

// ParseTimestamp parses a natural language date and time, such as
// "tomorrow 9am", "friday 14:30" or "2026-05-14 08:00", relative to now.
// An empty input or "now" returns now.
func ParseTimestamp(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "now") {
		return now, nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, NewTimestampError(input)
	}
	return result.Time.In(now.Location()), nil
}

// ParseDay parses a calendar day and returns its midnight in now's location.
// An empty input or "today" is now's day.
func ParseDay(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "today") {
		return clock.StartOfDay(now), nil
	}
	t, err := ParseTimestamp(input, now)
	if err != nil {
		return time.Time{}, NewDateError(input)
	}
	return clock.StartOfDay(t), nil
}

package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// durationPattern matches duration expressions like "2h", "45 min", "1h30m", "1.5h".
var durationPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(h|hr|hrs|hour|hours|m|min|mins|minute|minutes)?\s*(?:(\d+)\s*(m|min|mins|minute|minutes))?$`)

// ParseMinutes parses an intervention length and returns whole minutes.
// Supports formats like:
//   - "90" (a bare number is minutes)
//   - "45m" or "45 minutes"
//   - "1h30m" or "1 hour 30 minutes"
//   - "1.5h"
//
// The range is not checked here; the status guard owns the bounds.
func ParseMinutes(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, NewDurationError(input)
	}

	// Standard Go duration format first (e.g. "1h30m")
	if d, err := time.ParseDuration(input); err == nil {
		return toMinutes(d, input)
	}

	matches := durationPattern.FindStringSubmatch(input)
	if matches == nil {
		return 0, NewDurationError(input)
	}

	var total time.Duration

	// First number and unit
	value, _ := strconv.ParseFloat(matches[1], 64)
	switch strings.ToLower(matches[2]) {
	case "h", "hr", "hrs", "hour", "hours":
		total += time.Duration(value * float64(time.Hour))
	default:
		total += time.Duration(value * float64(time.Minute))
	}

	// Trailing minutes (for "1h30m" style)
	if matches[3] != "" {
		extra, _ := strconv.Atoi(matches[3])
		total += time.Duration(extra) * time.Minute
	}

	return toMinutes(total, input)
}

func toMinutes(d time.Duration, input string) (int, error) {
	minutes := int(math.Round(d.Minutes()))
	if minutes <= 0 {
		return 0, NewDurationError(input)
	}
	return minutes, nil
}

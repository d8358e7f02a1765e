// Package clock provides an injectable time source and day-bucket helpers.
//
// Every scheduling decision takes an explicit instant so it can be replayed in
// tests; only the CLI edge reads the wall clock.
package clock

import "time"

// DayBucketLayout is the layout of a day bucket string.
const DayBucketLayout = "2006-01-02"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.T }

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// NextDay returns midnight of the day after t.
func NextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// DayBucket formats the calendar day of t.
func DayBucket(t time.Time) string {
	return t.Format(DayBucketLayout)
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b.In(a.Location())))
}

// DaysBetween counts whole calendar days from "from" to "to", measured in
// from's location. DST shifts do not affect the count.
func DaysBetween(from, to time.Time) int {
	to = to.In(from.Location())
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// CompareDay returns -1, 0 or 1 as t's day is before, equal to or after ref's day.
func CompareDay(t, ref time.Time) int {
	switch n := DaysBetween(ref, t); {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

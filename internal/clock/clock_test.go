package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartAndEndOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, time.Date(2026, 3, 14, 23, 59, 59, 999999999, time.UTC), EndOfDay(ts))
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), NextDay(ts))
	assert.Equal(t, "2026-03-14", DayBucket(ts))
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 1, 10, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same_day_later", time.Date(2026, 1, 10, 23, 59, 0, 0, time.UTC), 0},
		{"next_day_early", time.Date(2026, 1, 11, 0, 5, 0, 0, time.UTC), 1},
		{"ten_days_before", time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC), -10},
		{"across_month", time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(base, tt.to))
		})
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	from := time.Date(2026, 3, 28, 12, 0, 0, 0, paris)
	to := time.Date(2026, 3, 30, 12, 0, 0, 0, paris)
	assert.Equal(t, 2, DaysBetween(from, to))
}

func TestCompareDayAndSameDay(t *testing.T) {
	ref := time.Date(2026, 5, 5, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, -1, CompareDay(ref.AddDate(0, 0, -1), ref))
	assert.Equal(t, 0, CompareDay(ref.Add(10*time.Hour), ref))
	assert.Equal(t, 1, CompareDay(ref.AddDate(0, 0, 1), ref))
	assert.True(t, SameDay(ref, ref.Add(-9*time.Hour)))
	assert.False(t, SameDay(ref, ref.Add(15*time.Hour)))
}

func TestFixedClock(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var c Clock = Fixed{T: ts}
	assert.Equal(t, ts, c.Now())
}

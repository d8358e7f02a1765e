package layout

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func slotByID(t *testing.T, slots []Slot, id string) Slot {
	t.Helper()
	for _, s := range slots {
		if s.InterventionID == id {
			return s
		}
	}
	t.Fatalf("slot %s not found", id)
	return Slot{}
}

func TestLayoutEmpty(t *testing.T) {
	assert.Nil(t, Layout(nil, DefaultOptions()))
}

func TestLayoutSingleEventTakesFullWidth(t *testing.T) {
	slots := Layout([]Event{{ID: "a", Start: at(9, 0), DurationMinutes: 60}}, DefaultOptions())
	require.Len(t, slots, 1)
	assert.Equal(t, 0, slots[0].Column)
	assert.Equal(t, 1, slots[0].ColumnCount)
	assert.Equal(t, 0.0, slots[0].LeftFraction)
	assert.Equal(t, 100.0, slots[0].WidthFraction)
}

// Three events: 09:00-10:00, 09:30-10:30 and 13:00-14:00 with a 120 minute
// buffer. The first two conflict; the third starts after 10:00+2h.
func TestLayoutThreeEventDay(t *testing.T) {
	events := []Event{
		{ID: "e3", Start: at(13, 0), DurationMinutes: 60},
		{ID: "e1", Start: at(9, 0), DurationMinutes: 60},
		{ID: "e2", Start: at(9, 30), DurationMinutes: 60},
	}
	slots := Layout(events, DefaultOptions())
	require.Len(t, slots, 3)

	e1 := slotByID(t, slots, "e1")
	e2 := slotByID(t, slots, "e2")
	e3 := slotByID(t, slots, "e3")

	assert.NotEqual(t, e1.Column, e2.Column)
	assert.Equal(t, 2, e1.ColumnCount)
	assert.Equal(t, 2, e2.ColumnCount)
	assert.Equal(t, e1.WidthFraction, e2.WidthFraction)
	assert.InDelta(t, 49.5, e1.WidthFraction, 1e-9)
	assert.InDelta(t, 50.5, e2.LeftFraction, 1e-9)

	// e3 is its own cluster and reuses the first column at full width.
	assert.Equal(t, 0, e3.Column)
	assert.Equal(t, 1, e3.ColumnCount)
	assert.Equal(t, 100.0, e3.WidthFraction)

	assert.Equal(t, []string{"e1", "e2", "e3"}, []string{slots[0].InterventionID, slots[1].InterventionID, slots[2].InterventionID})
}

func TestLayoutBufferIsStricterThanOverlap(t *testing.T) {
	// Back to back without overlap, but within the buffer.
	events := []Event{
		{ID: "a", Start: at(8, 0), DurationMinutes: 60},
		{ID: "b", Start: at(10, 30), DurationMinutes: 30},
	}
	slots := Layout(events, DefaultOptions())
	assert.NotEqual(t, slotByID(t, slots, "a").Column, slotByID(t, slots, "b").Column)

	// Exactly at the buffered end: same column.
	events[1].Start = at(11, 0)
	slots = Layout(events, DefaultOptions())
	assert.Equal(t, 0, slotByID(t, slots, "b").Column)
	assert.Equal(t, 1, slotByID(t, slots, "b").ColumnCount)
}

func TestLayoutColumnReuseInsideCluster(t *testing.T) {
	// a and b conflict; c starts at a's buffered end (12:00) but before b's
	// (12:30), so c stays in the cluster and reuses column 0.
	events := []Event{
		{ID: "a", Start: at(9, 0), DurationMinutes: 60},
		{ID: "b", Start: at(9, 30), DurationMinutes: 60},
		{ID: "c", Start: at(12, 0), DurationMinutes: 30},
	}
	slots := Layout(events, DefaultOptions())
	c := slotByID(t, slots, "c")
	assert.Equal(t, 0, c.Column)
	assert.Equal(t, 2, c.ColumnCount)
}

func TestLayoutReflowSizesWholeClusterForFinalCount(t *testing.T) {
	events := []Event{
		{ID: "a", Start: at(9, 0), DurationMinutes: 30},
		{ID: "b", Start: at(9, 10), DurationMinutes: 30},
		{ID: "c", Start: at(9, 20), DurationMinutes: 30},
	}
	slots := Layout(events, Options{Buffer: DefaultBuffer, Margin: 0})
	for _, s := range slots {
		assert.Equal(t, 3, s.ColumnCount, s.InterventionID)
		assert.InDelta(t, 100.0/3, s.WidthFraction, 1e-9)
	}
	assert.InDelta(t, 200.0/3, slotByID(t, slots, "c").LeftFraction, 1e-9)
}

func TestLayoutTieBreaksShorterFirst(t *testing.T) {
	events := []Event{
		{ID: "long", Start: at(9, 0), DurationMinutes: 90},
		{ID: "short", Start: at(9, 0), DurationMinutes: 15},
	}
	slots := Layout(events, DefaultOptions())
	assert.Equal(t, "short", slots[0].InterventionID)
	assert.Equal(t, 0, slots[0].Column)
	assert.Equal(t, 1, slotByID(t, slots, "long").Column)
}

func TestLayoutClampsDurations(t *testing.T) {
	events := []Event{
		{ID: "huge", Start: at(8, 0), DurationMinutes: 600},
		{ID: "zero", Start: at(12, 0), DurationMinutes: 0},
	}
	slots := Layout(events, DefaultOptions())
	huge := slotByID(t, slots, "huge")
	assert.Equal(t, at(10, 0), huge.End)
	zero := slotByID(t, slots, "zero")
	assert.Equal(t, at(12, 1), zero.End)
	// 10:00 + 2h buffer = 12:00, so "zero" is a new cluster.
	assert.Equal(t, 1, zero.ColumnCount)
}

func TestLayoutDoesNotMutateInput(t *testing.T) {
	events := []Event{
		{ID: "b", Start: at(10, 0), DurationMinutes: 500},
		{ID: "a", Start: at(9, 0), DurationMinutes: 60},
	}
	Layout(events, DefaultOptions())
	assert.Equal(t, "b", events[0].ID)
	assert.Equal(t, 500, events[0].DurationMinutes)
}

// Two events sharing a column are always separated by at least the buffer.
func TestLayoutSameColumnSeparation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	opts := DefaultOptions()

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(12)
		events := make([]Event, n)
		for i := range events {
			events[i] = Event{
				ID:              fmt.Sprintf("ev%d", i),
				Start:           day.Add(time.Duration(rng.Intn(16*60)) * time.Minute),
				DurationMinutes: 1 + rng.Intn(120),
			}
		}
		slots := Layout(events, opts)
		require.Len(t, slots, n)

		for i := 0; i < len(slots); i++ {
			for j := i + 1; j < len(slots); j++ {
				a, b := slots[i], slots[j]
				if a.Column != b.Column {
					continue
				}
				assert.False(t, b.Start.Before(a.End.Add(opts.Buffer)),
					"round %d: %s and %s share column %d", round, a.InterventionID, b.InterventionID, a.Column)
			}
		}
	}
}

func TestClusters(t *testing.T) {
	events := []Event{
		{ID: "a", Start: at(8, 0), DurationMinutes: 30},
		{ID: "b", Start: at(10, 0), DurationMinutes: 30},
		{ID: "c", Start: at(12, 30), DurationMinutes: 30},
		{ID: "d", Start: at(16, 0), DurationMinutes: 30},
	}
	clusters := Clusters(events, DefaultBuffer)
	require.Len(t, clusters, 3)
	assert.Len(t, clusters[0], 2)
	assert.Equal(t, "c", clusters[1][0].ID)
	assert.Equal(t, "d", clusters[2][0].ID)
}

// =============================================================================
// View Tests
// =============================================================================

func TestDayKeepsOnlyThatDay(t *testing.T) {
	events := []Event{
		{ID: "today", Start: at(9, 0), DurationMinutes: 30},
		{ID: "tomorrow", Start: at(33, 0), DurationMinutes: 30},
	}
	d := Day(events, at(15, 0), DefaultOptions())
	assert.Equal(t, day, d.Day)
	require.Len(t, d.Slots, 1)
	assert.Equal(t, "today", d.Slots[0].InterventionID)
}

func TestWeekLaysOutDaysIndependently(t *testing.T) {
	// 2026-06-10 is a Wednesday.
	events := []Event{
		{ID: "wed1", Start: at(9, 0), DurationMinutes: 60},
		{ID: "wed2", Start: at(9, 30), DurationMinutes: 60},
		{ID: "thu", Start: at(24+9, 0), DurationMinutes: 60},
	}
	week := Week(events, day, DefaultOptions())
	require.Len(t, week, 7)
	assert.Equal(t, time.Monday, week[0].Day.Weekday())
	assert.Equal(t, day.AddDate(0, 0, -2), week[0].Day)

	assert.Empty(t, week[0].Slots)
	assert.Len(t, week[2].Slots, 2)
	require.Len(t, week[3].Slots, 1)
	assert.Equal(t, 1, week[3].Slots[0].ColumnCount)
}

func TestWeekStartOnSunday(t *testing.T) {
	sunday := time.Date(2026, 6, 14, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC), WeekStart(sunday))
}

func TestMonthTopTruncates(t *testing.T) {
	events := []Event{
		{ID: "c", Start: at(14, 0), DurationMinutes: 30},
		{ID: "a", Start: at(8, 0), DurationMinutes: 30},
		{ID: "b", Start: at(10, 0), DurationMinutes: 30},
	}
	cells := MonthTop(events, day, 2)
	require.Len(t, cells, 30)

	cell := cells[9]
	assert.Equal(t, day, cell.Day)
	require.Len(t, cell.Events, 2)
	assert.Equal(t, "a", cell.Events[0].ID)
	assert.Equal(t, "b", cell.Events[1].ID)
	assert.Equal(t, 1, cell.Hidden)
	assert.Empty(t, cells[0].Events)
}

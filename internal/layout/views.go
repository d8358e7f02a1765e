package layout

import (
	"time"

	"github.com/manav03panchal/artisan/internal/clock"
)

// DayLayout is the packed layout of one rendered calendar day.
type DayLayout struct {
	Day   time.Time `json:"day"`
	Slots []Slot    `json:"slots"`
}

// Day lays out the events that start on day's calendar date.
func Day(events []Event, day time.Time, opts Options) DayLayout {
	start := clock.StartOfDay(day)
	var onDay []Event
	for _, e := range events {
		if clock.SameDay(start, e.Start) {
			onDay = append(onDay, e)
		}
	}
	return DayLayout{Day: start, Slots: Layout(onDay, opts)}
}

// Days lays out n consecutive days starting at from. Each day is packed
// independently; an event belongs to the day it starts on.
func Days(events []Event, from time.Time, n int, opts Options) []DayLayout {
	start := clock.StartOfDay(from)
	buckets := make(map[string][]Event, n)
	for _, e := range events {
		key := clock.DayBucket(e.Start.In(start.Location()))
		buckets[key] = append(buckets[key], e)
	}

	days := make([]DayLayout, 0, n)
	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, i)
		days = append(days, DayLayout{
			Day:   day,
			Slots: Layout(buckets[clock.DayBucket(day)], opts),
		})
	}
	return days
}

// Week lays out the seven days of the week containing day, Monday first.
func Week(events []Event, day time.Time, opts Options) []DayLayout {
	return Days(events, WeekStart(day), 7, opts)
}

// WeekStart returns the Monday midnight of t's week.
func WeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return clock.StartOfDay(t).AddDate(0, 0, 1-weekday)
}

// MonthCell is one day of a month grid: the first events of the day in start
// order and how many were left out.
type MonthCell struct {
	Day    time.Time `json:"day"`
	Events []Event   `json:"events"`
	Hidden int       `json:"hidden"`
}

// MonthTop keeps at most limit events per day for every day of t's month.
// Month cells are too small for columns, so no packing happens here.
func MonthTop(events []Event, t time.Time, limit int) []MonthCell {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())

	buckets := make(map[string][]Event)
	for _, e := range events {
		key := clock.DayBucket(e.Start.In(first.Location()))
		buckets[key] = append(buckets[key], e)
	}

	cells := make([]MonthCell, 0, 31)
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		dayEvents := buckets[clock.DayBucket(day)]
		sortEvents(dayEvents)
		cell := MonthCell{Day: day, Events: dayEvents}
		if limit >= 0 && len(dayEvents) > limit {
			cell.Events = dayEvents[:limit]
			cell.Hidden = len(dayEvents) - limit
		}
		cells = append(cells, cell)
	}
	return cells
}

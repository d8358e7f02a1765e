// Package layout packs timed calendar events into side-by-side columns.
//
// Two events conflict when the later one starts before the earlier one's end
// plus a fixed buffer, so events that merely follow each other closely are
// still drawn apart. Events are grouped into conflict clusters (maximal sets
// whose buffer-extended intervals transitively intersect) and every cluster is
// packed greedily on its own; all members of a cluster share the cluster's
// final column count.
package layout

import (
	"sort"
	"time"

	"github.com/manav03panchal/artisan/internal/guard"
)

// Defaults used by day and week views.
const (
	DefaultBuffer = 120 * time.Minute
	DefaultMargin = 1.0
)

// Event is one timed item to place.
type Event struct {
	ID              string
	Start           time.Time
	DurationMinutes int
}

// End returns the event's end time.
func (e Event) End() time.Time {
	return e.Start.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// Slot is the derived position of an event. Fractions are percentages of the
// day column width.
type Slot struct {
	InterventionID string    `json:"intervention_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Column         int       `json:"column"`
	ColumnCount    int       `json:"column_count"`
	LeftFraction   float64   `json:"left_fraction"`
	WidthFraction  float64   `json:"width_fraction"`
}

// Options tunes the packing.
type Options struct {
	// Buffer is the minimum separation between two events sharing a column.
	Buffer time.Duration
	// Margin is the gap between adjacent columns, in percent.
	Margin float64
}

// DefaultOptions returns the 120 minute buffer and 1% margin.
func DefaultOptions() Options {
	return Options{Buffer: DefaultBuffer, Margin: DefaultMargin}
}

func (o Options) normalized() Options {
	if o.Buffer < 0 {
		o.Buffer = 0
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	return o
}

// Layout places events. Durations are clamped to the valid range first.
// Slots come back ordered by start time, shorter events first on ties.
func Layout(events []Event, opts Options) []Slot {
	if len(events) == 0 {
		return nil
	}
	opts = opts.normalized()

	sorted := make([]Event, len(events))
	for i, e := range events {
		e.DurationMinutes = guard.ClampDuration(e.DurationMinutes)
		sorted[i] = e
	}
	sortEvents(sorted)

	slots := make([]Slot, 0, len(sorted))
	for _, cluster := range Clusters(sorted, opts.Buffer) {
		slots = append(slots, packCluster(cluster, opts)...)
	}
	return slots
}

// sortEvents orders by start, then shorter duration, then id.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.DurationMinutes != b.DurationMinutes {
			return a.DurationMinutes < b.DurationMinutes
		}
		return a.ID < b.ID
	})
}

// Clusters splits events, which must already be sorted, into conflict
// clusters. An event joins the current cluster when it starts before the
// latest buffered end seen in it.
func Clusters(sorted []Event, buffer time.Duration) [][]Event {
	var (
		clusters [][]Event
		current  []Event
		reach    time.Time
	)
	for _, e := range sorted {
		if len(current) > 0 && !e.Start.Before(reach) {
			clusters = append(clusters, current)
			current = nil
		}
		current = append(current, e)
		if end := e.End().Add(buffer); len(current) == 1 || end.After(reach) {
			reach = end
		}
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}
	return clusters
}

// packCluster assigns each event to the first column whose buffered end is at
// or before its start, opening a column when none is free, then sizes every
// event for the final column count.
func packCluster(cluster []Event, opts Options) []Slot {
	var bufferedEnds []time.Time
	columns := make([]int, len(cluster))

	for i, e := range cluster {
		col := -1
		for c, end := range bufferedEnds {
			if !end.After(e.Start) {
				col = c
				break
			}
		}
		if col < 0 {
			col = len(bufferedEnds)
			bufferedEnds = append(bufferedEnds, time.Time{})
		}
		bufferedEnds[col] = e.End().Add(opts.Buffer)
		columns[i] = col
	}

	count := len(bufferedEnds)
	width := columnWidth(count, opts.Margin)
	slots := make([]Slot, len(cluster))
	for i, e := range cluster {
		slots[i] = Slot{
			InterventionID: e.ID,
			Start:          e.Start,
			End:            e.End(),
			Column:         columns[i],
			ColumnCount:    count,
			LeftFraction:   float64(columns[i]) * (width + opts.Margin),
			WidthFraction:  width,
		}
	}
	return slots
}

// columnWidth splits 100% between count columns separated by margin.
func columnWidth(count int, margin float64) float64 {
	if count <= 1 {
		return 100
	}
	total := margin * float64(count-1)
	if total >= 100 {
		total = 0
	}
	return (100 - total) / float64(count)
}

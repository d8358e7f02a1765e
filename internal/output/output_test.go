package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/artisan/internal/escalation"
	"github.com/manav03panchal/artisan/internal/guard"
	"github.com/manav03panchal/artisan/internal/layout"
	"github.com/manav03panchal/artisan/internal/model"
)

var now = time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC)

func newTestFormatter(format Format) (*Formatter, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &Formatter{Writer: buf, Format: format, ColorMode: ColorNever}, buf
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"cli", "json", "plain"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}

func TestParseColorMode(t *testing.T) {
	m, err := ParseColorMode("always")
	require.NoError(t, err)
	assert.Equal(t, ColorAlways, m)

	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}

func TestIsColorEnabled(t *testing.T) {
	f, _ := newTestFormatter(FormatCLI)
	assert.False(t, f.IsColorEnabled())

	f.ColorMode = ColorAlways
	assert.True(t, f.IsColorEnabled())

	f.Format = FormatPlain
	assert.False(t, f.IsColorEnabled(), "plain never colors")

	f.Format = FormatCLI
	f.ColorMode = ColorAuto
	assert.False(t, f.IsColorEnabled(), "a buffer is not a terminal")
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{1, "1m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h 30m"},
		{120, "2h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinutes(tt.minutes))
	}
}

func TestFormatRelative(t *testing.T) {
	assert.Equal(t, "just now", FormatRelative(now.Add(-20*time.Second), now))
	assert.Equal(t, "3 days ago", FormatRelative(now.AddDate(0, 0, -3), now))
	assert.Equal(t, "2 hours from now", FormatRelative(now.Add(2*time.Hour), now))
}

// =============================================================================
// CLI Formatter Tests
// =============================================================================

func TestCLIMessages(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	c := NewCLIFormatter(f)

	c.Success("saved")
	c.Warning("careful")
	c.Error("failed")
	c.Muted("quiet")

	assert.Equal(t, "✓ saved\n⚠ careful\n✗ failed\nquiet\n", buf.String())
}

func TestCLIPrintInterventions(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	c := NewCLIFormatter(f)

	c.PrintInterventions(nil)
	assert.Equal(t, "No interventions.\n", buf.String())

	buf.Reset()
	c.PrintInterventions([]*model.Intervention{{
		ID:              "0196b1a2-aaaa-7bbb-8ccc-dddddddddddd",
		Title:           "Leak repair",
		ScheduledAt:     now,
		DurationMinutes: 90,
		Status:          model.StatusTodo,
	}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[2], "0196b1a2")
	assert.Contains(t, lines[2], "2026-05-12 10:00")
	assert.Contains(t, lines[2], "1h 30m")
	assert.Contains(t, lines[2], "Leak repair")
}

func TestCLIPrintStatusUpdate(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	c := NewCLIFormatter(f)

	iv := &model.Intervention{Title: "Leak repair", Status: model.StatusTodo}
	c.PrintStatusUpdate(&escalation.StatusUpdate{
		Intervention: iv,
		Previous:     model.StatusCancelled,
		Correction: &guard.InvalidTransitionError{
			Reason:            "in the future",
			Proposed:          model.StatusCompleted,
			SuggestedFallback: model.StatusTodo,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "⚠ in the future; used todo instead")
	assert.Contains(t, out, "✓ Leak repair: cancelled → todo")

	buf.Reset()
	c.PrintStatusUpdate(&escalation.StatusUpdate{Intervention: iv, Previous: model.StatusTodo})
	assert.Equal(t, "Leak repair is already todo\n", buf.String())
}

func TestCLIPrintInvoices(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	due := now.AddDate(0, 0, -3)

	NewCLIFormatter(f).PrintInvoices([]*model.Invoice{{
		ID: "inv-00000001", Number: "F-001", TotalCents: 125050, Status: model.InvoiceOverdue, DueDate: &due,
	}}, now)

	out := buf.String()
	assert.Contains(t, out, "F-001")
	assert.Contains(t, out, "1,250.50")
	assert.Contains(t, out, "2026-05-09 (3 days ago)")
}

func TestCLIPrintNotifications(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	c := NewCLIFormatter(f)

	read := model.NewNotification("a", model.NotifyInterventionStatus, "Intervention completed", "done", now.Add(-2*time.Hour))
	read.ID = "n2"
	read.Status = model.NotificationRead
	unread := model.NewNotification("a", model.NotifyInvoiceOverdue, "Final notice: invoice F-1", "pay", now.Add(-time.Hour)).
		WithUrgent(true)
	unread.ID = "n1"

	c.PrintNotifications([]*model.Notification{unread, read}, 1, now)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Notifications (1 unread)", lines[0])
	assert.Equal(t, "• n1  Final notice: invoice F-1  1 hour ago", lines[1])
	assert.Equal(t, "  n2  Intervention completed  2 hours ago", lines[3])
}

func TestCLIPrintScans(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	c := NewCLIFormatter(f)

	c.PrintInvoiceScan(escalation.InvoiceScanResult{
		Scanned: 3, Created: 1, Skipped: 1, Promoted: 1,
		Failures: []escalation.ItemFailure{{SubjectID: "inv3", Err: errors.New("disk full")}},
	})
	c.PrintInterventionScan(escalation.InterventionScanResult{RemindersToday: 2, Reminders24h: 1})

	out := buf.String()
	assert.Contains(t, out, "Invoices: 3 checked, 1 reminder(s) issued, 1 skipped")
	assert.Contains(t, out, "1 invoice(s) marked overdue")
	assert.Contains(t, out, "✗ inv3: disk full")
	assert.Contains(t, out, "Interventions: 2 reminder(s) for today, 1 for tomorrow, 0 already sent")
}

func TestCLIPrintDay(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	events := []layout.Event{
		{ID: "a", Start: now, DurationMinutes: 60},
		{ID: "b", Start: now.Add(30 * time.Minute), DurationMinutes: 60},
	}
	day := layout.Day(events, now, layout.DefaultOptions())

	NewCLIFormatter(f).PrintDay(day, map[string]string{"a": "Boiler", "b": "Leak"})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Tuesday 12 May 2026", lines[0])
	assert.Contains(t, lines[1], "10:00-11:00")
	assert.Contains(t, lines[1], "Boiler")
	assert.Contains(t, lines[2], "Leak")
}

func TestCLIPrintMonth(t *testing.T) {
	f, buf := newTestFormatter(FormatCLI)
	events := []layout.Event{
		{ID: "a", Start: now, DurationMinutes: 30},
		{ID: "b", Start: now.Add(time.Hour), DurationMinutes: 30},
	}
	cells := layout.MonthTop(events, now, 1)

	NewCLIFormatter(f).PrintMonth(cells, map[string]string{"a": "Boiler", "b": "Leak"})
	out := buf.String()
	assert.Contains(t, out, "May 2026")
	assert.Contains(t, out, "Tue 12  10:00 Boiler +1 more")
}

func TestColumnBar(t *testing.T) {
	assert.Equal(t, "██████████", ColumnBar(layout.Slot{LeftFraction: 0, WidthFraction: 100}, 10))
	assert.Equal(t, "·····█████", ColumnBar(layout.Slot{LeftFraction: 50.5, WidthFraction: 49.5}, 10))
	assert.Equal(t, "█·········", ColumnBar(layout.Slot{LeftFraction: 0, WidthFraction: 2}, 10))
}

// =============================================================================
// JSON Formatter Tests
// =============================================================================

func TestJSONPrintScan(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	j := NewJSONFormatter(f)

	inv := escalation.InvoiceScanResult{
		Scanned: 2, Created: 1,
		Failures: []escalation.ItemFailure{{SubjectID: "inv2", Err: errors.New("boom")}},
	}
	require.NoError(t, j.PrintScan(NewScanResponse("abcd1234", &inv, nil)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "abcd1234", got["run_id"])
	assert.NotContains(t, got, "interventions")

	invoices := got["invoices"].(map[string]any)
	assert.EqualValues(t, 1, invoices["created"])
	failures := invoices["failures"].([]any)
	require.Len(t, failures, 1)
	assert.Equal(t, map[string]any{"subject_id": "inv2", "error": "boom"}, failures[0])
}

func TestJSONPrintCalendar(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	day := layout.Day([]layout.Event{{ID: "a", Start: now, DurationMinutes: 60}}, now, layout.DefaultOptions())

	require.NoError(t, NewJSONFormatter(f).PrintCalendar([]layout.DayLayout{day}, map[string]string{"a": "Boiler"}))

	var got struct {
		Days []struct {
			Day   string `json:"day"`
			Slots []struct {
				InterventionID string  `json:"intervention_id"`
				Title          string  `json:"title"`
				WidthFraction  float64 `json:"width_fraction"`
				ColumnCount    int     `json:"column_count"`
			} `json:"slots"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Days, 1)
	assert.Equal(t, "2026-05-12", got.Days[0].Day)
	require.Len(t, got.Days[0].Slots, 1)
	assert.Equal(t, "Boiler", got.Days[0].Slots[0].Title)
	assert.Equal(t, 100.0, got.Days[0].Slots[0].WidthFraction)
	assert.Equal(t, 1, got.Days[0].Slots[0].ColumnCount)
}

func TestJSONPrintNotificationsEmpty(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	require.NoError(t, NewJSONFormatter(f).PrintNotifications(nil, 0))
	assert.JSONEq(t, `{"notifications": [], "unread": 0}`, buf.String())
}

func TestJSONPrintStatusUpdate(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	u := &escalation.StatusUpdate{
		Intervention: &model.Intervention{ID: "iv1", Title: "Leak", ScheduledAt: now, DurationMinutes: 30, Status: model.StatusCompleted},
		Previous:     model.StatusTodo,
		Notification: &model.Notification{ID: "n1"},
	}
	require.NoError(t, NewJSONFormatter(f).PrintStatusUpdate(u))

	var got StatusUpdateResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "todo", got.Previous)
	assert.Equal(t, "completed", got.Intervention.Status)
	assert.Equal(t, "n1", got.NotificationID)
	assert.Empty(t, got.CorrectedFrom)
}

func TestJSONPrintStatusUpdates(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	us := []*escalation.StatusUpdate{
		{Intervention: &model.Intervention{ID: "iv1", ScheduledAt: now, Status: model.StatusCancelled}, Previous: model.StatusTodo},
		{Intervention: &model.Intervention{ID: "iv2", ScheduledAt: now, Status: model.StatusCancelled}, Previous: model.StatusCancelled},
	}
	require.NoError(t, NewJSONFormatter(f).PrintStatusUpdates(us))

	var got struct {
		Updates []StatusUpdateResponse `json:"updates"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Updates, 2)
	assert.Equal(t, "iv1", got.Updates[0].Intervention.ID)
	assert.Equal(t, "cancelled", got.Updates[1].Previous)
}

func TestJSONPrintError(t *testing.T) {
	f, buf := newTestFormatter(FormatJSON)
	require.NoError(t, NewJSONFormatter(f).PrintError("invoice not found", "Run 'artisan invoice list'"))
	assert.JSONEq(t, `{"status":"error","error":"invoice not found","suggestion":"Run 'artisan invoice list'"}`, buf.String())
}

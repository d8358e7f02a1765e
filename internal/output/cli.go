package output

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/artisan/internal/escalation"
	"github.com/manav03panchal/artisan/internal/layout"
	"github.com/manav03panchal/artisan/internal/model"
	"github.com/manav03panchal/artisan/internal/reminder"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleUrgent = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Status colors an intervention status.
func (c *CLIFormatter) Status(s model.InterventionStatus) string {
	switch s {
	case model.StatusCompleted:
		return c.render(styleSuccess, string(s))
	case model.StatusCancelled:
		return c.render(styleMuted, string(s))
	default:
		return c.render(styleWarning, string(s))
	}
}

// InvoiceStatus colors an invoice status.
func (c *CLIFormatter) InvoiceStatus(s model.InvoiceStatus) string {
	switch s {
	case model.InvoicePaid:
		return c.render(styleSuccess, string(s))
	case model.InvoiceOverdue:
		return c.render(styleError, string(s))
	case model.InvoiceCancelled, model.InvoiceDraft:
		return c.render(styleMuted, string(s))
	default:
		return string(s)
	}
}

// PrintInterventions prints interventions as a table.
func (c *CLIFormatter) PrintInterventions(ivs []*model.Intervention) {
	if len(ivs) == 0 {
		c.Muted("No interventions.")
		return
	}
	rows := make([]TableRow, 0, len(ivs))
	for _, iv := range ivs {
		rows = append(rows, TableRow{Columns: []string{
			model.ShortID(iv.ID),
			FormatTimeShort(iv.ScheduledAt),
			FormatMinutes(iv.DurationMinutes),
			c.Status(iv.Status),
			iv.Title,
		}})
	}
	c.PrintTable([]string{"ID", "SCHEDULED", "LENGTH", "STATUS", "TITLE"}, rows)
}

// PrintStatusUpdate reports an applied status change.
func (c *CLIFormatter) PrintStatusUpdate(u *escalation.StatusUpdate) {
	if u.Correction != nil {
		c.Warning(fmt.Sprintf("%s; used %s instead", u.Correction.Reason, u.Correction.SuggestedFallback))
	}
	iv := u.Intervention
	if u.Previous == iv.Status {
		c.Muted(fmt.Sprintf("%s is already %s", iv.Title, iv.Status))
		return
	}
	c.Success(fmt.Sprintf("%s: %s → %s", iv.Title, u.Previous, c.Status(iv.Status)))
}

// PrintInvoices prints invoices as a table.
func (c *CLIFormatter) PrintInvoices(invoices []*model.Invoice, now time.Time) {
	if len(invoices) == 0 {
		c.Muted("No invoices.")
		return
	}
	rows := make([]TableRow, 0, len(invoices))
	for _, inv := range invoices {
		due := "-"
		if inv.DueDate != nil {
			due = FormatDate(*inv.DueDate) + " (" + FormatRelative(*inv.DueDate, now) + ")"
		}
		rows = append(rows, TableRow{Columns: []string{
			model.ShortID(inv.ID),
			inv.Number,
			reminder.FormatAmount(inv.TotalCents),
			c.InvoiceStatus(inv.Status),
			due,
		}})
	}
	c.PrintTable([]string{"ID", "NUMBER", "AMOUNT", "STATUS", "DUE"}, rows)
}

// PrintClients prints clients as a table.
func (c *CLIFormatter) PrintClients(clients []*model.Client) {
	if len(clients) == 0 {
		c.Muted("No clients.")
		return
	}
	rows := make([]TableRow, 0, len(clients))
	for _, cl := range clients {
		rows = append(rows, TableRow{Columns: []string{model.ShortID(cl.ID), cl.Name, cl.Email, cl.Phone}})
	}
	c.PrintTable([]string{"ID", "NAME", "EMAIL", "PHONE"}, rows)
}

// PrintNotifications prints the inbox, newest first.
func (c *CLIFormatter) PrintNotifications(ns []*model.Notification, unread int, now time.Time) {
	if len(ns) == 0 {
		c.Muted("No notifications.")
		return
	}
	c.Title(fmt.Sprintf("Notifications (%d unread)", unread))
	for _, n := range ns {
		marker := " "
		if n.IsUnread() {
			marker = "•"
		}
		title := n.Title
		if n.Urgent {
			title = c.render(styleUrgent, title)
		} else if n.IsUnread() {
			title = c.render(styleBold, title)
		}
		c.Printf("%s %s  %s  %s\n", marker, model.ShortID(n.ID), title,
			c.render(styleMuted, FormatRelative(n.CreatedAt, now)))
		c.Printf("    %s\n", n.Message)
	}
}

// PrintInvoiceScan prints the totals of an invoice scan.
func (c *CLIFormatter) PrintInvoiceScan(res escalation.InvoiceScanResult) {
	c.Printf("Invoices: %d checked, %d reminder(s) issued, %d skipped\n", res.Scanned, res.Created, res.Skipped)
	if res.Promoted > 0 {
		c.Printf("  %d invoice(s) marked overdue\n", res.Promoted)
	}
	for _, f := range res.Failures {
		c.Error(f.Error())
	}
}

// PrintInterventionScan prints the totals of an intervention scan.
func (c *CLIFormatter) PrintInterventionScan(res escalation.InterventionScanResult) {
	c.Printf("Interventions: %d reminder(s) for today, %d for tomorrow, %d already sent\n",
		res.RemindersToday, res.Reminders24h, res.Skipped)
	for _, f := range res.Failures {
		c.Error(f.Error())
	}
}

// PrintDay prints one laid out day. titles maps intervention ids to labels.
func (c *CLIFormatter) PrintDay(day layout.DayLayout, titles map[string]string) {
	c.Title(day.Day.Format("Monday 2 January 2006"))
	if len(day.Slots) == 0 {
		c.Muted("  nothing scheduled")
		return
	}
	for _, s := range day.Slots {
		c.Printf("  %s-%s  %s  %s\n",
			FormatTimeOnly(s.Start), FormatTimeOnly(s.End),
			c.render(styleMuted, ColumnBar(s, 20)),
			titles[s.InterventionID])
	}
}

// PrintWeek prints consecutive laid out days.
func (c *CLIFormatter) PrintWeek(days []layout.DayLayout, titles map[string]string) {
	for i, d := range days {
		if i > 0 {
			c.Println()
		}
		c.PrintDay(d, titles)
	}
}

// PrintMonth prints the top events of every day that has any.
func (c *CLIFormatter) PrintMonth(cells []layout.MonthCell, titles map[string]string) {
	if len(cells) == 0 {
		return
	}
	c.Title(cells[0].Day.Format("January 2006"))
	empty := true
	for _, cell := range cells {
		if len(cell.Events) == 0 {
			continue
		}
		empty = false
		labels := make([]string, 0, len(cell.Events))
		for _, e := range cell.Events {
			labels = append(labels, FormatTimeOnly(e.Start)+" "+titles[e.ID])
		}
		line := fmt.Sprintf("  %s  %s", cell.Day.Format("Mon 02"), strings.Join(labels, ", "))
		if cell.Hidden > 0 {
			line += c.render(styleMuted, fmt.Sprintf(" +%d more", cell.Hidden))
		}
		c.Println(line)
	}
	if empty {
		c.Muted("  nothing scheduled")
	}
}

// ColumnBar draws a slot's horizontal position inside a width-character lane.
func ColumnBar(s layout.Slot, width int) string {
	left := int(math.Round(s.LeftFraction / 100 * float64(width)))
	size := max(int(math.Round(s.WidthFraction/100*float64(width))), 1)
	left = min(left, width-size)
	return strings.Repeat("·", left) + strings.Repeat("█", size) + strings.Repeat("·", width-left-size)
}

// TableRow is one line of PrintTable.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	var header strings.Builder
	for i, h := range headers {
		header.WriteString(pad(h, widths[i]))
	}
	c.Println(strings.TrimRight(c.render(styleBold, header.String()), " "))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				line.WriteString(pad(col, widths[i]))
			}
		}
		c.Println(strings.TrimRight(line.String(), " "))
	}
}

// pad left-aligns s in a column of width w followed by two spaces. Widths are
// measured in cells so styled text lines up.
func pad(s string, w int) string {
	return s + strings.Repeat(" ", w-lipgloss.Width(s)+2)
}

package output

import (
	"time"

	"github.com/manav03panchal/artisan/internal/escalation"
	"github.com/manav03panchal/artisan/internal/layout"
	"github.com/manav03panchal/artisan/internal/model"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// InterventionOutput represents an intervention in JSON output.
type InterventionOutput struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ClientID        string `json:"client_id,omitempty"`
	Address         string `json:"address,omitempty"`
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
}

// NewInterventionOutput creates an InterventionOutput from an Intervention.
func NewInterventionOutput(iv *model.Intervention) *InterventionOutput {
	return &InterventionOutput{
		ID:              iv.ID,
		Title:           iv.Title,
		ClientID:        iv.ClientID,
		Address:         iv.Address,
		ScheduledAt:     iv.ScheduledAt.Format(time.RFC3339),
		DurationMinutes: iv.DurationMinutes,
		Status:          string(iv.Status),
	}
}

// StatusUpdateResponse represents a status change in JSON.
type StatusUpdateResponse struct {
	Intervention   *InterventionOutput `json:"intervention"`
	Previous       string              `json:"previous_status"`
	CorrectedFrom  string              `json:"corrected_from,omitempty"`
	NotificationID string              `json:"notification_id,omitempty"`
}

// InvoiceOutput represents an invoice in JSON output.
type InvoiceOutput struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	ClientID   string `json:"client_id,omitempty"`
	Status     string `json:"status"`
	TotalCents int64  `json:"total_cents"`
	DueDate    string `json:"due_date,omitempty"`
}

// NewInvoiceOutput creates an InvoiceOutput from an Invoice.
func NewInvoiceOutput(inv *model.Invoice) *InvoiceOutput {
	out := &InvoiceOutput{
		ID:         inv.ID,
		Number:     inv.Number,
		ClientID:   inv.ClientID,
		Status:     string(inv.Status),
		TotalCents: inv.TotalCents,
	}
	if inv.DueDate != nil {
		out.DueDate = FormatDate(*inv.DueDate)
	}
	return out
}

// NotificationsResponse represents the inbox in JSON.
type NotificationsResponse struct {
	Notifications []*model.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// ScanResponse represents the result of "artisan check".
type ScanResponse struct {
	RunID         string                             `json:"run_id,omitempty"`
	Invoices      *escalation.InvoiceScanResult      `json:"invoices,omitempty"`
	Interventions *escalation.InterventionScanResult `json:"interventions,omitempty"`
}

// NewScanResponse builds a ScanResponse. Either result may be nil when the
// corresponding scan did not run.
func NewScanResponse(runID string, inv *escalation.InvoiceScanResult, ivs *escalation.InterventionScanResult) *ScanResponse {
	return &ScanResponse{RunID: runID, Invoices: inv, Interventions: ivs}
}

// CalendarSlot is a laid out intervention in JSON output.
type CalendarSlot struct {
	layout.Slot
	Title string `json:"title"`
}

// CalendarDay is one laid out day in JSON output.
type CalendarDay struct {
	Day   string         `json:"day"`
	Slots []CalendarSlot `json:"slots"`
}

// NewCalendarDays converts day layouts for JSON output.
func NewCalendarDays(days []layout.DayLayout, titles map[string]string) []CalendarDay {
	out := make([]CalendarDay, 0, len(days))
	for _, d := range days {
		cd := CalendarDay{Day: FormatDate(d.Day), Slots: make([]CalendarSlot, 0, len(d.Slots))}
		for _, s := range d.Slots {
			cd.Slots = append(cd.Slots, CalendarSlot{Slot: s, Title: titles[s.InterventionID]})
		}
		out = append(out, cd)
	}
	return out
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(errMsg, suggestion string) error {
	return j.JSON(ErrorResponse{Status: "error", Error: errMsg, Suggestion: suggestion})
}

// PrintInterventions outputs interventions in JSON format.
func (j *JSONFormatter) PrintInterventions(ivs []*model.Intervention) error {
	out := make([]*InterventionOutput, len(ivs))
	for i, iv := range ivs {
		out[i] = NewInterventionOutput(iv)
	}
	return j.JSON(map[string]any{"interventions": out})
}

func newStatusUpdateResponse(u *escalation.StatusUpdate) StatusUpdateResponse {
	resp := StatusUpdateResponse{
		Intervention: NewInterventionOutput(u.Intervention),
		Previous:     string(u.Previous),
	}
	if u.Correction != nil {
		resp.CorrectedFrom = string(u.Correction.Proposed)
	}
	if u.Notification != nil {
		resp.NotificationID = u.Notification.ID
	}
	return resp
}

// PrintStatusUpdate outputs a status change in JSON format.
func (j *JSONFormatter) PrintStatusUpdate(u *escalation.StatusUpdate) error {
	return j.JSON(newStatusUpdateResponse(u))
}

// PrintStatusUpdates outputs the changes of a bulk update in JSON format.
func (j *JSONFormatter) PrintStatusUpdates(us []*escalation.StatusUpdate) error {
	out := make([]StatusUpdateResponse, len(us))
	for i, u := range us {
		out[i] = newStatusUpdateResponse(u)
	}
	return j.JSON(map[string]any{"updates": out})
}

// PrintInvoices outputs invoices in JSON format.
func (j *JSONFormatter) PrintInvoices(invoices []*model.Invoice) error {
	out := make([]*InvoiceOutput, len(invoices))
	for i, inv := range invoices {
		out[i] = NewInvoiceOutput(inv)
	}
	return j.JSON(map[string]any{"invoices": out})
}

// PrintClients outputs clients in JSON format.
func (j *JSONFormatter) PrintClients(clients []*model.Client) error {
	if clients == nil {
		clients = []*model.Client{}
	}
	return j.JSON(map[string]any{"clients": clients})
}

// PrintNotifications outputs the inbox in JSON format.
func (j *JSONFormatter) PrintNotifications(ns []*model.Notification, unread int) error {
	if ns == nil {
		ns = []*model.Notification{}
	}
	return j.JSON(NotificationsResponse{Notifications: ns, Unread: unread})
}

// PrintScan outputs scan results in JSON format.
func (j *JSONFormatter) PrintScan(resp *ScanResponse) error {
	return j.JSON(resp)
}

// PrintCalendar outputs laid out days in JSON format.
func (j *JSONFormatter) PrintCalendar(days []layout.DayLayout, titles map[string]string) error {
	return j.JSON(map[string]any{"days": NewCalendarDays(days, titles)})
}

// PrintMonth outputs a month grid in JSON format.
func (j *JSONFormatter) PrintMonth(cells []layout.MonthCell) error {
	return j.JSON(map[string]any{"cells": cells})
}

package cmd

import (
	"context"
	"strings"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/layout"
	"github.com/manav03panchal/artisan/internal/model"
)

// statusAliases maps what people type to the statuses an intervention can
// be stored with. in_progress is only reported through OnStatusChange.
var statusAliases = map[string]model.InterventionStatus{
	"todo":        model.StatusTodo,
	"planned":     model.StatusTodo,
	"completed":   model.StatusCompleted,
	"done":        model.StatusCompleted,
	"cancelled":   model.StatusCancelled,
	"canceled":    model.StatusCancelled,
	"cancel":      model.StatusCancelled,
}

func parseStatus(s string) (model.InterventionStatus, error) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", apperrors.NewUserErrorWithField("status", s, "Unknown status", "").
		WithSentinel(apperrors.ErrInvalidStatus)
}

func parseInvoiceStatus(s string) (model.InvoiceStatus, error) {
	st := model.InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", apperrors.NewUserErrorWithField("status", s, "Unknown invoice status",
			"Use one of: draft, sent, overdue, paid, cancelled").WithSentinel(apperrors.ErrInvalidStatus)
	}
	return st, nil
}

// resolveClientID turns a client reference into its id. An empty reference
// means no client.
func resolveClientID(runCtx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	client, err := ctx.Clients.Get(runCtx, ref)
	if err != nil {
		return "", err
	}
	return client.ID, nil
}

// calendarEvents converts interventions to layout events and a title index.
// Cancelled interventions stay off the calendar.
func calendarEvents(ivs []*model.Intervention) ([]layout.Event, map[string]string) {
	events := make([]layout.Event, 0, len(ivs))
	titles := make(map[string]string, len(ivs))
	for _, iv := range ivs {
		if iv.Status == model.StatusCancelled {
			continue
		}
		events = append(events, layout.Event{ID: iv.ID, Start: iv.ScheduledAt, DurationMinutes: iv.DurationMinutes})
		titles[iv.ID] = iv.Title
	}
	return events, titles
}

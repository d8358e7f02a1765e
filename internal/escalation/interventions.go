package escalation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/artisan/internal/clock"
	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/guard"
	"github.com/manav03panchal/artisan/internal/logging"
	"github.com/manav03panchal/artisan/internal/model"
)

// InterventionScanResult aggregates one intervention reminder scan.
type InterventionScanResult struct {
	RemindersToday int           `json:"reminders_today"`
	Reminders24h   int           `json:"reminders_24h"`
	Skipped        int           `json:"skipped"`
	Failures       []ItemFailure `json:"failures,omitempty"`
}

// Created returns the number of reminders issued by the scan.
func (r InterventionScanResult) Created() int {
	return r.RemindersToday + r.Reminders24h
}

// RunInterventionReminderScan reminds the artisan of the to-do interventions
// scheduled today (tag "today") and those of tomorrow starting within the
// next 24 hours (tag "24h"). Each intervention
// gets at most one reminder per tag and calendar day of now.
func (e *Engine) RunInterventionReminderScan(ctx context.Context, scope Scope, now time.Time) (InterventionScanResult, error) {
	defer logging.LogOperation(ctx, "intervention_scan", time.Now(), logging.KeyArtisan, scope.ArtisanID)

	var res InterventionScanResult
	today := clock.StartOfDay(now)
	tomorrow := clock.NextDay(now)
	// 24h reminders stop at now+24h inclusive, even when tomorrow runs later.
	horizon := clock.NextDay(tomorrow)
	if limit := now.Add(24*time.Hour + time.Nanosecond); limit.Before(horizon) {
		horizon = limit
	}

	windows := []struct {
		tag      model.EscalationTag
		from, to time.Time
		count    *int
	}{
		{model.TodayTag, today, tomorrow, &res.RemindersToday},
		{model.TwentyFourHourTag, tomorrow, horizon, &res.Reminders24h},
	}

	for _, w := range windows {
		ivs, err := e.interventions.ListScheduledBetween(ctx, scope.ArtisanID, w.from, w.to)
		if err != nil {
			return res, apperrors.NewSystemErrorWithOp("intervention scan",
				fmt.Sprintf("listing interventions for %s reminders failed", w.tag), err)
		}
		for _, iv := range ivs {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if iv.Status != model.StatusTodo {
				continue
			}
			inserted, err := e.log.InsertNotification(ctx, e.interventionReminder(ctx, iv, w.tag, now))
			switch {
			case err != nil:
				logging.WarnContext(ctx, "intervention reminder failed",
					logging.KeyInterventionID, iv.ID, logging.KeyTag, w.tag.String(), logging.KeyError, err)
				res.Failures = append(res.Failures, ItemFailure{SubjectID: iv.ID, Err: err})
			case inserted:
				*w.count++
			default:
				res.Skipped++
			}
		}
	}

	sortFailures(res.Failures)
	logging.InfoContext(ctx, "intervention scan finished",
		"today", res.RemindersToday, "tomorrow", res.Reminders24h, "skipped", res.Skipped)
	return res, nil
}

func (e *Engine) interventionReminder(ctx context.Context, iv *model.Intervention, tag model.EscalationTag, now time.Time) *model.Notification {
	when := "today"
	if tag == model.TwentyFourHourTag {
		when = "tomorrow"
	}
	title := fmt.Sprintf("Intervention %s: %s", when, iv.Title)

	msg := fmt.Sprintf("%s at %s", iv.Title, iv.ScheduledAt.Format("15:04"))
	if name := e.clientName(ctx, iv.ClientID); name != "" {
		msg += " for " + name
	}
	if iv.Address != "" {
		msg += ", " + iv.Address
	}
	msg += fmt.Sprintf(" (%d min)", iv.DurationMinutes)

	return model.NewNotification(iv.ArtisanID, model.NotifyInterventionReminder, title, msg, now).
		WithIntervention(iv.ID).
		WithTag(tag)
}

// notifiedStatuses are the statuses that trigger a status-change notification.
var notifiedStatuses = map[model.InterventionStatus]bool{
	model.StatusInProgress: true,
	model.StatusCompleted:  true,
	model.StatusCancelled:  true,
}

// OnStatusChange records an intervention_status notification when an
// intervention moves to in_progress, completed or cancelled. It returns nil
// when the status did not change, the new status is not notified, or the same
// change was already notified on that day.
func (e *Engine) OnStatusChange(ctx context.Context, iv *model.Intervention, from, to model.InterventionStatus) (*model.Notification, error) {
	return e.notifyStatusChange(ctx, iv, from, to, e.clock.Now())
}

func (e *Engine) notifyStatusChange(ctx context.Context, iv *model.Intervention, from, to model.InterventionStatus, at time.Time) (*model.Notification, error) {
	if from == to || !notifiedStatuses[to] {
		return nil, nil
	}

	n := model.NewNotification(iv.ArtisanID, model.NotifyInterventionStatus,
		fmt.Sprintf("Intervention %s", strings.ToLower(to.Label())),
		fmt.Sprintf("%q changed from %s to %s", iv.Title, strings.ToLower(from.Label()), strings.ToLower(to.Label())),
		at).
		WithIntervention(iv.ID).
		WithTag(model.StatusTag(to))

	inserted, err := e.log.InsertNotification(ctx, n)
	if err != nil {
		return nil, apperrors.Wrap(err, "recording status change")
	}
	if !inserted {
		logging.DebugContext(ctx, "status change already notified today",
			logging.KeyInterventionID, iv.ID, logging.KeyStatus, string(to))
		return nil, nil
	}
	logging.DebugContext(ctx, "status change notified",
		logging.KeyInterventionID, iv.ID, logging.KeyStatus, string(to))
	return n, nil
}

// Schedule validates a new intervention against now and stores it.
func (e *Engine) Schedule(ctx context.Context, iv *model.Intervention, now time.Time) error {
	if iv.Status == "" {
		iv.Status = model.StatusTodo
	}
	if err := guard.ValidateIntervention(iv, now); err != nil {
		return err
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = now
	}
	return e.interventions.Create(ctx, iv)
}

// StatusUpdate describes an applied status change.
type StatusUpdate struct {
	Intervention *model.Intervention
	Previous     model.InterventionStatus
	// Correction is set when AutoCorrect replaced the proposed status.
	Correction   *guard.InvalidTransitionError
	Notification *model.Notification
}

// UpdateStatus changes an intervention's status after checking it against its
// scheduled day. A rejected status fails with *guard.InvalidTransitionError
// unless autoCorrect is set, in which case the suggested fallback is applied
// and reported in the result.
func (e *Engine) UpdateStatus(ctx context.Context, ref string, proposed model.InterventionStatus, now time.Time, autoCorrect bool) (*StatusUpdate, error) {
	iv, err := e.interventions.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	var (
		status     model.InterventionStatus
		correction *guard.InvalidTransitionError
	)
	if autoCorrect {
		status, correction, err = guard.AutoCorrect(iv.ScheduledAt, proposed, now)
	} else {
		status, err = guard.Validate(iv.ScheduledAt, proposed, now)
	}
	if err != nil {
		return nil, err
	}
	if correction != nil {
		logging.WarnContext(ctx, "status auto-corrected",
			logging.KeyInterventionID, iv.ID, "proposed", string(proposed), logging.KeyStatus, string(status))
	}

	return e.apply(ctx, iv, status, now, correction)
}

// BulkUpdateStatus applies proposed to every referenced intervention. All of
// them are validated first; nothing is written if any would be rejected.
func (e *Engine) BulkUpdateStatus(ctx context.Context, refs []string, proposed model.InterventionStatus, now time.Time) ([]*StatusUpdate, error) {
	ivs := make([]*model.Intervention, 0, len(refs))
	for _, ref := range refs {
		iv, err := e.interventions.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		ivs = append(ivs, iv)
	}
	if err := guard.ValidateBulk(ivs, proposed, now); err != nil {
		return nil, err
	}

	updates := make([]*StatusUpdate, 0, len(ivs))
	for _, iv := range ivs {
		u, err := e.apply(ctx, iv, proposed, now, nil)
		if err != nil {
			return updates, err
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// apply persists the status and notifies the change. A failed notification
// does not roll back the stored status; the update is returned with the error.
func (e *Engine) apply(ctx context.Context, iv *model.Intervention, status model.InterventionStatus, now time.Time, correction *guard.InvalidTransitionError) (*StatusUpdate, error) {
	u := &StatusUpdate{Intervention: iv, Previous: iv.Status, Correction: correction}
	if status == iv.Status {
		return u, nil
	}

	iv.Status = status
	iv.UpdatedAt = now
	if err := e.interventions.Update(ctx, iv); err != nil {
		return nil, err
	}

	n, err := e.notifyStatusChange(ctx, iv, u.Previous, status, now)
	u.Notification = n
	return u, err
}

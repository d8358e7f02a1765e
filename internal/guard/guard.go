// Package guard keeps an intervention's status consistent with its scheduled day.
//
// Past interventions cannot still be to do, future ones cannot already be
// completed. Validation is side-effect free and runs before every create,
// update and bulk status change.
package guard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/manav03panchal/artisan/internal/clock"
	"github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/model"
)

// InvalidTransitionError reports a status that does not fit the scheduled day.
type InvalidTransitionError struct {
	ScheduledAt       time.Time
	Proposed          model.InterventionStatus
	Reason            string
	SuggestedFallback model.InterventionStatus
	Allowed           []model.InterventionStatus
}

func (e *InvalidTransitionError) Error() string {
	return e.Reason
}

// Is lets errors.Is match ErrInvalidStatus.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == errors.ErrInvalidStatus
}

// AsInvalidTransition extracts an InvalidTransitionError from an error chain.
func AsInvalidTransition(err error) (*InvalidTransitionError, bool) {
	var it *InvalidTransitionError
	ok := errors.As(err, &it)
	return it, ok
}

// Allowed returns the statuses permitted for an intervention scheduled at
// scheduledAt, as seen on now's day.
func Allowed(scheduledAt, now time.Time) []model.InterventionStatus {
	switch clock.CompareDay(scheduledAt, now) {
	case -1:
		return []model.InterventionStatus{model.StatusCompleted, model.StatusCancelled}
	case 1:
		return []model.InterventionStatus{model.StatusTodo, model.StatusCancelled}
	default:
		return model.PersistedStatuses()
	}
}

// Validate checks proposed against the day of scheduledAt relative to now.
// It returns the accepted status, or an *InvalidTransitionError carrying the
// fallback a caller may choose to apply.
func Validate(scheduledAt time.Time, proposed model.InterventionStatus, now time.Time) (model.InterventionStatus, error) {
	if !proposed.IsPersisted() {
		return "", errors.NewUserErrorWithField("status", string(proposed),
			"Unknown intervention status",
			"Use one of: todo, completed, cancelled").WithSentinel(errors.ErrInvalidStatus)
	}

	switch clock.CompareDay(scheduledAt, now) {
	case -1:
		if proposed == model.StatusTodo {
			return "", &InvalidTransitionError{
				ScheduledAt:       scheduledAt,
				Proposed:          proposed,
				Reason:            fmt.Sprintf("intervention scheduled on %s is in the past and cannot be to do", scheduledAt.Format("2006-01-02")),
				SuggestedFallback: model.StatusCompleted,
				Allowed:           Allowed(scheduledAt, now),
			}
		}
	case 1:
		if proposed == model.StatusCompleted {
			return "", &InvalidTransitionError{
				ScheduledAt:       scheduledAt,
				Proposed:          proposed,
				Reason:            fmt.Sprintf("intervention scheduled on %s is in the future and cannot be completed", scheduledAt.Format("2006-01-02")),
				SuggestedFallback: model.StatusTodo,
				Allowed:           Allowed(scheduledAt, now),
			}
		}
	}
	return proposed, nil
}

// AutoCorrect behaves like Validate but substitutes the suggested fallback for
// a rejected status. The applied correction is returned so the caller can warn.
func AutoCorrect(scheduledAt time.Time, proposed model.InterventionStatus, now time.Time) (model.InterventionStatus, *InvalidTransitionError, error) {
	status, err := Validate(scheduledAt, proposed, now)
	if err == nil {
		return status, nil, nil
	}
	if it, ok := AsInvalidTransition(err); ok {
		return it.SuggestedFallback, it, nil
	}
	return "", nil, err
}

// ValidateDuration rejects durations outside [1, 120] minutes.
func ValidateDuration(minutes int) error {
	if minutes < model.MinDurationMinutes || minutes > model.MaxDurationMinutes {
		return errors.NewUserErrorWithField("duration", fmt.Sprint(minutes),
			"Duration out of range",
			fmt.Sprintf("Durations must be between %d and %d minutes", model.MinDurationMinutes, model.MaxDurationMinutes)).
			WithSentinel(errors.ErrInvalidDuration)
	}
	return nil
}

// ClampDuration forces minutes into [1, 120].
func ClampDuration(minutes int) int {
	return min(max(minutes, model.MinDurationMinutes), model.MaxDurationMinutes)
}

// ValidateIntervention runs every write-time check on iv.
func ValidateIntervention(iv *model.Intervention, now time.Time) error {
	if strings.TrimSpace(iv.Title) == "" {
		return errors.NewUserError("Intervention title cannot be empty", "").WithSentinel(errors.ErrTitleRequired)
	}
	if err := ValidateDuration(iv.DurationMinutes); err != nil {
		return err
	}
	_, err := Validate(iv.ScheduledAt, iv.Status, now)
	return err
}

// BulkError lists the interventions a bulk status change would violate.
type BulkError struct {
	Failures map[string]error
}

func (e *BulkError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("%d intervention(s) cannot take this status: %s", len(ids), strings.Join(ids, ", "))
}

// ValidateBulk checks that every intervention accepts proposed. Nothing is
// written by the caller unless all of them pass.
func ValidateBulk(ivs []*model.Intervention, proposed model.InterventionStatus, now time.Time) error {
	failures := make(map[string]error)
	for _, iv := range ivs {
		if _, err := Validate(iv.ScheduledAt, proposed, now); err != nil {
			failures[iv.ID] = err
		}
	}
	if len(failures) > 0 {
		return &BulkError{Failures: failures}
	}
	return nil
}

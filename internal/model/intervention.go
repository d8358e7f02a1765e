package model

import (
	"time"
)

// InterventionStatus is the lifecycle status of an intervention.
type InterventionStatus string

// Intervention statuses. InProgress is never persisted; it only appears in
// status transitions reported by external callers.
const (
	StatusTodo       InterventionStatus = "todo"
	StatusInProgress InterventionStatus = "in_progress"
	StatusCompleted  InterventionStatus = "completed"
	StatusCancelled  InterventionStatus = "cancelled"
)

// Duration bounds for an intervention, in minutes.
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 120
)

// PersistedStatuses returns the statuses an intervention may be stored with.
func PersistedStatuses() []InterventionStatus {
	return []InterventionStatus{StatusTodo, StatusCompleted, StatusCancelled}
}

// IsPersisted reports whether s may be stored on an intervention.
func (s InterventionStatus) IsPersisted() bool {
	for _, valid := range PersistedStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// Label returns a human-readable label.
func (s InterventionStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Intervention is a scheduled on-site job for a client.
type Intervention struct {
	ID              string             `json:"id"`
	ArtisanID       string             `json:"artisan_id"`
	ClientID        string             `json:"client_id"`
	Title           string             `json:"title"`
	Address         string             `json:"address,omitempty"`
	ScheduledAt     time.Time          `json:"scheduled_at"`
	DurationMinutes int                `json:"duration_minutes"`
	Status          InterventionStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SetKey sets the database key for this intervention.
func (i *Intervention) SetKey(key string) {
	i.ID = IDFromKey(PrefixIntervention, key)
}

// GetKey returns the database key for this intervention.
func (i *Intervention) GetKey() string {
	return GenerateKey(PrefixIntervention, i.ID)
}

// End returns the scheduled end time.
func (i *Intervention) End() time.Time {
	return i.ScheduledAt.Add(time.Duration(i.DurationMinutes) * time.Minute)
}

// NewIntervention creates a todo intervention.
func NewIntervention(artisanID, clientID, title string, scheduledAt time.Time, durationMinutes int) *Intervention {
	return &Intervention{
		ArtisanID:       artisanID,
		ClientID:        clientID,
		Title:           title,
		ScheduledAt:     scheduledAt,
		DurationMinutes: durationMinutes,
		Status:          StatusTodo,
	}
}

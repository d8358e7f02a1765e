package storage

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/model"
)

// InterventionRepo provides operations for Intervention entities.
// Status consistency is checked by the caller before any write.
type InterventionRepo struct {
	db *DB
}

// NewInterventionRepo creates a new intervention repository.
func NewInterventionRepo(db *DB) *InterventionRepo {
	return &InterventionRepo{db: db}
}

func newIntervention() *model.Intervention {
	return &model.Intervention{}
}

// Create stores a new intervention with a time-sortable id.
func (r *InterventionRepo) Create(ctx context.Context, iv *model.Intervention) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if iv.ID == "" {
		// UUID v7 keeps keys in creation order
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		iv.ID = id.String()
	}
	if iv.UpdatedAt.IsZero() {
		iv.UpdatedAt = iv.CreatedAt
	}
	return r.db.Set(iv)
}

// Get retrieves an intervention by id or id prefix.
func (r *InterventionRepo) Get(ctx context.Context, ref string) (*model.Intervention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iv, err := ResolveByPrefix(r.db, model.PrefixIntervention, ref, newIntervention)
	if err != nil {
		return nil, notFound(err, apperrors.ErrInterventionNotFound, ref)
	}
	return iv, nil
}

// Update overwrites an existing intervention.
func (r *InterventionRepo) Update(ctx context.Context, iv *model.Intervention) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	exists, err := r.db.Exists(iv.GetKey())
	if err != nil {
		return err
	}
	if !exists {
		return &NotFoundError{Kind: apperrors.ErrInterventionNotFound, Ref: iv.ID}
	}
	return r.db.Set(iv)
}

// Delete removes an intervention by id.
func (r *InterventionRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Delete(model.GenerateKey(model.PrefixIntervention, id))
}

// InterventionFilter narrows List results.
type InterventionFilter struct {
	ArtisanID string
	Status    model.InterventionStatus
	From      time.Time // inclusive, zero for no bound
	To        time.Time // exclusive, zero for no bound
	Limit     int
}

// List returns the interventions matching filter ordered by scheduled time.
func (r *InterventionRepo) List(ctx context.Context, filter InterventionFilter) ([]*model.Intervention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ivs, err := GetFilteredByPrefix(r.db, model.PrefixIntervention+":", newIntervention, func(iv *model.Intervention) bool {
		if filter.ArtisanID != "" && iv.ArtisanID != filter.ArtisanID {
			return false
		}
		if filter.Status != "" && iv.Status != filter.Status {
			return false
		}
		if !filter.From.IsZero() && iv.ScheduledAt.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && !iv.ScheduledAt.Before(filter.To) {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(ivs, func(i, j int) bool {
		return ivs[i].ScheduledAt.Before(ivs[j].ScheduledAt)
	})
	if filter.Limit > 0 && len(ivs) > filter.Limit {
		ivs = ivs[:filter.Limit]
	}
	return ivs, nil
}

// ListScheduledBetween returns the artisan's interventions starting in [from, to).
func (r *InterventionRepo) ListScheduledBetween(ctx context.Context, artisanID string, from, to time.Time) ([]*model.Intervention, error) {
	return r.List(ctx, InterventionFilter{ArtisanID: artisanID, From: from, To: to})
}

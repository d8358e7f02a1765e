package storage

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/model"
)

// ClientRepo provides operations for Client entities.
type ClientRepo struct {
	db *DB
}

// NewClientRepo creates a new client repository.
func NewClientRepo(db *DB) *ClientRepo {
	return &ClientRepo{db: db}
}

// Create stores a new client with a generated id.
func (r *ClientRepo) Create(ctx context.Context, client *model.Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(client.Name) == "" {
		return apperrors.NewUserError("Client name cannot be empty", "Pass the client name, e.g. 'artisan client add \"Dupont\"'.")
	}
	if client.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		client.ID = id.String()
	}
	return r.db.Set(client)
}

// Get retrieves a client by id or id prefix.
func (r *ClientRepo) Get(ctx context.Context, ref string) (*model.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := ResolveByPrefix(r.db, model.PrefixClient, ref, func() *model.Client {
		return &model.Client{}
	})
	if err != nil {
		return nil, notFound(err, apperrors.ErrClientNotFound, ref)
	}
	return client, nil
}

// List returns the artisan's clients sorted by name.
func (r *ClientRepo) List(ctx context.Context, artisanID string) ([]*model.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clients, err := GetFilteredByPrefix(r.db, model.PrefixClient+":", func() *model.Client {
		return &model.Client{}
	}, func(c *model.Client) bool {
		return c.ArtisanID == artisanID
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(clients, func(i, j int) bool {
		return strings.ToLower(clients[i].Name) < strings.ToLower(clients[j].Name)
	})
	return clients, nil
}

// Delete removes a client by id.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Delete(model.GenerateKey(model.PrefixClient, id))
}

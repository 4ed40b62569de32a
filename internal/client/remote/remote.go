// Package remote defines the contract of the remote entity store the sync
// engine delivers operations to.
package remote

import (
	"context"
	"errors"

	"github.com/iudanet/taskkeeper/internal/models"
)

// ErrNotFound возвращается Fetch, если сущности нет на удаленной стороне
var ErrNotFound = errors.New("entity not found on remote")

//go:generate moq -out store_mock.go . Store

// Store is the remote entity store. Every call either succeeds or returns
// an error; the sync engine retries failed calls, so implementations must
// tolerate repeated delivery of the same operation.
type Store interface {
	// Create stores a full entity
	Create(ctx context.Context, kind models.EntityType, data models.Entity) error

	// Update stores the resolved full entity
	Update(ctx context.Context, kind models.EntityType, data models.Entity) error

	// Delete removes the entity with the given id
	Delete(ctx context.Context, kind models.EntityType, id string) error

	// Fetch returns the remote version of an entity or ErrNotFound
	Fetch(ctx context.Context, kind models.EntityType, id string) (models.Entity, error)

	// Ping checks that the remote store is reachable
	Ping(ctx context.Context) error
}

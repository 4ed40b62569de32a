package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/taskkeeper/internal/client/remote"
	"github.com/iudanet/taskkeeper/internal/models"
)

// ErrMissingID возвращается при записи сущности без id
var ErrMissingID = errors.New("entity has no id")

// Create stores a full entity. An existing entity with the same id is
// overwritten, so a re-delivered create is harmless.
func (s *Storage) Create(ctx context.Context, kind models.EntityType, data models.Entity) error {
	return s.upsert(ctx, kind, data)
}

// Update stores the resolved full entity, creating it when absent.
func (s *Storage) Update(ctx context.Context, kind models.EntityType, data models.Entity) error {
	return s.upsert(ctx, kind, data)
}

// Delete removes the entity. Deleting a missing entity succeeds.
func (s *Storage) Delete(ctx context.Context, kind models.EntityType, id string) error {
	query := `DELETE FROM entities WHERE kind = ? AND id = ?`

	if _, err := s.db.ExecContext(ctx, query, string(kind), id); err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

// Fetch returns the stored entity or remote.ErrNotFound.
func (s *Storage) Fetch(ctx context.Context, kind models.EntityType, id string) (models.Entity, error) {
	query := `SELECT data FROM entities WHERE kind = ? AND id = ?`

	var raw string
	err := s.db.QueryRowContext(ctx, query, string(kind), id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, remote.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	return decodeEntity(raw)
}

// List returns all entities of kind ordered by last update.
func (s *Storage) List(ctx context.Context, kind models.EntityType) (entities []models.Entity, err error) {
	query := `
		SELECT data FROM entities
		WHERE kind = ?
		ORDER BY updated_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	entities = []models.Entity{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entity, err := decodeEntity(raw)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entities, nil
}

// Version returns how many times the entity was written.
func (s *Storage) Version(ctx context.Context, kind models.EntityType, id string) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM entities WHERE kind = ? AND id = ?`, string(kind), id,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, remote.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// Ping checks the database connection.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database is unreachable: %w", err)
	}
	return nil
}

func (s *Storage) upsert(ctx context.Context, kind models.EntityType, data models.Entity) error {
	id := data.ID()
	if id == "" {
		return ErrMissingID
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode entity: %w", err)
	}

	now := time.Now().UnixMilli()
	query := `
		INSERT INTO entities (kind, id, data, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			data = excluded.data,
			version = entities.version + 1,
			updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, string(kind), id, string(payload), now, now); err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}
	return nil
}

func decodeEntity(raw string) (models.Entity, error) {
	var entity models.Entity
	if err := json.Unmarshal([]byte(raw), &entity); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	return entity, nil
}

var _ remote.Store = (*Storage)(nil)

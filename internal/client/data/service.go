// Package data applies local mutations to the persisted state and queues
// them for synchronization.
package data

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/taskkeeper/internal/client/sync"
	"github.com/iudanet/taskkeeper/internal/delta"
	"github.com/iudanet/taskkeeper/internal/idgen"
	"github.com/iudanet/taskkeeper/internal/models"
)

const (
	fieldCompleted = "completed"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"

	timeLayout = "2006-01-02T15:04:05.000Z"
)

// LocalStore is the local persisted entity state.
type LocalStore interface {
	List(ctx context.Context, kind models.EntityType) ([]models.Entity, error)
	Get(ctx context.Context, kind models.EntityType, id string) (models.Entity, bool, error)
	Put(ctx context.Context, kind models.EntityType, entity models.Entity) error
	Remove(ctx context.Context, kind models.EntityType, id string) (bool, error)
}

// Queue accepts local mutations for synchronization.
type Queue interface {
	AddToSyncQueue(ctx context.Context, req sync.OperationRequest) (bool, error)
}

// Service handles client-side entity mutations.
type Service struct {
	local  LocalStore
	queue  Queue
	logger *slog.Logger
	ids    func() string
	clock  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithIDs sets the id generator for new entities.
func WithIDs(ids func() string) Option {
	return func(s *Service) { s.ids = ids }
}

// WithClock sets the time source for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService creates a data service.
func NewService(local LocalStore, queue Queue, opts ...Option) *Service {
	s := &Service{
		local:  local,
		queue:  queue,
		logger: slog.Default(),
		ids:    idgen.New,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the local entities of kind.
func (s *Service) List(ctx context.Context, kind models.EntityType) ([]models.Entity, error) {
	return s.local.List(ctx, kind)
}

// Get returns one local entity.
func (s *Service) Get(ctx context.Context, kind models.EntityType, id string) (models.Entity, error) {
	e, ok, err := s.local.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return e, nil
}

// Create stores a new entity and queues its creation. A missing id is
// generated; timestamps are filled in when absent.
func (s *Service) Create(ctx context.Context, kind models.EntityType, entity models.Entity) (models.Entity, error) {
	e := entity.Clone()
	if e == nil {
		e = models.Entity{}
	}
	// Генерируем ID если не задан
	if e.ID() == "" {
		e[models.FieldID] = s.ids()
	}

	now := s.now()
	if _, ok := e[fieldCreatedAt]; !ok {
		e[fieldCreatedAt] = now
	}
	if _, ok := e[fieldUpdatedAt]; !ok {
		e[fieldUpdatedAt] = now
	}
	if kind == models.EntityTask {
		if _, ok := e[fieldCompleted]; !ok {
			e[fieldCompleted] = false
		}
	}

	if err := s.local.Put(ctx, kind, e); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", kind, err)
	}
	if err := s.enqueue(ctx, models.OpCreate, kind, e); err != nil {
		return e, err
	}
	return e, nil
}

// Update merges changes into the stored entity and queues the new state.
func (s *Service) Update(ctx context.Context, kind models.EntityType, id string, changes models.Entity) (models.Entity, error) {
	current, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	patch := changes.Clone()
	delete(patch, models.FieldID)
	updated := delta.ApplyDelta(current.Clone(), patch)
	if delta.DeepEqual(updated, current) {
		return current, nil
	}
	updated[fieldUpdatedAt] = s.now()

	return updated, s.save(ctx, kind, updated)
}

// Toggle flips the completed flag of a task.
func (s *Service) Toggle(ctx context.Context, id string) (models.Entity, error) {
	current, err := s.Get(ctx, models.EntityTask, id)
	if err != nil {
		return nil, err
	}

	completed, ok := current[fieldCompleted].(bool)
	if !ok && current[fieldCompleted] != nil {
		return nil, fmt.Errorf("%w: completed is %T", ErrNotToggleable, current[fieldCompleted])
	}

	updated := current.Clone()
	updated[fieldCompleted] = !completed
	updated[fieldUpdatedAt] = s.now()

	return updated, s.save(ctx, models.EntityTask, updated)
}

// Delete removes an entity locally and queues its deletion.
func (s *Service) Delete(ctx context.Context, kind models.EntityType, id string) error {
	removed, err := s.local.Remove(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if !removed {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return s.enqueue(ctx, models.OpDelete, kind, models.Entity{models.FieldID: id})
}

func (s *Service) save(ctx context.Context, kind models.EntityType, e models.Entity) error {
	if err := s.local.Put(ctx, kind, e); err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return s.enqueue(ctx, models.OpUpdate, kind, e)
}

// enqueue ставит изменение в очередь; локальное состояние уже сохранено
func (s *Service) enqueue(ctx context.Context, op models.OpType, kind models.EntityType, e models.Entity) error {
	added, err := s.queue.AddToSyncQueue(ctx, sync.OperationRequest{
		Type:       op,
		EntityType: kind,
		Data:       e,
	})
	if err != nil {
		return fmt.Errorf("failed to queue %s %s: %w", op, kind, err)
	}

	s.logger.Debug("Local change applied",
		"type", op,
		"entity_type", kind,
		"entity_id", e.ID(),
		"queued", added)
	return nil
}

func (s *Service) now() string {
	return s.clock().UTC().Format(timeLayout)
}

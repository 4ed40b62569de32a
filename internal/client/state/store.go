package state

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/iudanet/taskkeeper/internal/client/storage"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/observer"
)

// Change describes a mutation of the local state.
type Change struct {
	Entity models.Entity     // Entity новое состояние, nil при удалении
	Kind   models.EntityType // Kind тип сущности
	ID     string            // ID пусто, если заменен весь срез
	Reset  bool              // Reset true для ReplaceAll
}

// Store is the local entity state persisted under RootKey.
type Store struct {
	kv        storage.KVStore
	logger    *slog.Logger
	slices    map[models.EntityType]string
	listeners observer.Registry[Change]
	mu        sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKind adds an allow-listed entity kind persisted in the given slice.
func WithKind(kind models.EntityType, slice string) Option {
	return func(s *Store) {
		s.slices[kind] = slice
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates the local state store. Tasks and categories are always
// persisted.
func NewStore(kv storage.KVStore, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: slog.Default(),
		slices: map[models.EntityType]string{
			models.EntityTask:     SliceTasks,
			models.EntityCategory: SliceCategories,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kinds returns the persisted entity kinds in a stable order.
func (s *Store) Kinds() []models.EntityType {
	kinds := make([]models.EntityType, 0, len(s.slices))
	for k := range s.slices {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// SliceName returns the slice that persists kind.
func (s *Store) SliceName(kind models.EntityType) (string, error) {
	name, ok := s.slices[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return name, nil
}

// LoadRoot reads the root blob. found is false when nothing was persisted yet.
func (s *Store) LoadRoot(ctx context.Context) (root RootBlob, found bool, err error) {
	raw, ok, err := s.kv.Get(ctx, RootKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read root blob: %w", err)
	}
	if !ok {
		return RootBlob{}, false, nil
	}
	root, err = DecodeRoot(raw)
	if err != nil {
		return nil, true, err
	}
	return root, true, nil
}

// SaveRoot writes the root blob, dropping every slice that is not
// allow-listed.
func (s *Store) SaveRoot(ctx context.Context, root RootBlob) error {
	filtered := RootBlob{}
	allowed := make(map[string]bool, len(s.slices))
	for _, name := range s.slices {
		allowed[name] = true
	}
	for name, raw := range root {
		if allowed[name] || name == persistMetaKey {
			filtered[name] = raw
		}
	}

	encoded, err := filtered.Encode()
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, RootKey, encoded); err != nil {
		return fmt.Errorf("failed to write root blob: %w", err)
	}
	return nil
}

// List returns all entities of kind in stored order.
func (s *Store) List(ctx context.Context, kind models.EntityType) ([]models.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, items, err := s.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns the entity of kind with the given id.
func (s *Store) Get(ctx context.Context, kind models.EntityType, id string) (models.Entity, bool, error) {
	items, err := s.List(ctx, kind)
	if err != nil {
		return nil, false, err
	}
	for _, item := range items {
		if item.ID() == id {
			return item, true, nil
		}
	}
	return nil, false, nil
}

// Put inserts entity or replaces the stored one with the same id, keeping
// its position.
func (s *Store) Put(ctx context.Context, kind models.EntityType, entity models.Entity) error {
	id := entity.ID()
	if id == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	root, items, err := s.load(ctx, kind)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	stored := entity.Clone()
	replaced := false
	for i, item := range items {
		if item.ID() == id {
			items[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, stored)
	}

	err = s.save(ctx, root, kind, items)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.listeners.Notify(Change{Kind: kind, ID: id, Entity: entity.Clone()})
	return nil
}

// Remove deletes the entity with the given id. Removing a missing entity is
// not an error; removed reports whether something was deleted.
func (s *Store) Remove(ctx context.Context, kind models.EntityType, id string) (removed bool, err error) {
	s.mu.Lock()
	root, items, err := s.load(ctx, kind)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID() == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		s.mu.Unlock()
		return false, nil
	}

	err = s.save(ctx, root, kind, kept)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	s.listeners.Notify(Change{Kind: kind, ID: id})
	return true, nil
}

// ReplaceAll replaces the whole entity list of kind.
func (s *Store) ReplaceAll(ctx context.Context, kind models.EntityType, items []models.Entity) error {
	s.mu.Lock()
	root, _, err := s.load(ctx, kind)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	copied := make([]models.Entity, len(items))
	for i, item := range items {
		copied[i] = item.Clone()
	}

	err = s.save(ctx, root, kind, copied)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.listeners.Notify(Change{Kind: kind, Reset: true})
	return nil
}

// Subscribe registers fn for every change. The returned function removes
// the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	return s.listeners.Add(fn)
}

// load читает корневой blob и список сущностей; вызывается под s.mu
func (s *Store) load(ctx context.Context, kind models.EntityType) (RootBlob, []models.Entity, error) {
	name, err := s.SliceName(kind)
	if err != nil {
		return nil, nil, err
	}

	root, _, err := s.LoadRoot(ctx)
	if err != nil {
		return nil, nil, err
	}
	items, err := root.Items(name)
	if err != nil {
		return nil, nil, err
	}
	return root, items, nil
}

func (s *Store) save(ctx context.Context, root RootBlob, kind models.EntityType, items []models.Entity) error {
	name, err := s.SliceName(kind)
	if err != nil {
		return err
	}
	if err := root.SetItems(name, items); err != nil {
		return err
	}
	if err := s.SaveRoot(ctx, root); err != nil {
		return err
	}

	s.logger.Debug("Local state saved", "entity_type", kind, "count", len(items))
	return nil
}

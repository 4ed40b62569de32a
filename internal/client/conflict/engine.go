// Package conflict holds client/server divergences and resolves them with
// named strategies.
package conflict

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/taskkeeper/internal/client/storage"
	"github.com/iudanet/taskkeeper/internal/idgen"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/observer"
)

// KeyConflicts ключ списка конфликтов в KV хранилище
const KeyConflicts = "sync:conflicts"

// Handler applies a resolution strategy to a conflict.
type Handler func(ctx context.Context, c models.Conflict) error

// Options configures an Engine. Zero values get defaults.
type Options struct {
	Logger *slog.Logger
	Clock  func() time.Time
	IDs    func() string
	// Store сохраняет список конфликтов; nil - только в памяти
	Store storage.KVStore
	// DefaultStrategy используется, когда стратегия не указана
	DefaultStrategy string
}

// Engine owns the conflict list. All mutation goes through its methods.
type Engine struct {
	logger    *slog.Logger
	clock     func() time.Time
	ids       func() string
	store     storage.KVStore
	handlers  map[string]Handler
	listeners observer.Registry[[]models.Conflict]
	fallback  string
	conflicts []models.Conflict
	mu        sync.Mutex
}

// NewEngine creates an Engine with the built-in client-wins, server-wins and
// manual strategies.
func NewEngine(opts Options, client ClientWriter, server ServerApplier) *Engine {
	e := &Engine{
		logger:   opts.Logger,
		clock:    opts.Clock,
		ids:      opts.IDs,
		store:    opts.Store,
		fallback: opts.DefaultStrategy,
		handlers: make(map[string]Handler),
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.ids == nil {
		e.ids = idgen.New
	}
	if e.fallback == "" {
		e.fallback = models.StrategyClientWins
	}

	e.handlers[models.StrategyClientWins] = clientWins(client)
	e.handlers[models.StrategyServerWins] = serverWins(server)
	e.handlers[models.StrategyManual] = manual

	return e
}

// RegisterStrategy adds or replaces a named strategy.
func (e *Engine) RegisterStrategy(name string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[name] = h
}

// Load replaces the in-memory list with the persisted one.
func (e *Engine) Load(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	raw, ok, err := e.store.Get(ctx, KeyConflicts)
	if err != nil {
		return fmt.Errorf("failed to load conflicts: %w", err)
	}
	if !ok {
		return nil
	}

	var loaded []models.Conflict
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		return fmt.Errorf("failed to decode conflicts: %w", err)
	}

	e.mu.Lock()
	e.conflicts = loaded
	e.mu.Unlock()

	e.logger.Debug("Conflicts loaded", "count", len(loaded))
	e.notify()
	return nil
}

// AddConflict records c and returns its generated id. Unless the requested
// strategy is manual the conflict is resolved right away, so on return it
// may already be resolved or failed.
func (e *Engine) AddConflict(ctx context.Context, c models.Conflict) (string, error) {
	c = c.Clone()
	c.ID = e.ids()
	if c.Strategy == "" {
		c.Strategy = e.fallback
	}
	c.Status = models.ConflictPending
	if c.Strategy == models.StrategyManual {
		c.Status = models.ConflictManual
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = e.clock()
	}
	c.ResolvedAt = nil
	c.ResolvedWith = ""
	c.Error = ""

	e.mu.Lock()
	e.conflicts = append(e.conflicts, c)
	err := e.persist(ctx)
	e.mu.Unlock()
	if err != nil {
		return c.ID, err
	}

	e.logger.Info("Conflict recorded",
		"conflict_id", c.ID,
		"entity_type", c.EntityType,
		"entity_id", c.EntityID,
		"strategy", c.Strategy)
	e.notify()

	if c.Strategy != models.StrategyManual {
		if err := e.ResolveConflict(ctx, c.ID, c.Strategy); err != nil {
			return c.ID, err
		}
	}
	return c.ID, nil
}

// ResolveConflict applies strategy to the conflict with the given id.
// Unknown ids and strategies are returned as errors. A failing handler is
// not: its error is stored in the conflict with status failed.
func (e *Engine) ResolveConflict(ctx context.Context, id, strategy string) error {
	if strategy == "" {
		strategy = e.fallback
	}

	e.mu.Lock()
	idx := e.indexOf(id)
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrConflictNotFound, id)
	}
	handler, ok := e.handlers[strategy]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	target := e.conflicts[idx].Clone()
	e.mu.Unlock()

	// Обработчик может ходить в сеть, поэтому вызываем без блокировки
	handlerErr := runHandler(ctx, handler, strategy, target)

	e.mu.Lock()
	idx = e.indexOf(id)
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrConflictNotFound, id)
	}
	c := &e.conflicts[idx]
	if handlerErr != nil {
		c.Status = models.ConflictFailed
		c.Error = handlerErr.Error()
	} else {
		now := e.clock()
		c.Status = models.ConflictResolved
		if strategy == models.StrategyManual {
			c.Status = models.ConflictManual
		}
		c.ResolvedAt = &now
		c.ResolvedWith = strategy
		c.Error = ""
	}
	status := c.Status
	err := e.persist(ctx)
	e.mu.Unlock()

	if handlerErr != nil {
		e.logger.Warn("Conflict resolution failed",
			"conflict_id", id, "strategy", strategy, "error", handlerErr)
	} else {
		e.logger.Info("Conflict resolved", "conflict_id", id, "strategy", strategy, "status", status)
	}
	e.notify()
	return err
}

// Conflicts returns copies of the conflicts, optionally filtered by status.
func (e *Engine) Conflicts(status ...models.ConflictStatus) []models.Conflict {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Conflict, 0, len(e.conflicts))
	for _, c := range e.conflicts {
		if len(status) > 0 && !hasStatus(status, c.Status) {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

// ConflictByID returns a copy of the conflict with the given id.
func (e *Engine) ConflictByID(id string) (models.Conflict, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(id)
	if idx < 0 {
		return models.Conflict{}, false
	}
	return e.conflicts[idx].Clone(), true
}

// ClearResolved removes resolved conflicts and returns how many were
// removed. Manual, pending and failed conflicts stay.
func (e *Engine) ClearResolved(ctx context.Context) (int, error) {
	e.mu.Lock()
	kept := make([]models.Conflict, 0, len(e.conflicts))
	for _, c := range e.conflicts {
		if c.Status != models.ConflictResolved {
			kept = append(kept, c)
		}
	}
	removed := len(e.conflicts) - len(kept)
	e.conflicts = kept
	err := e.persist(ctx)
	e.mu.Unlock()

	e.notify()
	return removed, err
}

// Subscribe registers fn for every change of the list. fn receives a copy
// of the whole list.
func (e *Engine) Subscribe(fn func([]models.Conflict)) func() {
	return e.listeners.Add(fn)
}

func (e *Engine) notify() {
	e.listeners.Notify(e.Conflicts())
}

// indexOf вызывается под e.mu
func (e *Engine) indexOf(id string) int {
	for i := range e.conflicts {
		if e.conflicts[i].ID == id {
			return i
		}
	}
	return -1
}

// runHandler превращает панику обработчика в ошибку разрешения
func runHandler(ctx context.Context, h Handler, strategy string, c models.Conflict) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", strategy, r)
		}
	}()
	return h(ctx, c)
}

// persist вызывается под e.mu
func (e *Engine) persist(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	data, err := json.Marshal(e.conflicts)
	if err != nil {
		return fmt.Errorf("failed to encode conflicts: %w", err)
	}
	if err := e.store.Set(ctx, KeyConflicts, string(data)); err != nil {
		return fmt.Errorf("failed to save conflicts: %w", err)
	}
	return nil
}

func hasStatus(list []models.ConflictStatus, s models.ConflictStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

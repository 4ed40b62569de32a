// Package sync delivers locally queued operations to the remote store.
//
// The engine owns the operation queue and the last-synced snapshot. Passes
// drain the queue sequentially in FIFO order; only one pass runs at a time.
// Operations that keep failing are handed to the conflict engine.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/iudanet/taskkeeper/internal/client/network"
	"github.com/iudanet/taskkeeper/internal/client/remote"
	"github.com/iudanet/taskkeeper/internal/client/storage"
	"github.com/iudanet/taskkeeper/internal/delta"
	"github.com/iudanet/taskkeeper/internal/models"
	"github.com/iudanet/taskkeeper/internal/observer"
)

// KeyQueue ключ очереди операций в KV хранилище
const KeyQueue = "sync:queue"

// SnapshotSource provides the local entities the snapshot starts from.
type SnapshotSource interface {
	List(ctx context.Context, kind models.EntityType) ([]models.Entity, error)
}

// Escalator receives operations that exhausted their retries.
type Escalator interface {
	AddConflict(ctx context.Context, c models.Conflict) (string, error)
}

// OperationRequest is a local mutation to enqueue.
type OperationRequest struct {
	Data       models.Entity     // Data полная новая версия сущности, для delete достаточно {id}
	Type       models.OpType     // Type create | update | delete
	EntityType models.EntityType // EntityType тег типа сущности
}

// Deps are the collaborators of the engine. Remote and Network are
// required; Local, Conflicts and Store are optional.
type Deps struct {
	Remote    remote.Store
	Network   network.Monitor
	Local     SnapshotSource
	Conflicts Escalator
	Store     storage.KVStore
	Logger    *slog.Logger
	Metrics   *Metrics
	Clock     func() time.Time
}

// Engine is the sync engine.
type Engine struct {
	remote    remote.Store
	network   network.Monitor
	local     SnapshotSource
	conflicts Escalator
	store     storage.KVStore
	logger    *slog.Logger
	metrics   *Metrics
	clock     func() time.Time

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	retry       backoff.BackOff
	retryTimer  *time.Timer

	snapshot  map[models.EntityType]map[string]models.Entity
	listeners observer.Registry[models.SyncStatus]
	queue     []*models.Operation
	cfg       Config
	status    models.SyncStatus

	// active считает запущенные фоновые проходы, idle сигналит об их завершении;
	// взведенный таймер повтора в active не входит
	active int
	idle   *stdsync.Cond
	loops  stdsync.WaitGroup
	mu     stdsync.Mutex

	initialized bool
	closed      bool
	syncing     bool
}

// NewEngine creates an engine. Zero fields of cfg get defaults.
func NewEngine(cfg Config, deps Deps) *Engine {
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:       cfg,
		remote:    deps.Remote,
		network:   deps.Network,
		local:     deps.Local,
		conflicts: deps.Conflicts,
		store:     deps.Store,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		snapshot:  make(map[models.EntityType]map[string]models.Entity),
		status:    models.SyncStatus{Status: models.SyncIdle},
		retry: backoff.WithMaxRetries(
			backoff.NewConstantBackOff(cfg.RetryDelay), uint64(cfg.MaxPassRetries)),
	}
	e.idle = stdsync.NewCond(&e.mu)
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e
}

// Init loads the persisted queue, builds the last-synced snapshot from local
// state, subscribes to connectivity changes and starts the periodic timer.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.initialized {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	if e.remote == nil || e.network == nil {
		return errors.New("sync engine requires a remote store and a network monitor")
	}

	queue, err := e.loadQueue(ctx)
	if err != nil {
		return err
	}

	// Снимок строится из текущего локального состояния
	snapshot := make(map[models.EntityType]map[string]models.Entity)
	for _, kind := range e.cfg.EntityTypes {
		entries := make(map[string]models.Entity)
		if e.local != nil {
			items, err := e.local.List(ctx, kind)
			if err != nil {
				return fmt.Errorf("failed to initialize snapshot for %s: %w", kind, err)
			}
			for _, item := range items {
				if id := item.ID(); id != "" {
					entries[id] = item.Clone()
				}
			}
		}
		snapshot[kind] = entries
	}

	e.mu.Lock()
	e.queue = queue
	e.snapshot = snapshot
	e.status.PendingChanges = len(queue)
	e.ctx, e.cancel = context.WithCancel(context.WithoutCancel(ctx))
	e.initialized = true
	status := e.statusLocked()
	e.mu.Unlock()

	e.metrics.setPending(len(queue))
	e.unsubscribe = e.network.Subscribe(e.handleNetworkChange)

	if e.cfg.SyncInterval > 0 {
		e.loops.Add(1)
		go e.runTicker(e.ctx, e.cfg.SyncInterval)
	}

	e.logger.Info("Sync engine initialized",
		"pending", len(queue),
		"entity_types", len(snapshot))
	e.listeners.Notify(status)
	return nil
}

// Close stops the timers, drops the network subscription and waits for
// running passes. Calling Close more than once is harmless.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.retryTimer != nil {
		e.retryTimer.Stop()
		e.retryTimer = nil
	}
	cancel := e.cancel
	unsubscribe := e.unsubscribe
	e.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}

	e.Wait()
	e.loops.Wait()
	e.logger.Info("Sync engine stopped")
	return nil
}

// Wait blocks until background passes that are already running finish.
// An armed retry timer is not waited for.
func (e *Engine) Wait() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.active > 0 {
		e.idle.Wait()
	}
}

// AddToSyncQueue enqueues a local mutation. Updates are diffed against the
// state the remote will have once the queue drains; an update that changes
// nothing is dropped and added is false. When connected, a pass starts in
// the background.
func (e *Engine) AddToSyncQueue(ctx context.Context, req OperationRequest) (added bool, err error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false, ErrClosed
	}
	if !e.initialized {
		e.mu.Unlock()
		return false, ErrNotInitialized
	}

	var base models.Entity
	if req.Type == models.OpUpdate || req.Type == models.OpDelete {
		base = e.projectedLocked(req.EntityType, req.Data.ID())
	}

	op, err := delta.BuildOperation(req.Type, req.EntityType, base, req.Data)
	if err != nil {
		e.mu.Unlock()
		return false, err
	}
	if op == nil {
		// Ничего не изменилось: очередь и статус не трогаем
		e.mu.Unlock()
		e.logger.Debug("Skipping no-op update", "entity_type", req.EntityType, "entity_id", req.Data.ID())
		return false, nil
	}

	op.ID = uuid.NewString()
	op.Timestamp = e.clock().UTC()
	op.Attempts = 0

	var saved int64
	if op.IsDelta {
		full, partial := delta.PayloadSize(req.Data), delta.PayloadSize(op.Data)
		if full > partial {
			saved = int64(full - partial)
			e.status.DataSaved += saved
		}
	}

	e.queue = append(e.queue, op)
	e.status.PendingChanges = len(e.queue)
	pending := len(e.queue)
	status := e.statusLocked()
	e.mu.Unlock()

	e.metrics.setPending(pending)
	e.metrics.addSaved(saved)
	e.logger.Info("Operation queued",
		"op_id", op.ID,
		"type", op.Type,
		"entity_type", op.EntityType,
		"entity_id", op.EntityID(),
		"delta", op.IsDelta)

	if err := e.persistQueue(ctx); err != nil {
		// Операция остается в памяти; сбой сохранения всплывет в проходе
		e.logger.Warn("Failed to persist sync queue", "op_id", op.ID, "error", err)
	}

	e.listeners.Notify(status)
	e.goAsync(func(ctx context.Context) { _ = e.syncIfConnected(ctx) })
	return true, nil
}

// SyncNow runs one pass and waits for it. It returns ErrOffline when the
// network is down. A pass already in progress or an empty queue make it a
// no-op.
func (e *Engine) SyncNow(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}

	state, err := e.network.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to get network state: %w", err)
	}
	if !state.IsConnected {
		return ErrOffline
	}
	return e.runPass(ctx)
}

// ManualSync resets the pass retry counter and starts a pass in the
// background if connected. Offline it does nothing.
func (e *Engine) ManualSync(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}

	e.mu.Lock()
	e.retry.Reset()
	e.mu.Unlock()

	e.goAsync(func(ctx context.Context) { _ = e.syncIfConnected(ctx) })
	return nil
}

// Status returns a copy of the current sync status.
func (e *Engine) Status() models.SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

// Subscribe registers fn for status changes.
func (e *Engine) Subscribe(fn func(models.SyncStatus)) func() {
	return e.listeners.Add(fn)
}

// Queue returns copies of the queued operations in FIFO order.
func (e *Engine) Queue() []models.Operation {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Operation, len(e.queue))
	for i, op := range e.queue {
		out[i] = *op.Clone()
	}
	return out
}

// Snapshot returns a copy of the last-synced version of an entity.
func (e *Engine) Snapshot(kind models.EntityType, id string) (models.Entity, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entity, ok := e.snapshot[kind][id]
	if !ok {
		return nil, false
	}
	return entity.Clone(), true
}

func (e *Engine) ready() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if !e.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (e *Engine) handleNetworkChange(state network.State) {
	if !state.IsConnected {
		// Отключение не запускает и не прерывает проход
		return
	}

	e.mu.Lock()
	pending := len(e.queue)
	e.mu.Unlock()

	if pending > 0 {
		e.logger.Info("Network connected, starting sync", "pending", pending)
		e.goAsync(func(ctx context.Context) { _ = e.runPass(ctx) })
	}
}

func (e *Engine) runTicker(ctx context.Context, interval time.Duration) {
	defer e.loops.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.syncIfConnected(ctx); err != nil {
				e.logger.Debug("Periodic sync failed", "error", err)
			}
		}
	}
}

func (e *Engine) syncIfConnected(ctx context.Context) error {
	state, err := e.network.Current(ctx)
	if err != nil {
		e.logger.Warn("Failed to get network state", "error", err)
		return nil
	}
	if !state.IsConnected {
		return nil
	}
	return e.runPass(ctx)
}

// goAsync запускает fn в фоне, пока движок не закрыт
func (e *Engine) goAsync(fn func(ctx context.Context)) {
	e.mu.Lock()
	if e.closed || !e.initialized {
		e.mu.Unlock()
		return
	}
	e.active++
	ctx := e.ctx
	e.mu.Unlock()

	go func() {
		defer e.passDone()
		fn(ctx)
	}()
}

func (e *Engine) passDone() {
	e.mu.Lock()
	e.active--
	if e.active == 0 {
		e.idle.Broadcast()
	}
	e.mu.Unlock()
}

// projectedLocked возвращает состояние сущности, которое будет на удаленной
// стороне после отправки всей очереди; вызывается под e.mu
func (e *Engine) projectedLocked(kind models.EntityType, id string) models.Entity {
	current := e.snapshot[kind][id]
	for _, op := range e.queue {
		if op.EntityType != kind || op.EntityID() != id {
			continue
		}
		switch op.Type {
		case models.OpCreate:
			current = op.Data
		case models.OpUpdate:
			if op.IsDelta {
				current = delta.ApplyPatch(current, op.Data, op.Removed)
			} else {
				current = op.Data
			}
		case models.OpDelete:
			current = nil
		}
	}
	return current
}

// statusLocked возвращает копию статуса; вызывается под e.mu
func (e *Engine) statusLocked() models.SyncStatus {
	s := e.status
	if e.status.LastSyncTime != nil {
		t := *e.status.LastSyncTime
		s.LastSyncTime = &t
	}
	return s
}

func (e *Engine) loadQueue(ctx context.Context) ([]*models.Operation, error) {
	if e.store == nil {
		return nil, nil
	}

	raw, ok, err := e.store.Get(ctx, KeyQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync queue: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var queue []*models.Operation
	if err := json.Unmarshal([]byte(raw), &queue); err != nil {
		return nil, fmt.Errorf("failed to decode sync queue: %w", err)
	}
	return queue, nil
}

func (e *Engine) persistQueue(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	e.mu.Lock()
	data, err := json.Marshal(e.queue)
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode sync queue: %w", err)
	}

	if err := e.store.Set(ctx, KeyQueue, string(data)); err != nil {
		return fmt.Errorf("failed to persist sync queue: %w", err)
	}
	return nil
}

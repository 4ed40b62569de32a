package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iudanet/taskkeeper/internal/client/remote"
	"github.com/iudanet/taskkeeper/internal/delta"
	"github.com/iudanet/taskkeeper/internal/models"
)

// runPass выполняет один проход по очереди. Вызов во время прохода ничего
// не делает. После неудачного прохода пустая очередь все равно сохраняется
// заново.
func (e *Engine) runPass(ctx context.Context) error {
	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		return nil
	}
	if len(e.queue) == 0 && e.status.Status != models.SyncError {
		e.mu.Unlock()
		return nil
	}
	e.syncing = true
	e.status.Status = models.SyncSyncing
	status := e.statusLocked()
	e.mu.Unlock()

	e.listeners.Notify(status)
	started := e.clock()
	e.logger.Info("Sync pass started", "pending", status.PendingChanges)

	err := e.drain(ctx)

	e.mu.Lock()
	e.syncing = false
	e.status.PendingChanges = len(e.queue)
	if err != nil {
		e.status.Status = models.SyncError
		e.status.Error = err.Error()
		e.scheduleRetryLocked()
	} else {
		now := e.clock()
		e.status.Status = models.SyncSuccess
		e.status.LastSyncTime = &now
		e.status.Error = ""
		e.retry.Reset()
	}
	status = e.statusLocked()
	e.mu.Unlock()

	e.metrics.setPending(status.PendingChanges)
	if err != nil {
		e.metrics.pass("error")
		e.logger.Error("Sync pass failed", "error", err)
	} else {
		e.metrics.pass("success")
		e.logger.Info("Sync pass finished",
			"pending", status.PendingChanges,
			"duration", e.clock().Sub(started))
	}

	e.listeners.Notify(status)
	return err
}

// entityKey идентифицирует сущность в пределах прохода
type entityKey struct {
	kind models.EntityType
	id   string
}

// drain отправляет операции, бывшие в очереди на момент старта прохода.
// Ошибка отдельной операции не прерывает проход, но следующие операции той
// же сущности ждут следующего прохода. Паника при отправке считается
// неудачной попыткой и возвращается как ошибка уровня прохода.
func (e *Engine) drain(ctx context.Context) error {
	e.mu.Lock()
	batch := make([]string, len(e.queue))
	for i, op := range e.queue {
		batch[i] = op.ID
	}
	e.mu.Unlock()

	blocked := make(map[entityKey]struct{})
	var panicErr error

	for _, id := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.mu.Lock()
		idx := e.indexLocked(id)
		if idx < 0 {
			e.mu.Unlock()
			continue
		}
		op := e.queue[idx].Clone()
		key := entityKey{kind: op.EntityType, id: op.EntityID()}
		if _, skip := blocked[key]; skip {
			e.mu.Unlock()
			e.logger.Debug("Operation deferred behind a failed one", "op_id", id, "entity_id", key.id)
			continue
		}
		resolved := e.resolveLocked(op)
		e.mu.Unlock()

		dispatchErr := e.dispatch(ctx, op, resolved)
		panicked := errors.Is(dispatchErr, ErrDispatchPanic)
		if dispatchErr != nil && !panicked && ctx.Err() != nil {
			// Движок останавливается: попытку не засчитываем
			return ctx.Err()
		}
		if panicked && panicErr == nil {
			panicErr = dispatchErr
		}
		if dispatchErr != nil {
			blocked[key] = struct{}{}
		}

		var escalate *models.Operation
		e.mu.Lock()
		if dispatchErr == nil {
			e.removeLocked(id)
			e.applySnapshotLocked(op, resolved)
		} else if idx := e.indexLocked(id); idx >= 0 {
			queued := e.queue[idx]
			queued.Attempts++
			queued.LastError = dispatchErr.Error()
			if queued.Attempts >= e.cfg.MaxRetries {
				e.removeLocked(id)
				escalate = queued
			}
		}
		e.mu.Unlock()

		if dispatchErr == nil {
			e.metrics.operation(string(op.Type), "success")
			e.logger.Debug("Operation synced", "op_id", id, "type", op.Type, "entity_id", op.EntityID())
			continue
		}

		e.metrics.operation(string(op.Type), "failure")
		e.logger.Warn("Operation failed",
			"op_id", id,
			"type", op.Type,
			"entity_type", op.EntityType,
			"entity_id", op.EntityID(),
			"attempts", op.Attempts+1,
			"error", dispatchErr)

		if escalate != nil {
			e.escalate(ctx, escalate, resolved)
		}
	}

	return errors.Join(panicErr, e.persistQueue(ctx))
}

// dispatch отправляет операцию с таймаутом. Зависший вызов превращается
// в обычную ошибку операции, паника - в ErrDispatchPanic.
func (e *Engine) dispatch(ctx context.Context, op *models.Operation, resolved models.Entity) error {
	opCtx, cancel := context.WithTimeout(ctx, e.cfg.OperationTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: %v", ErrDispatchPanic, r)
			}
		}()
		done <- e.send(opCtx, op, resolved)
	}()

	select {
	case err := <-done:
		return err
	case <-opCtx.Done():
		return fmt.Errorf("operation %s timed out: %w", op.ID, opCtx.Err())
	}
}

func (e *Engine) send(ctx context.Context, op *models.Operation, resolved models.Entity) error {
	switch op.Type {
	case models.OpCreate:
		return e.remote.Create(ctx, op.EntityType, resolved)
	case models.OpUpdate:
		return e.remote.Update(ctx, op.EntityType, resolved)
	case models.OpDelete:
		return e.remote.Delete(ctx, op.EntityType, op.EntityID())
	}
	return fmt.Errorf("%w: %q", delta.ErrUnknownOpType, op.Type)
}

// escalate передает исчерпавшую попытки операцию движку конфликтов
func (e *Engine) escalate(ctx context.Context, op *models.Operation, resolved models.Entity) {
	e.metrics.escalated()

	var clientData models.Entity
	if op.Type != models.OpDelete {
		clientData = resolved.Clone()
	}

	// Серверная версия нужна стратегиям; ее отсутствие не ошибка
	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.OperationTimeout)
	serverData, err := e.remote.Fetch(fetchCtx, op.EntityType, op.EntityID())
	cancel()
	if err != nil {
		if !errors.Is(err, remote.ErrNotFound) {
			e.logger.Warn("Failed to fetch server version", "op_id", op.ID, "error", err)
		}
		serverData = nil
	}

	if e.conflicts == nil {
		e.logger.Error("Operation dropped after max retries, no conflict engine",
			"op_id", op.ID, "entity_id", op.EntityID(), "last_error", op.LastError)
		return
	}

	conflictID, err := e.conflicts.AddConflict(ctx, models.Conflict{
		EntityType: op.EntityType,
		EntityID:   op.EntityID(),
		ClientData: clientData,
		ServerData: serverData,
		Strategy:   e.cfg.EscalationStrategy,
		CreatedAt:  e.clock(),
	})
	if err != nil {
		e.logger.Error("Failed to record conflict", "op_id", op.ID, "error", err)
		return
	}

	e.logger.Warn("Operation escalated to conflict",
		"op_id", op.ID,
		"conflict_id", conflictID,
		"entity_type", op.EntityType,
		"entity_id", op.EntityID(),
		"last_error", op.LastError)
}

// scheduleRetryLocked планирует повтор прохода после сбоя; вызывается под e.mu
func (e *Engine) scheduleRetryLocked() {
	if e.closed || e.retryTimer != nil {
		return
	}

	delay := e.retry.NextBackOff()
	if delay == backoff.Stop {
		e.logger.Warn("Sync pass retries exhausted", "max_retries", e.cfg.MaxPassRetries)
		return
	}

	e.retryTimer = time.AfterFunc(delay, func() {
		e.mu.Lock()
		e.retryTimer = nil
		e.mu.Unlock()

		e.goAsync(func(ctx context.Context) { _ = e.syncIfConnected(ctx) })
	})
	e.logger.Info("Sync pass retry scheduled", "delay", delay)
}

// resolveLocked восстанавливает полную сущность для отправки; вызывается под e.mu
func (e *Engine) resolveLocked(op *models.Operation) models.Entity {
	if op.Type == models.OpUpdate && op.IsDelta {
		// Без записи в снимке дельта считается полной сущностью
		base := e.snapshot[op.EntityType][op.EntityID()]
		return delta.ApplyPatch(base.Clone(), op.Data, op.Removed)
	}
	return op.Data
}

// applySnapshotLocked обновляет снимок после успешной отправки; вызывается под e.mu
func (e *Engine) applySnapshotLocked(op *models.Operation, resolved models.Entity) {
	entries, ok := e.snapshot[op.EntityType]
	if !ok {
		entries = make(map[string]models.Entity)
		e.snapshot[op.EntityType] = entries
	}

	if op.Type == models.OpDelete {
		delete(entries, op.EntityID())
		return
	}
	entries[op.EntityID()] = resolved.Clone()
}

func (e *Engine) indexLocked(id string) int {
	for i, op := range e.queue {
		if op.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) removeLocked(id string) {
	if idx := e.indexLocked(id); idx >= 0 {
		e.queue = append(e.queue[:idx], e.queue[idx+1:]...)
	}
}

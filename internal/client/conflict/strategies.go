package conflict

import (
	"context"
	"fmt"

	"github.com/iudanet/taskkeeper/internal/models"
)

// ClientWriter pushes the local version of an entity to the remote store.
type ClientWriter interface {
	Create(ctx context.Context, kind models.EntityType, data models.Entity) error
	Update(ctx context.Context, kind models.EntityType, data models.Entity) error
	Delete(ctx context.Context, kind models.EntityType, id string) error
}

// ServerApplier applies the remote version of an entity to local state.
type ServerApplier interface {
	Put(ctx context.Context, kind models.EntityType, entity models.Entity) error
	Remove(ctx context.Context, kind models.EntityType, id string) (bool, error)
}

// clientWins отправляет локальную версию на сервер
func clientWins(client ClientWriter) Handler {
	return func(ctx context.Context, c models.Conflict) error {
		if client == nil {
			return fmt.Errorf("%w: %s", ErrNoWriter, models.StrategyClientWins)
		}

		switch {
		case c.ClientData == nil:
			// Локально сущность удалена
			return client.Delete(ctx, c.EntityType, c.EntityID)
		case c.ServerData == nil:
			return client.Create(ctx, c.EntityType, c.ClientData)
		default:
			return client.Update(ctx, c.EntityType, c.ClientData)
		}
	}
}

// serverWins применяет серверную версию к локальному состоянию
func serverWins(server ServerApplier) Handler {
	return func(ctx context.Context, c models.Conflict) error {
		if server == nil {
			return fmt.Errorf("%w: %s", ErrNoWriter, models.StrategyServerWins)
		}

		if c.ServerData == nil {
			_, err := server.Remove(ctx, c.EntityType, c.EntityID)
			return err
		}
		return server.Put(ctx, c.EntityType, c.ServerData)
	}
}

// manual ничего не меняет, только помечает запись для человека
func manual(ctx context.Context, c models.Conflict) error {
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/taskkeeper/internal/backend/sqlite"
	"github.com/iudanet/taskkeeper/internal/client/backup"
	"github.com/iudanet/taskkeeper/internal/client/config"
	"github.com/iudanet/taskkeeper/internal/client/conflict"
	"github.com/iudanet/taskkeeper/internal/client/data"
	"github.com/iudanet/taskkeeper/internal/client/migration"
	"github.com/iudanet/taskkeeper/internal/client/network"
	"github.com/iudanet/taskkeeper/internal/client/repair"
	"github.com/iudanet/taskkeeper/internal/client/state"
	"github.com/iudanet/taskkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/taskkeeper/internal/client/sync"
)

// App wires the client components over one local and one remote store.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	KV        *boltdb.Storage
	Remote    *sqlite.Storage
	State     *state.Store
	Network   network.Monitor
	Prober    *network.Prober
	Conflicts *conflict.Engine
	Sync      *sync.Engine
	Data      *data.Service
	Backup    *backup.Service
	Repair    *repair.Repairer
	Migration *migration.Runner
	Registry  *prometheus.Registry

	// Migrated результат миграции схемы при запуске
	Migrated migration.Result
}

// OpenApp opens the stores, runs the schema migration and starts the sync
// engine. With probe the network state comes from pinging the remote store;
// otherwise it is fixed by cfg.Offline.
func OpenApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, probe bool) (*App, error) {
	app := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	if err := app.open(ctx, probe); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) open(ctx context.Context, probe bool) (err error) {
	cfg, logger := app.Config, app.Logger

	app.KV, err = boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}

	// Миграция схемы выполняется до любой активности синхронизации
	app.Migration, err = migration.NewRunner(app.KV, migration.WithLogger(logger))
	if err != nil {
		return err
	}
	app.Migrated = app.Migration.Migrate(ctx)
	if !app.Migrated.Success {
		logger.Warn("Continuing with unmigrated data", "message", app.Migrated.Message)
	}

	app.Remote, err = sqlite.New(ctx, cfg.RemoteDBPath)
	if err != nil {
		return fmt.Errorf("failed to open remote database: %w", err)
	}

	app.State = state.NewStore(app.KV, state.WithLogger(logger))

	switch {
	case cfg.Offline:
		app.Network = network.NewManual(network.State{})
	case probe:
		app.Prober = network.NewProber(app.Remote,
			network.WithInterval(cfg.Network.ProbeInterval),
			network.WithTimeout(cfg.Network.ProbeTimeout),
			network.WithConnectionType("sqlite"),
			network.WithLogger(logger))
		app.Network = app.Prober
	default:
		app.Network = network.NewManual(network.State{IsConnected: true, ConnectionType: "sqlite"})
	}

	app.Conflicts = conflict.NewEngine(conflict.Options{
		Logger: logger,
		Store:  app.KV,
	}, app.Remote, app.State)
	if err := app.Conflicts.Load(ctx); err != nil {
		return err
	}

	app.Sync = sync.NewEngine(cfg.SyncEngine(), sync.Deps{
		Remote:    app.Remote,
		Network:   app.Network,
		Local:     app.State,
		Conflicts: app.Conflicts,
		Store:     app.KV,
		Logger:    logger,
		Metrics:   sync.NewMetrics(app.Registry),
	})
	if err := app.Sync.Init(ctx); err != nil {
		return fmt.Errorf("failed to start sync engine: %w", err)
	}

	app.Data = data.NewService(app.State, app.Sync, data.WithLogger(logger))
	app.Backup = backup.NewService(app.KV, backup.WithLogger(logger))
	app.Repair = repair.NewRepairer(app.State, repair.WithLogger(logger))

	return nil
}

// Close stops the engine and closes the stores. Background passes get a
// short grace period to finish.
func (app *App) Close() error {
	var errs []error

	if app.Sync != nil {
		done := make(chan struct{})
		go func() {
			app.Sync.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(app.Config.Sync.OperationTimeout):
			app.Logger.Warn("Sync still running on shutdown")
		}
		errs = append(errs, app.Sync.Close())
	}
	if app.Remote != nil {
		errs = append(errs, app.Remote.Close())
	}
	if app.KV != nil {
		errs = append(errs, app.KV.Close())
	}
	return errors.Join(errs...)
}

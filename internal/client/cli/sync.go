package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/iudanet/taskkeeper/internal/client/sync"
	"github.com/iudanet/taskkeeper/internal/models"
)

func (c *Cli) newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push queued changes to the remote store",
		Args:  cobra.NoArgs,
		RunE: c.withApp(false, func(ctx context.Context, app *App, _ []string) error {
			return c.runSync(ctx, app)
		}),
	}
}

func (c *Cli) runSync(ctx context.Context, app *App) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	before := app.Sync.Status().PendingChanges
	if before == 0 {
		c.io.Println("✓ Nothing to synchronize")
		return nil
	}
	c.io.Printf("Pending operations: %d\n", before)

	if err := app.Sync.SyncNow(ctx); err != nil {
		if errors.Is(err, sync.ErrOffline) {
			c.io.Println("⚠️  Remote store is not reachable. Changes stay queued.")
			return nil
		}
		return fmt.Errorf("synchronization failed: %w", err)
	}

	status := app.Sync.Status()
	c.io.Println()
	c.io.Printf("Synced:             %d\n", before-status.PendingChanges)
	c.io.Printf("Still pending:      %d\n", status.PendingChanges)
	if status.DataSaved > 0 {
		c.io.Printf("Saved by deltas:    %d bytes\n", status.DataSaved)
	}
	if n := len(app.Conflicts.Conflicts(models.ConflictPending, models.ConflictManual, models.ConflictFailed)); n > 0 {
		c.io.Printf("⚠️  Open conflicts:  %d (see 'taskkeeper conflicts list')\n", n)
	}
	return nil
}

func (c *Cli) newStatusCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sync status and queued operations",
		Args:  cobra.NoArgs,
		RunE: c.withApp(false, func(_ context.Context, app *App, _ []string) error {
			c.printStatus(app, verbose)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list queued operations")
	return cmd
}

func (c *Cli) printStatus(app *App, verbose bool) {
	status := app.Sync.Status()

	c.io.Println("=== Sync Status ===")
	c.io.Println()
	c.io.Printf("Schema version: %s\n", app.Migration.CurrentVersion())
	c.io.Printf("Status:         %s\n", status.Status)
	if status.LastSyncTime != nil {
		c.io.Printf("Last sync:      %s\n", status.LastSyncTime.Format(time.RFC3339))
	} else {
		c.io.Println("Last sync:      never")
	}
	if status.Error != "" {
		c.io.Printf("Last error:     %s\n", status.Error)
	}
	c.io.Printf("Pending:        %d\n", status.PendingChanges)

	if open := app.Conflicts.Conflicts(models.ConflictPending, models.ConflictManual, models.ConflictFailed); len(open) > 0 {
		c.io.Printf("Conflicts:      %d open\n", len(open))
	}

	if !verbose {
		return
	}
	queue := app.Sync.Queue()
	if len(queue) == 0 {
		return
	}
	c.io.Println()
	c.io.Println("Queued operations:")
	for _, op := range queue {
		line := fmt.Sprintf("  %s %s %s  attempts=%d", op.Type, op.EntityType, op.EntityID(), op.Attempts)
		if op.IsDelta {
			line += "  delta"
		}
		if op.LastError != "" {
			line += "  error=" + op.LastError
		}
		c.io.Println(line)
	}
}

func (c *Cli) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Keep syncing in the foreground until interrupted",
		Long: "Probes the remote store, pushes queued changes whenever it becomes reachable " +
			"and on the configured interval, and serves prometheus metrics on metrics_addr.",
		Args: cobra.NoArgs,
		RunE: c.withApp(true, func(ctx context.Context, app *App, _ []string) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runForeground(ctx, app)
		}),
	}
}

// runForeground работает до отмены ctx
func (c *Cli) runForeground(ctx context.Context, app *App) error {
	unsubscribe := app.Sync.Subscribe(func(s models.SyncStatus) {
		app.Logger.Info("Sync status changed", "status", s.Status, "pending", s.PendingChanges)
	})
	defer unsubscribe()

	if addr := app.Config.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			app.Logger.Info("Serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.Logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error("Failed to shut down metrics server", "error", err)
			}
		}()
	}

	c.io.Println("Sync is running. Press Ctrl+C to stop.")

	if app.Prober != nil {
		// Run блокируется до отмены ctx
		app.Prober.Run(ctx)
	} else {
		<-ctx.Done()
	}

	c.io.Println()
	c.io.Println("Stopping...")
	return nil
}

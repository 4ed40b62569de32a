package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/taskkeeper/internal/models"
)

func (c *Cli) newConflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Inspect and resolve sync conflicts",
	}

	var statuses []string
	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded conflicts",
		Args:  cobra.NoArgs,
		RunE: c.withApp(false, func(_ context.Context, app *App, _ []string) error {
			filter := make([]models.ConflictStatus, 0, len(statuses))
			for _, s := range statuses {
				filter = append(filter, models.ConflictStatus(s))
			}
			conflicts := app.Conflicts.Conflicts(filter...)
			if asJSON {
				return c.printJSON(conflicts)
			}
			c.printConflicts(conflicts)
			return nil
		}),
	}
	list.Flags().StringSliceVar(&statuses, "status", nil, "filter by status: pending, resolved, manual, failed")
	list.Flags().BoolVar(&asJSON, "json", false, "print conflicts as JSON")

	var strategy string
	resolve := &cobra.Command{
		Use:   "resolve <conflict-id>",
		Short: "Resolve a conflict with a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(false, func(ctx context.Context, app *App, args []string) error {
			if err := app.Conflicts.ResolveConflict(ctx, args[0], strategy); err != nil {
				return fmt.Errorf("failed to resolve conflict: %w", err)
			}
			resolved, _ := app.Conflicts.ConflictByID(args[0])
			if resolved.Status == models.ConflictFailed {
				c.io.Printf("✗ Strategy %s failed: %s\n", strategy, resolved.Error)
				return nil
			}
			c.io.Printf("✓ Conflict %s is now %s\n", resolved.ID, resolved.Status)
			return nil
		}),
	}
	resolve.Flags().StringVar(&strategy, "strategy", models.StrategyClientWins,
		"resolution strategy: client-wins, server-wins, manual")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove resolved conflicts",
		Args:  cobra.NoArgs,
		RunE: c.withApp(false, func(ctx context.Context, app *App, _ []string) error {
			removed, err := app.Conflicts.ClearResolved(ctx)
			if err != nil {
				return fmt.Errorf("failed to clear conflicts: %w", err)
			}
			c.io.Printf("✓ Removed %d resolved conflict(s)\n", removed)
			return nil
		}),
	}

	cmd.AddCommand(list, resolve, clearCmd)
	return cmd
}

func (c *Cli) printConflicts(conflicts []models.Conflict) {
	c.io.Println("=== Conflicts ===")
	c.io.Println()
	if len(conflicts) == 0 {
		c.io.Println("No conflicts found.")
		return
	}

	for _, cf := range conflicts {
		c.io.Printf("ID: %s\n", cf.ID)
		c.io.Printf("  Entity:   %s %s\n", cf.EntityType, cf.EntityID)
		c.io.Printf("  Status:   %s\n", cf.Status)
		c.io.Printf("  Strategy: %s\n", cf.Strategy)
		c.io.Printf("  Created:  %s\n", cf.CreatedAt.Format(time.RFC3339))
		if cf.ResolvedAt != nil {
			c.io.Printf("  Resolved: %s with %s\n", cf.ResolvedAt.Format(time.RFC3339), cf.ResolvedWith)
		}
		if cf.Error != "" {
			c.io.Printf("  Error:    %s\n", cf.Error)
		}
		c.io.Printf("  Client:   %s\n", formatValue(map[string]any(cf.ClientData)))
		c.io.Printf("  Server:   %s\n", formatValue(map[string]any(cf.ServerData)))
		c.io.Println()
	}
	c.io.Printf("Total: %d\n", len(conflicts))
}

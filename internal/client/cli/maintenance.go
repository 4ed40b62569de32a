package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/taskkeeper/internal/client/backup"
	"github.com/iudanet/taskkeeper/internal/client/iocli"
	"github.com/iudanet/taskkeeper/internal/models"
)

func (c *Cli) newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the local database",
	}

	var out string
	var compress bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Write all local data to a backup file",
		Args:  cobra.NoArgs,
		RunE: c.withApp(false, func(ctx context.Context, app *App, _ []string) error {
			bundle, err := app.Backup.Export(ctx)
			if err != nil {
				return fmt.Errorf("failed to export data: %w", err)
			}

			path := out
			if path == "" {
				path = backup.FileName(time.Now())
				if compress {
					path += backup.CompressedExt
				}
			}
			if err := backup.WriteFile(path, bundle); err != nil {
				return err
			}

			c.io.Println("✓ Backup created")
			c.io.Printf("File:    %s\n", path)
			c.io.Printf("Keys:    %d\n", len(bundle.Data))
			c.io.Printf("Version: %s\n", bundle.Version)
			return nil
		}),
	}
	create.Flags().StringVarP(&out, "out", "o", "", "output file (default: timestamped name in the current directory)")
	create.Flags().BoolVar(&compress, "compress", false, "snappy-compress the default output file")

	var yes bool
	restore := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace all local data with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(false, func(ctx context.Context, app *App, args []string) error {
			bundle, err := backup.ReadFile(args[0])
			if err != nil {
				return err
			}

			if !yes {
				c.io.Printf("Backup from %s (%s), %d keys.\n", bundle.Timestamp, bundle.Platform, len(bundle.Data))
				ok, err := iocli.Confirm(c.io, "All local data will be replaced. Continue?")
				if err != nil {
					return fmt.Errorf("failed to read confirmation: %w", err)
				}
				if !ok {
					c.io.Println("Restore cancelled.")
					return nil
				}
			}

			result, err := app.Backup.Restore(ctx, bundle)
			if err != nil {
				return fmt.Errorf("failed to restore backup: %w", err)
			}
			c.io.Println("✓ Backup restored")
			c.io.Printf("Items restored: %d\n", result.ItemsRestored)
			c.io.Printf("Backup time:    %s\n", result.Timestamp)
			return nil
		}),
	}
	restore.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(create, restore)
	return cmd
}

func (c *Cli) newRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Fix corrupted local entities",
		Args:  cobra.NoArgs,
		RunE: c.withApp(false, func(ctx context.Context, app *App, _ []string) error {
			summary, err := app.Repair.RepairAll(ctx)
			if err != nil {
				return fmt.Errorf("repair failed: %w", err)
			}

			c.io.Println("=== Data Repair ===")
			c.io.Println()

			kinds := make([]models.EntityType, 0, len(summary.Kinds))
			for kind := range summary.Kinds {
				kinds = append(kinds, kind)
			}
			sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

			for _, kind := range kinds {
				report := summary.Kinds[kind]
				c.io.Printf("%s: %d checked, %d repaired\n", kind, report.Total, report.Repaired)
				for _, issue := range report.Issues {
					c.io.Printf("  %s: %s\n", issue.ID, issue.Issue)
				}
			}

			c.io.Println()
			if summary.TotalRepaired == 0 {
				c.io.Println("✓ No problems found")
			} else {
				c.io.Printf("✓ Repaired %d entit(ies)\n", summary.TotalRepaired)
			}
			return nil
		}),
	}
}

func (c *Cli) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Show the schema migration result",
		Long:  "Schema migration runs automatically on every start; this command reports its outcome and the known versions.",
		Args:  cobra.NoArgs,
		RunE: c.withApp(false, func(_ context.Context, app *App, _ []string) error {
			res := app.Migrated

			c.io.Println("=== Schema Migration ===")
			c.io.Println()
			c.io.Printf("Current version: %s\n", app.Migration.CurrentVersion())
			c.io.Printf("Result:          %s\n", res.Message)
			if res.Migrated {
				c.io.Printf("Steps applied:   %d\n", res.Steps)
			}

			c.io.Println()
			c.io.Println("Known versions:")
			for _, v := range app.Migration.Catalog() {
				c.io.Printf("  %s  %s  %s\n", v.Version, v.Date, v.Description)
			}

			if !res.Success {
				return fmt.Errorf("migration failed: %s", res.Message)
			}
			return nil
		}),
	}
}

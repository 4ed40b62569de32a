package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/taskkeeper/internal/models"
)

func (c *Cli) newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task or a category",
	}

	var title, priority, due, category, description string
	var taskSet []string
	task := &cobra.Command{
		Use:   "task",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: c.withApp(false, func(ctx context.Context, app *App, _ []string) error {
			fields, err := parseAssignments(taskSet)
			if err != nil {
				return err
			}
			setIfNotEmpty(fields, "title", title)
			setIfNotEmpty(fields, "priority", priority)
			setIfNotEmpty(fields, "dueDate", due)
			setIfNotEmpty(fields, "categoryId", category)
			setIfNotEmpty(fields, "description", description)
			return c.runAdd(ctx, app, models.EntityTask, fields)
		}),
	}
	tf := task.Flags()
	tf.StringVar(&title, "title", "", "task title")
	tf.StringVar(&priority, "priority", "medium", "priority: low, medium, high")
	tf.StringVar(&due, "due", "", "due date (RFC3339 or YYYY-MM-DD)")
	tf.StringVar(&category, "category", "", "category id")
	tf.StringVar(&description, "description", "", "task description")
	tf.StringArrayVar(&taskSet, "set", nil, "extra field as key=value (repeatable)")
	_ = task.MarkFlagRequired("title")

	var name, color string
	var categorySet []string
	cat := &cobra.Command{
		Use:   "category",
		Short: "Add a category",
		Args:  cobra.NoArgs,
		RunE: c.withApp(false, func(ctx context.Context, app *App, _ []string) error {
			fields, err := parseAssignments(categorySet)
			if err != nil {
				return err
			}
			setIfNotEmpty(fields, "name", name)
			setIfNotEmpty(fields, "color", color)
			return c.runAdd(ctx, app, models.EntityCategory, fields)
		}),
	}
	cf := cat.Flags()
	cf.StringVar(&name, "name", "", "category name")
	cf.StringVar(&color, "color", "", "category color, e.g. #ff8800")
	cf.StringArrayVar(&categorySet, "set", nil, "extra field as key=value (repeatable)")
	_ = cat.MarkFlagRequired("name")

	cmd.AddCommand(task, cat)
	return cmd
}

func setIfNotEmpty(e models.Entity, key, value string) {
	if value != "" {
		e[key] = value
	}
}

func (c *Cli) runAdd(ctx context.Context, app *App, kind models.EntityType, fields models.Entity) error {
	created, err := app.Data.Create(ctx, kind, fields)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", kind, err)
	}

	c.io.Printf("✓ %s added\n", kind)
	c.io.Println()
	c.printEntity(created)
	return nil
}

func (c *Cli) newUpdateCmd() *cobra.Command {
	var set []string
	cmd := &cobra.Command{
		Use:     "update <task|category> <id>",
		Short:   "Change fields of an entity",
		Example: "  taskkeeper update task 6f1c... --set title=Groceries --set priority=high",
		Args:    cobra.ExactArgs(2),
		RunE: c.withApp(false, func(ctx context.Context, app *App, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if len(set) == 0 {
				return fmt.Errorf("nothing to update, pass at least one --set key=value")
			}
			changes, err := parseAssignments(set)
			if err != nil {
				return err
			}

			updated, err := app.Data.Update(ctx, kind, args[1], changes)
			if err != nil {
				return fmt.Errorf("failed to update %s: %w", kind, err)
			}
			c.io.Printf("✓ %s updated\n", kind)
			c.io.Println()
			c.printEntity(updated)
			return nil
		}),
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "field as key=value (repeatable); values are parsed as JSON when possible")
	return cmd
}

func (c *Cli) newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Mark a task done or not done",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(false, func(ctx context.Context, app *App, args []string) error {
			task, err := app.Data.Toggle(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to toggle task: %w", err)
			}
			state := "not completed"
			if done, _ := task["completed"].(bool); done {
				state = "completed"
			}
			c.io.Printf("✓ Task %s marked as %s\n", task.ID(), state)
			return nil
		}),
	}
}

func (c *Cli) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task|category> <id>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(2),
		RunE: c.withApp(false, func(ctx context.Context, app *App, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if err := app.Data.Delete(ctx, kind, args[1]); err != nil {
				return fmt.Errorf("failed to delete %s: %w", kind, err)
			}
			c.io.Printf("✓ %s %s deleted\n", kind, args[1])
			return nil
		}),
	}
}

func (c *Cli) newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <tasks|categories>",
		Short: "List local entities",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(false, func(ctx context.Context, app *App, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			items, err := app.Data.List(ctx, kind)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", kind, err)
			}
			if asJSON {
				return c.printJSON(items)
			}

			c.io.Printf("=== %s ===\n", listTitle(kind))
			c.io.Println()
			if len(items) == 0 {
				c.io.Printf("No %s found.\n", strings.ToLower(listTitle(kind)))
				return nil
			}
			for _, item := range items {
				c.io.Println(summary(kind, item))
			}
			c.io.Println()
			c.io.Printf("Total: %d\n", len(items))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entities as JSON")
	return cmd
}

func listTitle(kind models.EntityType) string {
	switch kind {
	case models.EntityTask:
		return "Tasks"
	case models.EntityCategory:
		return "Categories"
	}
	return string(kind)
}

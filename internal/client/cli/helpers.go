package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iudanet/taskkeeper/internal/models"
)

// parseKind принимает тип сущности в единственном или множественном числе
func parseKind(s string) (models.EntityType, error) {
	switch strings.ToLower(s) {
	case "task", "tasks":
		return models.EntityTask, nil
	case "category", "categories":
		return models.EntityCategory, nil
	}
	return "", fmt.Errorf("unknown entity type %q (use task or category)", s)
}

// parseAssignments разбирает пары key=value. Значение читается как JSON,
// иначе берется строкой.
func parseAssignments(pairs []string) (models.Entity, error) {
	out := make(models.Entity, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		out[key] = value
	}
	return out, nil
}

func (c *Cli) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	c.io.Println(string(data))
	return nil
}

// printEntity печатает поля сущности в стабильном порядке, id первым
func (c *Cli) printEntity(e models.Entity) {
	keys := make([]string, 0, len(e))
	for k := range e {
		if k != models.FieldID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	c.io.Printf("ID: %s\n", e.ID())
	for _, k := range keys {
		c.io.Printf("  %s: %v\n", k, formatValue(e[k]))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
	return fmt.Sprint(v)
}

// summary короткое описание сущности для списков
func summary(kind models.EntityType, e models.Entity) string {
	switch kind {
	case models.EntityTask:
		mark := " "
		if done, _ := e["completed"].(bool); done {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %s  %s", mark, e.ID(), formatValue(e["title"]))
		if p, ok := e["priority"].(string); ok && p != "" {
			line += "  (" + p + ")"
		}
		return line
	case models.EntityCategory:
		return fmt.Sprintf("%s  %s  %s", e.ID(), formatValue(e["name"]), formatValue(e["color"]))
	}
	return e.ID()
}

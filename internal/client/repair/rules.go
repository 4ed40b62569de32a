package repair

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
)

// isoMillis формат дат, в котором хранятся временные поля сущностей
const isoMillis = "2006-01-02T15:04:05.000Z"

// Rule checks one aspect of an entity and fixes it in place. It returns the
// issue text when something was repaired.
type Rule func(e models.Entity, now time.Time) (issue string, repaired bool)

// DateReset selects how an invalid date is fixed.
type DateReset int

const (
	ResetToNull DateReset = iota // ResetToNull поле обнуляется
	ResetToNow                   // ResetToNow поле получает текущее время
)

// RequireField replaces a missing or empty field with def().
func RequireField(field, issue string, def func() any) Rule {
	return func(e models.Entity, now time.Time) (string, bool) {
		if !isEmpty(e[field]) {
			return "", false
		}
		e[field] = def()
		return issue, true
	}
}

// RequirePresent sets def when the field is absent or null. Zero values
// such as false are kept.
func RequirePresent(field, issue string, def any) Rule {
	return func(e models.Entity, now time.Time) (string, bool) {
		if v, ok := e[field]; ok && v != nil {
			return "", false
		}
		e[field] = def
		return issue, true
	}
}

// ValidDate checks a date field. Unset fields are skipped; time.Time values
// are serialized without being reported.
func ValidDate(field, issue string, reset DateReset) Rule {
	return func(e models.Entity, now time.Time) (string, bool) {
		v := e[field]
		if isEmpty(v) {
			return "", false
		}
		if t, ok := v.(time.Time); ok {
			e[field] = t.UTC().Format(isoMillis)
			return "", false
		}
		if validDate(v) {
			return "", false
		}

		if reset == ResetToNow {
			e[field] = now.UTC().Format(isoMillis)
		} else {
			e[field] = nil
		}
		return issue, true
	}
}

// OneOf resets the field to def unless it holds one of allowed.
func OneOf(field, issue, def string, allowed ...string) Rule {
	return func(e models.Entity, now time.Time) (string, bool) {
		if s, ok := e[field].(string); ok && slices.Contains(allowed, s) {
			return "", false
		}
		e[field] = def
		return issue, true
	}
}

// TaskRules are the checks applied to tasks.
func TaskRules() []Rule {
	return []Rule{
		RequireField("title", "Missing title", constant("Untitled Task")),
		ValidDate("dueDate", "Invalid due date", ResetToNull),
		ValidDate("createdAt", "Invalid created date", ResetToNow),
		ValidDate("updatedAt", "Invalid updated date", ResetToNow),
		OneOf("priority", "Invalid priority", "medium", "low", "medium", "high"),
		RequirePresent("completed", "Missing completed flag", false),
	}
}

// CategoryRules are the checks applied to categories. color generates the
// replacement for a missing color.
func CategoryRules(color func() string) []Rule {
	return []Rule{
		RequireField("name", "Missing name", constant("Untitled Category")),
		RequireField("color", "Missing color", func() any { return color() }),
	}
}

// RandomColor returns a random "#rrggbb" color.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0xffffff))
}

func constant(v any) func() any {
	return func() any { return v }
}

// isEmpty повторяет проверку "ложности" значения поля
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case int:
		return val == 0
	}
	return false
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	isoMillis,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func validDate(v any) bool {
	switch val := v.(type) {
	case string:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, val); err == nil {
				return true
			}
		}
		return false
	case float64:
		// Миллисекунды от эпохи
		return true
	case int, int64:
		return true
	}
	return false
}

// Package repair scans persisted entities and fixes common corruption:
// missing or duplicate ids, missing required fields, invalid dates and
// enum values.
package repair

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iudanet/taskkeeper/internal/idgen"
	"github.com/iudanet/taskkeeper/internal/models"
)

// EntityStore is the local state the repairer reads and rewrites.
type EntityStore interface {
	List(ctx context.Context, kind models.EntityType) ([]models.Entity, error)
	ReplaceAll(ctx context.Context, kind models.EntityType, items []models.Entity) error
}

// Issue is one repaired problem.
type Issue struct {
	ID    string `json:"id"`
	Issue string `json:"issue"`
}

// Report is the result of repairing one kind.
type Report struct {
	Issues   []Issue `json:"issues"`
	Total    int     `json:"total"`
	Repaired int     `json:"repaired"`
}

// Summary is the combined result of RepairAll.
type Summary struct {
	Kinds         map[models.EntityType]Report `json:"kinds"`
	TotalRepaired int                          `json:"totalRepaired"`
}

// Repairer applies per-kind rules to the local state.
type Repairer struct {
	store  EntityStore
	logger *slog.Logger
	rules  map[models.EntityType][]Rule
	ids    func() string
	clock  func() time.Time
}

// Option configures a Repairer.
type Option func(*Repairer)

// WithRules sets the rules for a kind.
func WithRules(kind models.EntityType, rules ...Rule) Option {
	return func(r *Repairer) { r.rules[kind] = rules }
}

// WithIDs sets the id generator for missing and duplicate ids.
func WithIDs(ids func() string) Option {
	return func(r *Repairer) { r.ids = ids }
}

// WithClock sets the time source for reset dates.
func WithClock(clock func() time.Time) Option {
	return func(r *Repairer) { r.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repairer) { r.logger = logger }
}

// NewRepairer creates a repairer with the task and category rules.
func NewRepairer(store EntityStore, opts ...Option) *Repairer {
	r := &Repairer{
		store:  store,
		logger: slog.Default(),
		ids:    idgen.New,
		clock:  time.Now,
		rules: map[models.EntityType][]Rule{
			models.EntityTask:     TaskRules(),
			models.EntityCategory: CategoryRules(RandomColor),
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Repair checks every entity of kind and writes the fixed list back when
// anything was repaired.
func (r *Repairer) Repair(ctx context.Context, kind models.EntityType) (Report, error) {
	items, err := r.store.List(ctx, kind)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load %s: %w", kind, err)
	}

	report := Report{Total: len(items), Issues: []Issue{}}
	fixed := make([]models.Entity, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	now := r.clock()
	rules := r.rules[kind]

	for _, item := range items {
		e := item.Clone()
		if e == nil {
			e = models.Entity{}
		}
		var issues []string

		if e.ID() == "" {
			e[models.FieldID] = r.ids()
			issues = append(issues, "Missing ID")
		}
		if _, dup := seen[e.ID()]; dup {
			old := e.ID()
			e[models.FieldID] = r.ids()
			issues = append(issues, fmt.Sprintf("Duplicate ID (was %s)", old))
		}
		seen[e.ID()] = struct{}{}

		for _, rule := range rules {
			if issue, ok := rule(e, now); ok {
				issues = append(issues, issue)
			}
		}

		for _, issue := range issues {
			report.Issues = append(report.Issues, Issue{ID: e.ID(), Issue: issue})
		}
		if len(issues) > 0 {
			report.Repaired++
		}
		fixed = append(fixed, e)
	}

	if report.Repaired == 0 {
		return report, nil
	}

	if err := r.store.ReplaceAll(ctx, kind, fixed); err != nil {
		return report, fmt.Errorf("failed to save repaired %s: %w", kind, err)
	}
	r.logger.Info("Entities repaired",
		"entity_type", kind,
		"total", report.Total,
		"repaired", report.Repaired,
		"issues", len(report.Issues))
	return report, nil
}

// RepairAll repairs every kind that has rules.
func (r *Repairer) RepairAll(ctx context.Context) (Summary, error) {
	kinds := make([]models.EntityType, 0, len(r.rules))
	for kind := range r.rules {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	summary := Summary{Kinds: make(map[models.EntityType]Report, len(kinds))}
	for _, kind := range kinds {
		report, err := r.Repair(ctx, kind)
		if err != nil {
			return summary, err
		}
		summary.Kinds[kind] = report
		summary.TotalRepaired += report.Repaired
	}
	return summary, nil
}

// Package migration evolves the shape of the persisted local state between
// application versions. It runs once at startup, before any sync activity.
package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/taskkeeper/internal/client/state"
	"github.com/iudanet/taskkeeper/internal/client/storage"
)

// KeySchemaVersion ключ маркера версии схемы в KV хранилище
const KeySchemaVersion = "schemaVersion"

// Result describes the outcome of Migrate.
type Result struct {
	Message  string `json:"message"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Steps    int    `json:"steps,omitempty"`
	Success  bool   `json:"success"`
	Migrated bool   `json:"migrated"`
}

// Runner applies catalog steps to the persisted state.
type Runner struct {
	store   storage.KVStore
	logger  *slog.Logger
	catalog []Version
	steps   map[string]Step
	current string
}

// Option configures a Runner.
type Option func(*Runner)

// WithCatalog replaces the embedded catalog. The last entry becomes the
// current version.
func WithCatalog(versions []Version) Option {
	return func(r *Runner) {
		r.catalog = append([]Version(nil), versions...)
	}
}

// WithStep attaches a transformation to a catalog version. NewRunner fails
// with ErrUnknownVersion when the version is not in the catalog.
func WithStep(version string, step Step) Option {
	return func(r *Runner) {
		if r.steps == nil {
			r.steps = make(map[string]Step)
		}
		r.steps[version] = step
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a runner over the embedded catalog.
func NewRunner(store storage.KVStore, opts ...Option) (*Runner, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}

	r := &Runner{
		store:   store,
		logger:  slog.Default(),
		catalog: catalog,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := validateCatalog(r.catalog); err != nil {
		return nil, err
	}
	for version, step := range r.steps {
		idx := r.index(version)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, version)
		}
		r.catalog[idx].Migrate = step
	}
	r.current = r.catalog[len(r.catalog)-1].Version
	return r, nil
}

// CurrentVersion returns the schema version this build expects.
func (r *Runner) CurrentVersion() string {
	return r.current
}

// Catalog returns a copy of the version catalog.
func (r *Runner) Catalog() []Version {
	return append([]Version(nil), r.catalog...)
}

// StoredVersion returns the persisted schema marker.
func (r *Runner) StoredVersion(ctx context.Context) (string, bool, error) {
	v, ok, err := r.store.Get(ctx, KeySchemaVersion)
	if err != nil {
		return "", false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, ok && v != "", nil
}

// IsMigrationNeeded reports whether the stored schema version differs from
// the current one. A fresh install has no marker: the current version is
// written and no migration is needed.
func (r *Runner) IsMigrationNeeded(ctx context.Context) (bool, error) {
	stored, ok, err := r.StoredVersion(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		if err := r.store.Set(ctx, KeySchemaVersion, r.current); err != nil {
			return false, fmt.Errorf("failed to write schema version: %w", err)
		}
		r.logger.Info("Schema version initialized", "version", r.current)
		return false, nil
	}
	return stored != r.current, nil
}

// MigrationPath returns the catalog entries after the stored version up to
// and including the current one. It is empty when there is no stored
// version or either version is unknown.
func (r *Runner) MigrationPath(ctx context.Context) ([]Version, error) {
	stored, ok, err := r.StoredVersion(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return r.pathFrom(stored), nil
}

func (r *Runner) pathFrom(stored string) []Version {
	from, to := r.index(stored), r.index(r.current)
	if from < 0 || to < 0 || from >= to {
		return nil
	}
	return append([]Version(nil), r.catalog[from+1:to+1]...)
}

func (r *Runner) index(version string) int {
	for i, v := range r.catalog {
		if v.Version == version {
			return i
		}
	}
	return -1
}

// Migrate brings the persisted state to the current schema version. Errors
// never escape: they are reported as an unsuccessful Result.
func (r *Runner) Migrate(ctx context.Context) Result {
	res, err := r.migrate(ctx)
	if err != nil {
		r.logger.Error("Schema migration failed", "error", err)
		return Result{
			From:    res.From,
			To:      r.current,
			Message: "Migration failed: " + err.Error(),
		}
	}
	if res.Migrated {
		r.logger.Info("Schema migrated", "from", res.From, "to", res.To, "steps", res.Steps)
	}
	return res
}

func (r *Runner) migrate(ctx context.Context) (Result, error) {
	needed, err := r.IsMigrationNeeded(ctx)
	if err != nil {
		return Result{}, err
	}
	if !needed {
		return Result{Success: true, Message: "No migration needed", To: r.current}, nil
	}

	stored, _, err := r.StoredVersion(ctx)
	if err != nil {
		return Result{}, err
	}
	res := Result{From: stored, To: r.current}

	path := r.pathFrom(stored)
	if len(path) == 0 {
		res.Message = "No migration path found"
		return res, nil
	}

	raw, ok, err := r.store.Get(ctx, state.RootKey)
	if err != nil {
		return res, fmt.Errorf("failed to read persisted state: %w", err)
	}
	if !ok {
		res.Message = "No persisted state found"
		return res, nil
	}

	root, err := state.DecodeRoot(raw)
	if err != nil {
		return res, err
	}

	for _, v := range path {
		step := v.Migrate
		if step == nil {
			step = normalizeSlices
		}
		if err := step(ctx, root); err != nil {
			return res, fmt.Errorf("step %s: %w", v.Version, err)
		}
		r.logger.Debug("Schema step applied", "version", v.Version, "description", v.Description)
	}

	encoded, err := root.Encode()
	if err != nil {
		return res, err
	}

	// Состояние и маркер версии записываются одной транзакцией
	if err := r.store.MultiSet(ctx, map[string]string{
		state.RootKey:    encoded,
		KeySchemaVersion: r.current,
	}); err != nil {
		return res, fmt.Errorf("failed to save migrated state: %w", err)
	}

	res.Success = true
	res.Migrated = true
	res.Steps = len(path)
	res.Message = fmt.Sprintf("Migrated from %s to %s", stored, r.current)
	return res, nil
}

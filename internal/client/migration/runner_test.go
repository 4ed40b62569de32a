package migration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/taskkeeper/internal/client/state"
	"github.com/iudanet/taskkeeper/internal/client/storage"
	"github.com/iudanet/taskkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/taskkeeper/internal/models"
)

func createTestStore(t *testing.T) *boltdb.Storage {
	t.Helper()
	kv, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "migration.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func threeVersions() []Version {
	return []Version{
		{Version: "1.0.0", Description: "Initial schema version"},
		{Version: "1.1.0", Description: "Task priority"},
		{Version: "1.2.0", Description: "Category color"},
	}
}

func seedState(t *testing.T, kv storage.KVStore) {
	t.Helper()
	st := state.NewStore(kv)
	require.NoError(t, st.Put(context.Background(), models.EntityTask, models.Entity{"id": "t1", "title": "Write docs"}))
}

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "1.0.0", catalog[0].Version)
	assert.Equal(t, "Initial schema version", catalog[0].Description)
	assert.Equal(t, "2023-06-01", catalog[0].Date)
}

func TestParseCatalog_Errors(t *testing.T) {
	_, err := parseCatalog([]byte("versions: []"))
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = parseCatalog([]byte("versions:\n  - version: 1.0.0\n  - version: 1.0.0\n"))
	assert.ErrorIs(t, err, ErrDuplicateVersion)

	_, err = parseCatalog([]byte("versions: ["))
	assert.Error(t, err)
}

func TestNewRunner_StepForUnknownVersion(t *testing.T) {
	kv := createTestStore(t)

	_, err := NewRunner(kv,
		WithStep("9.9.9", func(context.Context, state.RootBlob) error { return nil }),
		WithCatalog(threeVersions()))
	require.ErrorIs(t, err, ErrUnknownVersion)

	// Порядок опций не важен
	r, err := NewRunner(kv,
		WithStep("1.2.0", func(context.Context, state.RootBlob) error { return nil }),
		WithCatalog(threeVersions()))
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", r.CurrentVersion())
}

func TestIsMigrationNeeded_FreshInstall(t *testing.T) {
	kv := createTestStore(t)
	r, err := NewRunner(kv)
	require.NoError(t, err)
	ctx := context.Background()

	needed, err := r.IsMigrationNeeded(ctx)
	require.NoError(t, err)
	assert.False(t, needed)

	stored, ok, err := kv.Get(ctx, KeySchemaVersion)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r.CurrentVersion(), stored)
}

func TestIsMigrationNeeded(t *testing.T) {
	kv := createTestStore(t)
	r, err := NewRunner(kv, WithCatalog(threeVersions()))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "1.2.0"))
	needed, err := r.IsMigrationNeeded(ctx)
	require.NoError(t, err)
	assert.False(t, needed)

	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "0.9.0"))
	needed, err = r.IsMigrationNeeded(ctx)
	require.NoError(t, err)
	assert.True(t, needed)

	// Маркер не перезаписывается при проверке
	stored, _, err := kv.Get(ctx, KeySchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, "0.9.0", stored)
}

func TestMigrationPath(t *testing.T) {
	kv := createTestStore(t)
	r, err := NewRunner(kv, WithCatalog(threeVersions()))
	require.NoError(t, err)
	ctx := context.Background()

	path, err := r.MigrationPath(ctx)
	require.NoError(t, err)
	assert.Empty(t, path)

	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "1.0.0"))
	path, err = r.MigrationPath(ctx)
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, "1.1.0", path[0].Version)
	assert.Equal(t, "1.2.0", path[1].Version)

	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "1.1.0"))
	path, err = r.MigrationPath(ctx)
	require.NoError(t, err)
	require.Len(t, path, 1)

	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "0.1.0"))
	path, err = r.MigrationPath(ctx)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestMigrate_NotNeeded(t *testing.T) {
	kv := createTestStore(t)
	r, err := NewRunner(kv)
	require.NoError(t, err)

	res := r.Migrate(context.Background())
	assert.True(t, res.Success)
	assert.False(t, res.Migrated)
	assert.Equal(t, "No migration needed", res.Message)
}

func TestMigrate_NoPath(t *testing.T) {
	kv := createTestStore(t)
	r, err := NewRunner(kv, WithCatalog(threeVersions()))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "0.9.0"))

	res := r.Migrate(ctx)
	assert.False(t, res.Success)
	assert.False(t, res.Migrated)
	assert.Equal(t, "No migration path found", res.Message)
}

func TestMigrate_NoPersistedState(t *testing.T) {
	kv := createTestStore(t)
	r, err := NewRunner(kv, WithCatalog(threeVersions()))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "1.0.0"))

	res := r.Migrate(ctx)
	assert.False(t, res.Success)
	assert.Equal(t, "No persisted state found", res.Message)

	stored, _, err := kv.Get(ctx, KeySchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", stored)
}

func TestMigrate_AppliesStepsInOrder(t *testing.T) {
	kv := createTestStore(t)
	ctx := context.Background()
	seedState(t, kv)
	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "1.0.0"))

	var applied []string
	addPriority := func(ctx context.Context, root state.RootBlob) error {
		applied = append(applied, "1.1.0")
		items, err := root.Items(state.SliceTasks)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, ok := item["priority"]; !ok {
				item["priority"] = "medium"
			}
		}
		return root.SetItems(state.SliceTasks, items)
	}
	r, err := NewRunner(kv,
		WithCatalog(threeVersions()),
		WithStep("1.1.0", addPriority),
		WithStep("1.2.0", func(ctx context.Context, root state.RootBlob) error {
			applied = append(applied, "1.2.0")
			return nil
		}),
	)
	require.NoError(t, err)

	res := r.Migrate(ctx)
	require.True(t, res.Success, res.Message)
	assert.True(t, res.Migrated)
	assert.Equal(t, 2, res.Steps)
	assert.Equal(t, "1.0.0", res.From)
	assert.Equal(t, "1.2.0", res.To)
	assert.Equal(t, "Migrated from 1.0.0 to 1.2.0", res.Message)
	assert.Equal(t, []string{"1.1.0", "1.2.0"}, applied)

	tasks, err := state.NewStore(kv).List(ctx, models.EntityTask)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "medium", tasks[0]["priority"])

	stored, _, err := kv.Get(ctx, KeySchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", stored)

	// Повторный запуск ничего не делает
	again := r.Migrate(ctx)
	assert.True(t, again.Success)
	assert.False(t, again.Migrated)
}

func TestMigrate_DefaultStepKeepsData(t *testing.T) {
	kv := createTestStore(t)
	ctx := context.Background()
	seedState(t, kv)
	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "1.1.0"))

	r, err := NewRunner(kv, WithCatalog(threeVersions()))
	require.NoError(t, err)

	res := r.Migrate(ctx)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1, res.Steps)

	tasks, err := state.NewStore(kv).List(ctx, models.EntityTask)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Write docs", tasks[0]["title"])
}

func TestMigrate_StepFailureIsReported(t *testing.T) {
	kv := createTestStore(t)
	ctx := context.Background()
	seedState(t, kv)
	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "1.0.0"))

	r, err := NewRunner(kv,
		WithCatalog(threeVersions()),
		WithStep("1.2.0", func(ctx context.Context, root state.RootBlob) error {
			return errors.New("bad shape")
		}),
	)
	require.NoError(t, err)

	res := r.Migrate(ctx)
	assert.False(t, res.Success)
	assert.False(t, res.Migrated)
	assert.Contains(t, res.Message, "Migration failed: ")
	assert.Contains(t, res.Message, "bad shape")

	// Ни состояние, ни маркер не изменились
	stored, _, err := kv.Get(ctx, KeySchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", stored)
}

func TestMigrate_StoreFailureIsReported(t *testing.T) {
	kv := &storage.KVStoreMock{
		GetFunc: func(ctx context.Context, key string) (string, bool, error) {
			return "", false, errors.New("disk gone")
		},
	}
	r, err := NewRunner(kv)
	require.NoError(t, err)

	res := r.Migrate(context.Background())
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "disk gone")
}

func TestMigrate_CorruptRoot(t *testing.T) {
	kv := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, state.RootKey, "{not json"))
	require.NoError(t, kv.Set(ctx, KeySchemaVersion, "1.0.0"))

	r, err := NewRunner(kv, WithCatalog(threeVersions()))
	require.NoError(t, err)

	res := r.Migrate(ctx)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "corrupt")
}

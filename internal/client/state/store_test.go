package state

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/taskkeeper/internal/client/storage"
	"github.com/iudanet/taskkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/taskkeeper/internal/models"
)

func createTestStore(t *testing.T) (*Store, *boltdb.Storage) {
	t.Helper()

	kv, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	return NewStore(kv), kv
}

func TestStore_EmptyState(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	items, err := s.List(ctx, models.EntityTask)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, found, err := s.Get(ctx, models.EntityTask, "1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_PutGetRemove(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, models.EntityTask, models.Entity{"id": "1", "title": "first"}))
	require.NoError(t, s.Put(ctx, models.EntityTask, models.Entity{"id": "2", "title": "second"}))

	// Обновление сохраняет позицию
	require.NoError(t, s.Put(ctx, models.EntityTask, models.Entity{"id": "1", "title": "renamed"}))

	items, err := s.List(ctx, models.EntityTask)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "renamed", items[0]["title"])
	assert.Equal(t, "2", items[1].ID())

	got, found, err := s.Get(ctx, models.EntityTask, "2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", got["title"])

	removed, err := s.Remove(ctx, models.EntityTask, "1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(ctx, models.EntityTask, "1")
	require.NoError(t, err)
	assert.False(t, removed)

	items, err = s.List(ctx, models.EntityTask)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestStore_KindsAreIsolated(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, models.EntityTask, models.Entity{"id": "t1"}))
	require.NoError(t, s.Put(ctx, models.EntityCategory, models.Entity{"id": "c1", "name": "Work"}))

	tasks, err := s.List(ctx, models.EntityTask)
	require.NoError(t, err)
	cats, err := s.List(ctx, models.EntityCategory)
	require.NoError(t, err)

	assert.Len(t, tasks, 1)
	assert.Len(t, cats, 1)
	assert.Equal(t, "Work", cats[0]["name"])
}

func TestStore_Errors(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	err := s.Put(ctx, models.EntityTask, models.Entity{"title": "no id"})
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = s.List(ctx, models.EntityType("note"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestStore_CustomKind(t *testing.T) {
	kv := newMemoryKV()
	s := NewStore(kv, WithKind("note", "notes"))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "note", models.Entity{"id": "n1"}))
	items, err := s.List(ctx, "note")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, []models.EntityType{"category", "note", "task"}, s.Kinds())
}

func TestStore_PersistedLayout(t *testing.T) {
	s, kv := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, models.EntityTask, models.Entity{"id": "1", "title": "Test Task"}))

	raw, ok, err := kv.Get(ctx, RootKey)
	require.NoError(t, err)
	require.True(t, ok)

	// Корневой blob содержит сериализованные под-blob'ы
	var root map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &root))
	assert.Contains(t, root, SliceTasks)
	assert.Contains(t, root, persistMetaKey)

	var tasks map[string]any
	require.NoError(t, json.Unmarshal([]byte(root[SliceTasks]), &tasks))
	assert.Equal(t, "idle", tasks["status"])
	list, ok := tasks[SliceTasks].([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestStore_SaveRootDropsTransientSlices(t *testing.T) {
	s, kv := createTestStore(t)
	ctx := context.Background()

	root := RootBlob{
		SliceTasks: `{"tasks":[]}`,
		"auth":     `{"token":"secret"}`,
		"sync":     `{"status":"idle"}`,
	}
	require.NoError(t, s.SaveRoot(ctx, root))

	raw, _, err := kv.Get(ctx, RootKey)
	require.NoError(t, err)
	decoded, err := DecodeRoot(raw)
	require.NoError(t, err)

	assert.Contains(t, decoded, SliceTasks)
	assert.NotContains(t, decoded, "auth")
	assert.NotContains(t, decoded, "sync")
}

func TestStore_ReplaceAllKeepsSliceFields(t *testing.T) {
	s, kv := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, RootKey, `{"tasks":"{\"tasks\":[{\"id\":\"old\"}],\"status\":\"succeeded\",\"error\":null}"}`))

	require.NoError(t, s.ReplaceAll(ctx, models.EntityTask, []models.Entity{{"id": "a"}, {"id": "b"}}))

	root, found, err := s.LoadRoot(ctx)
	require.NoError(t, err)
	require.True(t, found)
	sub, err := root.Slice(SliceTasks)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", sub["status"])

	items, err := root.Items(SliceTasks)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID())
}

func TestStore_CorruptRoot(t *testing.T) {
	s, kv := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, RootKey, "{not json"))
	_, err := s.List(ctx, models.EntityTask)
	assert.ErrorIs(t, err, ErrCorruptRoot)

	require.NoError(t, kv.Set(ctx, RootKey, `{"tasks":"{\"tasks\":\"nope\"}"}`))
	_, err = s.List(ctx, models.EntityTask)
	assert.ErrorIs(t, err, ErrCorruptRoot)
}

func TestStore_Subscribe(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, s.Put(ctx, models.EntityTask, models.Entity{"id": "1"}))
	_, err := s.Remove(ctx, models.EntityTask, "1")
	require.NoError(t, err)
	require.NoError(t, s.ReplaceAll(ctx, models.EntityCategory, nil))

	require.Len(t, changes, 3)
	assert.Equal(t, "1", changes[0].ID)
	assert.NotNil(t, changes[0].Entity)
	assert.Nil(t, changes[1].Entity)
	assert.True(t, changes[2].Reset)

	unsubscribe()
	require.NoError(t, s.Put(ctx, models.EntityTask, models.Entity{"id": "2"}))
	assert.Len(t, changes, 3)
}

func TestStore_StorageFailure(t *testing.T) {
	failure := errors.New("disk unavailable")
	kv := &storage.KVStoreMock{
		GetFunc: func(ctx context.Context, key string) (string, bool, error) {
			return "", false, failure
		},
	}
	s := NewStore(kv)

	_, err := s.List(context.Background(), models.EntityTask)
	assert.ErrorIs(t, err, failure)
}

// newMemoryKV возвращает мок KV хранилища поверх map
func newMemoryKV() *storage.KVStoreMock {
	data := map[string]string{}
	return &storage.KVStoreMock{
		GetFunc: func(ctx context.Context, key string) (string, bool, error) {
			v, ok := data[key]
			return v, ok, nil
		},
		SetFunc: func(ctx context.Context, key, value string) error {
			data[key] = value
			return nil
		},
	}
}

package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/taskkeeper/internal/client/storage"
)

func createTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)

	return store, func() {
		_ = store.Close()
	}
}

func TestNew_Success(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "testdb.db")

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() {
		require.NoError(t, store.Close())
	}()

	// Проверяем что файл БД действительно создан
	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	// Проверяем, что бакет существует
	err = store.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketKV) == nil {
			return os.ErrNotExist
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, filepath.Join(t.TempDir(), "missing", "dir", "db"))
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestClose(t *testing.T) {
	store, _ := createTestStorage(t)

	require.NoError(t, store.Close())
	// Повторное закрытие не является ошибкой
	require.NoError(t, store.Close())

	ctx := context.Background()
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Clear(ctx), storage.ErrStorageClosed)
	_, err = store.AllKeys(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestSetGet(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "persist:root", `{"tasks":"[]"}`))
	value, ok, err := store.Get(ctx, "persist:root")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"tasks":"[]"}`, value)

	// Перезапись
	require.NoError(t, store.Set(ctx, "persist:root", "v2"))
	value, _, err = store.Get(ctx, "persist:root")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)

	// Пустое значение хранится и отличается от отсутствующего ключа
	require.NoError(t, store.Set(ctx, "empty", ""))
	value, ok, err = store.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value)
}

func TestSet_EmptyKey(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.Set(context.Background(), "", "v")
	assert.ErrorIs(t, err, storage.ErrEmptyKey)
}

func TestRemove(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Remove(ctx, "a"))
	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Удаление несуществующего ключа не ошибка
	require.NoError(t, store.Remove(ctx, "a"))
}

func TestAllKeysAndClear(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	keys, err := store.AllKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, store.MultiSet(ctx, map[string]string{
		"sync:queue":     "[]",
		"persist:root":   "{}",
		"sync:conflicts": "[]",
	}))

	keys, err = store.AllKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"persist:root", "sync:conflicts", "sync:queue"}, keys)

	require.NoError(t, store.Clear(ctx))
	keys, err = store.AllKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	// После очистки хранилище остается рабочим
	require.NoError(t, store.Set(ctx, "k", "v"))
}

func TestMultiGetAndRemove(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.MultiSet(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))

	values, err := store.MultiGet(ctx, []string{"a", "c", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, values)

	require.NoError(t, store.MultiRemove(ctx, []string{"a", "b", "missing"}))
	keys, err := store.AllKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, keys)
}

func TestMultiSet_EmptyKeyIsAtomic(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	err := store.MultiSet(ctx, map[string]string{"a": "1", "": "2"})
	assert.ErrorIs(t, err, storage.ErrEmptyKey)

	// Транзакция откатилась целиком
	keys, err := store.AllKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestReplace(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.MultiSet(ctx, map[string]string{"old1": "1", "old2": "2", "keep": "x"}))

	require.NoError(t, store.Replace(ctx, map[string]string{"keep": "y", "new": "3"}))
	values, err := store.MultiGet(ctx, []string{"old1", "old2", "keep", "new"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"keep": "y", "new": "3"}, values)

	// Ошибка откатывает и удаление, и запись
	err = store.Replace(ctx, map[string]string{"a": "1", "": "2"})
	assert.ErrorIs(t, err, storage.ErrEmptyKey)
	keys, err := store.AllKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep", "new"}, keys)

	require.NoError(t, store.Replace(ctx, map[string]string{}))
	keys, err = store.AllKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "sync:queue", `[{"op_id":"1"}]`))
	require.NoError(t, store.Close())

	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	value, ok, err := store.Get(ctx, "sync:queue")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"op_id":"1"}]`, value)
}

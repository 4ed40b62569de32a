package data

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/taskkeeper/internal/client/state"
	"github.com/iudanet/taskkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/taskkeeper/internal/client/sync"
	"github.com/iudanet/taskkeeper/internal/models"
)

// mockQueue - простой hand-written mock очереди синхронизации
type mockQueue struct {
	err      error
	requests []sync.OperationRequest
}

func (m *mockQueue) AddToSyncQueue(ctx context.Context, req sync.OperationRequest) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.requests = append(m.requests, req)
	return true, nil
}

var fixedNow = time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *state.Store, *mockQueue) {
	t.Helper()
	kv, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	st := state.NewStore(kv)
	q := &mockQueue{}
	n := 0
	svc := NewService(st, q,
		WithClock(func() time.Time { return fixedNow }),
		WithIDs(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	return svc, st, q
}

func TestCreate(t *testing.T) {
	svc, st, q := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, models.EntityTask, models.Entity{"title": "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", task.ID())
	assert.Equal(t, false, task["completed"])
	assert.Equal(t, "2024-02-10T08:00:00.000Z", task["createdAt"])
	assert.Equal(t, "2024-02-10T08:00:00.000Z", task["updatedAt"])

	stored, ok, err := st.Get(ctx, models.EntityTask, "id-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Buy milk", stored["title"])

	require.Len(t, q.requests, 1)
	assert.Equal(t, models.OpCreate, q.requests[0].Type)
	assert.Equal(t, models.EntityTask, q.requests[0].EntityType)
	assert.Equal(t, "id-1", q.requests[0].Data.ID())
}

func TestCreate_KeepsGivenID(t *testing.T) {
	svc, _, q := newTestService(t)

	cat, err := svc.Create(context.Background(), models.EntityCategory, models.Entity{"id": "work", "name": "Work"})
	require.NoError(t, err)
	assert.Equal(t, "work", cat.ID())
	assert.NotContains(t, cat, "completed")
	require.Len(t, q.requests, 1)
}

func TestUpdate(t *testing.T) {
	svc, st, q := newTestService(t)
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, models.EntityTask, models.Entity{"id": "t1", "title": "Old", "priority": "low"}))

	updated, err := svc.Update(ctx, models.EntityTask, "t1", models.Entity{"id": "ignored", "title": "New"})
	require.NoError(t, err)
	assert.Equal(t, "t1", updated.ID())
	assert.Equal(t, "New", updated["title"])
	assert.Equal(t, "low", updated["priority"])
	assert.Equal(t, "2024-02-10T08:00:00.000Z", updated["updatedAt"])

	require.Len(t, q.requests, 1)
	assert.Equal(t, models.OpUpdate, q.requests[0].Type)
	assert.Equal(t, "New", q.requests[0].Data["title"])
	assert.Equal(t, "low", q.requests[0].Data["priority"])
}

func TestUpdate_NoChangeIsNotQueued(t *testing.T) {
	svc, st, q := newTestService(t)
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, models.EntityTask, models.Entity{"id": "t1", "title": "Same"}))

	_, err := svc.Update(ctx, models.EntityTask, "t1", models.Entity{"title": "Same"})
	require.NoError(t, err)
	assert.Empty(t, q.requests)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, q := newTestService(t)

	_, err := svc.Update(context.Background(), models.EntityTask, "missing", models.Entity{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, q.requests)
}

func TestToggle(t *testing.T) {
	svc, st, q := newTestService(t)
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, models.EntityTask, models.Entity{"id": "t1", "title": "Run", "completed": false}))

	toggled, err := svc.Toggle(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, true, toggled["completed"])

	stored, _, err := st.Get(ctx, models.EntityTask, "t1")
	require.NoError(t, err)
	assert.Equal(t, true, stored["completed"])

	toggled, err = svc.Toggle(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, false, toggled["completed"])

	require.Len(t, q.requests, 2)
	assert.Equal(t, true, q.requests[0].Data["completed"])
	assert.Equal(t, false, q.requests[1].Data["completed"])
}

func TestToggle_Errors(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Put(ctx, models.EntityTask, models.Entity{"id": "t2", "completed": "yes"}))
	_, err = svc.Toggle(ctx, "t2")
	assert.ErrorIs(t, err, ErrNotToggleable)

	// Отсутствующий флаг считается false
	require.NoError(t, st.Put(ctx, models.EntityTask, models.Entity{"id": "t3"}))
	toggled, err := svc.Toggle(ctx, "t3")
	require.NoError(t, err)
	assert.Equal(t, true, toggled["completed"])
}

func TestDelete(t *testing.T) {
	svc, st, q := newTestService(t)
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, models.EntityCategory, models.Entity{"id": "c1", "name": "Home"}))

	require.NoError(t, svc.Delete(ctx, models.EntityCategory, "c1"))

	_, ok, err := st.Get(ctx, models.EntityCategory, "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.Len(t, q.requests, 1)
	assert.Equal(t, models.OpDelete, q.requests[0].Type)
	assert.Equal(t, models.Entity{"id": "c1"}, q.requests[0].Data)

	err = svc.Delete(ctx, models.EntityCategory, "c1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, q.requests, 1)
}

func TestQueueErrorKeepsLocalChange(t *testing.T) {
	svc, st, q := newTestService(t)
	q.err = errors.New("queue closed")
	ctx := context.Background()

	_, err := svc.Create(ctx, models.EntityTask, models.Entity{"id": "t1", "title": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue closed")

	_, ok, err := st.Get(ctx, models.EntityTask, "t1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestList(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, models.EntityTask, models.Entity{"title": title})
		require.NoError(t, err)
	}

	tasks, err := svc.List(ctx, models.EntityTask)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "a", tasks[0]["title"])
	assert.Equal(t, "c", tasks[2]["title"])
}

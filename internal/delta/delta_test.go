package delta

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/taskkeeper/internal/models"
)

func TestDeepEqual(t *testing.T) {
	instant := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		a    any
		b    any
		name string
		want bool
	}{
		{name: "equal strings", a: "x", b: "x", want: true},
		{name: "different strings", a: "x", b: "y", want: false},
		{name: "number vs string", a: 1, b: "1", want: false},
		{name: "int vs float64 same value", a: 1, b: 1.0, want: true},
		{name: "bools", a: true, b: false, want: false},
		{name: "nil vs nil", a: nil, b: nil, want: true},
		{name: "nil vs zero", a: nil, b: 0, want: false},
		{name: "nil vs empty string", a: "", b: nil, want: false},
		{name: "dates same instant", a: instant, b: instant.In(time.FixedZone("X", 3600)), want: true},
		{name: "dates differ", a: instant, b: instant.Add(time.Second), want: false},
		{name: "date vs string", a: instant, b: instant.String(), want: false},
		{name: "arrays equal", a: []any{1.0, "a"}, b: []any{1.0, "a"}, want: true},
		{name: "arrays order matters", a: []any{"a", "b"}, b: []any{"b", "a"}, want: false},
		{name: "arrays length strict", a: []any{"a"}, b: []any{"a", "a"}, want: false},
		{name: "typed slice vs any slice", a: []string{"a"}, b: []any{"a"}, want: true},
		{
			name: "nested structures",
			a:    map[string]any{"a": []any{1.0, map[string]any{"b": 2.0}}},
			b:    map[string]any{"a": []any{1.0, map[string]any{"b": 2.0}}},
			want: true,
		},
		{
			name: "extra key",
			a:    map[string]any{"a": 1.0, "b": 2.0},
			b:    map[string]any{"a": 1.0},
			want: false,
		},
		{
			name: "same arity different keys",
			a:    map[string]any{"a": 1.0},
			b:    map[string]any{"b": 1.0},
			want: false,
		},
		{name: "map vs slice", a: map[string]any{}, b: []any{}, want: false},
		{name: "large int64 differ by one", a: int64(1<<53 + 1), b: int64(1 << 53), want: false},
		{name: "large int64 vs uint64 equal", a: int64(math.MaxInt64), b: uint64(math.MaxInt64), want: true},
		{name: "uint64 above int64 range", a: uint64(math.MaxUint64), b: uint64(math.MaxUint64 - 1), want: false},
		{name: "negative vs unsigned", a: int64(-1), b: uint64(1), want: false},
		{name: "min int64", a: int64(math.MinInt64), b: json.Number("-9223372036854775808"), want: true},
		{name: "json number vs int64", a: json.Number("9007199254740993"), b: int64(9007199254740992), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeepEqual(tt.a, tt.b))
			// Симметричность
			assert.Equal(t, tt.want, DeepEqual(tt.b, tt.a))
		})
	}
}

func TestDeepEqual_Reflexive(t *testing.T) {
	values := []any{
		"s", 3.5, true, time.Now(),
		[]any{1.0, []any{"x"}},
		models.Entity{"id": "1", "tags": []any{"a"}},
	}
	for _, v := range values {
		assert.True(t, DeepEqual(v, v), "%v", v)
	}
}

func TestComputeDelta(t *testing.T) {
	t.Run("no old version returns full entity", func(t *testing.T) {
		x := models.Entity{"id": "1", "title": "a"}
		assert.Equal(t, x, ComputeDelta(nil, x))
	})

	t.Run("nil new version signals deletion", func(t *testing.T) {
		assert.Nil(t, ComputeDelta(models.Entity{"id": "1"}, nil))
	})

	t.Run("identical copy is a no-op", func(t *testing.T) {
		a := models.Entity{"id": "1", "title": "a", "tags": []any{"x"}}
		assert.Nil(t, ComputeDelta(a, a.Clone()))
	})

	t.Run("changed and added fields with id", func(t *testing.T) {
		oldE := models.Entity{"id": "1", "title": "a", "completed": false, "priority": "low"}
		newE := models.Entity{"id": "1", "title": "b", "completed": false, "priority": "low", "notes": "n"}

		got := ComputeDelta(oldE, newE)
		assert.Equal(t, models.Entity{"id": "1", "title": "b", "notes": "n"}, got)
	})

	t.Run("large integer change is kept", func(t *testing.T) {
		oldE := models.Entity{"id": "1", "revision": int64(1 << 53)}
		newE := models.Entity{"id": "1", "revision": int64(1<<53 + 1)}
		assert.Equal(t, models.Entity{"id": "1", "revision": int64(1<<53 + 1)}, ComputeDelta(oldE, newE))
	})

	t.Run("removed keys are not carried", func(t *testing.T) {
		oldE := models.Entity{"id": "1", "title": "a", "notes": "n"}
		newE := models.Entity{"id": "1", "title": "a"}
		assert.Nil(t, ComputeDelta(oldE, newE))
		assert.Equal(t, []string{"notes"}, RemovedKeys(oldE, newE))
	})
}

func TestApplyDelta(t *testing.T) {
	base := models.Entity{"id": "1", "title": "a", "notes": "keep"}

	assert.Equal(t, base, ApplyDelta(base, nil))
	assert.Equal(t, models.Entity{"id": "1"}, ApplyDelta(nil, models.Entity{"id": "1"}))

	got := ApplyDelta(base, models.Entity{"id": "1", "title": "b"})
	assert.Equal(t, models.Entity{"id": "1", "title": "b", "notes": "keep"}, got)
	// База не изменяется
	assert.Equal(t, "a", base["title"])
}

func TestApplyDelta_RoundTrip(t *testing.T) {
	cases := []struct {
		a    models.Entity
		b    models.Entity
		name string
	}{
		{
			name: "field change",
			a:    models.Entity{"id": "1", "title": "a", "completed": false},
			b:    models.Entity{"id": "1", "title": "a", "completed": true},
		},
		{
			name: "field added",
			a:    models.Entity{"id": "1", "title": "a"},
			b:    models.Entity{"id": "1", "title": "a", "dueDate": "2024-01-01"},
		},
		{
			name: "nested change",
			a:    models.Entity{"id": "1", "tags": []any{"a"}},
			b:    models.Entity{"id": "1", "tags": []any{"a", "b"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyDelta(tc.a, ComputeDelta(tc.a, tc.b))
			assert.True(t, DeepEqual(tc.b, got), "got %v", got)
		})
	}
}

func TestApplyPatch_DropsRemovedKeys(t *testing.T) {
	base := models.Entity{"id": "1", "title": "a", "notes": "n"}
	got := ApplyPatch(base, models.Entity{"id": "1"}, []string{"notes", "id"})

	assert.Equal(t, models.Entity{"id": "1", "title": "a"}, got)
	assert.Equal(t, "n", base["notes"])
}

func TestBuildOperation(t *testing.T) {
	task := models.Entity{"id": "123", "title": "Test Task"}

	t.Run("create carries full payload", func(t *testing.T) {
		op, err := BuildOperation(models.OpCreate, models.EntityTask, nil, task)
		require.NoError(t, err)
		assert.Equal(t, task, op.Data)
		assert.False(t, op.IsDelta)
	})

	t.Run("delete carries only id", func(t *testing.T) {
		op, err := BuildOperation(models.OpDelete, models.EntityTask, nil, task)
		require.NoError(t, err)
		assert.Equal(t, models.Entity{"id": "123"}, op.Data)
		assert.False(t, op.IsDelta)
	})

	t.Run("update without base is a full payload", func(t *testing.T) {
		op, err := BuildOperation(models.OpUpdate, models.EntityTask, nil, task)
		require.NoError(t, err)
		assert.Equal(t, task, op.Data)
		assert.False(t, op.IsDelta)
	})

	t.Run("update with changes is a delta", func(t *testing.T) {
		newTask := models.Entity{"id": "123", "title": "Changed"}
		op, err := BuildOperation(models.OpUpdate, models.EntityTask, task, newTask)
		require.NoError(t, err)
		require.NotNil(t, op)
		assert.True(t, op.IsDelta)
		assert.Equal(t, models.Entity{"id": "123", "title": "Changed"}, op.Data)
	})

	t.Run("no-op update returns nil", func(t *testing.T) {
		op, err := BuildOperation(models.OpUpdate, models.EntityTask, task, task.Clone())
		require.NoError(t, err)
		assert.Nil(t, op)
	})

	t.Run("removal only update carries tombstones", func(t *testing.T) {
		withNotes := models.Entity{"id": "123", "title": "Test Task", "notes": "n"}
		op, err := BuildOperation(models.OpUpdate, models.EntityTask, withNotes, task)
		require.NoError(t, err)
		require.NotNil(t, op)
		assert.Equal(t, models.Entity{"id": "123"}, op.Data)
		assert.Equal(t, []string{"notes"}, op.Removed)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := BuildOperation("upsert", models.EntityTask, nil, task)
		assert.ErrorIs(t, err, ErrUnknownOpType)

		_, err = BuildOperation(models.OpUpdate, models.EntityTask, task, models.Entity{"title": "x"})
		assert.ErrorIs(t, err, ErrMissingID)

		_, err = BuildOperation(models.OpCreate, models.EntityTask, nil, nil)
		assert.ErrorIs(t, err, ErrNilEntity)
	})
}

func TestPayloadSize(t *testing.T) {
	full := models.Entity{"id": "1", "title": "a long title", "notes": "some notes"}
	d := models.Entity{"id": "1", "title": "x"}
	assert.Greater(t, PayloadSize(full), PayloadSize(d))
	assert.Equal(t, len(`{"id":"1"}`), PayloadSize(models.Entity{"id": "1"}))
}

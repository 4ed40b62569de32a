// Package delta computes minimal-diff payloads between two versions of an
// entity and re-applies them.
package delta

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
)

var (
	// ErrUnknownOpType is returned by BuildOperation for an unsupported operation type.
	ErrUnknownOpType = errors.New("unknown operation type")

	// ErrMissingID is returned when the entity carries no id.
	ErrMissingID = errors.New("entity has no id")

	// ErrNilEntity is returned when a create or update has no new state.
	ErrNilEntity = errors.New("entity is nil")
)

// DeepEqual reports structural equality of two entity field values.
//
// nil equals only nil. Dates compare by instant, numbers by value regardless of
// the Go numeric kind (two integers exactly, otherwise as float64), slices element-wise with strict length, maps by key set
// and recursive value equality. No coercion across kinds: 1 != "1".
func DeepEqual(a, b any) bool {
	aNil, bNil := isNil(a), isNil(b)
	if aNil || bNil {
		return aNil && bNil
	}

	if ta, ok := asTime(a); ok {
		tb, ok := asTime(b)
		return ok && ta.Equal(tb)
	}
	if _, ok := asTime(b); ok {
		return false
	}

	if negA, absA, ok := asInteger(a); ok {
		if negB, absB, ok := asInteger(b); ok {
			return negA == negB && absA == absB
		}
	}
	if na, ok := asNumber(a); ok {
		nb, ok := asNumber(b)
		return ok && na == nb
	}
	if _, ok := asNumber(b); ok {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	for va.Kind() == reflect.Pointer {
		va = va.Elem()
	}
	for vb.Kind() == reflect.Pointer {
		vb = vb.Elem()
	}
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}

	switch va.Kind() {
	case reflect.Slice, reflect.Array:
		if vb.Kind() != reflect.Slice && vb.Kind() != reflect.Array {
			return false
		}
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !DeepEqual(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true

	case reflect.Map:
		if vb.Kind() != reflect.Map || va.Len() != vb.Len() {
			return false
		}
		keyType := vb.Type().Key()
		iter := va.MapRange()
		for iter.Next() {
			k := iter.Key()
			if !k.Type().ConvertibleTo(keyType) {
				return false
			}
			other := vb.MapIndex(k.Convert(keyType))
			if !other.IsValid() {
				return false
			}
			if !DeepEqual(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}
		return true

	case reflect.String:
		return vb.Kind() == reflect.String && va.String() == vb.String()

	case reflect.Bool:
		return vb.Kind() == reflect.Bool && va.Bool() == vb.Bool()
	}

	return reflect.DeepEqual(va.Interface(), vb.Interface())
}

// ComputeDelta returns the fields of newEntity that differ from oldEntity.
//
// Without an old version the full new entity is returned. A nil new entity
// yields nil, which signals deletion intent rather than "no change"; callers
// must not pass nil for both. The result always carries "id" and is nil when
// nothing besides "id" differs. Keys removed in newEntity are not reported
// here, see RemovedKeys.
func ComputeDelta(oldEntity, newEntity models.Entity) models.Entity {
	if oldEntity == nil {
		return newEntity
	}
	if newEntity == nil {
		return nil
	}

	d := models.Entity{}
	if id, ok := newEntity[models.FieldID]; ok {
		d[models.FieldID] = id
	}

	changed := false
	for key, val := range newEntity {
		if key == models.FieldID {
			continue
		}
		prev, exists := oldEntity[key]
		if !exists || !DeepEqual(prev, val) {
			d[key] = val
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return d
}

// RemovedKeys returns, sorted, the keys present in oldEntity but absent from
// newEntity. The id field is never reported.
func RemovedKeys(oldEntity, newEntity models.Entity) []string {
	if oldEntity == nil || newEntity == nil {
		return nil
	}
	var removed []string
	for key := range oldEntity {
		if key == models.FieldID {
			continue
		}
		if _, ok := newEntity[key]; !ok {
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	return removed
}

// ApplyDelta merges delta over base. Fields present only in base are kept.
// A nil delta returns base; a nil base adopts the delta as the full entity.
func ApplyDelta(base, delta models.Entity) models.Entity {
	if delta == nil {
		return base
	}
	if base == nil {
		return delta
	}

	out := make(models.Entity, len(base)+len(delta))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range delta {
		out[k] = v
	}
	return out
}

// ApplyPatch applies delta over base and then drops the removed keys.
func ApplyPatch(base, delta models.Entity, removed []string) models.Entity {
	out := ApplyDelta(base, delta)
	if len(removed) == 0 || out == nil {
		return out
	}
	if sameMap(out, base) || sameMap(out, delta) {
		out = out.Clone()
	}
	for _, key := range removed {
		if key == models.FieldID {
			continue
		}
		delete(out, key)
	}
	return out
}

// BuildOperation builds a queue operation for a local mutation.
//
// create carries the full entity, delete only {id}. update carries the delta
// against oldData (IsDelta=true) or the full entity when there is no old
// version. A nil operation with nil error means the update changes nothing
// and must not be enqueued.
func BuildOperation(opType models.OpType, entityType models.EntityType, oldData, newData models.Entity) (*models.Operation, error) {
	switch opType {
	case models.OpCreate:
		if newData == nil {
			return nil, fmt.Errorf("create %s: %w", entityType, ErrNilEntity)
		}
		if newData.ID() == "" {
			return nil, fmt.Errorf("create %s: %w", entityType, ErrMissingID)
		}
		return &models.Operation{
			Type:       opType,
			EntityType: entityType,
			Data:       newData.Clone(),
		}, nil

	case models.OpDelete:
		id := newData.ID()
		if id == "" {
			id = oldData.ID()
		}
		if id == "" {
			return nil, fmt.Errorf("delete %s: %w", entityType, ErrMissingID)
		}
		return &models.Operation{
			Type:       opType,
			EntityType: entityType,
			Data:       models.Entity{models.FieldID: id},
		}, nil

	case models.OpUpdate:
		if newData == nil {
			return nil, fmt.Errorf("update %s: %w", entityType, ErrNilEntity)
		}
		if newData.ID() == "" {
			return nil, fmt.Errorf("update %s: %w", entityType, ErrMissingID)
		}

		if oldData == nil {
			return &models.Operation{
				Type:       opType,
				EntityType: entityType,
				Data:       newData.Clone(),
			}, nil
		}

		d := ComputeDelta(oldData, newData)
		removed := RemovedKeys(oldData, newData)
		if d == nil && len(removed) == 0 {
			return nil, nil
		}
		if d == nil {
			d = models.Entity{models.FieldID: newData.ID()}
		}

		return &models.Operation{
			Type:       opType,
			EntityType: entityType,
			Data:       d.Clone(),
			Removed:    removed,
			IsDelta:    true,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownOpType, opType)
}

// PayloadSize returns the JSON-serialized size of v in bytes.
func PayloadSize(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(data)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}
	return time.Time{}, false
}

// asInteger раскладывает целое на знак и модуль, чтобы сравнивать int64 и
// uint64 без потери точности
func asInteger(v any) (neg bool, abs uint64, ok bool) {
	var i int64
	switch n := v.(type) {
	case int:
		i = int64(n)
	case int8:
		i = int64(n)
	case int16:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case uint:
		return false, uint64(n), true
	case uint8:
		return false, uint64(n), true
	case uint16:
		return false, uint64(n), true
	case uint32:
		return false, uint64(n), true
	case uint64:
		return false, n, true
	case json.Number:
		if x, err := n.Int64(); err == nil {
			i = x
		} else if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return false, u, true
		} else {
			return false, 0, false
		}
	default:
		return false, 0, false
	}

	if i < 0 {
		// -(i+1) не переполняется на math.MinInt64
		return true, uint64(-(i + 1)) + 1, true
	}
	return false, uint64(i), true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// sameMap reports whether a and b share the same underlying map.
func sameMap(a, b models.Entity) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}

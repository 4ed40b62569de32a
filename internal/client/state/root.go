// Package state implements the local persisted entity state on top of the
// durable key-value store.
//
// The whole state lives in one root blob under RootKey. The root blob is a
// JSON object whose values are themselves serialized JSON sub-blobs, one per
// slice. Only allow-listed entity slices are persisted; transient slices
// (auth, sync and network status) never reach the store.
package state

import (
	"encoding/json"
	"fmt"

	"github.com/iudanet/taskkeeper/internal/models"
)

const (
	// RootKey ключ корневого blob в KV хранилище
	RootKey = "persist:root"

	// SliceTasks срез с задачами
	SliceTasks = "tasks"
	// SliceCategories срез с категориями
	SliceCategories = "categories"

	// persistMetaKey служебная запись внутри корневого blob
	persistMetaKey = "_persist"
	persistMeta    = `{"version":-1,"rehydrated":true}`
)

// RootBlob is the decoded root blob: slice name -> serialized sub-blob.
type RootBlob map[string]string

// DecodeRoot parses a serialized root blob.
func DecodeRoot(raw string) (RootBlob, error) {
	root := RootBlob{}
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRoot, err)
	}
	return root, nil
}

// Encode serializes the root blob.
func (r RootBlob) Encode() (string, error) {
	if _, ok := r[persistMetaKey]; !ok {
		r[persistMetaKey] = persistMeta
	}
	data, err := json.Marshal(map[string]string(r))
	if err != nil {
		return "", fmt.Errorf("failed to encode root blob: %w", err)
	}
	return string(data), nil
}

// Slice decodes the sub-blob of the named slice. A missing slice yields an
// empty object.
func (r RootBlob) Slice(name string) (map[string]any, error) {
	raw, ok := r[name]
	if !ok || raw == "" {
		return map[string]any{}, nil
	}

	var sub map[string]any
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, fmt.Errorf("%w: slice %q: %v", ErrCorruptRoot, name, err)
	}
	if sub == nil {
		sub = map[string]any{}
	}
	return sub, nil
}

// SetSlice serializes sub back into the named slice.
func (r RootBlob) SetSlice(name string, sub map[string]any) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode slice %q: %w", name, err)
	}
	r[name] = string(data)
	return nil
}

// Items returns the entity list stored in the named slice. Items live in the
// sub-blob under a field with the same name as the slice.
func (r RootBlob) Items(name string) ([]models.Entity, error) {
	sub, err := r.Slice(name)
	if err != nil {
		return nil, err
	}

	raw, ok := sub[name]
	if !ok || raw == nil {
		return []models.Entity{}, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: slice %q: items is %T", ErrCorruptRoot, name, raw)
	}

	items := make([]models.Entity, 0, len(list))
	for i, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: slice %q: item %d is %T", ErrCorruptRoot, name, i, v)
		}
		items = append(items, models.Entity(m))
	}
	return items, nil
}

// SetItems replaces the entity list of the named slice and keeps the other
// fields of the sub-blob (status, error) untouched.
func (r RootBlob) SetItems(name string, items []models.Entity) error {
	sub, err := r.Slice(name)
	if err != nil {
		return err
	}

	list := make([]any, len(items))
	for i, item := range items {
		list[i] = map[string]any(item)
	}
	sub[name] = list
	if _, ok := sub["status"]; !ok {
		sub["status"] = "idle"
	}
	if _, ok := sub["error"]; !ok {
		sub["error"] = nil
	}
	return r.SetSlice(name, sub)
}

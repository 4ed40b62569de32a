package storage

import "context"

//go:generate moq -out kvstore_mock.go . KVStore

// KVStore defines the durable key-value store shared by the sync engine,
// the migration runner and the backup/repair utilities.
// Values are arbitrary (possibly large) string blobs.
type KVStore interface {
	// Get returns the value for key; ok is false if the key does not exist
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error
	Remove(ctx context.Context, key string) error

	// Clear removes every key
	Clear(ctx context.Context) error

	// AllKeys returns all keys in ascending order
	AllKeys(ctx context.Context) ([]string, error)

	// MultiGet returns values for the existing keys among keys
	MultiGet(ctx context.Context, keys []string) (map[string]string, error)

	// MultiSet stores all pairs atomically
	MultiSet(ctx context.Context, pairs map[string]string) error

	// MultiRemove deletes all keys atomically
	MultiRemove(ctx context.Context, keys []string) error

	// Replace swaps the whole contents for pairs atomically
	Replace(ctx context.Context, pairs map[string]string) error
}

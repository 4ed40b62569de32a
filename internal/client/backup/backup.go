// Package backup exports the whole durable store as a single bundle and
// restores it back.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/golang/snappy"

	"github.com/iudanet/taskkeeper/internal/client/storage"
)

const (
	// BundleVersion версия формата бандла
	BundleVersion = "1.0.0"

	// CompressedExt расширение файла, сжатого snappy
	CompressedExt = ".sz"
)

// Bundle is a full copy of the durable store plus metadata.
type Bundle struct {
	Data      map[string]string `json:"data"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Platform  string            `json:"platform"`
}

// Validate checks that the bundle carries version, timestamp and data.
func (b *Bundle) Validate() error {
	if b == nil || b.Version == "" || b.Timestamp == "" || b.Data == nil {
		return ErrInvalidBundle
	}
	return nil
}

// RestoreResult describes a completed restore.
type RestoreResult struct {
	Timestamp     string `json:"timestamp"`
	ItemsRestored int    `json:"itemsRestored"`
	Success       bool   `json:"success"`
}

// Service creates and restores bundles.
type Service struct {
	store    storage.KVStore
	logger   *slog.Logger
	clock    func() time.Time
	platform string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the time source for bundle timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithPlatform overrides the platform recorded in bundles.
func WithPlatform(platform string) Option {
	return func(s *Service) { s.platform = platform }
}

// NewService creates a backup service over store.
func NewService(store storage.KVStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   slog.Default(),
		clock:    time.Now,
		platform: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export reads every key of the store into a bundle.
func (s *Service) Export(ctx context.Context) (*Bundle, error) {
	keys, err := s.store.AllKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}

	data, err := s.store.MultiGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}
	if data == nil {
		data = map[string]string{}
	}

	b := &Bundle{
		Version:   BundleVersion,
		Timestamp: s.clock().UTC().Format(time.RFC3339Nano),
		Platform:  s.platform,
		Data:      data,
	}
	s.logger.Info("Backup created", "keys", len(data))
	return b, nil
}

// Restore replaces the whole store with the bundle contents in one
// transaction. The bundle is validated first; on any error the store keeps
// its previous contents.
func (s *Service) Restore(ctx context.Context, b *Bundle) (*RestoreResult, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("failed to restore from backup: %w", err)
	}

	if err := s.store.Replace(ctx, b.Data); err != nil {
		return nil, fmt.Errorf("failed to restore from backup: %w", err)
	}

	s.logger.Info("Backup restored", "keys", len(b.Data), "timestamp", b.Timestamp)
	return &RestoreResult{
		Success:       true,
		Timestamp:     b.Timestamp,
		ItemsRestored: len(b.Data),
	}, nil
}

// FileName returns the default backup file name for t.
func FileName(t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format("2006-01-02T15:04:05.000Z"))
	return "taskmanager_backup_" + stamp + ".json"
}

// WriteFile writes the bundle as JSON. A path ending in CompressedExt is
// snappy-compressed.
func WriteFile(path string, b *Bundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	if strings.HasSuffix(path, CompressedExt) {
		data = snappy.Encode(nil, data)
	}

	// Файл содержит все данные пользователя
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ReadFile reads and validates a bundle written by WriteFile.
func ReadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}
	if strings.HasSuffix(path, CompressedExt) {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress backup file: %w", err)
		}
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

package migration

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/iudanet/taskkeeper/internal/client/state"
)

//go:embed versions.yaml
var versionsYAML []byte

// Step transforms the persisted root blob to the shape of its version.
// Steps must be safe to run again on already migrated data.
type Step func(ctx context.Context, root state.RootBlob) error

// Version is one entry of the schema catalog.
type Version struct {
	Migrate     Step   `yaml:"-"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
}

type catalogFile struct {
	Versions []Version `yaml:"versions"`
}

// DefaultCatalog returns the embedded catalog. The last entry is the
// current schema version.
func DefaultCatalog() ([]Version, error) {
	return parseCatalog(versionsYAML)
}

func parseCatalog(data []byte) ([]Version, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema catalog: %w", err)
	}
	if err := validateCatalog(file.Versions); err != nil {
		return nil, err
	}
	return file.Versions, nil
}

func validateCatalog(versions []Version) error {
	if len(versions) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]struct{}, len(versions))
	for i, v := range versions {
		if v.Version == "" {
			return fmt.Errorf("schema catalog entry %d has no version", i)
		}
		if _, ok := seen[v.Version]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateVersion, v.Version)
		}
		seen[v.Version] = struct{}{}
	}
	return nil
}

// normalizeSlices перекодирует срезы сущностей; шаг по умолчанию для версий
// без собственной трансформации
func normalizeSlices(ctx context.Context, root state.RootBlob) error {
	for _, name := range []string{state.SliceTasks, state.SliceCategories} {
		if _, ok := root[name]; !ok {
			continue
		}
		sub, err := root.Slice(name)
		if err != nil {
			return err
		}
		if err := root.SetSlice(name, sub); err != nil {
			return err
		}
	}
	return nil
}

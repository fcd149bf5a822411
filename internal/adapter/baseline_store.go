package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	m "sidefx.dev/pkg/sidefx/internal/model"
)

// BaselineStore loads and persists the expected extraction outputs the
// regression harness compares against.
type BaselineStore interface {
	// Load returns the baseline contents. A missing file reads as the empty
	// string so first-time runs can populate it.
	Load(path m.Path) (string, error)

	// Save overwrites the baseline, creating parent directories as needed.
	Save(path m.Path, content string) error
}

// LocalBaselineStore is the filesystem-backed BaselineStore.
type LocalBaselineStore struct {
	fs SourceFSAdapter
}

// NewLocalBaselineStore constructs a LocalBaselineStore on top of the
// provided filesystem adapter.
func NewLocalBaselineStore(fsAdapter SourceFSAdapter) *LocalBaselineStore {
	return &LocalBaselineStore{fs: fsAdapter}
}

// Load reads the baseline at path, treating a missing file as empty.
func (s *LocalBaselineStore) Load(path m.Path) (string, error) {
	content, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("load baseline %s: %w", path, err)
	}

	return string(content), nil
}

// Save writes content to path, creating any missing parent directories.
func (s *LocalBaselineStore) Save(path m.Path, content string) error {
	dir := filepath.Dir(string(path))
	if err := s.fs.MkdirAll(m.Path(dir), 0o755); err != nil {
		return fmt.Errorf("create baseline dir %s: %w", dir, err)
	}

	if err := s.fs.WriteFile(path, []byte(content), os.FileMode(0o644)); err != nil {
		return fmt.Errorf("save baseline %s: %w", path, err)
	}

	return nil
}

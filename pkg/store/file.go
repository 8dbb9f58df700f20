package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// FileStore persists the diagram as a single JSON file, for CLI usage.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. Parent directories are
// created on the first save, not here, so pointing at a read-only location
// only fails when a write is attempted.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the diagram file. A missing file is an absent diagram, not an
// error.
func (s *FileStore) Load(ctx context.Context) (diagram.Diagram, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return diagram.Diagram{}, false, nil
	}
	if err != nil {
		return diagram.Diagram{}, false, errors.Wrap(errors.ErrCodeStore, err, "read %s", s.path)
	}
	return decode(data)
}

// Save writes the diagram file with 0644 permissions, creating parent
// directories as needed.
func (s *FileStore) Save(ctx context.Context, d diagram.Diagram) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", s.path)
	}
	return nil
}

// Delete removes the diagram file.
func (s *FileStore) Delete(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStore, err, "remove %s", s.path)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)

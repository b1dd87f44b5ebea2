// Package history persists a bounded rolling window of test outcomes per
// (partition, test) pair across runs.
package history

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store is the durability boundary for ledger state: an opaque byte blob
// per key. Load reports ok=false when the key has never been written.
// Load-after-save must be consistent within one process; nothing stronger
// is assumed.
type Store interface {
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Save(ctx context.Context, key string, data []byte) error
}

// FileStore keeps each key as a JSON file inside a directory. Writes go
// through a temp file and a rename so a crash mid-write never corrupts the
// previous state.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates a FileStore rooted at dir on the given filesystem.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load reads the blob for key, reporting ok=false when the file is absent.
func (s *FileStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if exists, _ := afero.Exists(s.fs, s.path(key)); !exists {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", s.path(key), err)
	}
	return data, true, nil
}

// Save writes the blob for key atomically.
func (s *FileStore) Save(_ context.Context, key string, data []byte) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	tmp := s.path(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

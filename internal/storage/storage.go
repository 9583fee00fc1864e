// Package storage provides the durable client-side key-value state the
// console keeps between runs: session, theme, and locale preferences.
// Each key is one JSON document on disk, written atomically.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Well-known state keys.
const (
	KeySession     = "session"
	KeyPreferences = "preferences"
	KeyTheme       = "theme"
)

// Store persists JSON documents under a state directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the state directory, used by the preferences file watcher.
func (s *Store) Dir() string {
	return s.dir
}

// FileFor returns the on-disk path backing a key.
func (s *Store) FileFor(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get decodes the document stored under key into v. The second return is
// false when nothing is stored, which is not an error.
func (s *Store) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.FileFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s state: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s state: %w", key, err)
	}
	return true, nil
}

// Put stores v under key. The write is atomic: a temp file in the same
// directory is renamed over the target so readers never see a torn write.
func (s *Store) Put(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s state: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s state: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.FileFor(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to persist %s state: %w", key, err)
	}
	return nil
}

// Delete removes the document stored under key. Deleting a missing key is
// a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.FileFor(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s state: %w", key, err)
	}
	return nil
}

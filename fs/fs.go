// Package fs provides a file-backed implementation of parley.Storage.
// Each key maps to one file under a root directory. Writes go through a
// temp file and rename, so readers never observe partial content and a
// crash mid-write leaves the previous value intact.
package fs

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/parleychat/parley"
)

// Interface compliance check.
var _ parley.Storage = (*Storage)(nil)

// Storage stores values as files under dir. The directory is created on
// first write.
type Storage struct {
	dir string
}

// New creates a Storage rooted at dir.
func New(dir string) *Storage {
	return &Storage{dir: dir}
}

// Get returns the value for key. Missing or unreadable files report false.
func (s *Storage) Get(key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set writes the value for key atomically.
func (s *Storage) Set(key, value string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Remove deletes the value for key. A missing key is a no-op.
func (s *Storage) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// path maps a key to its file. Keys are escaped so separators and other
// path-hostile characters cannot leave the root directory.
func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key))
}

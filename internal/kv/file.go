package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

var keyRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStore keeps each key in its own JSON file under a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore returns a FileStore rooted at dir. An empty dir selects
// ~/.config/postdeck/data.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("kv: create data dir: %w", err)
	}
	return &FileStore{baseDir: dir}, nil
}

// DefaultDir is the data directory used when none is configured.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "postdeck", "data")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "postdeck", "data")
}

func (s *FileStore) path(key string) (string, error) {
	if !keyRe.MatchString(key) {
		return "", fmt.Errorf("kv: invalid key %q", key)
	}
	return filepath.Join(s.baseDir, key+".json"), nil
}

// Get reads the file for key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set writes value to a temp file and renames it over the key's file so a
// crash never leaves a half-written value behind.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Ping checks the data directory is still there and is a directory.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.baseDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("kv: %s is not a directory", s.baseDir)
	}
	return nil
}

// Backend returns "file".
func (*FileStore) Backend() string { return "file" }

// Location returns the directory holding the key files.
func (s *FileStore) Location() string { return s.baseDir }

// Close is a no-op.
func (*FileStore) Close() error { return nil }

// Package cachestore provides the content-addressed cache shared across
// invocations. Keys are slash-separated paths derived from stable inputs
// (video ID, crop parameters, time range); values are files or directories.
// Entries are never evicted.
package cachestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("cachestore: invalid key")

// Store maps cache keys to filesystem paths. Get reports whether the entry
// exists. Put creates the entry by letting fill write into a staging path,
// then atomically renames it into place; a failed fill leaves no entry
// behind. Remove deletes the entry if present.
type Store interface {
	Get(key string) (path string, ok bool, err error)
	Put(key string, fill func(staging string) error) (path string, err error)
	Remove(key string) error
}

// LocalStore is a Store backed by a directory on disk. Mutations are guarded
// by a file lock so two invocations sharing a cache directory cannot
// interleave writes.
type LocalStore struct {
	root string
	lock *flock.Flock
}

func NewLocalStore(root string) (*LocalStore, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &LocalStore{
		root: root,
		lock: flock.New(filepath.Join(root, ".lock")),
	}, nil
}

// Root returns the cache directory the store operates on.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Get(key string) (string, bool, error) {
	path, err := s.entryPath(key)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return path, true, nil
}

func (s *LocalStore) Put(key string, fill func(staging string) error) (string, error) {
	path, err := s.entryPath(key)
	if err != nil {
		return "", err
	}

	if err := s.lock.Lock(); err != nil {
		return "", fmt.Errorf("acquire cache lock: %w", err)
	}
	defer s.lock.Unlock() // nolint: errcheck

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create cache entry directory: %w", err)
	}

	// Staging path lives next to the final one so the rename stays on a
	// single filesystem.
	staging := path + ".tmp-" + uuid.NewString()
	if err := fill(staging); err != nil {
		os.RemoveAll(staging) // nolint: errcheck
		return "", err
	}

	if err := os.RemoveAll(path); err != nil {
		os.RemoveAll(staging) // nolint: errcheck
		return "", fmt.Errorf("replace cache entry %s: %w", key, err)
	}
	if err := os.Rename(staging, path); err != nil {
		os.RemoveAll(staging) // nolint: errcheck
		return "", fmt.Errorf("publish cache entry %s: %w", key, err)
	}

	return path, nil
}

func (s *LocalStore) Remove(key string) error {
	path, err := s.entryPath(key)
	if err != nil {
		return err
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer s.lock.Unlock() // nolint: errcheck

	return os.RemoveAll(path)
}

func (s *LocalStore) entryPath(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

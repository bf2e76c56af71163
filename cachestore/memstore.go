package cachestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MemStore keeps the key index in memory while staging entry contents under
// a throwaway directory. It exists so tests can substitute the on-disk cache
// without touching a shared directory.
type MemStore struct {
	root    string
	entries map[string]string
}

func NewMemStore(root string) *MemStore {
	return &MemStore{
		root:    root,
		entries: make(map[string]string),
	}
}

func (s *MemStore) Get(key string) (string, bool, error) {
	path, ok := s.entries[key]
	return path, ok, nil
}

func (s *MemStore) Put(key string, fill func(staging string) error) (string, error) {
	path := filepath.Join(s.root, strings.ReplaceAll(key, "/", "_"))
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return "", err
	}
	staging := path + ".tmp"
	if err := fill(staging); err != nil {
		os.RemoveAll(staging) // nolint: errcheck
		return "", err
	}
	if err := os.RemoveAll(path); err != nil {
		return "", err
	}
	if err := os.Rename(staging, path); err != nil {
		return "", fmt.Errorf("publish cache entry %s: %w", key, err)
	}
	s.entries[key] = path
	return path, nil
}

func (s *MemStore) Remove(key string) error {
	path, ok := s.entries[key]
	if !ok {
		return nil
	}
	delete(s.entries, key)
	return os.RemoveAll(path)
}

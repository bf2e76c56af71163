package cachestore_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandudorogan/youtube-ppt/cachestore"
)

func TestLocalStorePutGet(t *testing.T) {
	store, err := cachestore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get("video/abc.mp4")
	require.NoError(t, err)
	assert.False(t, ok)

	path, err := store.Put("video/abc.mp4", func(staging string) error {
		return os.WriteFile(staging, []byte("video-bytes"), 0644)
	})
	require.NoError(t, err)

	got, ok, err := store.Get("video/abc.mp4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, got)

	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, []byte("video-bytes"), content)
}

func TestLocalStorePutDirectoryEntry(t *testing.T) {
	store, err := cachestore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Put("frames/abc/nocrop/s0-efull", func(staging string) error {
		if err := os.MkdirAll(staging, 0755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(staging, "frame_000.png"), []byte("png"), 0644)
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "frame_000.png", entries[0].Name())
}

func TestLocalStoreFailedFillLeavesNoEntry(t *testing.T) {
	root := t.TempDir()
	store, err := cachestore.NewLocalStore(root)
	require.NoError(t, err)

	fillErr := errors.New("boom")
	_, err = store.Put("video/abc.mp4", func(staging string) error {
		if err := os.WriteFile(staging, []byte("partial"), 0644); err != nil {
			return err
		}
		return fillErr
	})
	assert.ErrorIs(t, err, fillErr)

	_, ok, err := store.Get("video/abc.mp4")
	require.NoError(t, err)
	assert.False(t, ok)

	// No staging residue either.
	entries, err := os.ReadDir(filepath.Join(root, "video"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStoreRemove(t *testing.T) {
	store, err := cachestore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put("video/abc.mp4", func(staging string) error {
		return os.WriteFile(staging, []byte("x"), 0644)
	})
	require.NoError(t, err)

	require.NoError(t, store.Remove("video/abc.mp4"))

	_, ok, err := store.Get("video/abc.mp4")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing a missing entry is not an error.
	assert.NoError(t, store.Remove("video/abc.mp4"))
}

func TestLocalStoreRejectsBadKeys(t *testing.T) {
	store, err := cachestore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "/abs", "a//b", "../escape", "a/../b"} {
		_, _, err := store.Get(key)
		assert.ErrorIs(t, err, cachestore.ErrInvalidKey, "key %q", key)
	}
}

func TestMemStoreRoundtrip(t *testing.T) {
	store := cachestore.NewMemStore(t.TempDir())

	_, ok, err := store.Get("video/abc.mp4")
	require.NoError(t, err)
	assert.False(t, ok)

	path, err := store.Put("video/abc.mp4", func(staging string) error {
		return os.WriteFile(staging, []byte("x"), 0644)
	})
	require.NoError(t, err)

	got, ok, err := store.Get("video/abc.mp4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, got)

	require.NoError(t, store.Remove("video/abc.mp4"))
	_, ok, err = store.Get("video/abc.mp4")
	require.NoError(t, err)
	assert.False(t, ok)
}

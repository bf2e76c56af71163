package metadata_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandudorogan/youtube-ppt/metadata"
)

func openManifest(t *testing.T) *metadata.Manifest {
	t.Helper()
	m, err := metadata.Open(filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() }) // nolint: errcheck
	return m
}

func TestManifestRecordAndList(t *testing.T) {
	ctx := context.Background()
	m := openManifest(t)

	require.NoError(t, m.Record(ctx, metadata.Entry{
		Kind:      metadata.KindVideo,
		Key:       "video/abc.mp4",
		Path:      "/cache/video/abc.mp4",
		SourceURL: "https://www.youtube.com/watch?v=abc",
	}))
	require.NoError(t, m.Record(ctx, metadata.Entry{
		Kind: metadata.KindFrames,
		Key:  "frames/abc/nocrop/s0-efull",
		Path: "/cache/frames/abc/nocrop/s0-efull",
	}))

	entries, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, metadata.KindVideo, entries[0].Kind)
	assert.Equal(t, "video/abc.mp4", entries[0].Key)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestManifestRecordIsUpsert(t *testing.T) {
	ctx := context.Background()
	m := openManifest(t)

	e := metadata.Entry{Kind: metadata.KindVideo, Key: "video/abc.mp4", Path: "/old"}
	require.NoError(t, m.Record(ctx, e))
	e.Path = "/new"
	require.NoError(t, m.Record(ctx, e))

	entries, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/new", entries[0].Path)
}

func TestManifestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	m := openManifest(t)

	require.NoError(t, m.Record(ctx, metadata.Entry{Kind: metadata.KindVideo, Key: "a", Path: "/a"}))
	require.NoError(t, m.Record(ctx, metadata.Entry{Kind: metadata.KindVideo, Key: "b", Path: "/b"}))

	require.NoError(t, m.Remove(ctx, "a"))
	entries, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Key)

	require.NoError(t, m.Clear(ctx))
	entries, err = m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Removing an unknown key is a no-op.
	assert.NoError(t, m.Remove(ctx, "missing"))
}

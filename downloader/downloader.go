// Package downloader resolves YouTube URLs and fetches videos into the
// shared cache. Downloads are keyed by video ID, so a second run with the
// same URL never touches the network.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog/log"

	"github.com/sandudorogan/youtube-ppt/cachestore"
	"github.com/sandudorogan/youtube-ppt/slides"
)

// ErrDownload marks a network or source failure while fetching the video.
// Downloads are not retried; the failure surfaces to the caller.
var ErrDownload = errors.New("video download failed")

// FetchFunc streams the highest-quality mp4 for a video ID into w.
type FetchFunc func(ctx context.Context, videoID string, w io.Writer) error

type Downloader struct {
	store cachestore.Store
	fetch FetchFunc
}

func New(store cachestore.Store, fetch FetchFunc) *Downloader {
	return &Downloader{store: store, fetch: fetch}
}

// ResolveVideoID extracts the video identifier from a YouTube URL.
func ResolveVideoID(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("%w: url must not be empty", slides.ErrInvalidInput)
	}
	id, err := youtube.ExtractVideoID(url)
	if err != nil {
		return "", fmt.Errorf("%w: could not extract video ID from %q: %v", slides.ErrInvalidInput, url, err)
	}
	return id, nil
}

// VideoKey returns the cache key for a downloaded video.
func VideoKey(videoID string) string {
	return "video/" + videoID + ".mp4"
}

// Acquire returns a local path for the video, downloading it on a cache
// miss.
func (d *Downloader) Acquire(ctx context.Context, videoID string) (string, error) {
	key := VideoKey(videoID)

	if path, ok, err := d.store.Get(key); err != nil {
		return "", fmt.Errorf("look up cached video: %w", err)
	} else if ok {
		log.Info().Str("videoID", videoID).Str("path", path).Msg("using cached video")
		return path, nil
	}

	log.Info().Str("videoID", videoID).Msg("downloading video")

	path, err := d.store.Put(key, func(staging string) error {
		f, err := os.Create(staging)
		if err != nil {
			return fmt.Errorf("create video file: %w", err)
		}
		defer f.Close()

		if err := d.fetch(ctx, videoID, f); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrDownload, videoID, err)
		}
		return f.Sync()
	})
	if err != nil {
		return "", err
	}

	return path, nil
}

// FetchYouTube is the production FetchFunc. It picks the highest-resolution
// mp4 format that carries audio, falling back to any mp4 stream.
func FetchYouTube(ctx context.Context, videoID string, w io.Writer) error {
	client := youtube.Client{}

	video, err := client.GetVideoContext(ctx, videoID)
	if err != nil {
		return fmt.Errorf("fetch video metadata: %w", err)
	}

	formats := video.Formats.Type("video/mp4").WithAudioChannels()
	if len(formats) == 0 {
		formats = video.Formats.Type("video/mp4")
	}
	if len(formats) == 0 {
		return fmt.Errorf("no mp4 stream available for %s", videoID)
	}
	formats.Sort()

	stream, size, err := client.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return fmt.Errorf("open video stream: %w", err)
	}
	defer stream.Close()

	n, err := io.Copy(w, stream)
	if err != nil {
		return fmt.Errorf("stream video: %w", err)
	}
	if size > 0 && n != size {
		return fmt.Errorf("short download: got %d of %d bytes", n, size)
	}

	log.Info().Str("videoID", videoID).Int64("bytes", n).Str("quality", formats[0].Quality).Msg("video downloaded")
	return nil
}

// Package pipeline wires the conversion stages together: acquire the video,
// sample frames, deduplicate them, and build the deck. Stages run strictly
// in sequence; each either completes or fails the whole run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sandudorogan/youtube-ppt/cachestore"
	"github.com/sandudorogan/youtube-ppt/deck"
	"github.com/sandudorogan/youtube-ppt/downloader"
	"github.com/sandudorogan/youtube-ppt/metadata"
	processor "github.com/sandudorogan/youtube-ppt/processors"
	"github.com/sandudorogan/youtube-ppt/slides"
)

// Acquirer returns a local path for a video ID, downloading on cache miss.
type Acquirer interface {
	Acquire(ctx context.Context, videoID string) (string, error)
}

// Sampler extracts candidate frames from a local video file.
type Sampler interface {
	Run(videoPath string, rng slides.TimeRange, crop *slides.CropRect, outputDir string) ([]slides.Frame, error)
}

// Options are the resolved inputs of one conversion run.
type Options struct {
	URL        string
	VideoID    string
	Crop       *slides.CropRect
	Range      slides.TimeRange
	OutputPath string
	NoCache    bool
}

type Runner struct {
	Store    cachestore.Store
	Manifest *metadata.Manifest // optional; nil disables bookkeeping
	Acquirer Acquirer
	Sampler  Sampler
	// Threshold is the MSE above which a frame starts a new slide. Zero
	// selects slides.DefaultMSEThreshold.
	Threshold float64
}

// FramesKey derives the cache key for a deduplicated frame set. The key
// covers the crop parameters and time range, so changing either invalidates
// only the derived images, never the downloaded video.
func FramesKey(videoID string, crop *slides.CropRect, rng slides.TimeRange) string {
	cropFragment := "nocrop"
	if crop != nil {
		cropFragment = crop.KeyFragment()
	}
	return fmt.Sprintf("frames/%s/%s/%s", videoID, cropFragment, rng.KeyFragment())
}

// Run executes the pipeline and returns the path of the written deck.
func (r *Runner) Run(ctx context.Context, opts Options) (string, error) {
	if opts.VideoID == "" {
		return "", fmt.Errorf("%w: missing video ID", slides.ErrInvalidInput)
	}

	threshold := r.Threshold
	if threshold == 0 {
		threshold = slides.DefaultMSEThreshold
	}

	logger := log.With().Str("run_id", uuid.NewString()).Str("videoID", opts.VideoID).Logger()

	videoKey := downloader.VideoKey(opts.VideoID)
	framesKey := FramesKey(opts.VideoID, opts.Crop, opts.Range)

	if opts.NoCache {
		logger.Info().Msg("cache disabled, dropping entries for this run")
		for _, key := range []string{videoKey, framesKey} {
			if err := r.Store.Remove(key); err != nil {
				return "", fmt.Errorf("drop cache entry %s: %w", key, err)
			}
			r.recordRemoval(ctx, key)
		}
	}

	framesDir, ok, err := r.Store.Get(framesKey)
	if err != nil {
		return "", fmt.Errorf("look up cached frames: %w", err)
	}

	if ok {
		logger.Info().Str("key", framesKey).Msg("using cached frames")
	} else {
		framesDir, err = r.produceFrames(ctx, opts, framesKey, threshold, logger)
		if err != nil {
			return "", err
		}
	}

	imagePaths, err := processor.ListImages(framesDir)
	if err != nil {
		return "", fmt.Errorf("list cached frames: %w", err)
	}

	if err := deck.Write(opts.OutputPath, imagePaths); err != nil {
		return "", fmt.Errorf("build deck: %w", err)
	}

	return opts.OutputPath, nil
}

func (r *Runner) produceFrames(ctx context.Context, opts Options, framesKey string, threshold float64, logger zerolog.Logger) (string, error) {
	videoPath, err := r.Acquirer.Acquire(ctx, opts.VideoID)
	if err != nil {
		return "", fmt.Errorf("acquire video: %w", err)
	}
	r.record(ctx, metadata.Entry{
		Kind:      metadata.KindVideo,
		Key:       downloader.VideoKey(opts.VideoID),
		Path:      videoPath,
		SourceURL: opts.URL,
	})

	sampleDir, err := os.MkdirTemp("", "youtube-ppt")
	if err != nil {
		return "", fmt.Errorf("create sampling dir: %w", err)
	}
	defer os.RemoveAll(sampleDir) // nolint: errcheck

	frames, err := r.Sampler.Run(videoPath, opts.Range, opts.Crop, sampleDir)
	if err != nil {
		return "", fmt.Errorf("sample frames: %w", err)
	}

	kept, err := slides.Deduplicate(frames, threshold)
	if err != nil {
		return "", fmt.Errorf("deduplicate frames: %w", err)
	}
	logger.Info().
		Int("sampled", len(frames)).
		Int("kept", len(kept)).
		Float64("threshold", threshold).
		Msg("frames deduplicated")

	framesDir, err := r.Store.Put(framesKey, func(staging string) error {
		if err := os.MkdirAll(staging, 0755); err != nil {
			return err
		}
		for i, frame := range kept {
			dst := filepath.Join(staging, fmt.Sprintf("frame_%03d.png", i))
			if err := copyFile(frame.Path, dst); err != nil {
				return fmt.Errorf("stage frame %d: %w", frame.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("cache frames: %w", err)
	}
	r.record(ctx, metadata.Entry{
		Kind:      metadata.KindFrames,
		Key:       framesKey,
		Path:      framesDir,
		SourceURL: opts.URL,
	})

	return framesDir, nil
}

func (r *Runner) record(ctx context.Context, e metadata.Entry) {
	if r.Manifest == nil {
		return
	}
	if err := r.Manifest.Record(ctx, e); err != nil {
		log.Warn().Err(err).Str("key", e.Key).Msg("failed to record cache entry")
	}
}

func (r *Runner) recordRemoval(ctx context.Context, key string) {
	if r.Manifest == nil {
		return
	}
	if err := r.Manifest.Remove(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to drop manifest entry")
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	if err != nil {
		return err
	}
	return out.Close()
}

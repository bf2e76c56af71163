package processor

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register decoder for cached jpeg frames
	_ "image/png"  // register decoder for sampled png frames
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	ffmpeg_go "github.com/u2takey/ffmpeg-go"

	"github.com/sandudorogan/youtube-ppt/slides"
)

const DefaultSampleInterval = time.Second

// Sampler extracts candidate frames from a video at a fixed interval,
// optionally cropped to a rectangle.
type Sampler struct {
	// interval is the spacing between consecutive samples
	interval time.Duration
}

type SamplerConfig struct {
	// SampleInterval is the spacing between consecutive samples
	SampleInterval time.Duration `mapstructure:"sample_interval"`
}

// NewSampler creates a new Sampler instance
func NewSampler(cfg SamplerConfig) *Sampler {
	interval := DefaultSampleInterval
	if cfg.SampleInterval > 0 {
		interval = cfg.SampleInterval
	}
	return &Sampler{interval: interval}
}

// Run samples the video over rng into outputDir and returns the decoded
// frames in sampling order. A crop rectangle that does not lie fully within
// the video's pixel bounds fails before any frame is written.
func (s *Sampler) Run(videoPath string, rng slides.TimeRange, crop *slides.CropRect, outputDir string) ([]slides.Frame, error) {
	width, height, err := ProbeDimensions(videoPath)
	if err != nil {
		return nil, err
	}
	if err := ValidateCropBounds(crop, width, height); err != nil {
		return nil, err
	}

	inputArgs := ffmpeg_go.KwArgs{
		"ss": fmt.Sprintf("%.3f", rng.Start.Seconds()),
	}
	if rng.HasEnd {
		inputArgs["to"] = fmt.Sprintf("%.3f", rng.End.Seconds())
	}

	stream := ffmpeg_go.Input(videoPath, inputArgs).
		Filter("fps", ffmpeg_go.Args{fmt.Sprintf("1/%g", s.interval.Seconds())})
	if crop != nil {
		stream = stream.Filter("crop", ffmpeg_go.Args{
			fmt.Sprintf("%d:%d:%d:%d", crop.Width, crop.Height, crop.X, crop.Y),
		})
	}

	log.Info().
		Str("video", videoPath).
		Dur("interval", s.interval).
		Str("range", rng.KeyFragment()).
		Msg("sampling frames")

	err = stream.
		Output(path.Join(outputDir, "frame_%06d.png")).
		OverWriteOutput().
		Run()
	if err != nil {
		return nil, fmt.Errorf("error extracting frames: %v", err)
	}

	return LoadFrames(outputDir)
}

// ValidateCropBounds checks that the rectangle lies within a width×height
// frame. A nil rectangle is always valid.
func ValidateCropBounds(crop *slides.CropRect, width, height int) error {
	if crop == nil {
		return nil
	}
	if crop.X+crop.Width > width || crop.Y+crop.Height > height {
		return fmt.Errorf("%w: crop %s exceeds video bounds %dx%d",
			slides.ErrInvalidInput, crop, width, height)
	}
	return nil
}

// ListImages returns the image files in dir sorted by name, which matches
// sampling order for the frame_%06d naming scheme.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error listing files in output directory: %v", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".png") || strings.HasSuffix(name, ".jpg") {
			paths = append(paths, path.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFrames decodes every image in dir into a Frame, in sampling order.
func LoadFrames(dir string) ([]slides.Frame, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}

	frames := make([]slides.Frame, 0, len(paths))
	for i, p := range paths {
		img, err := decodeRGBA(p)
		if err != nil {
			return nil, fmt.Errorf("decode frame %s: %w", p, err)
		}
		frames = append(frames, slides.Frame{Index: i, Path: p, Img: img})
	}
	return frames, nil
}

func decodeRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

package slides

import (
	"errors"
	"fmt"
	"image"
)

// DefaultMSEThreshold is the mean-squared-error above which two frames are
// considered different slides. The value is tuned, not derived; it is
// exposed through configuration so runs can adjust it.
const DefaultMSEThreshold = 200.0

// ErrFrameSizeMismatch marks a comparison between frames of differing pixel
// dimensions. Sampling produces uniformly sized frames, so hitting this is a
// programming error and the run aborts rather than recovers.
var ErrFrameSizeMismatch = errors.New("frame dimensions mismatch")

// MSE computes the mean squared error between two equally sized frames:
// the sum of squared per-channel differences over R, G and B, divided by the
// pixel count. The divisor deliberately excludes the channel count so
// thresholds tuned against the historical behavior keep their meaning.
func MSE(a, b *image.RGBA) (float64, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrFrameSizeMismatch, ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}

	var sum float64
	width, height := ab.Dx(), ab.Dy()
	for y := 0; y < height; y++ {
		aOff := a.PixOffset(ab.Min.X, ab.Min.Y+y)
		bOff := b.PixOffset(bb.Min.X, bb.Min.Y+y)
		aRow := a.Pix[aOff : aOff+width*4]
		bRow := b.Pix[bOff : bOff+width*4]
		for x := 0; x < width*4; x += 4 {
			for c := 0; c < 3; c++ {
				d := float64(aRow[x+c]) - float64(bRow[x+c])
				sum += d * d
			}
		}
	}

	return sum / float64(width*height), nil
}

// Deduplicate reduces an ordered sequence of sampled frames to the
// subsequence of visually distinct ones. Each frame is compared against the
// most recently kept frame, not its immediate predecessor, so a slowly
// drifting background cannot slip past the threshold in small steps: drift
// accumulates against the last accepted slide until it crosses the line.
//
// The first frame is always kept. An empty input yields an empty output.
func Deduplicate(frames []Frame, threshold float64) ([]Frame, error) {
	var kept []Frame
	var last *Frame

	for i := range frames {
		frame := &frames[i]
		if last == nil {
			kept = append(kept, *frame)
			last = frame
			continue
		}

		score, err := MSE(frame.Img, last.Img)
		if err != nil {
			return nil, fmt.Errorf("compare frame %d against frame %d: %w", frame.Index, last.Index, err)
		}
		if score > threshold {
			kept = append(kept, *frame)
			last = frame
		}
	}

	return kept, nil
}

package slides

import (
	"fmt"
	"image"
	"time"
)

// Frame is a single sampled (and possibly cropped) image extracted from a
// video. Frames are immutable once produced; Index is the sample order.
type Frame struct {
	// Index is the position of the frame in sampling order.
	Index int
	// Path is the location of the encoded image on disk.
	Path string
	// Img is the decoded pixel grid used for comparison.
	Img *image.RGBA
}

// TimeRange selects the portion of the video to sample. End is ignored
// unless HasEnd is set, in which case sampling stops at End instead of the
// end of the video.
type TimeRange struct {
	Start  time.Duration
	End    time.Duration
	HasEnd bool
}

// KeyFragment returns the stable cache-key fragment for the range, e.g.
// "s90-e300" or "s0-efull".
func (r TimeRange) KeyFragment() string {
	if r.HasEnd {
		return fmt.Sprintf("s%d-e%d", int(r.Start.Seconds()), int(r.End.Seconds()))
	}
	return fmt.Sprintf("s%d-efull", int(r.Start.Seconds()))
}

// CropRect is the rectangle every sampled frame is cropped to before
// comparison. Coordinates are in source-frame pixels. Bounds are validated
// against the decoded video dimensions at sampling time, not at parse time.
type CropRect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// KeyFragment returns the stable cache-key fragment for the rectangle, e.g.
// "crop_640_0_1280_720". A nil rectangle is represented as "nocrop" by
// callers.
func (c CropRect) KeyFragment() string {
	return fmt.Sprintf("crop_%d_%d_%d_%d", c.X, c.Y, c.Width, c.Height)
}

func (c CropRect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", c.X, c.Y, c.Width, c.Height)
}

package slides

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInput marks malformed user input: bad URLs, timestamps, crop
// specifications, or crop rectangles that fall outside the video frame.
// Callers should correct the input and rerun; nothing is retried.
var ErrInvalidInput = errors.New("invalid input")

// ParseTimestamp parses a "MM:SS" timestamp. Minutes may exceed 59 for long
// videos; seconds must stay below 60.
func ParseTimestamp(s string) (time.Duration, error) {
	minutesStr, secondsStr, found := strings.Cut(s, ":")
	if !found {
		return 0, fmt.Errorf("%w: timestamp %q is not in MM:SS form", ErrInvalidInput, s)
	}

	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("%w: timestamp %q has an invalid minute field", ErrInvalidInput, s)
	}
	seconds, err := strconv.Atoi(secondsStr)
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("%w: timestamp %q has an invalid second field", ErrInvalidInput, s)
	}

	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
}

// ParseTimeRange parses optional start and end timestamps. An empty start
// means 00:00; an empty end means "until the end of the video".
func ParseTimeRange(start, end string) (TimeRange, error) {
	r := TimeRange{}

	if start != "" {
		d, err := ParseTimestamp(start)
		if err != nil {
			return TimeRange{}, err
		}
		r.Start = d
	}

	if end != "" {
		d, err := ParseTimestamp(end)
		if err != nil {
			return TimeRange{}, err
		}
		r.End = d
		r.HasEnd = true
		if r.Start > r.End {
			return TimeRange{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidInput, start, end)
		}
	}

	return r, nil
}

// ParseCropRect parses a crop specification of exactly four comma-separated
// non-negative integers "x,y,width,height". Width and height must be
// positive.
func ParseCropRect(s string) (*CropRect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: crop %q must be x,y,width,height", ErrInvalidInput, s)
	}

	values := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: crop %q must contain non-negative integers", ErrInvalidInput, s)
		}
		values[i] = v
	}

	rect := &CropRect{X: values[0], Y: values[1], Width: values[2], Height: values[3]}
	if rect.Width == 0 || rect.Height == 0 {
		return nil, fmt.Errorf("%w: crop %q has an empty rectangle", ErrInvalidInput, s)
	}
	return rect, nil
}

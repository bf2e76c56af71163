package slides_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandudorogan/youtube-ppt/slides"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"00:00", 0, false},
		{"01:30", 90 * time.Second, false},
		{"90:05", 90*time.Minute + 5*time.Second, false},
		{"", 0, true},
		{"130", 0, true},
		{"01:60", 0, true},
		{"-1:30", 0, true},
		{"aa:bb", 0, true},
		{"1:2:3", 0, true},
	}

	for _, tt := range tests {
		got, err := slides.ParseTimestamp(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input %q", tt.in)
			assert.ErrorIs(t, err, slides.ErrInvalidInput)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseTimeRange(t *testing.T) {
	r, err := slides.ParseTimeRange("01:00", "05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, r.Start)
	assert.Equal(t, 5*time.Minute, r.End)
	assert.True(t, r.HasEnd)

	r, err = slides.ParseTimeRange("", "")
	require.NoError(t, err)
	assert.Zero(t, r.Start)
	assert.False(t, r.HasEnd)

	r, err = slides.ParseTimeRange("02:30", "")
	require.NoError(t, err)
	assert.Equal(t, 150*time.Second, r.Start)
	assert.False(t, r.HasEnd)

	_, err = slides.ParseTimeRange("05:00", "01:00")
	assert.ErrorIs(t, err, slides.ErrInvalidInput)
}

func TestParseCropRect(t *testing.T) {
	rect, err := slides.ParseCropRect("10,20,640,480")
	require.NoError(t, err)
	assert.Equal(t, &slides.CropRect{X: 10, Y: 20, Width: 640, Height: 480}, rect)

	for _, in := range []string{
		"",
		"10,20,640",
		"10,20,640,480,1",
		"10,20,-640,480",
		"a,b,c,d",
		"10,20,0,480",
		"10,20,640,0",
	} {
		_, err := slides.ParseCropRect(in)
		assert.ErrorIs(t, err, slides.ErrInvalidInput, "input %q", in)
	}
}

func TestKeyFragments(t *testing.T) {
	rect := slides.CropRect{X: 1, Y: 2, Width: 3, Height: 4}
	assert.Equal(t, "crop_1_2_3_4", rect.KeyFragment())

	r := slides.TimeRange{Start: 90 * time.Second}
	assert.Equal(t, "s90-efull", r.KeyFragment())

	r = slides.TimeRange{Start: 90 * time.Second, End: 300 * time.Second, HasEnd: true}
	assert.Equal(t, "s90-e300", r.KeyFragment())
}

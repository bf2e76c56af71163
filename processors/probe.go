package processor

import (
	"encoding/json"
	"fmt"

	ffmpeg_go "github.com/u2takey/ffmpeg-go"
)

type ffmpegStreamProbe struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// ProbeDimensions returns the pixel dimensions of the first video stream.
func ProbeDimensions(videoPath string) (width, height int, err error) {
	probeStr, err := ffmpeg_go.Probe(videoPath)
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: %w", videoPath, err)
	}

	var probe ffmpegStreamProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return 0, 0, fmt.Errorf("error unmarshalling ffprobe output: %v", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType == "video" {
			return stream.Width, stream.Height, nil
		}
	}

	return 0, 0, fmt.Errorf("no video stream found in %s", videoPath)
}

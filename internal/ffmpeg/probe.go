package ffmpeg

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"auto-transcoder/internal/model"
)

// Probe runs one ffprobe JSON call against path and returns the parsed
// metadata.
func Probe(path string) (model.ProbeResult, error) {
	cmd := BuildProbeCommand(path)
	out, err := exec.Command(cmd[0], cmd[1:]...).Output()
	if err != nil {
		return model.ProbeResult{}, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return ParseProbeJSON(path, out)
}

// Duration returns the media duration in seconds, or 0 when it cannot be
// determined. Probe failures degrade progress reporting but never abort a
// transcode, so no error is surfaced.
func Duration(path string) float64 {
	result, err := Probe(path)
	if err != nil {
		return 0
	}
	return result.DurationSeconds
}

// ParseProbeJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseProbeJSON(path string, data []byte) (model.ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.ProbeResult{}, fmt.Errorf("parse ffprobe JSON for %q: %w", path, err)
	}

	result := model.ProbeResult{
		Path:            path,
		DurationSeconds: parseFloat(raw.Format.Duration),
	}
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if result.VideoCodec == "" {
				result.VideoCodec = s.CodecName
				result.Width = s.Width
				result.Height = s.Height
				result.FPS = parseFraction(s.RFrameRate)
			}
		case "audio":
			if result.AudioCodec == "" {
				result.AudioCodec = s.CodecName
			}
		}
	}
	return result, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// parseFraction converts a frame-rate fraction like "24000/1001" to a float.
func parseFraction(frac string) float64 {
	num, den, ok := strings.Cut(frac, "/")
	if !ok {
		return parseFloat(frac)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

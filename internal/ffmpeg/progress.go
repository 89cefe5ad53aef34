package ffmpeg

import (
	"strconv"
	"strings"
)

// ProgressEnd marks the final line of one ffmpeg -progress report.
const ProgressEnd = "progress=end"

// ParseProgressLine extracts a completion percentage from one line of the
// ffmpeg -progress stream. Only out_time=HH:MM:SS[.ffffff] lines carry
// position information; everything else returns ok=false. A zero or negative
// total duration means progress cannot be computed, so the line is dropped
// rather than reported as garbage.
func ParseProgressLine(line string, durationSecs float64) (pct float64, ok bool) {
	value, found := strings.CutPrefix(strings.TrimSpace(line), "out_time=")
	if !found {
		return 0, false
	}
	if durationSecs <= 0 {
		return 0, false
	}

	seconds := parseClock(value)
	pct = seconds / durationSecs * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// parseClock converts an HH:MM:SS[.ffffff] timestamp to seconds. Malformed
// input maps to 0, which the caller clamps into the valid range anyway.
func parseClock(clock string) float64 {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 3 {
		return 0
	}
	h, errH := strconv.ParseFloat(parts[0], 64)
	m, errM := strconv.ParseFloat(parts[1], 64)
	s, errS := strconv.ParseFloat(parts[2], 64)
	if errH != nil || errM != nil || errS != nil {
		return 0
	}
	return h*3600 + m*60 + s
}

package ffmpeg

import "testing"

func TestParseProgressLine_ComputesPercentage(t *testing.T) {
	cases := []struct {
		line     string
		duration float64
		wantPct  float64
		wantOK   bool
	}{
		{"out_time=00:00:05.000000", 10, 50, true},
		{"out_time=00:01:00.000000", 120, 50, true},
		{"out_time=01:00:00.000000", 3600, 100, true},
		{"out_time=00:00:20.000000", 10, 100, true}, // past known duration, clamped
		{"frame=120", 10, 0, false},
		{"progress=continue", 10, 0, false},
		{ProgressEnd, 10, 0, false},
		{"", 10, 0, false},
	}

	for _, tc := range cases {
		pct, ok := ParseProgressLine(tc.line, tc.duration)
		if ok != tc.wantOK {
			t.Fatalf("line %q: expected ok=%v, got %v", tc.line, tc.wantOK, ok)
		}
		if ok && pct != tc.wantPct {
			t.Fatalf("line %q: expected %.1f%%, got %.1f%%", tc.line, tc.wantPct, pct)
		}
	}
}

func TestParseProgressLine_UnknownDurationSuppressesOutput(t *testing.T) {
	for _, duration := range []float64{0, -1} {
		if _, ok := ParseProgressLine("out_time=00:00:05.000000", duration); ok {
			t.Fatalf("duration %.1f should suppress progress", duration)
		}
	}
}

func TestParseProgressLine_MalformedClockStaysInRange(t *testing.T) {
	lines := []string{
		"out_time=garbage",
		"out_time=1:2",
		"out_time=aa:bb:cc",
		"out_time=",
	}
	for _, line := range lines {
		pct, ok := ParseProgressLine(line, 10)
		if !ok {
			continue
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("line %q produced out-of-range percentage %f", line, pct)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		clock string
		want  float64
	}{
		{"00:00:05.000000", 5},
		{"00:01:30.500000", 90.5},
		{"02:00:00", 7200},
		{"bogus", 0},
	}
	for _, tc := range cases {
		if got := parseClock(tc.clock); got != tc.want {
			t.Fatalf("parseClock(%q): expected %.2f, got %.2f", tc.clock, tc.want, got)
		}
	}
}

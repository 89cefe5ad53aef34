package cli

import (
	"testing"

	"auto-transcoder/internal/model"
)

func TestFilterJobs(t *testing.T) {
	jobs := []model.TranscodeJob{
		{Name: "proxies"},
		{Name: "archive"},
		{Name: "dailies"},
	}

	all := filterJobs(append([]model.TranscodeJob(nil), jobs...), "")
	if len(all) != 3 {
		t.Fatalf("empty filter should keep all jobs, got %d", len(all))
	}

	some := filterJobs(append([]model.TranscodeJob(nil), jobs...), " proxies , dailies ")
	if len(some) != 2 || some[0].Name != "proxies" || some[1].Name != "dailies" {
		t.Fatalf("unexpected filtered set: %+v", some)
	}

	none := filterJobs(append([]model.TranscodeJob(nil), jobs...), "unknown")
	if len(none) != 0 {
		t.Fatalf("unknown names should filter everything out, got %+v", none)
	}
}

func TestWatchLoggerThrottlesProgress(t *testing.T) {
	l := &watchLogger{lastPct: make(map[string]int)}

	if !l.shouldLogProgress("a.mov", 5) {
		t.Fatal("first 5% step should log")
	}
	if l.shouldLogProgress("a.mov", 7) {
		t.Fatal("sub-threshold step should be suppressed")
	}
	if !l.shouldLogProgress("a.mov", 12) {
		t.Fatal("next 5% step should log")
	}
	if !l.shouldLogProgress("a.mov", 100) {
		t.Fatal("completion should always log")
	}

	// Other files keep their own counters.
	if !l.shouldLogProgress("b.mov", 50) {
		t.Fatal("independent file should log")
	}

	l.reset("a.mov")
	if !l.shouldLogProgress("a.mov", 5) {
		t.Fatal("reset should restart the throttle window")
	}
}

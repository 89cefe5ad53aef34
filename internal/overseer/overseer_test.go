package overseer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"auto-transcoder/internal/model"
)

// recorder captures notifications from overseer goroutines.
type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) record(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) snapshot() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

func (r *recorder) jobStatuses(name string) []model.JobStatus {
	var out []model.JobStatus
	for _, n := range r.snapshot() {
		if n.Kind == NotifyJobStatus && n.JobName == name {
			out = append(out, n.JobStatus)
		}
	}
	return out
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// installFakeTools stands in for ffmpeg/ffprobe via the env overrides. The
// fake ffmpeg touches a per-input marker so tests can count launches.
func installFakeTools(t *testing.T, markerDir string) {
	t.Helper()
	dir := t.TempDir()
	ffmpeg := `#!/usr/bin/env bash
trap 'exit 255' INT TERM
touch "` + markerDir + `/$(basename "$2").started"
echo "out_time=00:00:05.000000"
echo "progress=end"
exit 0
`
	ffprobe := `#!/usr/bin/env bash
echo '{"format":{"duration":"10.0"},"streams":[]}'
`
	t.Setenv("AUTO_TRANSCODER_FFMPEG", writeScript(t, dir, "ffmpeg", ffmpeg))
	t.Setenv("AUTO_TRANSCODER_FFPROBE", writeScript(t, dir, "ffprobe", ffprobe))
}

func testJob(t *testing.T, name string, intervalSeconds int) model.TranscodeJob {
	t.Helper()
	tmp := t.TempDir()
	job := model.TranscodeJob{
		Name:            name,
		InputFolder:     filepath.Join(tmp, "in"),
		OutputFolder:    filepath.Join(tmp, "out"),
		OutputExtension: ".mp4",
		FFmpegArgs:      []string{"-c:v", "libx264"},
		IntervalSeconds: intervalSeconds,
	}
	if err := os.MkdirAll(job.InputFolder, 0o755); err != nil {
		t.Fatal(err)
	}
	return job
}

func addInput(t *testing.T, job model.TranscodeJob, name string) string {
	t.Helper()
	path := filepath.Join(job.InputFolder, name)
	if err := os.WriteFile(path, []byte("clip"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAddJobRejectsDuplicatesWithoutMutating(t *testing.T) {
	rec := &recorder{}
	ov := New(rec.record)
	defer ov.Close()

	job := testJob(t, "proxies", 3600)
	if err := ov.AddJob(job); err != nil {
		t.Fatalf("first add: %v", err)
	}

	dupe := job
	dupe.OutputExtension = ".mkv"
	if err := ov.AddJob(dupe); !errors.Is(err, ErrDuplicateJob) {
		t.Fatalf("expected ErrDuplicateJob, got %v", err)
	}

	got, ok := ov.Job("proxies")
	if !ok || got.OutputExtension != ".mp4" {
		t.Fatalf("duplicate add mutated the registry: %+v", got)
	}
}

func TestAddJobRejectsNonPositiveInterval(t *testing.T) {
	ov := New(nil)
	defer ov.Close()
	job := testJob(t, "proxies", 0)
	if err := ov.AddJob(job); err == nil {
		t.Fatal("expected non-positive interval to be rejected")
	}
}

func TestTimerScanOfEmptyFolderReturnsToIdle(t *testing.T) {
	markers := t.TempDir()
	installFakeTools(t, markers)

	rec := &recorder{}
	ov := New(rec.record)
	defer ov.Close()

	job := testJob(t, "proxies", 1)
	if err := ov.AddJob(job); err != nil {
		t.Fatal(err)
	}

	// Wait for at least one full timer-driven cycle.
	waitFor(t, "a scanning notification", func() bool {
		for _, s := range rec.jobStatuses("proxies") {
			if s == model.JobScanning {
				return true
			}
		}
		return false
	})
	waitFor(t, "return to idle", func() bool {
		got, ok := ov.Job("proxies")
		return ok && got.Status == model.JobIdle
	})

	if ov.ActiveWorkers() != 0 {
		t.Fatalf("empty folder must not launch workers, got %d", ov.ActiveWorkers())
	}
	for _, s := range rec.jobStatuses("proxies") {
		if s == model.JobRunning || s == model.JobQueued {
			t.Fatalf("empty folder cycle must not queue or run: %v", rec.jobStatuses("proxies"))
		}
	}
}

func TestScanLaunchesOneWorkerPerPendingFile(t *testing.T) {
	markers := t.TempDir()
	// Barrier script: each fake transcode waits until both inputs have a
	// live process before exiting, so serialized launches would stall here.
	bin := t.TempDir()
	ffmpeg := `#!/usr/bin/env bash
trap 'exit 255' INT TERM
touch "` + markers + `/$(basename "$2").started"
for i in $(seq 1 500); do
  n=$(ls "` + markers + `" | grep -c started)
  if [ "$n" -ge 2 ] && [ -e "` + markers + `/release" ]; then break; fi
  sleep 0.01
done
echo "out_time=00:00:10.000000"
echo "progress=end"
exit 0
`
	t.Setenv("AUTO_TRANSCODER_FFMPEG", writeScript(t, bin, "ffmpeg", ffmpeg))
	t.Setenv("AUTO_TRANSCODER_FFPROBE", writeScript(t, bin, "ffprobe", `#!/usr/bin/env bash
echo '{"format":{"duration":"10.0"},"streams":[]}'
`))

	rec := &recorder{}
	ov := New(rec.record)
	defer ov.Close()

	job := testJob(t, "proxies", 3600)
	addInput(t, job, "a.mov")
	addInput(t, job, "b.mov")
	if err := ov.AddJob(job); err != nil {
		t.Fatal(err)
	}
	ov.ScanNow("proxies")

	if got := ov.ActiveWorkers(); got != 2 {
		t.Fatalf("expected both files to get a worker, got %d", got)
	}
	if got, ok := ov.Job("proxies"); !ok || got.Status != model.JobRunning {
		t.Fatalf("job should be running with live workers, got %+v", got)
	}
	if err := os.WriteFile(filepath.Join(markers, "release"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "both workers to finish", func() bool {
		return ov.ActiveWorkers() == 0 && len(terminalItems(rec, "proxies")) == 2
	})
	waitFor(t, "job back to idle", func() bool {
		got, ok := ov.Job("proxies")
		return ok && got.Status == model.JobIdle
	})

	for _, marker := range []string{"a.mov.started", "b.mov.started"} {
		if _, err := os.Stat(filepath.Join(markers, marker)); err != nil {
			t.Fatalf("expected a launch for %s: %v", marker, err)
		}
	}

	statuses := rec.jobStatuses("proxies")
	sawRunning := false
	for _, s := range statuses {
		if s == model.JobRunning {
			sawRunning = true
		}
	}
	if !sawRunning || statuses[len(statuses)-1] != model.JobIdle {
		t.Fatalf("expected a running phase ending in idle: %v", statuses)
	}
}

// terminalItems counts work items that reached done or error.
func terminalItems(rec *recorder, jobName string) map[string]model.WorkerStatus {
	out := make(map[string]model.WorkerStatus)
	for _, n := range rec.snapshot() {
		if n.Kind != NotifyWorkItemStatus || n.JobName != jobName {
			continue
		}
		if n.WorkerStatus == model.WorkerDone || n.WorkerStatus == model.WorkerError {
			out[n.InputFile] = n.WorkerStatus
		}
	}
	return out
}

func TestRepeatedScansSkipConvertedAndActiveFiles(t *testing.T) {
	markers := t.TempDir()
	installFakeTools(t, markers)

	rec := &recorder{}
	ov := New(rec.record)
	defer ov.Close()

	job := testJob(t, "proxies", 3600)
	input := addInput(t, job, "a.mov")
	if err := ov.AddJob(job); err != nil {
		t.Fatal(err)
	}

	ov.ScanNow("proxies")
	waitFor(t, "worker to finish", func() bool {
		return len(terminalItems(rec, "proxies")) == 1
	})

	// The fake conversion produced no real output, so fabricate one the way
	// a finished run would have.
	if err := os.MkdirAll(job.OutputFolder, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(job.OutputFolder, "a.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(markers, "a.mov.started")); err != nil {
		t.Fatal(err)
	}

	ov.ScanNow("proxies")
	waitFor(t, "second cycle to settle", func() bool {
		got, ok := ov.Job("proxies")
		return ok && got.Status == model.JobIdle && ov.ActiveWorkers() == 0
	})

	if _, err := os.Stat(filepath.Join(markers, "a.mov.started")); err == nil {
		t.Fatalf("converted file %s was re-launched", input)
	}
}

func TestScanTreatsMissingInputFolderAsEmpty(t *testing.T) {
	markers := t.TempDir()
	installFakeTools(t, markers)

	rec := &recorder{}
	ov := New(rec.record)
	defer ov.Close()

	job := testJob(t, "proxies", 3600)
	// Missing folders read as empty rather than broken.
	if err := os.RemoveAll(job.InputFolder); err != nil {
		t.Fatal(err)
	}
	if err := ov.AddJob(job); err != nil {
		t.Fatal(err)
	}
	ov.ScanNow("proxies")

	waitFor(t, "cycle to settle", func() bool {
		got, ok := ov.Job("proxies")
		return ok && got.Status == model.JobIdle
	})
	if ov.ActiveWorkers() != 0 {
		t.Fatalf("missing folder must not launch workers, got %d", ov.ActiveWorkers())
	}
}

func TestRescanWhileWorkerLiveLaunchesInputOnce(t *testing.T) {
	markers := t.TempDir()
	launchLog := filepath.Join(markers, "launches")
	release := filepath.Join(markers, "release")
	// Each invocation records itself and blocks until released, so repeated
	// scans during the live run would show up as extra launch lines.
	bin := t.TempDir()
	ffmpeg := `#!/usr/bin/env bash
trap 'exit 255' INT TERM
echo launch >> "` + launchLog + `"
for i in $(seq 1 500); do
  if [ -e "` + release + `" ]; then break; fi
  sleep 0.01
done
echo "out_time=00:00:10.000000"
echo "progress=end"
exit 0
`
	t.Setenv("AUTO_TRANSCODER_FFMPEG", writeScript(t, bin, "ffmpeg", ffmpeg))
	t.Setenv("AUTO_TRANSCODER_FFPROBE", writeScript(t, bin, "ffprobe", `#!/usr/bin/env bash
echo '{"format":{"duration":"10.0"},"streams":[]}'
`))

	rec := &recorder{}
	ov := New(rec.record)
	defer ov.Close()

	job := testJob(t, "proxies", 3600)
	addInput(t, job, "a.mov")
	if err := ov.AddJob(job); err != nil {
		t.Fatal(err)
	}

	ov.ScanNow("proxies")
	waitFor(t, "first launch", func() bool {
		_, err := os.Stat(launchLog)
		return err == nil
	})

	for i := 0; i < 5; i++ {
		ov.ScanNow("proxies")
	}
	if got := ov.ActiveWorkers(); got != 1 {
		t.Fatalf("rescans must not add workers for a live input, got %d", got)
	}

	if err := os.WriteFile(release, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "worker to finish", func() bool {
		got, ok := ov.Job("proxies")
		return ok && got.Status == model.JobIdle && ov.ActiveWorkers() == 0
	})

	data, err := os.ReadFile(launchLog)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "launch"); got != 1 {
		t.Fatalf("input launched %d times, want exactly 1", got)
	}
}

func TestScanErrorIsClearedByNextCycle(t *testing.T) {
	markers := t.TempDir()
	installFakeTools(t, markers)

	rec := &recorder{}
	ov := New(rec.record)
	defer ov.Close()

	job := testJob(t, "proxies", 3600)
	// A regular file where the input folder should be makes the listing fail
	// outright, unlike a missing folder.
	if err := os.RemoveAll(job.InputFolder); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(job.InputFolder, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ov.AddJob(job); err != nil {
		t.Fatal(err)
	}

	ov.ScanNow("proxies")
	got, ok := ov.Job("proxies")
	if !ok || got.Status != model.JobError || got.ErrorMessage == "" {
		t.Fatalf("expected an error status with a message, got %+v", got)
	}

	if err := os.Remove(job.InputFolder); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(job.InputFolder, 0o755); err != nil {
		t.Fatal(err)
	}
	ov.ScanNow("proxies")
	got, ok = ov.Job("proxies")
	if !ok || got.Status != model.JobIdle {
		t.Fatalf("recovered cycle should end idle, got %+v", got)
	}
	if got.ErrorMessage != "" {
		t.Fatalf("stale error message survived the recovered cycle: %q", got.ErrorMessage)
	}
}

func TestStopJobCancelsWorkersAndForcesIdle(t *testing.T) {
	dir := t.TempDir()
	ready := filepath.Join(dir, "ready")
	ffmpeg := `#!/usr/bin/env bash
trap 'exit 255' INT TERM
touch "` + ready + `"
sleep 10 &
wait $!
exit 0
`
	ffprobe := `#!/usr/bin/env bash
echo '{"format":{"duration":"10.0"},"streams":[]}'
`
	bin := t.TempDir()
	t.Setenv("AUTO_TRANSCODER_FFMPEG", writeScript(t, bin, "ffmpeg", ffmpeg))
	t.Setenv("AUTO_TRANSCODER_FFPROBE", writeScript(t, bin, "ffprobe", ffprobe))

	rec := &recorder{}
	ov := New(rec.record)
	defer ov.Close()

	job := testJob(t, "proxies", 3600)
	addInput(t, job, "a.mov")
	if err := ov.AddJob(job); err != nil {
		t.Fatal(err)
	}
	ov.ScanNow("proxies")

	waitFor(t, "worker to go live", func() bool {
		_, err := os.Stat(ready)
		return err == nil
	})
	ov.StopJob("proxies")

	waitFor(t, "worker to drain", func() bool {
		return ov.ActiveWorkers() == 0
	})
	got, ok := ov.Job("proxies")
	if !ok || got.Status != model.JobIdle {
		t.Fatalf("stop should force idle, got %+v", got)
	}

	items := terminalItems(rec, "proxies")
	for file, status := range items {
		if status != model.WorkerDone {
			t.Fatalf("cancelled worker for %s should end cleanly, got %s", file, status)
		}
	}
}

func TestRemoveJobIsIdempotent(t *testing.T) {
	markers := t.TempDir()
	installFakeTools(t, markers)

	ov := New(nil)
	defer ov.Close()

	job := testJob(t, "proxies", 3600)
	if err := ov.AddJob(job); err != nil {
		t.Fatal(err)
	}
	ov.RemoveJob("proxies")
	ov.RemoveJob("proxies")
	ov.RemoveJob("never-existed")

	if _, ok := ov.Job("proxies"); ok {
		t.Fatal("job still registered after removal")
	}
	if err := ov.AddJob(job); err != nil {
		t.Fatalf("re-adding a removed name should work: %v", err)
	}
}

func TestCloseWaitsForLiveWorkers(t *testing.T) {
	markers := t.TempDir()
	installFakeTools(t, markers)

	rec := &recorder{}
	ov := New(rec.record)

	job := testJob(t, "proxies", 3600)
	addInput(t, job, "a.mov")
	if err := ov.AddJob(job); err != nil {
		t.Fatal(err)
	}
	ov.ScanNow("proxies")
	ov.Close()

	if ov.ActiveWorkers() != 0 {
		t.Fatalf("close returned with %d live workers", ov.ActiveWorkers())
	}
	if err := ov.AddJob(testJob(t, "late", 3600)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after shutdown, got %v", err)
	}
}

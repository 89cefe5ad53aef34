// Package worker supervises a single external ffmpeg invocation for one
// file: launch, concurrent drain of both output streams, progress parsing,
// and terminal outcome reporting.
package worker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"auto-transcoder/internal/ffmpeg"
	"auto-transcoder/internal/model"
)

// exitCodeTerminated is ffmpeg's exit status after SIGINT/SIGTERM. A run
// that ends with it was stopped on purpose, not broken.
const exitCodeTerminated = 255

// maxStderrKeep caps how much diagnostic output is retained for error
// messages. The stream is still drained in full either way.
const maxStderrKeep = 8192

// Worker runs one transcode attempt. Create with New, start with Start;
// the worker owns its WorkItem until the Completed event fires.
type Worker struct {
	job    model.TranscodeJob
	item   model.WorkItem
	events chan<- Event

	mu  sync.Mutex
	cmd *exec.Cmd // non-nil only while the process is alive
}

// New builds a worker for one pending file. Events are delivered on the
// provided channel; the caller must keep draining it until Completed arrives.
func New(job model.TranscodeJob, item model.WorkItem, events chan<- Event) *Worker {
	item.Status = model.WorkerPending
	return &Worker{job: job, item: item, events: events}
}

// JobName returns the owning job's name.
func (w *Worker) JobName() string { return w.item.JobName }

// InputFile returns the source path this worker converts.
func (w *Worker) InputFile() string { return w.item.InputFile }

// Start launches the run on its own goroutine and returns immediately.
func (w *Worker) Start() {
	go w.run()
}

// Cancel requests a graceful stop of the live ffmpeg process and returns
// without waiting. The run loop observes the resulting exit code and treats
// it as an intentional stop. With no live process this is a no-op.
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cmd == nil || w.cmd.Process == nil {
		return
	}
	_ = w.cmd.Process.Signal(os.Interrupt)
}

func (w *Worker) run() {
	w.setStatus(model.WorkerRunning, "")

	// Best effort: an unknown duration only disables percentage reporting.
	if duration := ffmpeg.Duration(w.item.InputFile); duration > 0 {
		w.item.DurationSecs = duration
		w.emit(Event{Kind: EventDurationKnown, Seconds: duration})
	}

	args, err := ffmpeg.BuildTranscodeCommand(w.job, w.item.InputFile, w.item.OutputFile)
	if err != nil {
		w.fail(err.Error())
		return
	}

	if err := w.runFFmpeg(args); err != nil {
		w.fail(err.Error())
		return
	}

	w.setStatus(model.WorkerDone, "")
	w.emit(Event{Kind: EventCompleted})
}

func (w *Worker) fail(message string) {
	w.setStatus(model.WorkerError, message)
	w.emit(Event{Kind: EventCompleted})
}

// runFFmpeg launches the process and drains stdout (progress) and stderr
// (diagnostics) concurrently. Both drains must finish before Wait: reading
// only one stream can fill the other's pipe buffer, stalling ffmpeg and,
// transitively, the stream being read.
func (w *Worker) runFFmpeg(args []string) error {
	cmd := exec.Command(args[0], args[1:]...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("setup stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("setup stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg for %s: %w", filepath.Base(w.item.InputFile), err)
	}

	w.mu.Lock()
	w.cmd = cmd
	w.mu.Unlock()

	var stderrBuf strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.drainProgress(stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		drainLimited(stderrPipe, &stderrBuf)
	}()
	wg.Wait()

	waitErr := cmd.Wait()

	w.mu.Lock()
	w.cmd = nil
	w.mu.Unlock()

	code := exitCode(waitErr)
	if code == 0 || code == exitCodeTerminated {
		return nil
	}

	base := filepath.Base(w.item.InputFile)
	if tail := strings.TrimSpace(stderrBuf.String()); tail != "" {
		return fmt.Errorf("ffmpeg exited with code %d for %s: %s", code, base, tail)
	}
	return fmt.Errorf("ffmpeg exited with code %d for %s", code, base)
}

// drainProgress reads the -progress key=value stream and emits percentage
// updates. Percentages never go backwards within a run.
func (w *Worker) drainProgress(r io.Reader) {
	scanner := newLineScanner(r)
	lastPct := -1.0
	for scanner.Scan() {
		line := scanner.Text()
		// A clean end-of-stream report counts as 100% even when the last
		// out_time fell slightly short of the probed duration.
		if strings.TrimSpace(line) == ffmpeg.ProgressEnd && w.item.DurationSecs > 0 && lastPct < 100 {
			lastPct = 100
			w.item.Progress = 100
			w.emit(Event{Kind: EventProgress, Percent: 100})
			continue
		}
		pct, ok := ffmpeg.ParseProgressLine(line, w.item.DurationSecs)
		if !ok || pct < lastPct {
			continue
		}
		lastPct = pct
		w.item.Progress = pct
		w.emit(Event{Kind: EventProgress, Percent: pct})
	}
}

// drainLimited consumes an entire stream but retains at most maxStderrKeep
// bytes for error reporting.
func drainLimited(r io.Reader, buf *strings.Builder) {
	scanner := newLineScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		remain := maxStderrKeep - buf.Len()
		if remain <= 0 {
			continue
		}
		toWrite := line + "\n"
		if len(toWrite) > remain {
			toWrite = toWrite[:remain]
		}
		buf.WriteString(toWrite)
	}
}

// newLineScanner tolerates ffmpeg's carriage-return rewrites on stderr.
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(splitByNewlineOrCR)
	return scanner
}

func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (w *Worker) setStatus(status model.WorkerStatus, message string) {
	if err := model.TransitionWorkItem(&w.item, status, message); err != nil {
		return
	}
	w.emit(Event{Kind: EventStatusChanged, Status: status, Message: message})
}

func (w *Worker) emit(ev Event) {
	ev.JobName = w.item.JobName
	ev.InputFile = w.item.InputFile
	w.events <- ev
}

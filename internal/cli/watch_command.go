package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"auto-transcoder/internal/ffmpeg"
	"auto-transcoder/internal/jobstore"
	"auto-transcoder/internal/model"
	"auto-transcoder/internal/overseer"
)

// runWatch registers all configured jobs with an overseer and runs until
// interrupted. In log mode every notification becomes a line on stdout; with
// --dashboard a live TUI renders job cards instead.
func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	config := fs.String("config", "", "jobs file path (defaults to the user config dir)")
	dashboard := fs.Bool("dashboard", false, "render a live TUI dashboard (requires a TTY)")
	noInitialScan := fs.Bool("no-initial-scan", false, "wait for the first timer tick instead of scanning immediately")
	jobFilter := fs.String("jobs", "", "comma-separated job names to run (default: all)")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath, err := resolveConfigPath(*config)
	if err != nil {
		return err
	}
	jobs, err := jobstore.Load(configPath)
	if err != nil {
		return err
	}
	jobs = filterJobs(jobs, *jobFilter)
	if len(jobs) == 0 {
		return errors.New("no jobs to run; add one with 'auto-transcoder add'")
	}

	deps := ffmpeg.DependencyStatus()
	if !deps.FFmpegFound {
		return errors.New("ffmpeg not found; run 'auto-transcoder fetch-binaries' or install it on PATH")
	}
	if !deps.FFprobeFound {
		fmt.Println("warning: ffprobe not found; progress percentages will be unavailable")
	}

	if *dashboard {
		if !stdoutIsTTY() {
			return errors.New("--dashboard requires an interactive terminal (TTY)")
		}
		return runWatchDashboard(jobs, !*noInitialScan)
	}

	logger := &watchLogger{lastPct: make(map[string]int)}
	ov := overseer.New(logger.Handle)

	for _, job := range jobs {
		if err := ov.AddJob(job); err != nil {
			ov.Close()
			return err
		}
		fmt.Printf("watching %q: %s -> %s every %ds\n", job.Name, job.InputFolder, job.OutputFolder, job.IntervalSeconds)
	}
	if !*noInitialScan {
		for _, job := range jobs {
			ov.ScanNow(job.Name)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println("shutting down, cancelling active transcodes...")
	ov.Close()
	return nil
}

func filterJobs(jobs []model.TranscodeJob, filter string) []model.TranscodeJob {
	names := strings.Split(filter, ",")
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if v := strings.TrimSpace(n); v != "" {
			wanted[v] = true
		}
	}
	if len(wanted) == 0 {
		return jobs
	}
	out := jobs[:0]
	for _, job := range jobs {
		if wanted[job.Name] {
			out = append(out, job)
		}
	}
	return out
}

// watchLogger prints notifications as plain log lines. Progress is throttled
// to 5% steps per file to keep unattended logs readable.
type watchLogger struct {
	mu      sync.Mutex
	lastPct map[string]int
}

func (l *watchLogger) Handle(n overseer.Notification) {
	switch n.Kind {
	case overseer.NotifyJobStatus:
		fmt.Printf("job %s: %s\n", n.JobName, n.JobStatus)
	case overseer.NotifyWorkItemDuration:
		fmt.Printf("job %s: %s duration %.1fs\n", n.JobName, n.InputFile, n.Seconds)
	case overseer.NotifyWorkItemProgress:
		if l.shouldLogProgress(n.InputFile, int(n.Percent)) {
			fmt.Printf("job %s: %s %d%%\n", n.JobName, n.InputFile, int(n.Percent))
		}
	case overseer.NotifyWorkItemStatus:
		if n.WorkerStatus == model.WorkerDone || n.WorkerStatus == model.WorkerError {
			l.reset(n.InputFile)
		}
		if n.WorkerStatus == model.WorkerError {
			fmt.Printf("job %s: %s failed: %s\n", n.JobName, n.InputFile, n.Message)
			return
		}
		fmt.Printf("job %s: %s %s\n", n.JobName, n.InputFile, n.WorkerStatus)
	case overseer.NotifyOverseerError:
		fmt.Printf("overseer error: %s\n", n.Message)
	}
}

func (l *watchLogger) shouldLogProgress(inputFile string, pct int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if pct < l.lastPct[inputFile]+5 && pct < 100 {
		return false
	}
	l.lastPct[inputFile] = pct
	return true
}

func (l *watchLogger) reset(inputFile string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.lastPct, inputFile)
}

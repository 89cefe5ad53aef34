// Package overseer schedules watch-folder jobs: one recurring timer per job,
// folder diffing on each tick, one worker per pending file, and aggregation
// of worker outcomes into job-level status.
package overseer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"auto-transcoder/internal/model"
	"auto-transcoder/internal/scanner"
	"auto-transcoder/internal/worker"
)

// ErrDuplicateJob is returned by AddJob for an already-registered name.
var ErrDuplicateJob = errors.New("job name already exists")

// ErrClosed is returned when registering jobs on a closed overseer.
var ErrClosed = errors.New("overseer is closed")

// Overseer owns the job, timer, and live-worker registries. All registry
// mutation happens under one mutex; worker events arrive on a single
// channel drained by one dispatch goroutine, so two near-simultaneous
// completions can never lose an update.
type Overseer struct {
	notify func(Notification)

	mu      sync.Mutex
	jobs    map[string]*model.TranscodeJob
	timers  map[string]chan struct{}
	workers map[string]*worker.Worker // input path -> live worker
	closed  bool

	events       chan worker.Event
	live         sync.WaitGroup
	dispatchDone chan struct{}
}

// New creates an overseer. notify may be nil; when set it is invoked from
// multiple goroutines, sometimes with internal locks held, so it must be
// safe for concurrent use and must not call back into the overseer.
func New(notify func(Notification)) *Overseer {
	o := &Overseer{
		notify:       notify,
		jobs:         make(map[string]*model.TranscodeJob),
		timers:       make(map[string]chan struct{}),
		workers:      make(map[string]*worker.Worker),
		events:       make(chan worker.Event, 256),
		dispatchDone: make(chan struct{}),
	}
	go o.dispatch()
	return o
}

// AddJob registers a job and starts its recurring scan timer. Registering a
// duplicate name fails without touching existing state.
func (o *Overseer) AddJob(job model.TranscodeJob) error {
	if job.IntervalSeconds <= 0 {
		return fmt.Errorf("job %q: scan interval must be positive, got %d", job.Name, job.IntervalSeconds)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if _, exists := o.jobs[job.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateJob, job.Name)
	}

	job.Status = model.JobIdle
	job.PendingFiles = nil
	o.jobs[job.Name] = &job

	stop := make(chan struct{})
	o.timers[job.Name] = stop
	go o.runTimer(job.Name, time.Duration(job.IntervalSeconds)*time.Second, stop)
	return nil
}

// RemoveJob stops the job's timer, cancels its live workers, and drops it
// from the registry. Unknown names are a no-op.
func (o *Overseer) RemoveJob(name string) {
	o.mu.Lock()
	if stop, ok := o.timers[name]; ok {
		close(stop)
		delete(o.timers, name)
	}
	targets := o.workersForJobLocked(name)
	delete(o.jobs, name)
	o.mu.Unlock()

	for _, w := range targets {
		w.Cancel()
	}
}

// StopJob cancels the job's active workers and forces its status back to
// idle without unregistering it. Used to pause the current cycle, e.g.
// ahead of an edit-replace.
func (o *Overseer) StopJob(name string) {
	o.mu.Lock()
	targets := o.workersForJobLocked(name)
	if job, ok := o.jobs[name]; ok {
		o.setJobStatusLocked(job, model.JobIdle)
	}
	o.mu.Unlock()

	for _, w := range targets {
		w.Cancel()
	}
}

// ScanNow triggers the job's scan cycle outside the timer cadence.
func (o *Overseer) ScanNow(name string) {
	o.scan(name)
}

// Jobs returns a snapshot of all registered jobs.
func (o *Overseer) Jobs() []model.TranscodeJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.TranscodeJob, 0, len(o.jobs))
	for _, job := range o.jobs {
		out = append(out, *job)
	}
	return out
}

// Job returns a snapshot of one job by name.
func (o *Overseer) Job(name string) (model.TranscodeJob, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok := o.jobs[name]
	if !ok {
		return model.TranscodeJob{}, false
	}
	return *job, true
}

// ActiveWorkers returns the number of live workers across all jobs.
func (o *Overseer) ActiveWorkers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.workers)
}

// Close stops all timers, cancels all live workers, waits for them to
// report their terminal events, and shuts down the dispatcher.
func (o *Overseer) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	for name, stop := range o.timers {
		close(stop)
		delete(o.timers, name)
	}
	targets := make([]*worker.Worker, 0, len(o.workers))
	for _, w := range o.workers {
		targets = append(targets, w)
	}
	o.mu.Unlock()

	for _, w := range targets {
		w.Cancel()
	}
	o.live.Wait()
	close(o.events)
	<-o.dispatchDone
}

// runTimer fires the scan cycle every interval until stopped. Each job has
// its own goroutine, so a slow scan for one job never delays another's tick.
func (o *Overseer) runTimer(name string, interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			o.scan(name)
		case <-stop:
			return
		}
	}
}

// scan is one folder-diff-then-dispatch cycle for a single job.
func (o *Overseer) scan(name string) {
	o.mu.Lock()
	job, ok := o.jobs[name]
	if !ok || o.closed {
		o.mu.Unlock()
		return
	}
	// A cycle in progress is never re-entered; overlapping scans could
	// double-launch workers for the same job.
	if job.Status == model.JobRunning {
		o.mu.Unlock()
		return
	}
	// A new cycle supersedes any earlier scan failure.
	job.ErrorMessage = ""
	o.setJobStatusLocked(job, model.JobScanning)
	inputFolder, outputFolder, ext := job.InputFolder, job.OutputFolder, job.OutputExtension
	o.mu.Unlock()

	// Directory listing runs without the lock so other jobs' cycles and
	// worker completions are not held up behind a slow filesystem.
	pending, err := scanner.FindPending(inputFolder, outputFolder, ext)

	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok = o.jobs[name]
	if !ok || o.closed {
		return
	}
	// StopJob may have forced the cycle back to idle while the listing ran.
	if job.Status != model.JobScanning {
		return
	}
	if err != nil {
		job.ErrorMessage = err.Error()
		o.setJobStatusLocked(job, model.JobError)
		o.send(Notification{Kind: NotifyOverseerError, JobName: name, Message: fmt.Sprintf("scan %q: %v", name, err)})
		return
	}

	// At most one live worker per input path across the whole system, even
	// across jobs watching overlapping folders.
	launchable := pending[:0]
	for _, f := range pending {
		if _, active := o.workers[f]; !active {
			launchable = append(launchable, f)
		}
	}

	if len(launchable) == 0 {
		o.setJobStatusLocked(job, model.JobIdle)
		return
	}

	job.PendingFiles = append([]string(nil), launchable...)
	o.setJobStatusLocked(job, model.JobQueued)

	for i, inputFile := range launchable {
		item := model.WorkItem{
			InputFile:  inputFile,
			OutputFile: scanner.BuildOutputPath(inputFile, outputFolder, ext),
			JobName:    name,
		}
		w := worker.New(*job, item, o.events)
		o.workers[inputFile] = w
		o.live.Add(1)
		if i == 0 {
			o.setJobStatusLocked(job, model.JobRunning)
		}
		w.Start()
	}
}

// dispatch multiplexes all workers' events: re-emits them tagged for
// observers and folds terminal events back into the registries.
func (o *Overseer) dispatch() {
	defer close(o.dispatchDone)
	for ev := range o.events {
		switch ev.Kind {
		case worker.EventDurationKnown:
			o.send(Notification{Kind: NotifyWorkItemDuration, JobName: ev.JobName, InputFile: ev.InputFile, Seconds: ev.Seconds})
		case worker.EventProgress:
			o.send(Notification{Kind: NotifyWorkItemProgress, JobName: ev.JobName, InputFile: ev.InputFile, Percent: ev.Percent})
		case worker.EventStatusChanged:
			o.send(Notification{Kind: NotifyWorkItemStatus, JobName: ev.JobName, InputFile: ev.InputFile, WorkerStatus: ev.Status, Message: ev.Message})
		case worker.EventCompleted:
			o.finishWorker(ev)
			o.live.Done()
		}
	}
}

// finishWorker drops the completed worker from the registry and returns the
// job to idle once its last worker is gone.
func (o *Overseer) finishWorker(ev worker.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.workers, ev.InputFile)

	job, ok := o.jobs[ev.JobName]
	if !ok {
		return // job removed while the worker was still running
	}
	for _, w := range o.workers {
		if w.JobName() == ev.JobName {
			return
		}
	}
	if job.Status == model.JobRunning {
		o.setJobStatusLocked(job, model.JobIdle)
	}
}

// workersForJobLocked collects the live workers owned by one job.
func (o *Overseer) workersForJobLocked(name string) []*worker.Worker {
	var targets []*worker.Worker
	for _, w := range o.workers {
		if w.JobName() == name {
			targets = append(targets, w)
		}
	}
	return targets
}

func (o *Overseer) setJobStatusLocked(job *model.TranscodeJob, status model.JobStatus) {
	if job.Status == status {
		return
	}
	if !model.CanTransitionJob(job.Status, status) {
		o.send(Notification{
			Kind:    NotifyOverseerError,
			JobName: job.Name,
			Message: fmt.Sprintf("refusing job status transition %q -> %q for %q", job.Status, status, job.Name),
		})
		return
	}
	job.Status = status
	o.send(Notification{Kind: NotifyJobStatus, JobName: job.Name, JobStatus: status})
}

func (o *Overseer) send(n Notification) {
	if o.notify != nil {
		o.notify(n)
	}
}

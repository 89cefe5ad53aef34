package model

import "fmt"

// JobStatus is the per-cycle lifecycle of a registered job.
type JobStatus string

const (
	JobIdle     JobStatus = "idle"     // waiting for the next timer tick
	JobScanning JobStatus = "scanning" // overseer is diffing folders
	JobQueued   JobStatus = "queued"   // pending files found, workers not yet started
	JobRunning  JobStatus = "running"  // at least one worker is active
	JobError    JobStatus = "error"    // transient, cleared by the next scan
)

// WorkerStatus is the lifecycle of a single work item's one run.
type WorkerStatus string

const (
	WorkerPending WorkerStatus = "pending"
	WorkerRunning WorkerStatus = "running"
	WorkerDone    WorkerStatus = "done"
	WorkerError   WorkerStatus = "error"
)

var allowedJobTransitions = map[JobStatus]map[JobStatus]bool{
	JobIdle: {
		JobIdle:     true,
		JobScanning: true,
	},
	JobScanning: {
		JobIdle:   true, // nothing pending
		JobQueued: true,
		JobError:  true,
	},
	JobQueued: {
		JobRunning: true,
		JobIdle:    true, // stop_job before the first worker launched
		JobError:   true,
	},
	JobRunning: {
		JobIdle:  true, // last worker finished, or stop_job forced it
		JobError: true,
	},
	JobError: {
		JobIdle:     true,
		JobScanning: true, // next scan re-attempts
	},
}

// CanTransitionJob reports whether a job may move from one status to another.
func CanTransitionJob(from, to JobStatus) bool {
	next, ok := allowedJobTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

var allowedWorkerTransitions = map[WorkerStatus]map[WorkerStatus]bool{
	WorkerPending: {
		WorkerRunning: true,
		WorkerError:   true, // launch failure before the process ever started
	},
	WorkerRunning: {
		WorkerDone:  true,
		WorkerError: true,
	},
	// Done and Error are terminal for the item's single run.
	WorkerDone:  {},
	WorkerError: {},
}

// CanTransitionWorker reports whether a work item may move between statuses.
func CanTransitionWorker(from, to WorkerStatus) bool {
	next, ok := allowedWorkerTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// TransitionWorkItem applies a validated status change to a work item.
func TransitionWorkItem(item *WorkItem, to WorkerStatus, errMessage string) error {
	from := item.Status
	if !CanTransitionWorker(from, to) {
		return fmt.Errorf("invalid work item transition: %q -> %q (job=%s input=%s)", from, to, item.JobName, item.InputFile)
	}
	item.Status = to
	item.ErrorMessage = errMessage
	return nil
}

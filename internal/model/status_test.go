package model

import "testing"

func TestCanTransitionJob_AllowsExpectedPaths(t *testing.T) {
	cases := []struct {
		from JobStatus
		to   JobStatus
	}{
		{JobIdle, JobScanning},
		{JobScanning, JobIdle},
		{JobScanning, JobQueued},
		{JobQueued, JobRunning},
		{JobQueued, JobIdle},
		{JobRunning, JobIdle},
		{JobRunning, JobError},
		{JobError, JobScanning},
	}
	for _, tc := range cases {
		if !CanTransitionJob(tc.from, tc.to) {
			t.Fatalf("expected transition %q -> %q to be allowed", tc.from, tc.to)
		}
	}
}

func TestCanTransitionJob_RejectsInvalidPaths(t *testing.T) {
	cases := []struct {
		from JobStatus
		to   JobStatus
	}{
		{JobIdle, JobRunning},
		{JobIdle, JobQueued},
		{JobRunning, JobQueued},
		{"bogus", JobIdle},
	}
	for _, tc := range cases {
		if CanTransitionJob(tc.from, tc.to) {
			t.Fatalf("expected transition %q -> %q to be rejected", tc.from, tc.to)
		}
	}
}

func TestCanTransitionWorker_TerminalStatesAreFinal(t *testing.T) {
	for _, from := range []WorkerStatus{WorkerDone, WorkerError} {
		for _, to := range []WorkerStatus{WorkerPending, WorkerRunning, WorkerDone, WorkerError} {
			if CanTransitionWorker(from, to) {
				t.Fatalf("terminal state %q must not transition to %q", from, to)
			}
		}
	}
}

func TestTransitionWorkItem(t *testing.T) {
	item := WorkItem{InputFile: "/in/a.mov", JobName: "j", Status: WorkerPending}

	if err := TransitionWorkItem(&item, WorkerRunning, ""); err != nil {
		t.Fatalf("pending -> running: %v", err)
	}
	if err := TransitionWorkItem(&item, WorkerError, "boom"); err != nil {
		t.Fatalf("running -> error: %v", err)
	}
	if item.ErrorMessage != "boom" {
		t.Fatalf("expected error message to stick, got %q", item.ErrorMessage)
	}
	if err := TransitionWorkItem(&item, WorkerRunning, ""); err == nil {
		t.Fatal("expected error -> running to be rejected")
	}
}

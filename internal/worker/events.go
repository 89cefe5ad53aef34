package worker

import "auto-transcoder/internal/model"

// EventKind classifies messages a worker emits while supervising one run.
type EventKind string

const (
	EventDurationKnown EventKind = "duration_known"
	EventProgress      EventKind = "progress"
	EventStatusChanged EventKind = "status_changed"
	EventCompleted     EventKind = "completed"
)

// Event is one message on a worker's output channel, tagged with the owning
// job and input file so many workers can share a single channel.
//
// Per run the sequence is fixed: an optional DurationKnown, zero or more
// Progress events with non-decreasing percentages, exactly one terminal
// StatusChanged (done or error), then exactly one Completed, always last.
type Event struct {
	Kind      EventKind
	JobName   string
	InputFile string
	Seconds   float64            // DurationKnown: media duration
	Percent   float64            // Progress: 0 to 100
	Status    model.WorkerStatus // StatusChanged
	Message   string             // StatusChanged(error): failure description
}

package overseer

import "auto-transcoder/internal/model"

// NotificationKind classifies the messages the overseer surfaces to
// observers. Workers are never inspected directly; everything observers
// need arrives tagged with job name and file path.
type NotificationKind string

const (
	NotifyJobStatus        NotificationKind = "job_status"
	NotifyWorkItemDuration NotificationKind = "work_item_duration"
	NotifyWorkItemProgress NotificationKind = "work_item_progress"
	NotifyWorkItemStatus   NotificationKind = "work_item_status"
	NotifyOverseerError    NotificationKind = "overseer_error"
)

// Notification is one observer-facing message.
type Notification struct {
	Kind         NotificationKind
	JobName      string
	InputFile    string             // work-item notifications only
	JobStatus    model.JobStatus    // NotifyJobStatus
	WorkerStatus model.WorkerStatus // NotifyWorkItemStatus
	Seconds      float64            // NotifyWorkItemDuration
	Percent      float64            // NotifyWorkItemProgress
	Message      string             // errors
}

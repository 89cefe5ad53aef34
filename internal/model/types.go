package model

// TranscodeJob describes one recurring watch-folder task. The FFmpegArgs
// slice is passed verbatim to ffmpeg between the input and output arguments;
// the scheduler never interprets it.
type TranscodeJob struct {
	Name            string   `json:"name"`
	InputFolder     string   `json:"input_folder"`
	OutputFolder    string   `json:"output_folder"`
	OutputExtension string   `json:"output_extension"`
	FFmpegArgs      []string `json:"ffmpeg_args"`
	IntervalSeconds int      `json:"interval_seconds"`

	// Runtime state, managed by the overseer and never persisted.
	Status       JobStatus `json:"-"`
	PendingFiles []string  `json:"-"`
	ErrorMessage string    `json:"-"`
}

// WorkItem is a single file's conversion attempt. The overseer creates one
// immediately before launching a worker; the worker owns it until it reports
// a terminal status.
type WorkItem struct {
	InputFile    string
	OutputFile   string
	JobName      string
	Status       WorkerStatus
	Progress     float64 // 0.0 to 100.0
	ErrorMessage string
	DurationSecs float64 // 0 when unknown
}

// ProbeResult is the metadata ffprobe reports for one media file.
type ProbeResult struct {
	Path            string
	DurationSeconds float64 // 0 if unknown
	Width           int
	Height          int
	VideoCodec      string
	AudioCodec      string
	FPS             float64
}

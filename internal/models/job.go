package models

import "time"

// ConversionJob is the durable history record for one transcode request.
type ConversionJob struct {
	ID            int64     `json:"id"`
	OriginalFile  string    `json:"original_file"`
	ConvertedFile string    `json:"converted_file"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Job statuses. A job is created in_progress and moves to exactly one of the
// terminal states: completed (ffmpeg exit 0), failed (nonzero exit) or error
// (the worker itself broke). unknown is never stored; it is the live-status
// answer for ids nobody is tracking.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusError      = "error"
	StatusUnknown    = "unknown"
)

// SpeedUnknown is reported when ffmpeg has not printed a speed multiplier.
const SpeedUnknown = "N/A"

// LiveStatus is the latest in-memory progress snapshot for a job. It is lost
// on restart; the history row keeps the terminal status.
type LiveStatus struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Speed    string  `json:"speed"`
	Elapsed  float64 `json:"elapsed"`
	Error    string  `json:"error,omitempty"`
}

package remote

import "fmt"

// Status is a remote job lifecycle state. The set is closed: server
// strings outside it are rejected rather than trusted.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusActive     Status = "active"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
)

// ParseStatus validates a server-provided status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusQueued, StatusProcessing, StatusActive, StatusSucceeded, StatusFailed, StatusExpired:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

// Terminal reports whether the job has finished, for better or worse.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusExpired:
		return true
	default:
		return false
	}
}

// Stage is the optional processing sub-state reported while a job is
// active.
type Stage string

const (
	StageChunking     Stage = "chunking"
	StageTranscribing Stage = "transcribing"
	StageAssembling   Stage = "assembling"
)

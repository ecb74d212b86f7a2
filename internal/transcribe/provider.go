package transcribe

import (
	"context"

	"github.com/skypro1111/transcribe-pipeline/internal/source"
)

// Strategy identifies how one transcription attempt is delivered to the
// provider. It is resolved once per attempt.
type Strategy int

const (
	// StrategyRemoteJob uses the chunked-upload job protocol; the server
	// decides direct vs. chunked processing.
	StrategyRemoteJob Strategy = iota

	// StrategyDirect sends the audio in a single multipart request.
	StrategyDirect

	// StrategyLocalChunked splits the audio locally and transcribes each
	// chunk through a direct call.
	StrategyLocalChunked
)

// String returns the strategy name for logging.
func (s Strategy) String() string {
	switch s {
	case StrategyRemoteJob:
		return "remote_job"
	case StrategyDirect:
		return "direct"
	case StrategyLocalChunked:
		return "local_chunked"
	default:
		return "unknown"
	}
}

// CallOptions carries per-call transcription flags.
type CallOptions struct {
	Timestamped bool
	Filename    string
	ContentType string
}

// Caller runs one direct transcription request against the provider.
// All three delivery strategies reduce to this contract at the seam where
// audio bytes meet the provider.
type Caller interface {
	Transcribe(ctx context.Context, audio []byte, opts CallOptions, progress ProgressFunc) (string, error)
}

// JobRunner drives the chunked-upload job protocol for a whole source.
type JobRunner interface {
	RunJob(ctx context.Context, src source.Source, timestamped bool, progress ProgressFunc) (string, error)
}

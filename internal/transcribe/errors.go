package transcribe

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline error for retry and reporting decisions.
type Kind int

const (
	KindUnknown Kind = iota

	// KindInput covers unsupported formats, zero/unknown sizes, and
	// inputs beyond the hard ceiling. Never retried.
	KindInput

	// KindProtocol covers malformed server responses, missing required
	// fields, and invalid part plans. Never retried.
	KindProtocol

	// KindTransient covers 5xx responses and network-class failures.
	// Retried up to the scheduler's bound.
	KindTransient

	// KindJobFailed is a terminal server-side job failure.
	KindJobFailed

	// KindJobExpired is a terminal server-side job expiry.
	KindJobExpired

	// KindTimeout is exceeding the fixed polling deadline.
	KindTimeout

	// KindDecode is a local audio decode failure.
	KindDecode
)

// String returns the human-readable label for the kind.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "invalid input"
	case KindProtocol:
		return "protocol error"
	case KindTransient:
		return "temporary failure"
	case KindJobFailed:
		return "transcription job failed"
	case KindJobExpired:
		return "transcription job expired"
	case KindTimeout:
		return "transcription timed out"
	case KindDecode:
		return "audio decode failed"
	default:
		return "transcription error"
	}
}

// Error is a typed pipeline error. Every layer below the orchestrator
// returns one; only the scheduler decides whether to retry.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a typed error. The format string supports %w wrapping.
func Errorf(kind Kind, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{
		Kind:    kind,
		Message: err.Error(),
		Err:     errors.Unwrap(err),
	}
}

// KindOf extracts the kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether the scheduler may retry after this error.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}

// maxUserMessageLen bounds the detail carried into user-visible messages.
const maxUserMessageLen = 300

// UserMessage builds the human-readable terminal failure message: the
// error kind combined with any detail, truncated to a bounded length.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	kind := KindOf(err)
	detail := err.Error()
	if len(detail) > maxUserMessageLen {
		detail = detail[:maxUserMessageLen] + "…"
	}

	if detail == "" {
		return kind.String()
	}
	return fmt.Sprintf("%s: %s", kind, detail)
}

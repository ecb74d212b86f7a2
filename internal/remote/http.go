package remote

import (
	"context"
	"errors"
	"strings"

	"github.com/skypro1111/transcribe-pipeline/internal/transcribe"
)

// maxErrorBodyLen bounds how much of a server error body is carried into
// error messages.
const maxErrorBodyLen = 200

// statusError classifies a non-2xx response: 5xx and 429 are transient
// and may be retried, everything else is a protocol error.
func statusError(statusCode int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxErrorBodyLen {
		detail = detail[:maxErrorBodyLen] + "…"
	}

	kind := transcribe.KindProtocol
	if statusCode >= 500 || statusCode == 429 {
		kind = transcribe.KindTransient
	}

	if detail == "" {
		return transcribe.Errorf(kind, "HTTP error %d", statusCode)
	}
	return transcribe.Errorf(kind, "HTTP error %d: %s", statusCode, detail)
}

// transportError classifies a failed round trip. Caller-initiated
// cancellation passes through untouched; everything else is a transient
// network failure.
func transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return transcribe.Errorf(transcribe.KindTransient, "HTTP request failed: %w", err)
}

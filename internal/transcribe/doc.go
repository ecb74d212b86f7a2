// Package transcribe orchestrates the transcription delivery pipeline.
// It validates input, resolves the delivery strategy (remote job, direct
// upload, or local chunking), bounds concurrency and retries through the
// scheduler, and reports progress back to the caller.
package transcribe

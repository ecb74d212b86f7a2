package transcribe

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/skypro1111/transcribe-pipeline/internal/audio"
	"github.com/skypro1111/transcribe-pipeline/internal/metrics"
	"github.com/skypro1111/transcribe-pipeline/internal/source"
)

// Options carries per-request transcription flags.
type Options struct {
	// Timestamped requests subtitle-formatted output with timings.
	Timestamped bool
}

// OrchestratorConfig contains the orchestrator parameters.
type OrchestratorConfig struct {
	// DirectUploadMaxBytes is the ceiling for a single-shot upload; larger
	// inputs go through local chunking when the job protocol is
	// unavailable.
	DirectUploadMaxBytes int64

	// HardMaxBytes is the absolute input ceiling; larger inputs are
	// rejected outright.
	HardMaxBytes int64

	// Local configures the local chunked pipeline.
	Local LocalConfig
}

// Orchestrator is the pipeline entry point. It validates input, resolves
// the delivery strategy once per attempt, and drives the chosen path
// through the scheduler.
type Orchestrator struct {
	config    OrchestratorConfig
	logger    *slog.Logger
	metrics   *metrics.Metrics
	scheduler *Scheduler
	jobs      JobRunner
	caller    Caller
	local     *LocalPipeline
}

// NewOrchestrator creates the pipeline entry point. jobs may be nil for
// environments without the chunked-upload protocol; caller is required.
func NewOrchestrator(config OrchestratorConfig, scheduler *Scheduler, jobs JobRunner, caller Caller, decoder audio.Decoder, logger *slog.Logger, m *metrics.Metrics) (*Orchestrator, error) {
	if scheduler == nil {
		return nil, fmt.Errorf("scheduler cannot be nil")
	}

	if caller == nil {
		return nil, fmt.Errorf("caller cannot be nil")
	}

	if config.DirectUploadMaxBytes <= 0 {
		return nil, fmt.Errorf("direct upload ceiling must be positive, got %d", config.DirectUploadMaxBytes)
	}

	if config.HardMaxBytes <= 0 {
		return nil, fmt.Errorf("hard input ceiling must be positive, got %d", config.HardMaxBytes)
	}

	if logger == nil {
		logger = slog.Default()
	}

	local, err := NewLocalPipeline(config.Local, caller, decoder, logger, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create local pipeline: %w", err)
	}

	return &Orchestrator{
		config:    config,
		logger:    logger,
		metrics:   m,
		scheduler: scheduler,
		jobs:      jobs,
		caller:    caller,
		local:     local,
	}, nil
}

// Transcribe runs one transcription attempt from input validation through
// to the final transcript text. On terminal failure the returned error is
// typed; UserMessage renders it for display.
func (o *Orchestrator) Transcribe(ctx context.Context, src source.Source, opts Options, progress ProgressFunc) (string, error) {
	if err := o.validate(src); err != nil {
		return "", err
	}

	strategy := o.resolveStrategy(src)
	o.logger.Info("Transcription attempt starting",
		slog.String("file", src.Name()),
		slog.Int64("size_bytes", src.Size()),
		slog.String("strategy", strategy.String()),
		slog.Bool("timestamped", opts.Timestamped),
	)

	text, err := o.scheduler.Run(ctx, progress, func(ctx context.Context) (string, error) {
		return o.runStrategy(ctx, strategy, src, opts, progress)
	})
	if err != nil {
		o.logger.Error("Transcription attempt failed",
			slog.String("file", src.Name()),
			slog.String("strategy", strategy.String()),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	progress.Report(100, "done")
	return text, nil
}

// validate rejects inputs that can never succeed before any network or
// decode work happens.
func (o *Orchestrator) validate(src source.Source) error {
	if src == nil {
		return Errorf(KindInput, "no audio source provided")
	}

	if src.Size() <= 0 {
		return Errorf(KindInput, "audio file %q has zero or unknown size", src.Name())
	}

	if src.Size() > o.config.HardMaxBytes {
		return Errorf(KindInput, "audio file %q is %d bytes, above the %d byte limit", src.Name(), src.Size(), o.config.HardMaxBytes)
	}

	if _, ok := source.ContentTypeFor(src.Name()); !ok {
		return Errorf(KindInput, "unsupported audio format %q", src.Name())
	}

	return nil
}

// resolveStrategy picks the delivery path once per attempt. The remote
// job protocol is preferred whenever it is available; without it, inputs
// above the direct-upload ceiling go through local chunking.
func (o *Orchestrator) resolveStrategy(src source.Source) Strategy {
	if o.jobs != nil {
		return StrategyRemoteJob
	}

	if src.Size() <= o.config.DirectUploadMaxBytes {
		return StrategyDirect
	}

	return StrategyLocalChunked
}

func (o *Orchestrator) runStrategy(ctx context.Context, strategy Strategy, src source.Source, opts Options, progress ProgressFunc) (string, error) {
	switch strategy {
	case StrategyRemoteJob:
		return o.jobs.RunJob(ctx, src, opts.Timestamped, progress)

	case StrategyDirect:
		data, err := readAll(src)
		if err != nil {
			return "", Errorf(KindInput, "failed to read audio file %q: %w", src.Name(), err)
		}

		progress.Report(5, "uploading audio")
		return o.caller.Transcribe(ctx, data, CallOptions{
			Timestamped: opts.Timestamped,
			Filename:    src.Name(),
			ContentType: src.ContentType(),
		}, progress)

	case StrategyLocalChunked:
		data, err := readAll(src)
		if err != nil {
			return "", Errorf(KindInput, "failed to read audio file %q: %w", src.Name(), err)
		}

		return o.local.Transcribe(ctx, data, CallOptions{
			Timestamped: opts.Timestamped,
			Filename:    src.Name(),
			ContentType: src.ContentType(),
		}, progress)

	default:
		return "", Errorf(KindUnknown, "unknown delivery strategy %d", strategy)
	}
}

// readAll reads the full source into memory.
func readAll(src source.Source) ([]byte, error) {
	data := make([]byte, src.Size())
	n, err := src.ReadAt(data, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if int64(n) != src.Size() {
		return nil, fmt.Errorf("short read: got %d of %d bytes", n, src.Size())
	}
	return data, nil
}

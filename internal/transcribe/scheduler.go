package transcribe

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/skypro1111/transcribe-pipeline/internal/metrics"
)

// SchedulerConfig contains the admission and retry parameters.
type SchedulerConfig struct {
	// MaxConcurrent caps in-flight transcription attempts across the
	// process. Defaults to 1 to stay under provider rate limits.
	MaxConcurrent int

	// MaxRetries is the number of additional attempts after a transient
	// failure. Defaults to 2 (backoff 1s, 2s).
	MaxRetries int

	// RetryBaseDelay is the first backoff delay; each retry doubles it.
	RetryBaseDelay time.Duration

	// QueueTick is the interval between queue-wait progress updates.
	QueueTick time.Duration
}

// Scheduler bounds concurrent transcription attempts with a counting
// admission gate and wraps each attempt with bounded retry. One scheduler
// instance is constructed per process and passed to callers explicitly.
type Scheduler struct {
	config    SchedulerConfig
	logger    *slog.Logger
	metrics   *metrics.Metrics
	semaphore chan struct{}

	// Statistics
	totalAttempts  uint64
	successCount   uint64
	failureCount   uint64
	retryCount     uint64
	activeAttempts int

	mu sync.RWMutex
}

// SchedulerStats represents scheduler statistics
type SchedulerStats struct {
	TotalAttempts  uint64  `json:"total_attempts"`
	SuccessCount   uint64  `json:"success_count"`
	FailureCount   uint64  `json:"failure_count"`
	SuccessRate    float64 `json:"success_rate"`
	RetryCount     uint64  `json:"retry_count"`
	ActiveAttempts int     `json:"active_attempts"`
}

// NewScheduler creates a scheduler with defaults applied.
func NewScheduler(config SchedulerConfig, logger *slog.Logger, m *metrics.Metrics) *Scheduler {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}

	if config.MaxRetries < 0 {
		config.MaxRetries = 2
	}

	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = time.Second
	}

	if config.QueueTick <= 0 {
		config.QueueTick = time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		config:    config,
		logger:    logger,
		metrics:   m,
		semaphore: make(chan struct{}, config.MaxConcurrent),
	}
}

// Run admits one transcription attempt, retrying transient failures with
// exponential backoff. The admission slot is released on every path, and
// callers queued behind the limit receive periodic progress updates.
func (s *Scheduler) Run(ctx context.Context, progress ProgressFunc, attempt func(context.Context) (string, error)) (string, error) {
	queued := time.Now()
	if err := s.acquire(ctx, progress); err != nil {
		return "", err
	}
	defer s.release()

	s.metrics.RecordQueueWait(time.Since(queued).Seconds())
	s.metrics.RecordRequest()
	s.recordAttemptStart()

	started := time.Now()

	var lastErr error
	for try := 0; try <= s.config.MaxRetries; try++ {
		if try > 0 {
			s.recordRetry()
			s.metrics.RecordRetry()

			backoff := s.config.RetryBaseDelay << (try - 1)
			s.logger.Warn("Retrying transcription attempt",
				slog.Int("attempt", try+1),
				slog.Duration("backoff", backoff),
				slog.String("error", lastErr.Error()),
			)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				s.recordFailure()
				s.metrics.RecordFailure(time.Since(started).Seconds())
				return "", ctx.Err()
			}
		}

		result, err := attempt(ctx)
		if err == nil {
			s.recordSuccess()
			s.metrics.RecordSuccess(time.Since(started).Seconds())
			return result, nil
		}

		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}

	s.recordFailure()
	s.metrics.RecordFailure(time.Since(started).Seconds())
	return "", lastErr
}

// acquire blocks until an admission slot is free, emitting queue-wait
// progress at each tick.
func (s *Scheduler) acquire(ctx context.Context, progress ProgressFunc) error {
	select {
	case s.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ticker := time.NewTicker(s.config.QueueTick)
	defer ticker.Stop()

	for {
		select {
		case s.semaphore <- struct{}{}:
			return nil
		case <-ticker.C:
			progress.Report(0, "waiting in queue…")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Scheduler) release() {
	<-s.semaphore

	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeAttempts--
	s.metrics.SetActiveRequests(s.activeAttempts)
}

func (s *Scheduler) recordAttemptStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalAttempts++
	s.activeAttempts++
	s.metrics.SetActiveRequests(s.activeAttempts)
}

func (s *Scheduler) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successCount++
}

func (s *Scheduler) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureCount++
}

func (s *Scheduler) recordRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retryCount++
}

// GetStats returns current scheduler statistics
func (s *Scheduler) GetStats() SchedulerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	successRate := float64(0)
	if s.totalAttempts > 0 {
		successRate = float64(s.successCount) / float64(s.totalAttempts) * 100
	}

	return SchedulerStats{
		TotalAttempts:  s.totalAttempts,
		SuccessCount:   s.successCount,
		FailureCount:   s.failureCount,
		SuccessRate:    successRate,
		RetryCount:     s.retryCount,
		ActiveAttempts: s.activeAttempts,
	}
}

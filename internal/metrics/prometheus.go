package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the transcription pipeline.
// A nil *Metrics is valid; all Record methods become no-ops, so library
// components can run without a registry.
type Metrics struct {
	// Remote job metrics
	JobsCreated   prometheus.Counter
	JobsSucceeded prometheus.Counter
	JobsFailed    prometheus.Counter
	JobsAborted   prometheus.Counter
	PartsUploaded prometheus.Counter
	PartSize      prometheus.Histogram
	PollCycles    prometheus.Counter
	JobKicks      prometheus.Counter

	// Local chunking metrics
	ChunksSplit prometheus.Counter
	ChunkSize   prometheus.Histogram

	// Transcription request metrics
	TranscriptionRequests  prometheus.Counter
	TranscriptionSuccesses prometheus.Counter
	TranscriptionFailures  prometheus.Counter
	TranscriptionRetries   prometheus.Counter
	TranscriptionDuration  prometheus.Histogram

	// Scheduler metrics
	ActiveRequests prometheus.Gauge
	QueueWait      prometheus.Histogram
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Remote job metrics
		JobsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_jobs_created_total",
			Help: "Total number of remote transcription jobs created",
		}),
		JobsSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_jobs_succeeded_total",
			Help: "Total number of remote jobs that reached succeeded",
		}),
		JobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_jobs_failed_total",
			Help: "Total number of remote jobs that failed or expired",
		}),
		JobsAborted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_jobs_aborted_total",
			Help: "Total number of remote jobs aborted after upload errors",
		}),
		PartsUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_parts_uploaded_total",
			Help: "Total number of upload parts transferred",
		}),
		PartSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "transcribe_part_size_bytes",
			Help:    "Size of uploaded parts in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 2, 10), // 64KB to ~32MB
		}),
		PollCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_poll_cycles_total",
			Help: "Total number of job status polls issued",
		}),
		JobKicks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_job_kicks_total",
			Help: "Total number of keepalive start calls during polling",
		}),

		// Local chunking metrics
		ChunksSplit: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_chunks_split_total",
			Help: "Total number of audio chunks produced by the splitter",
		}),
		ChunkSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "transcribe_chunk_size_bytes",
			Help:    "Encoded size of audio chunks in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 2, 10), // 64KB to ~32MB
		}),

		// Transcription request metrics
		TranscriptionRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_requests_total",
			Help: "Total number of transcription attempts admitted",
		}),
		TranscriptionSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_successes_total",
			Help: "Total number of successful transcription attempts",
		}),
		TranscriptionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_failures_total",
			Help: "Total number of failed transcription attempts",
		}),
		TranscriptionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transcribe_retries_total",
			Help: "Total number of transcription attempt retries",
		}),
		TranscriptionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "transcribe_attempt_duration_seconds",
			Help:    "Duration of transcription attempts",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~34 minutes
		}),

		// Scheduler metrics
		ActiveRequests: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "transcribe_active_requests",
			Help: "Current number of in-flight transcription attempts",
		}),
		QueueWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "transcribe_queue_wait_seconds",
			Help:    "Time attempts spend waiting for an admission slot",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1.7 minutes
		}),
	}
}

// RecordJobCreated increments the jobs created counter
func (m *Metrics) RecordJobCreated() {
	if m == nil {
		return
	}
	m.JobsCreated.Inc()
}

// RecordJobSucceeded increments the jobs succeeded counter
func (m *Metrics) RecordJobSucceeded() {
	if m == nil {
		return
	}
	m.JobsSucceeded.Inc()
}

// RecordJobFailed increments the jobs failed counter
func (m *Metrics) RecordJobFailed() {
	if m == nil {
		return
	}
	m.JobsFailed.Inc()
}

// RecordJobAborted increments the jobs aborted counter
func (m *Metrics) RecordJobAborted() {
	if m == nil {
		return
	}
	m.JobsAborted.Inc()
}

// RecordPartUploaded records one transferred upload part
func (m *Metrics) RecordPartUploaded(sizeBytes int) {
	if m == nil {
		return
	}
	m.PartsUploaded.Inc()
	m.PartSize.Observe(float64(sizeBytes))
}

// RecordPollCycle increments the poll cycles counter
func (m *Metrics) RecordPollCycle() {
	if m == nil {
		return
	}
	m.PollCycles.Inc()
}

// RecordJobKick increments the keepalive kick counter
func (m *Metrics) RecordJobKick() {
	if m == nil {
		return
	}
	m.JobKicks.Inc()
}

// RecordChunkSplit records one locally produced audio chunk
func (m *Metrics) RecordChunkSplit(sizeBytes int) {
	if m == nil {
		return
	}
	m.ChunksSplit.Inc()
	m.ChunkSize.Observe(float64(sizeBytes))
}

// RecordRequest increments the admitted attempts counter
func (m *Metrics) RecordRequest() {
	if m == nil {
		return
	}
	m.TranscriptionRequests.Inc()
}

// RecordSuccess records a successful attempt and its duration
func (m *Metrics) RecordSuccess(durationSeconds float64) {
	if m == nil {
		return
	}
	m.TranscriptionSuccesses.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordFailure records a failed attempt and its duration
func (m *Metrics) RecordFailure(durationSeconds float64) {
	if m == nil {
		return
	}
	m.TranscriptionFailures.Inc()
	m.TranscriptionDuration.Observe(durationSeconds)
}

// RecordRetry increments the retry counter
func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.TranscriptionRetries.Inc()
}

// SetActiveRequests sets the current in-flight attempt gauge
func (m *Metrics) SetActiveRequests(count int) {
	if m == nil {
		return
	}
	m.ActiveRequests.Set(float64(count))
}

// RecordQueueWait records how long an attempt waited for admission
func (m *Metrics) RecordQueueWait(seconds float64) {
	if m == nil {
		return
	}
	m.QueueWait.Observe(seconds)
}

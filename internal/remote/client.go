package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/skypro1111/transcribe-pipeline/internal/metrics"
	"github.com/skypro1111/transcribe-pipeline/internal/source"
	"github.com/skypro1111/transcribe-pipeline/internal/transcribe"
	"github.com/skypro1111/transcribe-pipeline/internal/transcript"
)

// Config contains the job protocol client configuration.
type Config struct {
	BaseURL      string
	APIKey       string
	HTTPTimeout  time.Duration // per-request bound, not the whole job
	PollInterval time.Duration // status fetch cadence
	KickInterval time.Duration // keepalive start cadence while polling
	PollBudget   time.Duration // wall-clock bound on the polling phase
}

// Client implements the chunked-upload + job-polling protocol for a
// single file: create, upload parts sequentially, complete, start, poll,
// resolve. Part upload failures abort the job server-side before the
// error surfaces; orphaned parts are never silently left behind.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// partPlan is the client-side projection of a created job.
type partPlan struct {
	ID                 string
	ProcessingStrategy string
	PartSizeBytes      int64
	TotalParts         int
}

// NewClient creates a job protocol client with defaults applied.
func NewClient(config Config, logger *slog.Logger, m *metrics.Metrics) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = 2 * time.Minute
	}

	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}

	if config.KickInterval <= 0 {
		config.KickInterval = 60 * time.Second
	}

	if config.PollBudget <= 0 {
		config.PollBudget = 30 * time.Minute
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.HTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:  logger,
		metrics: m,
	}, nil
}

// RunJob drives the whole protocol for one file and returns the final
// transcript text.
func (c *Client) RunJob(ctx context.Context, src source.Source, timestamped bool, progress transcribe.ProgressFunc) (string, error) {
	progress.Report(2, "creating transcription job")

	plan, err := c.createJob(ctx, src, timestamped)
	if err != nil {
		return "", err
	}

	c.logger.Info("Transcription job created",
		slog.String("job_id", plan.ID),
		slog.String("processing_strategy", plan.ProcessingStrategy),
		slog.Int64("part_size_bytes", plan.PartSizeBytes),
		slog.Int("total_parts", plan.TotalParts),
	)
	c.metrics.RecordJobCreated()

	parts, err := c.uploadParts(ctx, plan, src, progress)
	if err != nil {
		c.abortJob(plan.ID)
		return "", err
	}

	progress.Report(68, "completing upload")
	if err := c.completeUpload(ctx, plan.ID, parts); err != nil {
		c.abortJob(plan.ID)
		return "", err
	}

	progress.Report(72, "requesting processing")
	inline, started, err := c.startJob(ctx, plan.ID, timestamped)
	if err != nil {
		c.abortJob(plan.ID)
		return "", err
	}
	if !started {
		// Small inputs come back inline on the start call itself.
		c.metrics.RecordJobSucceeded()
		return inline, nil
	}

	return c.poll(ctx, plan.ID, timestamped, progress)
}

// createJob registers the upload and validates the server's part plan
// against the file size. An unusable plan is a fatal protocol error.
func (c *Client) createJob(ctx context.Context, src source.Source, timestamped bool) (*partPlan, error) {
	body, err := c.doJSON(ctx, http.MethodPost, c.config.BaseURL+"/jobs", createJobRequest{
		Filename:      src.Name(),
		ContentType:   src.ContentType(),
		ContentLength: src.Size(),
		Timestamped:   timestamped,
	})
	if err != nil {
		return nil, err
	}

	var created createJobResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, transcribe.Errorf(transcribe.KindProtocol, "failed to parse create job response: %w", err)
	}

	if created.ID == "" {
		return nil, transcribe.Errorf(transcribe.KindProtocol, "create job response missing job id")
	}

	partSize := created.Upload.PartSizeBytes
	totalParts := created.Upload.TotalParts
	if partSize <= 0 || totalParts <= 0 {
		return nil, transcribe.Errorf(transcribe.KindProtocol, "invalid part plan: partSizeBytes=%d totalParts=%d", partSize, totalParts)
	}

	// The plan must cover the file exactly: no byte unreachable, no
	// trailing part with nothing to carry.
	size := src.Size()
	if int64(totalParts)*partSize < size || int64(totalParts-1)*partSize >= size {
		return nil, transcribe.Errorf(transcribe.KindProtocol, "part plan does not cover file: %d parts of %d bytes for %d bytes", totalParts, partSize, size)
	}

	return &partPlan{
		ID:                 created.ID,
		ProcessingStrategy: created.ProcessingStrategy,
		PartSizeBytes:      partSize,
		TotalParts:         totalParts,
	}, nil
}

// uploadParts transfers parts 1..totalParts strictly in order. A short
// read or a missing integrity token is fatal for the attempt.
func (c *Client) uploadParts(ctx context.Context, plan *partPlan, src source.Source, progress transcribe.ProgressFunc) ([]PartRef, error) {
	parts := make([]PartRef, 0, plan.TotalParts)

	for n := 1; n <= plan.TotalParts; n++ {
		progress.Report(5+60*(n-1)/plan.TotalParts, fmt.Sprintf("uploading part %d/%d", n, plan.TotalParts))

		url, err := c.signPartURL(ctx, plan.ID, n)
		if err != nil {
			return nil, err
		}

		offset := int64(n-1) * plan.PartSizeBytes
		length := plan.PartSizeBytes
		if remaining := src.Size() - offset; remaining < length {
			length = remaining
		}

		buf := make([]byte, length)
		read, err := src.ReadAt(buf, offset)
		if int64(read) < length {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return nil, transcribe.Errorf(transcribe.KindProtocol, "short read on part %d: got %d of %d bytes: %w", n, read, length, err)
		}

		etag, err := c.putPart(ctx, url, buf)
		if err != nil {
			return nil, err
		}
		if etag == "" {
			return nil, transcribe.Errorf(transcribe.KindProtocol, "part %d upload returned no integrity token", n)
		}

		c.metrics.RecordPartUploaded(len(buf))
		parts = append(parts, PartRef{PartNumber: n, ETag: etag})
	}

	progress.Report(65, "upload complete")
	return parts, nil
}

// signPartURL requests the signed upload URL for one part.
func (c *Client) signPartURL(ctx context.Context, jobID string, partNumber int) (string, error) {
	url := fmt.Sprintf("%s/jobs/%s/upload/part-url?partNumber=%d", c.config.BaseURL, jobID, partNumber)
	body, err := c.doJSON(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	var signed partURLResponse
	if err := json.Unmarshal(body, &signed); err != nil {
		return "", transcribe.Errorf(transcribe.KindProtocol, "failed to parse part URL response: %w", err)
	}

	if signed.Part.URL == "" {
		return "", transcribe.Errorf(transcribe.KindProtocol, "part %d response missing upload URL", partNumber)
	}

	return signed.Part.URL, nil
}

// putPart uploads raw bytes to a signed URL and returns the integrity
// token from the response headers. Signed URLs carry no API key.
func (c *Client) putPart(ctx context.Context, url string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", transcribe.Errorf(transcribe.KindProtocol, "failed to create part upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp.StatusCode, respBody)
	}

	return strings.Trim(resp.Header.Get("ETag"), `"`), nil
}

// completeUpload submits the ordered part list.
func (c *Client) completeUpload(ctx context.Context, jobID string, parts []PartRef) error {
	_, err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/jobs/%s/upload/complete", c.config.BaseURL, jobID), completeUploadRequest{Parts: parts})
	return err
}

// startJob asks the server to begin processing. It returns the inline
// result when the server finished synchronously, or started=true when
// processing continues asynchronously.
func (c *Client) startJob(ctx context.Context, jobID string, timestamped bool) (inline string, started bool, err error) {
	body, err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/jobs/%s/start", c.config.BaseURL, jobID), nil)
	if err != nil {
		return "", false, err
	}

	var reply startResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &reply); err != nil {
			return "", false, transcribe.Errorf(transcribe.KindProtocol, "failed to parse start response: %w", err)
		}
	}

	if timestamped && len(reply.Segments) > 0 {
		return transcript.SegmentsToSRT(reply.Segments), false, nil
	}
	if reply.Text != "" {
		return reply.Text, false, nil
	}

	return "", true, nil
}

// abortJob explicitly abandons parts already uploaded for a failed
// attempt. Best effort: the job may already be gone server-side.
func (c *Client) abortJob(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/jobs/%s/upload/abort", c.config.BaseURL, jobID), nil); err != nil {
		c.logger.Warn("Failed to abort transcription job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return
	}

	c.metrics.RecordJobAborted()
	c.logger.Info("Transcription job aborted", slog.String("job_id", jobID))
}

// poll fetches job status at a fixed interval until the job is terminal,
// re-issuing start as a keepalive kick in case the first signal was lost.
// The poll budget bounds the phase; exceeding it is a timeout error.
func (c *Client) poll(ctx context.Context, jobID string, timestamped bool, progress transcribe.ProgressFunc) (string, error) {
	deadline := time.Now().Add(c.config.PollBudget)

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	kick := time.NewTicker(c.config.KickInterval)
	defer kick.Stop()

	progress.Report(75, "waiting for processing")

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-kick.C:
			c.metrics.RecordJobKick()
			inline, started, err := c.startJob(ctx, jobID, timestamped)
			if err != nil {
				c.logger.Warn("Keepalive start failed",
					slog.String("job_id", jobID),
					slog.String("error", err.Error()),
				)
				continue
			}
			if !started {
				c.metrics.RecordJobSucceeded()
				return inline, nil
			}

		case <-ticker.C:
			if time.Now().After(deadline) {
				c.metrics.RecordJobFailed()
				return "", transcribe.Errorf(transcribe.KindTimeout, "job %s still running after %s", jobID, c.config.PollBudget)
			}

			c.metrics.RecordPollCycle()
			st, err := c.fetchStatus(ctx, jobID)
			if err != nil {
				// A flaky poll does not kill the job; the next tick
				// retries. Protocol errors are fatal.
				if transcribe.KindOf(err) == transcribe.KindTransient {
					c.logger.Warn("Status poll failed",
						slog.String("job_id", jobID),
						slog.String("error", err.Error()),
					)
					continue
				}
				return "", err
			}

			status, err := ParseStatus(st.Job.Status)
			if err != nil {
				return "", transcribe.Errorf(transcribe.KindProtocol, "%w", err)
			}

			switch status {
			case StatusSucceeded:
				progress.Report(99, "assembling transcript")
				text, err := c.resolve(ctx, st, timestamped)
				if err != nil {
					c.metrics.RecordJobFailed()
					return "", err
				}
				c.metrics.RecordJobSucceeded()
				return text, nil

			case StatusFailed:
				c.metrics.RecordJobFailed()
				msg := st.Job.ErrorMessage
				if msg == "" {
					msg = "the transcription service reported a failure"
				}
				return "", transcribe.Errorf(transcribe.KindJobFailed, "%s", msg)

			case StatusExpired:
				c.metrics.RecordJobFailed()
				msg := st.Job.ErrorMessage
				if msg == "" {
					msg = "the transcription job expired before completing"
				}
				return "", transcribe.Errorf(transcribe.KindJobExpired, "%s", msg)

			default:
				c.reportPollProgress(st, progress)
			}
		}
	}
}

// reportPollProgress maps the job's stage and chunk counts into the
// polling percentage bands.
func (c *Client) reportPollProgress(st *jobStatusResponse, progress transcribe.ProgressFunc) {
	stage := st.Job.Stage
	if stage == "" {
		stage = st.Progress.Stage
	}

	total := st.Progress.ChunksTotal
	done := st.Progress.ChunksSucceeded
	frac := 0
	if total > 0 {
		frac = done * 100 / total
	}

	switch Stage(stage) {
	case StageChunking:
		progress.Report(transcribe.Band(75, 79, frac), fmt.Sprintf("chunked %d/%d", done, total))
	case StageTranscribing:
		progress.Report(transcribe.Band(80, 98, frac), fmt.Sprintf("transcribed %d/%d", done, total))
	case StageAssembling:
		progress.Report(99, "assembling transcript")
	default:
		progress.Report(75, "waiting for processing")
	}
}

// resolve fetches the final transcript, preferring inline text over
// signed URL fetches. Timestamped requests prefer the structured JSON
// transcript rendered as SRT.
func (c *Client) resolve(ctx context.Context, st *jobStatusResponse, timestamped bool) (string, error) {
	if st.Transcript.Text != "" {
		return st.Transcript.Text, nil
	}

	if timestamped && st.Transcript.JSONURL != "" {
		body, err := c.fetchURL(ctx, st.Transcript.JSONURL)
		if err != nil {
			return "", err
		}

		var parsed transcriptJSON
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", transcribe.Errorf(transcribe.KindProtocol, "failed to parse transcript JSON: %w", err)
		}

		if len(parsed.Segments) > 0 {
			return transcript.SegmentsToSRT(parsed.Segments), nil
		}
		return parsed.Text, nil
	}

	if st.Transcript.TextURL != "" {
		body, err := c.fetchURL(ctx, st.Transcript.TextURL)
		if err != nil {
			return "", err
		}
		return string(body), nil
	}

	return "", transcribe.Errorf(transcribe.KindProtocol, "job succeeded but no transcript was provided")
}

// fetchStatus polls the job resource.
func (c *Client) fetchStatus(ctx context.Context, jobID string) (*jobStatusResponse, error) {
	body, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/jobs/%s", c.config.BaseURL, jobID), nil)
	if err != nil {
		return nil, err
	}

	var st jobStatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, transcribe.Errorf(transcribe.KindProtocol, "failed to parse job status: %w", err)
	}

	return &st, nil
}

// fetchURL downloads a signed transcript URL. No API key: the URL itself
// carries the authorization.
func (c *Client) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transcribe.Errorf(transcribe.KindProtocol, "failed to create transcript request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}

	return body, nil
}

// doJSON performs one authorized API request and returns the response
// body. Non-2xx statuses come back as typed errors.
func (c *Client) doJSON(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, transcribe.Errorf(transcribe.KindProtocol, "failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, transcribe.Errorf(transcribe.KindProtocol, "failed to create HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}

	return body, nil
}

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/skypro1111/transcribe-pipeline/internal/transcribe"
	"github.com/skypro1111/transcribe-pipeline/internal/transcript"
)

// DirectConfig contains the single-shot transcription client
// configuration.
type DirectConfig struct {
	Endpoint    string
	APIKey      string
	Timeout     time.Duration
	Language    string
	Model       string
	Prompt      string
	Temperature float32
}

// DirectClient sends one multipart transcription request per call. It is
// the provider seam shared by the direct strategy and the local chunked
// pipeline.
type DirectClient struct {
	config     DirectConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDirectClient creates a single-shot transcription client.
func NewDirectClient(config DirectConfig, logger *slog.Logger) (*DirectClient, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &DirectClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Transcribe sends the audio bytes as one multipart POST and returns the
// transcript text. With timestamps requested, a structured segment
// response is rendered as SRT.
func (c *DirectClient) Transcribe(ctx context.Context, audio []byte, opts transcribe.CallOptions, progress transcribe.ProgressFunc) (string, error) {
	if len(audio) == 0 {
		return "", transcribe.Errorf(transcribe.KindInput, "cannot transcribe empty audio")
	}

	body, contentType, err := c.createMultipartRequest(audio, opts)
	if err != nil {
		return "", transcribe.Errorf(transcribe.KindProtocol, "failed to create multipart request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, body)
	if err != nil {
		return "", transcribe.Errorf(transcribe.KindProtocol, "failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Accept", "application/json, text/plain")

	progress.Report(10, "uploading audio")

	resp, err := c.httpClient.Do(httpReq)
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

	progress.Report(90, "processing response")

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		return string(respBody), nil
	}

	var parsed directResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", transcribe.Errorf(transcribe.KindProtocol, "failed to parse response JSON: %w", err)
	}

	if opts.Timestamped && len(parsed.Segments) > 0 {
		return transcript.SegmentsToSRT(parsed.Segments), nil
	}

	return parsed.Text, nil
}

// createMultipartRequest builds the multipart/form-data request body with
// the audio file and the transcription parameters.
func (c *DirectClient) createMultipartRequest(audio []byte, opts transcribe.CallOptions) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := opts.Filename
	if filename == "" {
		filename = "audio.wav"
	}

	fileWriter, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := fileWriter.Write(audio); err != nil {
		return nil, "", fmt.Errorf("failed to write audio data: %w", err)
	}

	fields := map[string]string{
		"response_format": "json",
		"timestamped":     fmt.Sprintf("%t", opts.Timestamped),
	}

	if opts.ContentType != "" {
		fields["content_type"] = opts.ContentType
	}
	if c.config.Language != "" {
		fields["language"] = c.config.Language
	}
	if c.config.Model != "" {
		fields["model"] = c.config.Model
	}
	if c.config.Prompt != "" {
		fields["prompt"] = c.config.Prompt
	}
	if c.config.Temperature > 0 {
		fields["temperature"] = fmt.Sprintf("%.2f", c.config.Temperature)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

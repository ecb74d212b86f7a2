package remote

import "github.com/skypro1111/transcribe-pipeline/internal/transcript"

// PartRef pairs an upload part number with the integrity token returned
// by the storage endpoint. The ordered, complete list is required before
// an upload can be completed.
type PartRef struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"etag"`
}

// createJobRequest is the body of POST /jobs.
type createJobRequest struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
	Timestamped   bool   `json:"timestamped"`
}

// createJobResponse is the reply to POST /jobs.
type createJobResponse struct {
	ID                 string `json:"id"`
	ProcessingStrategy string `json:"processingStrategy"`
	Upload             struct {
		PartSizeBytes int64 `json:"partSizeBytes"`
		TotalParts    int   `json:"totalParts"`
	} `json:"upload"`
}

// partURLResponse is the reply to GET /jobs/{id}/upload/part-url.
type partURLResponse struct {
	Part struct {
		URL string `json:"url"`
	} `json:"part"`
}

// completeUploadRequest is the body of POST /jobs/{id}/upload/complete.
type completeUploadRequest struct {
	Parts []PartRef `json:"parts"`
}

// startResponse is the reply to POST /jobs/{id}/start. A 200 carries the
// result inline for small inputs; a 202 acknowledges async processing.
type startResponse struct {
	Text     string               `json:"text,omitempty"`
	Segments []transcript.Segment `json:"segments,omitempty"`
}

// jobStatusResponse is the reply to GET /jobs/{id}.
type jobStatusResponse struct {
	Job struct {
		Status       string `json:"status"`
		Stage        string `json:"stage,omitempty"`
		ErrorMessage string `json:"errorMessage,omitempty"`
		ChunkCount   int    `json:"chunkCount,omitempty"`
	} `json:"job"`
	Progress struct {
		Stage           string `json:"stage,omitempty"`
		ChunksTotal     int    `json:"chunksTotal,omitempty"`
		ChunksSucceeded int    `json:"chunksSucceeded,omitempty"`
	} `json:"progress"`
	Transcript struct {
		Text    string `json:"text,omitempty"`
		TextURL string `json:"textUrl,omitempty"`
		JSONURL string `json:"jsonUrl,omitempty"`
	} `json:"transcript"`
}

// transcriptJSON is the structured transcript fetched from jsonUrl.
type transcriptJSON struct {
	Text     string               `json:"text,omitempty"`
	Segments []transcript.Segment `json:"segments,omitempty"`
}

// directResponse is the reply to the single-shot transcription call.
type directResponse struct {
	Text     string               `json:"text,omitempty"`
	Segments []transcript.Segment `json:"segments,omitempty"`
}

package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skypro1111/transcribe-pipeline/internal/transcribe"
	"github.com/skypro1111/transcribe-pipeline/internal/transcript"
)

func newTestDirectClient(t *testing.T, config DirectConfig) *DirectClient {
	t.Helper()

	if config.APIKey == "" {
		config.APIKey = "test-key"
	}

	c, err := NewDirectClient(config, nil)
	if err != nil {
		t.Fatalf("NewDirectClient failed: %v", err)
	}
	return c
}

func TestDirectTranscribeJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Missing file field: %v", err)
			return
		}
		file.Close()

		if header.Filename != "clip.mp3" {
			t.Errorf("Unexpected filename %q", header.Filename)
		}

		if got := r.FormValue("response_format"); got != "json" {
			t.Errorf("response_format = %q", got)
		}
		if got := r.FormValue("timestamped"); got != "false" {
			t.Errorf("timestamped = %q", got)
		}
		if got := r.FormValue("language"); got != "uk" {
			t.Errorf("language = %q", got)
		}
		if got := r.FormValue("content_type"); got != "audio/mpeg" {
			t.Errorf("content_type = %q", got)
		}

		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}

		json.NewEncoder(w).Encode(directResponse{Text: "recognized speech"})
	}))
	defer srv.Close()

	c := newTestDirectClient(t, DirectConfig{Endpoint: srv.URL, Language: "uk"})

	text, err := c.Transcribe(context.Background(), []byte("fake audio"), transcribe.CallOptions{
		Filename:    "clip.mp3",
		ContentType: "audio/mpeg",
	}, nil)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "recognized speech" {
		t.Errorf("Unexpected transcript: %q", text)
	}
}

func TestDirectTranscribePlainTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("plain transcript"))
	}))
	defer srv.Close()

	c := newTestDirectClient(t, DirectConfig{Endpoint: srv.URL})

	text, err := c.Transcribe(context.Background(), []byte("fake audio"), transcribe.CallOptions{}, nil)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "plain transcript" {
		t.Errorf("Unexpected transcript: %q", text)
	}
}

func TestDirectTranscribeTimestampedSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(directResponse{Segments: []transcript.Segment{
			{Start: 0, End: 2, Text: "hello"},
		}})
	}))
	defer srv.Close()

	c := newTestDirectClient(t, DirectConfig{Endpoint: srv.URL})

	text, err := c.Transcribe(context.Background(), []byte("fake audio"), transcribe.CallOptions{Timestamped: true}, nil)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:02,000\nhello"
	if text != want {
		t.Errorf("Unexpected subtitles: %q, want %q", text, want)
	}
}

func TestDirectTranscribeErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		want   transcribe.Kind
	}{
		{http.StatusInternalServerError, transcribe.KindTransient},
		{http.StatusServiceUnavailable, transcribe.KindTransient},
		{http.StatusTooManyRequests, transcribe.KindTransient},
		{http.StatusBadRequest, transcribe.KindProtocol},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte("error detail"))
		}))

		c := newTestDirectClient(t, DirectConfig{Endpoint: srv.URL})
		_, err := c.Transcribe(context.Background(), []byte("fake audio"), transcribe.CallOptions{}, nil)
		if transcribe.KindOf(err) != tc.want {
			t.Errorf("HTTP %d: expected %v, got %v", tc.status, tc.want, transcribe.KindOf(err))
		}

		srv.Close()
	}
}

func TestDirectTranscribeRejectsEmptyAudio(t *testing.T) {
	c := newTestDirectClient(t, DirectConfig{Endpoint: "http://localhost:0"})

	_, err := c.Transcribe(context.Background(), nil, transcribe.CallOptions{}, nil)
	if transcribe.KindOf(err) != transcribe.KindInput {
		t.Errorf("Expected input kind, got %v", transcribe.KindOf(err))
	}
}

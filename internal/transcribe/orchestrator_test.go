package transcribe

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/skypro1111/transcribe-pipeline/internal/audio"
	"github.com/skypro1111/transcribe-pipeline/internal/source"
)

// stubCaller records direct transcription calls and answers from a script.
type stubCaller struct {
	calls   []CallOptions
	payload [][]byte
	respond func(call int, audio []byte) (string, error)
}

func (c *stubCaller) Transcribe(ctx context.Context, data []byte, opts CallOptions, progress ProgressFunc) (string, error) {
	call := len(c.calls)
	c.calls = append(c.calls, opts)
	c.payload = append(c.payload, data)
	if c.respond != nil {
		return c.respond(call, data)
	}
	return "stub transcript", nil
}

// stubJobs records remote job runs.
type stubJobs struct {
	runs   int
	result string
	err    error
}

func (j *stubJobs) RunJob(ctx context.Context, src source.Source, timestamped bool, progress ProgressFunc) (string, error) {
	j.runs++
	return j.result, j.err
}

func newTestOrchestrator(t *testing.T, jobs JobRunner, caller Caller, directMax int64) *Orchestrator {
	t.Helper()

	o, err := NewOrchestrator(OrchestratorConfig{
		DirectUploadMaxBytes: directMax,
		HardMaxBytes:         100 * 1024 * 1024,
		Local: LocalConfig{
			TargetSampleRate: 16000,
			MaxChunkBytes:    4044,
			OverlapSeconds:   0.05,
		},
	}, newTestScheduler(0), jobs, caller, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}
	return o
}

func TestOrchestratorRejectsBadInput(t *testing.T) {
	o := newTestOrchestrator(t, nil, &stubCaller{}, 1024)

	cases := []struct {
		name string
		src  source.Source
	}{
		{"nil source", nil},
		{"empty file", source.NewBytes("empty.wav", nil)},
		{"unsupported extension", source.NewBytes("notes.txt", []byte("hello"))},
	}

	for _, tc := range cases {
		_, err := o.Transcribe(context.Background(), tc.src, Options{}, nil)
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if KindOf(err) != KindInput {
			t.Errorf("%s: expected input kind, got %v", tc.name, KindOf(err))
		}
	}
}

func TestOrchestratorRejectsOversizedInput(t *testing.T) {
	caller := &stubCaller{}
	o, err := NewOrchestrator(OrchestratorConfig{
		DirectUploadMaxBytes: 10,
		HardMaxBytes:         20,
		Local:                LocalConfig{TargetSampleRate: 16000, MaxChunkBytes: 1024},
	}, newTestScheduler(0), nil, caller, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}

	_, err = o.Transcribe(context.Background(), source.NewBytes("big.wav", make([]byte, 21)), Options{}, nil)
	if err == nil {
		t.Fatal("Expected oversize rejection")
	}
	if KindOf(err) != KindInput {
		t.Errorf("Expected input kind, got %v", KindOf(err))
	}
	if len(caller.calls) != 0 {
		t.Error("Oversized input must be rejected before any call")
	}
}

func TestOrchestratorDirectPath(t *testing.T) {
	caller := &stubCaller{respond: func(call int, data []byte) (string, error) {
		return "direct result", nil
	}}
	o := newTestOrchestrator(t, nil, caller, 1024*1024)

	data := []byte("small audio payload")
	text, err := o.Transcribe(context.Background(), source.NewBytes("clip.mp3", data), Options{Timestamped: true}, nil)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "direct result" {
		t.Errorf("Unexpected transcript: %q", text)
	}

	if len(caller.calls) != 1 {
		t.Fatalf("Expected 1 direct call, got %d", len(caller.calls))
	}

	opts := caller.calls[0]
	if !opts.Timestamped || opts.Filename != "clip.mp3" || opts.ContentType != "audio/mpeg" {
		t.Errorf("Unexpected call options: %+v", opts)
	}

	if string(caller.payload[0]) != string(data) {
		t.Error("Direct call did not receive the full payload")
	}
}

func TestOrchestratorPrefersRemoteJobs(t *testing.T) {
	caller := &stubCaller{}
	jobs := &stubJobs{result: "job result"}
	o := newTestOrchestrator(t, jobs, caller, 10)

	// Well above the direct ceiling; the job protocol still wins.
	text, err := o.Transcribe(context.Background(), source.NewBytes("talk.wav", make([]byte, 500)), Options{}, nil)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "job result" {
		t.Errorf("Unexpected transcript: %q", text)
	}

	if jobs.runs != 1 {
		t.Errorf("Expected 1 job run, got %d", jobs.runs)
	}

	if len(caller.calls) != 0 {
		t.Error("Direct caller must not be used when the job protocol is available")
	}
}

func TestOrchestratorLocalChunkedPath(t *testing.T) {
	// One second of 16kHz mono. The 4044-byte chunk budget forces the
	// input through the splitter.
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	wavData, err := audio.EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	caller := &stubCaller{respond: func(call int, data []byte) (string, error) {
		return fmt.Sprintf("segment%04d", call), nil
	}}
	o := newTestOrchestrator(t, nil, caller, 1024)

	var lastPercent int
	progress := ProgressFunc(func(percent int, status string) {
		if percent < lastPercent {
			t.Errorf("Progress went backwards: %d after %d (%s)", percent, lastPercent, status)
		}
		lastPercent = percent
	})

	text, err := o.Transcribe(context.Background(), source.NewBytes("long.wav", wavData), Options{}, progress)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if len(caller.calls) < 2 {
		t.Fatalf("Expected multiple chunk calls, got %d", len(caller.calls))
	}

	// Every chunk transcript appears exactly once, in order.
	lastIdx := -1
	for call := range caller.calls {
		marker := fmt.Sprintf("segment%04d", call)
		if n := strings.Count(text, marker); n != 1 {
			t.Errorf("Marker %s appears %d times", marker, n)
		}
		if idx := strings.Index(text, marker); idx < lastIdx {
			t.Errorf("Marker %s out of order", marker)
		} else {
			lastIdx = idx
		}
	}

	// Chunk uploads carry synthetic WAV filenames, not the input name.
	for i, opts := range caller.calls {
		if opts.Filename != fmt.Sprintf("chunk_%03d.wav", i) {
			t.Errorf("Chunk %d filename %q", i, opts.Filename)
		}
		if opts.ContentType != "audio/wav" {
			t.Errorf("Chunk %d content type %q", i, opts.ContentType)
		}
	}

	if lastPercent != 100 {
		t.Errorf("Expected final progress 100, got %d", lastPercent)
	}
}

func TestOrchestratorLocalChunkedDecodeFailure(t *testing.T) {
	caller := &stubCaller{}
	o := newTestOrchestrator(t, nil, caller, 10)

	_, err := o.Transcribe(context.Background(), source.NewBytes("noise.wav", []byte("definitely not a wav file at all")), Options{}, nil)
	if err == nil {
		t.Fatal("Expected decode failure")
	}

	if KindOf(err) != KindDecode {
		t.Errorf("Expected decode kind, got %v", KindOf(err))
	}

	if len(caller.calls) != 0 {
		t.Error("No chunk calls should happen when decoding fails")
	}
}

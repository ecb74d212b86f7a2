package audio

import "testing"

func TestSplitCoversAllSamples(t *testing.T) {
	// Ten minutes of 16kHz mono against a 5MB chunk ceiling.
	totalSamples := 16000 * 600
	cfg := SplitConfig{
		MaxChunkBytes:  5 * 1024 * 1024,
		OverlapSeconds: 2.0,
		SampleRate:     16000,
	}

	chunks, err := Split(totalSamples, cfg)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks for 10 minutes of audio, got %d", len(chunks))
	}

	if chunks[0].Start != 0 {
		t.Errorf("First chunk must start at 0, got %d", chunks[0].Start)
	}

	if last := chunks[len(chunks)-1]; last.End != totalSamples {
		t.Errorf("Last chunk must end at %d, got %d", totalSamples, last.End)
	}

	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("Chunk %d has index %d", i, c.Index)
		}

		if c.Start >= c.End {
			t.Errorf("Chunk %d has empty range [%d, %d)", i, c.Start, c.End)
		}

		encodedSize := WAVHeaderBytes + (c.End-c.Start)*2
		if encodedSize > cfg.MaxChunkBytes {
			t.Errorf("Chunk %d encodes to %d bytes, exceeds %d", i, encodedSize, cfg.MaxChunkBytes)
		}

		if i == 0 {
			continue
		}

		prev := chunks[i-1]
		if c.Start >= prev.End {
			t.Errorf("Gap between chunk %d (ends %d) and chunk %d (starts %d)", i-1, prev.End, i, c.Start)
		}

		if got := prev.End - c.Start; got != c.OverlapSamples {
			t.Errorf("Chunk %d overlap is %d samples, expected %d", i, got, c.OverlapSamples)
		}
	}
}

func TestSplitSingleChunkForSmallInput(t *testing.T) {
	chunks, err := Split(1000, SplitConfig{
		MaxChunkBytes:  5 * 1024 * 1024,
		OverlapSeconds: 2.0,
		SampleRate:     16000,
	})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}

	if chunks[0].Start != 0 || chunks[0].End != 1000 {
		t.Errorf("Expected chunk [0, 1000), got [%d, %d)", chunks[0].Start, chunks[0].End)
	}
}

func TestSplitCapsOverlap(t *testing.T) {
	// 200-byte budget leaves 78 raw samples, so overlap caps at 7
	// even though 2s at 16kHz would be 32000 samples.
	chunks, err := Split(500, SplitConfig{
		MaxChunkBytes:  200,
		OverlapSeconds: 2.0,
		SampleRate:     16000,
	})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	rawMax := (200 - WAVHeaderBytes) / 2
	overlapCap := rawMax / 10
	for _, c := range chunks {
		if c.OverlapSamples != overlapCap {
			t.Errorf("Chunk %d overlap %d, expected capped %d", c.Index, c.OverlapSamples, overlapCap)
		}
	}
}

func TestSplitRejectsTinyBudget(t *testing.T) {
	if _, err := Split(1000, SplitConfig{MaxChunkBytes: 44, OverlapSeconds: 0, SampleRate: 16000}); err == nil {
		t.Error("Expected error when budget leaves no room for audio")
	}

	if _, err := Split(0, SplitConfig{MaxChunkBytes: 1024, OverlapSeconds: 0, SampleRate: 16000}); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestEncodeChunkAttenuates(t *testing.T) {
	samples := []int16{1000, 2000, -3000, 4000}
	c := Chunk{Index: 0, Start: 0, End: len(samples)}

	wavData, err := EncodeChunk(samples, c, 16000)
	if err != nil {
		t.Fatalf("EncodeChunk failed: %v", err)
	}

	pcm, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	for i, s := range samples {
		expected := int16(float64(s) * 0.8)
		if pcm.Samples[i] != expected {
			t.Errorf("Sample %d: expected %d, got %d", i, expected, pcm.Samples[i])
		}
	}
}

func TestEncodeChunkRejectsBadRange(t *testing.T) {
	samples := []int16{1, 2, 3}

	if _, err := EncodeChunk(samples, Chunk{Start: 0, End: 10}, 16000); err == nil {
		t.Error("Expected error for out-of-range chunk")
	}

	if _, err := EncodeChunk(samples, Chunk{Start: 2, End: 2}, 16000); err == nil {
		t.Error("Expected error for empty chunk range")
	}
}

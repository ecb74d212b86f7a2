package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

// sineWave generates a mono test signal.
func sineWave(sampleRate int, seconds, frequency float64) []int16 {
	numSamples := int(float64(sampleRate) * seconds)
	samples := make([]int16, numSamples)

	for i := 0; i < numSamples; i++ {
		t := float64(i) / float64(sampleRate)
		amplitude := 16383.0 // Half of max int16 to avoid clipping
		samples[i] = int16(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
	return samples
}

func TestEncodeWAV(t *testing.T) {
	sampleRate := 16000
	samples := sineWave(sampleRate, 0.1, 440.0)

	wavData, err := EncodeWAV(samples, sampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	expectedSize := WAVHeaderBytes + len(samples)*2
	if len(wavData) != expectedSize {
		t.Errorf("Expected WAV size %d, got %d", expectedSize, len(wavData))
	}

	if err := ValidateWAV(wavData); err != nil {
		t.Errorf("Generated WAV is invalid: %v", err)
	}

	info, err := GetWAVInfo(wavData)
	if err != nil {
		t.Fatalf("Failed to get WAV info: %v", err)
	}

	if info.SampleRate != uint32(sampleRate) {
		t.Errorf("Expected sample rate %d, got %d", sampleRate, info.SampleRate)
	}

	if info.Channels != 1 {
		t.Errorf("Expected 1 channel, got %d", info.Channels)
	}

	if info.BitsPerSample != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", info.BitsPerSample)
	}

	expectedDuration := float64(len(samples)) / float64(sampleRate)
	if math.Abs(info.Duration-expectedDuration) > 0.001 {
		t.Errorf("Expected duration %.3f, got %.3f", expectedDuration, info.Duration)
	}
}

func TestEncodeWAVRejectsEmptyInput(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); err == nil {
		t.Error("Expected error for empty samples")
	}

	if _, err := EncodeWAV([]int16{1, 2, 3}, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	originalSamples := []int16{100, -200, 300, -400, 500}
	sampleRate := 16000

	wavData, err := EncodeWAV(originalSamples, sampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	pcm, err := DecodeWAV(wavData)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if pcm.SampleRate != sampleRate {
		t.Errorf("Expected sample rate %d, got %d", sampleRate, pcm.SampleRate)
	}

	if pcm.Channels != 1 {
		t.Errorf("Expected mono output, got %d channels", pcm.Channels)
	}

	if len(pcm.Samples) != len(originalSamples) {
		t.Fatalf("Expected %d samples, got %d", len(originalSamples), len(pcm.Samples))
	}

	for i, s := range originalSamples {
		if pcm.Samples[i] != s {
			t.Errorf("Sample %d: expected %d, got %d", i, s, pcm.Samples[i])
		}
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"too short", []byte("RIFF")},
		{"not RIFF", make([]byte, 64)},
	}

	for _, tc := range cases {
		if _, err := DecodeWAV(tc.data); err == nil {
			t.Errorf("%s: expected decode error", tc.name)
		}
	}
}

func TestDecodeWAVRejectsOversizedDataClaim(t *testing.T) {
	wavData, err := EncodeWAV([]int16{1, 2, 3, 4}, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	// Claim far more payload than the file carries. Decoding must fail
	// without allocating for the claimed size.
	binary.LittleEndian.PutUint32(wavData[40:44], 1<<31)

	if _, err := DecodeWAV(wavData); err == nil {
		t.Error("Expected error for data size exceeding the actual payload")
	}
}

func TestGetWAVDuration(t *testing.T) {
	sampleRate := 16000
	samples := sineWave(sampleRate, 2.0, 440.0)

	wavData, err := EncodeWAV(samples, sampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	duration, err := GetWAVDuration(wavData)
	if err != nil {
		t.Fatalf("GetWAVDuration failed: %v", err)
	}

	if math.Abs(duration-2.0) > 0.001 {
		t.Errorf("Expected duration 2.0s, got %.3f", duration)
	}
}

package audio

import "fmt"

const (
	bytesPerSample = 2

	// Attenuation applied to chunk samples before encoding to reduce
	// clipping risk at chunk boundaries.
	chunkAttenuation = 0.8

	// Overlap is capped at a tenth of a chunk so tiny chunk budgets do
	// not degenerate into overlap-only payloads.
	overlapCapDivisor = 10
)

// Chunk describes one byte-budget-constrained slice of a PCM buffer.
// The sample range [Start, End) includes OverlapSamples shared with the
// following chunk.
type Chunk struct {
	Index          int
	Start          int // inclusive sample offset
	End            int // exclusive sample offset
	OverlapSamples int
}

// SamplesIn returns the chunk's slice of the full sample buffer.
func (c Chunk) SamplesIn(samples []int16) []int16 {
	return samples[c.Start:c.End]
}

// SplitConfig contains the chunk splitting parameters.
type SplitConfig struct {
	MaxChunkBytes  int
	OverlapSeconds float64
	SampleRate     int
}

// Split cuts a mono PCM buffer of totalSamples samples into overlapping
// chunks whose encoded WAV size stays within MaxChunkBytes. Consecutive
// chunks share OverlapSeconds of audio (capped at 10% of a chunk).
func Split(totalSamples int, cfg SplitConfig) ([]Chunk, error) {
	if totalSamples <= 0 {
		return nil, fmt.Errorf("cannot split empty audio")
	}

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}

	rawMaxSamples := (cfg.MaxChunkBytes - WAVHeaderBytes) / bytesPerSample
	if rawMaxSamples <= 0 {
		return nil, fmt.Errorf("chunk size too small: %d bytes leaves no room for audio", cfg.MaxChunkBytes)
	}

	overlapSamples := int(cfg.OverlapSeconds * float64(cfg.SampleRate))
	if overlapCap := rawMaxSamples / overlapCapDivisor; overlapSamples > overlapCap {
		overlapSamples = overlapCap
	}

	payloadSamples := rawMaxSamples - overlapSamples
	if payloadSamples <= 0 {
		return nil, fmt.Errorf("chunk size too small: overlap consumes the whole %d-sample budget", rawMaxSamples)
	}

	var chunks []Chunk
	for start := 0; start < totalSamples; start += payloadSamples {
		end := start + payloadSamples + overlapSamples
		if end > totalSamples {
			end = totalSamples
		}

		chunks = append(chunks, Chunk{
			Index:          len(chunks),
			Start:          start,
			End:            end,
			OverlapSamples: overlapSamples,
		})
	}

	return chunks, nil
}

// EncodeChunk encodes a chunk's samples as 16-bit mono WAV with the fixed
// attenuation factor applied.
func EncodeChunk(samples []int16, c Chunk, sampleRate int) ([]byte, error) {
	if c.Start < 0 || c.End > len(samples) || c.Start >= c.End {
		return nil, fmt.Errorf("invalid chunk range: start=%d, end=%d, available=%d", c.Start, c.End, len(samples))
	}

	slice := c.SamplesIn(samples)
	attenuated := make([]int16, len(slice))
	for i, s := range slice {
		attenuated[i] = int16(float64(s) * chunkAttenuation)
	}

	return EncodeWAV(attenuated, sampleRate)
}

package transcribe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skypro1111/transcribe-pipeline/internal/audio"
	"github.com/skypro1111/transcribe-pipeline/internal/metrics"
	"github.com/skypro1111/transcribe-pipeline/internal/transcript"
)

// Progress band for the per-chunk transcription phase of the local
// pipeline. Decode/resample/split happen below chunkBandLow.
const (
	chunkBandLow  = 20
	chunkBandHigh = 98
)

// LocalConfig contains the local chunked pipeline parameters.
type LocalConfig struct {
	TargetSampleRate int
	MaxChunkBytes    int
	OverlapSeconds   float64
}

// LocalPipeline splits audio that cannot be delivered in one request into
// overlapping chunks, transcribes each chunk sequentially through a
// direct call, and merges the per-chunk transcripts.
type LocalPipeline struct {
	config  LocalConfig
	caller  Caller
	decoder audio.Decoder
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewLocalPipeline creates a local chunked pipeline. A nil decoder falls
// back to the built-in WAV decoder.
func NewLocalPipeline(config LocalConfig, caller Caller, decoder audio.Decoder, logger *slog.Logger, m *metrics.Metrics) (*LocalPipeline, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller cannot be nil")
	}

	if config.TargetSampleRate <= 0 {
		return nil, fmt.Errorf("target sample rate must be positive, got %d", config.TargetSampleRate)
	}

	if config.MaxChunkBytes <= audio.WAVHeaderBytes {
		return nil, fmt.Errorf("max chunk bytes must exceed the WAV header size, got %d", config.MaxChunkBytes)
	}

	if decoder == nil {
		decoder = audio.WAVDecoder{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &LocalPipeline{
		config:  config,
		caller:  caller,
		decoder: decoder,
		logger:  logger,
		metrics: m,
	}, nil
}

// Transcribe runs the full local pipeline: decode, resample, downmix,
// split, per-chunk transcription, merge. Any stage failure is fatal for
// the attempt; no partial transcript is ever returned.
func (p *LocalPipeline) Transcribe(ctx context.Context, data []byte, opts CallOptions, progress ProgressFunc) (string, error) {
	progress.Report(2, "decoding audio")

	pcm, err := p.decoder.Decode(data)
	if err != nil {
		return "", Errorf(KindDecode, "unable to decode audio (try converting the file to 16-bit WAV): %w", err)
	}

	samples, err := audio.DownmixMono(pcm)
	if err != nil {
		return "", Errorf(KindDecode, "unable to downmix audio: %w", err)
	}

	if pcm.SampleRate != p.config.TargetSampleRate {
		progress.Report(6, "resampling audio")
		samples, err = audio.Resample(samples, pcm.SampleRate, p.config.TargetSampleRate)
		if err != nil {
			return "", Errorf(KindDecode, "unable to resample audio: %w", err)
		}
	}

	progress.Report(10, "splitting audio")
	chunks, err := audio.Split(len(samples), audio.SplitConfig{
		MaxChunkBytes:  p.config.MaxChunkBytes,
		OverlapSeconds: p.config.OverlapSeconds,
		SampleRate:     p.config.TargetSampleRate,
	})
	if err != nil {
		return "", Errorf(KindInput, "unable to split audio: %w", err)
	}

	p.logger.Info("Audio split into chunks",
		slog.Int("chunks", len(chunks)),
		slog.Int("samples", len(samples)),
		slog.Int("sample_rate", p.config.TargetSampleRate),
	)

	transcripts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		encoded, err := audio.EncodeChunk(samples, chunk, p.config.TargetSampleRate)
		if err != nil {
			return "", Errorf(KindInput, "unable to encode chunk %d: %w", chunk.Index, err)
		}
		p.metrics.RecordChunkSplit(len(encoded))

		chunkOpts := opts
		chunkOpts.Filename = fmt.Sprintf("chunk_%03d.wav", chunk.Index)
		chunkOpts.ContentType = "audio/wav"

		// Each chunk owns an equal slice of the 20-98 band.
		low := chunkBandLow + (chunkBandHigh-chunkBandLow)*i/len(chunks)
		high := chunkBandLow + (chunkBandHigh-chunkBandLow)*(i+1)/len(chunks)
		chunkProgress := ProgressFunc(func(percent int, status string) {
			progress.Report(Band(low, high, percent), fmt.Sprintf("chunk %d/%d: %s", i+1, len(chunks), status))
		})
		chunkProgress.Report(0, "transcribing")

		text, err := p.caller.Transcribe(ctx, encoded, chunkOpts, chunkProgress)
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}

		transcripts = append(transcripts, text)
	}

	progress.Report(chunkBandHigh, "merging transcripts")
	return transcript.Merge(transcripts), nil
}

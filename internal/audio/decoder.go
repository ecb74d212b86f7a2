package audio

// Decoder turns compressed audio bytes into PCM sample buffers at a known
// sample rate and channel count. The host environment may supply richer
// decoders; the pipeline ships with WAV support built in.
type Decoder interface {
	Decode(data []byte) (*PCM, error)
}

// WAVDecoder decodes RIFF/WAVE input.
type WAVDecoder struct{}

// Decode implements Decoder for 16-bit PCM WAV data.
func (WAVDecoder) Decode(data []byte) (*PCM, error) {
	return DecodeWAV(data)
}

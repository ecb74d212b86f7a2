package audio

import "fmt"

// DownmixMono collapses interleaved multi-channel PCM to mono by averaging
// the channels of each frame. Mono input is returned unchanged.
func DownmixMono(pcm *PCM) ([]int16, error) {
	if pcm == nil || len(pcm.Samples) == 0 {
		return nil, fmt.Errorf("cannot downmix empty audio")
	}

	if pcm.Channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", pcm.Channels)
	}

	if pcm.Channels == 1 {
		return pcm.Samples, nil
	}

	frames := len(pcm.Samples) / pcm.Channels
	mono := make([]int16, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for ch := 0; ch < pcm.Channels; ch++ {
			sum += int(pcm.Samples[i*pcm.Channels+ch])
		}
		mono[i] = int16(sum / pcm.Channels)
	}

	return mono, nil
}

// Resample converts mono PCM samples from one sample rate to another using
// linear interpolation. Equal rates return the input unchanged.
func Resample(samples []int16, fromRate, toRate int) ([]int16, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot resample empty audio")
	}

	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("sample rates must be positive, got %d -> %d", fromRate, toRate)
	}

	if fromRate == toRate {
		return samples, nil
	}

	outLen := int(int64(len(samples)) * int64(toRate) / int64(fromRate))
	if outLen == 0 {
		outLen = 1
	}

	out := make([]int16, outLen)
	ratio := float64(fromRate) / float64(toRate)

	for i := 0; i < outLen; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		a := float64(samples[idx])
		b := float64(samples[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}

	return out, nil
}

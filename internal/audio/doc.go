// Package audio handles PCM decoding, resampling, chunk splitting, and
// WAV format conversion. It cuts long recordings into overlapping,
// byte-budget-constrained segments that can be transcribed independently
// and re-encodes each segment as 16-bit mono WAV.
package audio

// Package source abstracts the audio input for one transcription attempt.
// It provides random-access reads over a file of known size, which the
// chunked-upload protocol needs for reading part ranges at exact offsets.
package source

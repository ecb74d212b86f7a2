// Package transcript reassembles per-segment transcripts into one coherent
// result. It parses and renumbers subtitle entries, removes duplicated
// speech at segment seams, and serializes timestamped segments to SRT.
package transcript

package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Entry represents one subtitle block. The timing line is preserved
// verbatim; only the number is rewritten during merging.
type Entry struct {
	Number int
	Timing string
	Text   string
}

// Segment represents a timestamped slice of transcribed speech as returned
// by the provider's structured JSON output.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// timingRe matches an SRT timing line: HH:MM:SS,mmm --> HH:MM:SS,mmm
var timingRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3}\s*-->\s*\d{2}:\d{2}:\d{2},\d{3}$`)

// timecodeRe is a loose heuristic for "timing-looking" text that is not
// SRT: bracketed or dashed timecodes such as [00:01:23] or 0:05 - 0:12.
var timecodeRe = regexp.MustCompile(`\d{1,2}:\d{2}(:\d{2})?([.,]\d{1,3})?\s*(-->|\]|-)`)

// LooksLikeSRT reports whether text contains SRT-style timing lines.
func LooksLikeSRT(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if timingRe.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// LooksTimestamped reports whether text carries timecodes of any shape.
// SRT input also matches; callers check LooksLikeSRT first.
func LooksTimestamped(text string) bool {
	return timecodeRe.MatchString(text)
}

// ParseSRT parses subtitle entries from SRT-formatted text in their
// textual order. Entry numbers are taken as found; callers must not trust
// them to be sequential.
func ParseSRT(text string) []Entry {
	var entries []Entry

	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		idx := 0
		number := 0
		if n, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
			number = n
			idx = 1
		}

		if idx >= len(lines) {
			continue
		}

		timing := strings.TrimSpace(lines[idx])
		if !timingRe.MatchString(timing) {
			continue
		}

		content := strings.Join(lines[idx+1:], "\n")
		entries = append(entries, Entry{
			Number: number,
			Timing: timing,
			Text:   content,
		})
	}

	return entries
}

// FormatSRT serializes entries as {number}\n{timing}\n{content} blocks
// separated by a blank line.
func FormatSRT(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strconv.Itoa(e.Number))
		b.WriteString("\n")
		b.WriteString(e.Timing)
		b.WriteString("\n")
		b.WriteString(e.Text)
	}
	return b.String()
}

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	millis := int64(seconds*1000 + 0.5)
	h := millis / 3600000
	m := millis % 3600000 / 60000
	s := millis % 60000 / 1000
	ms := millis % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// SegmentsToSRT converts structured provider segments into sequentially
// numbered SRT text.
func SegmentsToSRT(segments []Segment) string {
	entries := make([]Entry, 0, len(segments))
	for i, seg := range segments {
		entries = append(entries, Entry{
			Number: i + 1,
			Timing: FormatTimestamp(seg.Start) + " --> " + FormatTimestamp(seg.End),
			Text:   strings.TrimSpace(seg.Text),
		})
	}
	return FormatSRT(entries)
}

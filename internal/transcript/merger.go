package transcript

import (
	"strings"
	"unicode"
)

const (
	// exactOverlapWindow bounds the suffix/prefix search for an exact
	// seam match.
	exactOverlapWindow = 300

	// minExactOverlap is the shortest exact match accepted as a seam.
	minExactOverlap = 10

	// fuzzyOverlapWindow bounds the word-overlap fallback search.
	fuzzyOverlapWindow = 100

	// fuzzyWordThreshold is the fraction of candidate-seam words that must
	// also appear near the end of the previous chunk. Empirical; tunable.
	fuzzyWordThreshold = 0.7

	// minFuzzyWordLen excludes short filler words from fuzzy matching.
	minFuzzyWordLen = 3

	// minFuzzySeamWords is the smallest word count accepted as a fuzzy
	// seam. A single shared word is too weak a signal to cut on.
	minFuzzySeamWords = 2
)

// Merge reassembles ordered per-chunk transcripts into one transcript.
// The content shape is detected once from the first chunk: subtitle text
// is parsed and renumbered, other timestamped text is concatenated, and
// plain text is joined with overlap removal at each seam.
func Merge(chunks []string) string {
	switch len(chunks) {
	case 0:
		return ""
	case 1:
		if LooksLikeSRT(chunks[0]) {
			return renumber(ParseSRT(chunks[0]))
		}
		return chunks[0]
	}

	if LooksLikeSRT(chunks[0]) {
		// Entries are collected in chunk order, each chunk's entries in
		// textual order. Provider numbering is never trusted.
		var entries []Entry
		for _, chunk := range chunks {
			entries = append(entries, ParseSRT(chunk)...)
		}
		return renumber(entries)
	}

	if LooksTimestamped(chunks[0]) {
		return strings.Join(chunks, "\n\n")
	}

	merged := chunks[0]
	for _, next := range chunks[1:] {
		merged = joinPlain(merged, next)
	}
	return merged
}

// renumber rewrites entry numbers 1..N in textual order.
func renumber(entries []Entry) string {
	for i := range entries {
		entries[i].Number = i + 1
	}
	return FormatSRT(entries)
}

// joinPlain appends next to prev, removing duplicated speech at the seam
// when an overlap can be located.
func joinPlain(prev, next string) string {
	if prev == "" {
		return next
	}
	if next == "" {
		return prev
	}

	if n := ExactOverlap(prev, next); n > 0 {
		return prev + next[n:]
	}

	if n := FuzzyOverlap(prev, next); n > 0 {
		return prev + next[n:]
	}

	return prev + separator(prev, next) + next
}

// ExactOverlap returns the length of the longest exact match between a
// suffix of prev and a prefix of next within the search window, scanning
// from longest to shortest. Matches shorter than minExactOverlap return 0.
func ExactOverlap(prev, next string) int {
	max := exactOverlapWindow
	if len(prev) < max {
		max = len(prev)
	}
	if len(next) < max {
		max = len(next)
	}

	for n := max; n >= minExactOverlap; n-- {
		if prev[len(prev)-n:] == next[:n] {
			return n
		}
	}
	return 0
}

// FuzzyOverlap locates an approximate seam too short or too noisy for an
// exact match. Candidate seams are word prefixes of next, longest first;
// a candidate is accepted when it ends on a word shared with prev's tail
// window and at least fuzzyWordThreshold of its words (>= minFuzzyWordLen
// chars, compared as whole tokens) appear there. Returns the byte length
// of next's overlapping head, or 0 when no seam is found.
func FuzzyOverlap(prev, next string) int {
	w := fuzzyOverlapWindow
	if len(prev) < w {
		w = len(prev)
	}
	tail := make(map[string]bool)
	for _, word := range tokenize(prev[len(prev)-w:]) {
		tail[strings.ToLower(word)] = true
	}
	if len(tail) == 0 {
		return 0
	}

	w = fuzzyOverlapWindow
	if len(next) < w {
		w = len(next)
	}
	head := tokenSpans(next[:w])

	for k := len(head); k >= minFuzzySeamWords; k-- {
		// The seam must end on a shared word, or the cut would swallow
		// words the previous chunk never spoke.
		if !tail[strings.ToLower(head[k-1].word)] {
			continue
		}

		matched := 0
		for _, s := range head[:k] {
			if tail[strings.ToLower(s.word)] {
				matched++
			}
		}
		if float64(matched)/float64(k) >= fuzzyWordThreshold {
			return head[k-1].end
		}
	}
	return 0
}

// tokenize splits text into words of at least minFuzzyWordLen letters or
// digits.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := fields[:0]
	for _, f := range fields {
		if len(f) >= minFuzzyWordLen {
			words = append(words, f)
		}
	}
	return words
}

// tokenSpan is a word with the byte offset just past it.
type tokenSpan struct {
	word string
	end  int
}

// tokenSpans tokenizes text like tokenize but keeps each word's end
// offset so a seam can be cut at an exact byte position.
func tokenSpans(text string) []tokenSpan {
	var spans []tokenSpan
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if word := text[start:i]; len(word) >= minFuzzyWordLen {
				spans = append(spans, tokenSpan{word: word, end: i})
			}
			start = -1
		}
	}
	if start >= 0 {
		if word := text[start:]; len(word) >= minFuzzyWordLen {
			spans = append(spans, tokenSpan{word: word, end: len(text)})
		}
	}
	return spans
}

// separator chooses the join string when no overlap exists at the seam: a
// plain space after terminal punctuation or whitespace, a sentence break
// before an uppercase start, a space otherwise.
func separator(prev, next string) string {
	prevRunes := []rune(prev)
	last := prevRunes[len(prevRunes)-1]
	if unicode.IsSpace(last) || unicode.IsPunct(last) {
		return " "
	}

	nextRunes := []rune(next)
	if unicode.IsUpper(nextRunes[0]) {
		return ". "
	}

	return " "
}

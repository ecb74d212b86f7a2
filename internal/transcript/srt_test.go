package transcript

import "testing"

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,500\nHello there\n\n2\n00:00:03,000 --> 00:00:04,000\nGeneral Kenobi"

func TestLooksLikeSRT(t *testing.T) {
	if !LooksLikeSRT(sampleSRT) {
		t.Error("Expected SRT text to be detected")
	}

	if LooksLikeSRT("just some plain speech without timing") {
		t.Error("Plain text misdetected as SRT")
	}

	if LooksLikeSRT("[00:01:23] loose timecode style") {
		t.Error("Non-SRT timecode misdetected as SRT")
	}
}

func TestLooksTimestamped(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"[00:01:23] hello", true},
		{"0:05 - 0:12 intro music", true},
		{sampleSRT, true},
		{"no timecodes here at all", false},
	}

	for _, tc := range cases {
		if got := LooksTimestamped(tc.text); got != tc.want {
			t.Errorf("LooksTimestamped(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestParseSRT(t *testing.T) {
	entries := ParseSRT(sampleSRT)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	if entries[0].Number != 1 || entries[0].Text != "Hello there" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}

	if entries[1].Timing != "00:00:03,000 --> 00:00:04,000" {
		t.Errorf("Unexpected second timing: %q", entries[1].Timing)
	}
}

func TestParseSRTWithoutNumbers(t *testing.T) {
	text := "00:00:01,000 --> 00:00:02,000\nFirst line\n\n00:00:03,000 --> 00:00:04,000\nSecond line"

	entries := ParseSRT(text)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	if entries[0].Text != "First line" || entries[1].Text != "Second line" {
		t.Errorf("Unexpected entries: %+v", entries)
	}
}

func TestParseSRTMultilineText(t *testing.T) {
	text := "1\n00:00:01,000 --> 00:00:02,000\nLine one\nLine two"

	entries := ParseSRT(text)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	if entries[0].Text != "Line one\nLine two" {
		t.Errorf("Multiline text not preserved: %q", entries[0].Text)
	}
}

func TestFormatSRTRoundTrip(t *testing.T) {
	entries := ParseSRT(sampleSRT)
	if got := FormatSRT(entries); got != sampleSRT {
		t.Errorf("Round trip changed text:\n%q\nwant\n%q", got, sampleSRT)
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.25, "00:01:01,250"},
		{3661.001, "01:01:01,001"},
		{-5, "00:00:00,000"},
	}

	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestSegmentsToSRT(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2.5, Text: " Hello there "},
		{Start: 3, End: 4, Text: "General Kenobi"},
	}

	want := "1\n00:00:00,000 --> 00:00:02,500\nHello there\n\n2\n00:00:03,000 --> 00:00:04,000\nGeneral Kenobi"
	if got := SegmentsToSRT(segments); got != want {
		t.Errorf("SegmentsToSRT:\n%q\nwant\n%q", got, want)
	}
}

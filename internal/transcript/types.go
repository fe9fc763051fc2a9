// Package transcript normalizes heterogeneous transcript payloads into a
// canonical ordered sequence of timestamped segments.
package transcript

import "github.com/chapterforge/chapterforge-server/internal/timestamp"

// Segment is one utterance unit.
//
// Timestamp is always derived from StartSeconds; when a source record carries
// both, StartSeconds is authoritative.
type Segment struct {
	Text            string  `json:"text"`
	StartSeconds    float64 `json:"startSeconds"`
	DurationSeconds float64 `json:"durationSeconds"`
	Timestamp       string  `json:"timestamp"`
	Speaker         string  `json:"speaker,omitempty"`
}

// Transcript is an ordered sequence of segments, non-decreasing by
// StartSeconds. Untimed marks a transcript with no recoverable per-segment
// timing; anchor selection and local chapter generation refuse to run on it.
type Transcript struct {
	Segments []Segment
	Untimed  bool
}

// Empty reports whether the transcript has no segments.
func (t Transcript) Empty() bool {
	return len(t.Segments) == 0
}

// TotalDurationSeconds is the last segment's start plus its duration, or 0
// for an empty transcript.
func (t Transcript) TotalDurationSeconds() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	last := t.Segments[len(t.Segments)-1]
	return last.StartSeconds + last.DurationSeconds
}

// Timestamps returns the canonical timestamp of every segment, in order.
func (t Transcript) Timestamps() []string {
	out := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		out[i] = seg.Timestamp
	}
	return out
}

// Text concatenates all segment text joined with single spaces.
func (t Transcript) Text() string {
	var size int
	for _, seg := range t.Segments {
		size += len(seg.Text) + 1
	}
	buf := make([]byte, 0, size)
	for i, seg := range t.Segments {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, seg.Text...)
	}
	return string(buf)
}

// newSegment builds a segment with its canonical timestamp derived from start.
func newSegment(text string, start, duration float64, speaker string) Segment {
	if start < 0 {
		start = 0
	}
	if duration < 0 {
		duration = 0
	}
	return Segment{
		Text:            text,
		StartSeconds:    start,
		DurationSeconds: duration,
		Timestamp:       timestamp.Format(start),
		Speaker:         speaker,
	}
}

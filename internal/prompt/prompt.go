// Package prompt packages a normalized transcript and its anchors into the
// bounded text payload sent to the completion service.
package prompt

import (
	"fmt"
	"strings"

	"github.com/chapterforge/chapterforge-server/internal/timestamp"
	"github.com/chapterforge/chapterforge-server/internal/transcript"
)

const (
	// DefaultContextWindow is how many segments on each side of an anchor
	// are rendered into the payload.
	DefaultContextWindow = 5
	// DefaultSampleCount is how many additional untouched segments are
	// appended for broader context when headroom remains.
	DefaultSampleCount = 20
)

// Input drives assembly of a single prompt.
type Input struct {
	Transcript    transcript.Transcript
	Anchors       []int
	ContextWindow int
	SampleCount   int
}

// SystemRules returns the fixed instruction text for the completion service.
// The rules pin the model to provided timestamps so it cannot invent timing.
func SystemRules(totalDuration string) string {
	return fmt.Sprintf(`You are a YouTube chapter generator. Your task is to analyze video transcripts and create meaningful chapter titles with accurate timestamps. Important rules:
1. Create chapters at timestamps where the topic or focus changes in the video
2. First chapter must be at 00:00
3. Generate 5-10 chapters based on content transitions
4. Ensure timestamps are in chronological order
5. Last chapter must not exceed video duration: %s
6. Make titles concise and descriptive (3-7 words)
7. Use actual transcript content for context
8. Use only timestamps from ALL AVAILABLE TIMESTAMPS
9. DO NOT use the same timestamp more than once
10. Consider RECOMMENDED CHAPTER POINTS as suggestions, but prioritize actual content transitions`, totalDuration)
}

// Assemble renders the user-content payload: duration header, the full
// timestamp list for grounding, the recommended anchor points, and the
// transcript limited to context windows around each anchor. Overlapping
// windows are deduplicated so no segment appears twice. When many segments
// remain untouched, an evenly spaced sample is appended under a separate
// heading.
func Assemble(in Input) string {
	window := in.ContextWindow
	if window <= 0 {
		window = DefaultContextWindow
	}
	sampleCount := in.SampleCount
	if sampleCount <= 0 {
		sampleCount = DefaultSampleCount
	}

	t := in.Transcript
	covered := make(map[int]bool)

	var body strings.Builder
	for _, anchor := range in.Anchors {
		lo := anchor - window
		if lo < 0 {
			lo = 0
		}
		hi := anchor + window + 1
		if hi > len(t.Segments) {
			hi = len(t.Segments)
		}
		wrote := false
		for i := lo; i < hi; i++ {
			if covered[i] {
				continue
			}
			covered[i] = true
			writeSegmentLine(&body, t.Segments[i])
			wrote = true
		}
		if wrote {
			body.WriteByte('\n')
		}
	}

	if len(t.Segments) > len(in.Anchors)*window*2 {
		if sample := sampleUncovered(t, covered, sampleCount); len(sample) > 0 {
			body.WriteString("ADDITIONAL CONTEXT SEGMENTS:\n")
			for _, seg := range sample {
				writeSegmentLine(&body, seg)
			}
		}
	}

	var anchorStamps []string
	for _, anchor := range in.Anchors {
		anchorStamps = append(anchorStamps, t.Segments[anchor].Timestamp)
	}

	return fmt.Sprintf(`VIDEO DURATION: %s
ALL AVAILABLE TIMESTAMPS: %s
RECOMMENDED CHAPTER POINTS: %s

TRANSCRIPT SEGMENTS:
%s
Generate chapters that reflect the actual content and topics in the video. Format: MM:SS Title or HH:MM:SS Title`,
		timestamp.Format(t.TotalDurationSeconds()),
		strings.Join(t.Timestamps(), ", "),
		strings.Join(anchorStamps, ", "),
		body.String(),
	)
}

// AssembleText renders an untimed transcript as a plain payload; there are
// no timestamps to ground, so the whole text goes as-is.
func AssembleText(t transcript.Transcript) string {
	return fmt.Sprintf(`TRANSCRIPT:
%s

Generate chapters that reflect the actual content and topics in the video. Format: MM:SS Title or HH:MM:SS Title`, t.Text())
}

func writeSegmentLine(b *strings.Builder, seg transcript.Segment) {
	b.WriteByte('[')
	b.WriteString(seg.Timestamp)
	b.WriteString("] ")
	b.WriteString(seg.Text)
	b.WriteByte('\n')
}

// sampleUncovered returns up to count evenly spaced segments not already
// rendered by an anchor window.
func sampleUncovered(t transcript.Transcript, covered map[int]bool, count int) []transcript.Segment {
	var rest []transcript.Segment
	for i, seg := range t.Segments {
		if !covered[i] {
			rest = append(rest, seg)
		}
	}
	if len(rest) <= count {
		return rest
	}

	interval := float64(len(rest)) / float64(count+1)
	out := make([]transcript.Segment, 0, count)
	for i := 1; i <= count; i++ {
		idx := int(interval * float64(i))
		if idx >= len(rest) {
			idx = len(rest) - 1
		}
		out = append(out, rest[idx])
	}
	return out
}

package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterforge/chapterforge-server/internal/timestamp"
	"github.com/chapterforge/chapterforge-server/internal/transcript"
)

func promptTranscript(n int, spacing float64) transcript.Transcript {
	segs := make([]transcript.Segment, n)
	for i := range segs {
		start := float64(i) * spacing
		segs[i] = transcript.Segment{
			Text:         fmt.Sprintf("utterance number %d", i),
			StartSeconds: start,
			Timestamp:    timestamp.Format(start),
		}
	}
	return transcript.Transcript{Segments: segs}
}

func TestAssemble_Headers(t *testing.T) {
	tr := promptTranscript(30, 30)
	got := Assemble(Input{Transcript: tr, Anchors: []int{0, 10, 20}, ContextWindow: 2})

	assert.Contains(t, got, "VIDEO DURATION: 14:30")
	assert.Contains(t, got, "ALL AVAILABLE TIMESTAMPS: 00:00, 00:30")
	assert.Contains(t, got, "RECOMMENDED CHAPTER POINTS: 00:00, 05:00, 10:00")
	assert.Contains(t, got, "TRANSCRIPT SEGMENTS:")
	assert.Contains(t, got, "[05:00] utterance number 10")
}

func TestAssemble_OverlappingWindowsDeduplicated(t *testing.T) {
	tr := promptTranscript(12, 10)
	got := Assemble(Input{Transcript: tr, Anchors: []int{4, 6}, ContextWindow: 3})

	// Segments 3..7 fall inside both windows but must appear exactly once.
	for i := 3; i <= 7; i++ {
		needle := fmt.Sprintf("utterance number %d\n", i)
		assert.Equal(t, 1, strings.Count(got, needle), "segment %d duplicated", i)
	}
}

func TestAssemble_AdditionalSample(t *testing.T) {
	// Far more segments than the anchor windows cover: the payload gains a
	// sampled section instead of the full transcript.
	tr := promptTranscript(200, 10)
	got := Assemble(Input{Transcript: tr, Anchors: []int{0, 100, 199}, ContextWindow: 2, SampleCount: 10})

	require.Contains(t, got, "ADDITIONAL CONTEXT SEGMENTS:")

	lines := strings.Count(got, "[")
	// 3 windows of at most 5 segments plus 10 samples, plus the two
	// timestamp list lines' brackets are zero; stay well under full size.
	assert.Less(t, lines, 40)
}

func TestAssemble_SmallTranscriptNoSample(t *testing.T) {
	tr := promptTranscript(8, 10)
	got := Assemble(Input{Transcript: tr, Anchors: []int{0, 4, 7}, ContextWindow: 3})
	assert.NotContains(t, got, "ADDITIONAL CONTEXT SEGMENTS:")
}

func TestSystemRules(t *testing.T) {
	rules := SystemRules("12:34")
	assert.Contains(t, rules, "must be at 00:00")
	assert.Contains(t, rules, "12:34")
	assert.Contains(t, rules, "DO NOT use the same timestamp more than once")
}

func TestAssembleText(t *testing.T) {
	tr := transcript.Transcript{
		Segments: []transcript.Segment{{Text: "all of it in one blob"}},
		Untimed:  true,
	}
	got := AssembleText(tr)
	assert.Contains(t, got, "all of it in one blob")
	assert.Contains(t, got, "Format: MM:SS Title or HH:MM:SS Title")
}

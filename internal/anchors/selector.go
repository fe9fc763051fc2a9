// Package anchors selects a bounded set of transcript segment indices that
// serve as chapter reference points.
package anchors

import (
	"sort"
	"strings"

	"github.com/chapterforge/chapterforge-server/internal/errors"
	"github.com/chapterforge/chapterforge-server/internal/transcript"
)

// Options holds the selection heuristics. The thresholds are tuning knobs,
// not derived from any formal criterion; defaults match the values the
// heuristics were calibrated with.
type Options struct {
	// MinAnchors and MaxAnchors bound the anchor set size for transcripts
	// with at least MinAnchors segments.
	MinAnchors int
	MaxAnchors int
	// ResampleTarget is how many middle anchors survive when a selection
	// overshoots MaxAnchors, capped at MaxAnchors-2 so the first and last
	// anchors never push the result past the bound.
	ResampleTarget int
	// SecondsPerAnchor sets the fixed-interval density: one anchor per
	// this many seconds of video.
	SecondsPerAnchor float64
	// IntroSkip is how many leading segments belong to the intro and are
	// never anchor candidates besides index 0.
	IntroSkip int
	// SpacingDivisor: consecutive anchors must be at least
	// segmentCount/SpacingDivisor segments apart.
	SpacingDivisor int
	// GapSeconds is the time gap from the previous segment that marks a
	// possible pause or scene change.
	GapSeconds float64
	// OverlapThreshold: a keyword-overlap ratio below this marks a topic
	// change.
	OverlapThreshold float64
	// ContextWindow is the half-width, in segments, of the keyword context
	// around a candidate.
	ContextWindow int
	// TailMergeSeconds: the final segment is skipped when its time is
	// within this many seconds of the last selected anchor.
	TailMergeSeconds float64
}

// DefaultOptions returns the calibrated defaults.
func DefaultOptions() Options {
	return Options{
		MinAnchors:       5,
		MaxAnchors:       8,
		ResampleTarget:   6,
		SecondsPerAnchor: 300,
		IntroSkip:        10,
		SpacingDivisor:   20,
		GapSeconds:       60,
		OverlapThreshold: 0.3,
		ContextWindow:    3,
		TailMergeSeconds: 60,
	}
}

// Select picks anchors by content transitions, falling back to fixed
// intervals when the transcript is too short for the transition walk to be
// meaningful. The result always satisfies the anchor invariants: it starts
// at index 0, is strictly increasing, and is bounded by
// [min(MinAnchors, segmentCount), MaxAnchors].
func Select(t transcript.Transcript, opts Options) ([]int, error) {
	if err := usable(t); err != nil {
		return nil, err
	}

	n := len(t.Segments)
	if n <= opts.IntroSkip+5 {
		return SelectFixed(t, opts)
	}

	selected := []int{0}
	lastSelected := 0
	minGap := n / opts.SpacingDivisor
	prevKeywords := extractKeywords(windowText(t, 0, opts.ContextWindow))
	prevSpeaker := t.Segments[0].Speaker

	for i := opts.IntroSkip; i < n-5; i++ {
		if i-lastSelected < minGap {
			continue
		}

		seg := t.Segments[i]
		significant := false

		// A long silence usually means a scene change.
		if seg.StartSeconds-t.Segments[i-1].StartSeconds > opts.GapSeconds {
			significant = true
		}

		var currentKeywords map[string]struct{}
		if !significant {
			currentKeywords = extractKeywords(windowText(t, i, opts.ContextWindow))
			if overlapRatio(currentKeywords, prevKeywords) < opts.OverlapThreshold {
				significant = true
			}
		}

		if !significant && hasTransitionMarker(seg.Text) {
			significant = true
		}

		if !significant && seg.Speaker != "" && prevSpeaker != "" && seg.Speaker != prevSpeaker {
			significant = true
		}
		if seg.Speaker != "" {
			prevSpeaker = seg.Speaker
		}

		if significant {
			selected = append(selected, i)
			lastSelected = i
			if currentKeywords == nil {
				currentKeywords = extractKeywords(windowText(t, i, opts.ContextWindow))
			}
			prevKeywords = currentKeywords
		}
	}

	// The final segment joins unless it crowds the last anchor.
	if n-1 > lastSelected && n-1-lastSelected > minGap &&
		t.Segments[n-1].StartSeconds-t.Segments[lastSelected].StartSeconds > opts.TailMergeSeconds {
		selected = append(selected, n-1)
	}

	return bound(selected, n, opts), nil
}

// SelectFixed picks anchors at fixed segment intervals: one per roughly
// SecondsPerAnchor of video, clamped to [MinAnchors, MaxAnchors]. Used
// directly by the local fallback generator and as the padding arithmetic
// for the content-transition strategy.
func SelectFixed(t transcript.Transcript, opts Options) ([]int, error) {
	if err := usable(t); err != nil {
		return nil, err
	}

	n := len(t.Segments)
	if n == 1 {
		return []int{0}, nil
	}

	targetCount := int(t.TotalDurationSeconds() / opts.SecondsPerAnchor)
	if targetCount < opts.MinAnchors {
		targetCount = opts.MinAnchors
	}
	if targetCount > opts.MaxAnchors {
		targetCount = opts.MaxAnchors
	}

	interval := n / targetCount
	if interval < 1 {
		interval = 1
	}

	selected := []int{0}
	for idx := interval; idx < n-interval; idx += interval {
		selected = append(selected, idx)
	}

	last := selected[len(selected)-1]
	if t.Segments[n-1].StartSeconds-t.Segments[last].StartSeconds > opts.TailMergeSeconds {
		selected = append(selected, n-1)
	}

	return bound(selected, n, opts), nil
}

// usable rejects transcripts that anchor selection cannot run on.
func usable(t transcript.Transcript) error {
	if t.Empty() {
		return errors.MissingTranscript("cannot select anchors from an empty transcript")
	}
	if t.Untimed {
		return errors.NoTimingInformation("cannot select anchors without per-segment timing")
	}
	return nil
}

// bound enforces the anchor set invariants: pad with evenly spaced indices
// up to min(MinAnchors, n), resample down past MaxAnchors, and return a
// strictly increasing list starting at 0.
func bound(selected []int, n int, opts Options) []int {
	have := make(map[int]bool, len(selected))
	unique := selected[:0]
	for _, idx := range selected {
		if !have[idx] {
			have[idx] = true
			unique = append(unique, idx)
		}
	}
	selected = unique

	want := opts.MinAnchors
	if n < want {
		want = n
	}
	if len(selected) < want {
		selected = padEvenly(selected, have, n, want)
	}

	sort.Ints(selected)

	if len(selected) > opts.MaxAnchors {
		// First and last always survive, so the middle gets at most
		// MaxAnchors-2 slots regardless of the configured target.
		target := opts.ResampleTarget
		if target > opts.MaxAnchors-2 {
			target = opts.MaxAnchors - 2
		}
		if target < 0 {
			target = 0
		}
		first := selected[0]
		last := selected[len(selected)-1]
		middle := resampleEvenly(selected[1:len(selected)-1], target)
		selected = append(append([]int{first}, middle...), last)
		if len(selected) > opts.MaxAnchors {
			selected = selected[:opts.MaxAnchors]
		}
	}

	return selected
}

// padEvenly supplements a too-small selection with evenly spaced indices
// from the unselected remainder.
func padEvenly(selected []int, have map[int]bool, n, want int) []int {
	interval := n / (want + 1)
	if interval < 1 {
		interval = 1
	}
	for i := 1; len(selected) < want && i*interval < n; i++ {
		idx := i * interval
		if !have[idx] {
			have[idx] = true
			selected = append(selected, idx)
		}
	}
	// Interval arithmetic can collide with existing anchors; fill linearly.
	for idx := 1; len(selected) < want && idx < n; idx++ {
		if !have[idx] {
			have[idx] = true
			selected = append(selected, idx)
		}
	}
	return selected
}

// resampleEvenly keeps count evenly spaced elements of a sorted slice.
func resampleEvenly(sorted []int, count int) []int {
	if len(sorted) <= count {
		return sorted
	}
	interval := float64(len(sorted)) / float64(count+1)
	out := make([]int, 0, count)
	seen := make(map[int]bool, count)
	for i := 1; i <= count; i++ {
		idx := int(interval * float64(i))
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		if !seen[sorted[idx]] {
			seen[sorted[idx]] = true
			out = append(out, sorted[idx])
		}
	}
	return out
}

// windowText joins the text of segments within the context window around i.
func windowText(t transcript.Transcript, i, window int) string {
	lo := i - window
	if lo < 0 {
		lo = 0
	}
	hi := i + window + 1
	if hi > len(t.Segments) {
		hi = len(t.Segments)
	}
	parts := make([]string, 0, hi-lo)
	for _, seg := range t.Segments[lo:hi] {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

package transcript

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/chapterforge/chapterforge-server/internal/timestamp"
)

// inlineMarker matches [MM:SS] or [HH:MM:SS] markers inside plain-text transcripts.
var inlineMarker = regexp.MustCompile(`\[(\d{1,2}:\d{2}(?::\d{2})?)\]`)

// Candidate field names per logical attribute, tried in fixed priority order.
// Sources disagree on naming; the first field present with a usable value wins.
var textFields = []string{"text", "content", "caption", "value"}

type timeField struct {
	name   string
	millis bool
}

var startFields = []timeField{
	{name: "start"},
	{name: "offset", millis: true},
	{name: "timestamp"},
	{name: "time"},
	{name: "startTime"},
	{name: "start_time"},
}

var speakerFields = []string{"speaker", "speakerName", "speaker_name"}

// Normalize is total over all raw shapes: it always produces a Transcript,
// degrading rather than failing. Unrecognized payloads become a single
// untimed pseudo-segment.
func Normalize(raw Raw, logger *slog.Logger) Transcript {
	switch raw.kind {
	case KindText:
		return normalizeText(raw.text, logger)
	case KindRecords:
		return normalizeRecords(raw.records, logger)
	default:
		return normalizeOpaque(raw.opaque)
	}
}

// normalizeText splits a plain string into lines and scans for inline
// timestamp markers. A line without a marker is appended, joined with a
// space, to the text of the most recent marked segment. A string with no
// markers at all becomes a single untimed segment at 0 seconds.
func normalizeText(text string, logger *slog.Logger) Transcript {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Transcript{}
	}

	if !inlineMarker.MatchString(text) {
		return Transcript{
			Segments: []Segment{newSegment(trimmed, 0, 0, "")},
			Untimed:  true,
		}
	}

	var segments []Segment
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		match := inlineMarker.FindStringSubmatch(line)
		if match == nil {
			// Continuation of the previous marked segment. Leading
			// unmarked lines start an implicit segment at 0 seconds.
			if len(segments) == 0 {
				segments = append(segments, newSegment(line, 0, 0, ""))
				continue
			}
			last := &segments[len(segments)-1]
			if last.Text == "" {
				last.Text = line
			} else {
				last.Text += " " + line
			}
			continue
		}

		start, err := timestamp.Parse(match[1])
		if err != nil {
			logger.Warn("Malformed inline timestamp, treating as 00:00", "marker", match[1])
			start = 0
		}
		body := strings.TrimSpace(strings.Replace(line, match[0], "", 1))
		segments = append(segments, newSegment(body, float64(start), 0, ""))
	}

	return finish(segments, false)
}

// normalizeRecords maps loosely-typed segment records onto canonical
// segments using the candidate field tables. Records contributing no text
// are dropped silently.
func normalizeRecords(records []map[string]any, logger *slog.Logger) Transcript {
	segments := make([]Segment, 0, len(records))
	for _, rec := range records {
		text := firstString(rec, textFields)
		if text == "" {
			continue
		}

		start, fromMillis := extractStart(rec, logger)
		duration := extractDuration(rec, fromMillis)
		speaker := firstString(rec, speakerFields)

		segments = append(segments, newSegment(text, start, duration, speaker))
	}

	return finish(segments, false)
}

// normalizeOpaque degrades an unrecognized payload to a single untimed
// pseudo-segment holding a best-effort stringification.
func normalizeOpaque(v any) Transcript {
	var text string
	if b, err := json.Marshal(v); err == nil {
		text = string(b)
	} else {
		text = fmt.Sprintf("%v", v)
	}

	text = strings.TrimSpace(text)
	if text == "" || text == "null" {
		return Transcript{Untimed: true}
	}
	return Transcript{
		Segments: []Segment{newSegment(text, 0, 0, "")},
		Untimed:  true,
	}
}

// finish drops empty segments and stable-sorts by start time, preserving
// source order for equal timestamps.
func finish(segments []Segment, untimed bool) Transcript {
	kept := segments[:0]
	for _, seg := range segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text != "" {
			kept = append(kept, seg)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].StartSeconds < kept[j].StartSeconds
	})
	return Transcript{Segments: kept, Untimed: untimed}
}

// extractStart returns the first usable start value from the candidate time
// fields, plus whether it came from a millisecond-unit field (which decides
// how a bare duration field is interpreted).
func extractStart(rec map[string]any, logger *slog.Logger) (seconds float64, fromMillis bool) {
	for _, field := range startFields {
		v, ok := rec[field.name]
		if !ok || v == nil {
			continue
		}

		if s, isString := v.(string); isString {
			secs, err := timestamp.Parse(s)
			if err != nil {
				logger.Warn("Malformed timestamp field, trying next candidate",
					"field", field.name, "value", s)
				continue
			}
			return float64(secs), false
		}

		if n, isNumber := asNumber(v); isNumber {
			if field.millis {
				return n / 1000, true
			}
			return n, false
		}
	}
	return 0, false
}

// extractDuration reads a duration field, applying the same unit inference
// as the start field it accompanies. A missing duration is 0, never inferred
// from the next segment.
func extractDuration(rec map[string]any, fromMillis bool) float64 {
	for _, name := range []string{"duration", "dur"} {
		if v, ok := rec[name]; ok {
			if n, isNumber := asNumber(v); isNumber && n >= 0 {
				if fromMillis {
					return n / 1000
				}
				return n
			}
		}
	}
	return 0
}

func firstString(rec map[string]any, fields []string) string {
	for _, name := range fields {
		if v, ok := rec[name]; ok {
			if s, isString := v.(string); isString {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

package chapters

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/chapterforge/chapterforge-server/internal/timestamp"
)

// chapterLine matches "MM:SS Title", "HH:MM:SS - Title" and similar. Lines
// that do not match are model noise and are skipped, never fatal.
var chapterLine = regexp.MustCompile(`^(\d{1,2}:\d{2}(?::\d{2})?)\s*-?\s*(.+)$`)

// ParseCompletion turns the completion service's freeform multi-line reply
// into a validated chapter list. Guarantees on the result: never empty,
// first chapter decodes to 0 seconds, decoded times strictly increasing,
// none past totalDuration.
func ParseCompletion(content string, totalDuration float64, logger *slog.Logger) []Chapter {
	type timed struct {
		chapter Chapter
		seconds int
	}
	var parsed []timed

	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		match := chapterLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		stamp := strings.TrimSpace(match[1])
		title := strings.TrimSpace(match[2])
		if title == "" {
			continue
		}

		seconds, err := timestamp.Parse(stamp)
		if err != nil {
			logger.Warn("Skipping chapter with malformed timestamp", "timestamp", stamp)
			continue
		}
		if totalDuration > 0 && float64(seconds) > totalDuration {
			logger.Info("Skipping chapter past video duration",
				"timestamp", stamp,
				"duration", timestamp.Format(totalDuration),
			)
			continue
		}

		parsed = append(parsed, timed{
			// Re-encode so the output timestamp is canonical regardless
			// of how the model padded it.
			chapter: Chapter{Timestamp: timestamp.Format(float64(seconds)), Title: title},
			seconds: seconds,
		})
	}

	if len(parsed) == 0 {
		return []Chapter{introChapter}
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].seconds < parsed[j].seconds
	})

	// Duplicate decoded times keep only the first occurrence.
	out := make([]Chapter, 0, len(parsed)+1)
	lastSeconds := -1
	for _, p := range parsed {
		if p.seconds == lastSeconds {
			continue
		}
		lastSeconds = p.seconds
		out = append(out, p.chapter)
	}

	if first, _ := timestamp.Parse(out[0].Timestamp); first != 0 {
		out = append([]Chapter{introChapter}, out...)
	}

	return out
}

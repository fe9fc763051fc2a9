package chapters

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/chapterforge/chapterforge-server/internal/anchors"
	"github.com/chapterforge/chapterforge-server/internal/transcript"
)

const (
	// titleWindow is the half-width of the segment window a local title is
	// synthesized from.
	titleWindow = 2
	// maxTitleLen caps locally synthesized titles at a display-reasonable
	// length.
	maxTitleLen = 40
	// fallbackTitle is used when nothing usable survives cleanup.
	fallbackTitle = "Section"
)

// fillerWords are stripped, whole-word and case-insensitive, before a title
// is cut from transcript text.
var fillerWords = regexp.MustCompile(`(?i)\b(um|uh|like|you know|so|basically|actually)\b`)

// sentenceEnd splits cleaned text into clauses.
var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// GenerateLocal derives chapters directly from transcript text with no
// completion call, anchoring titles at fixed intervals. It refuses untimed
// transcripts; the caller has no local path for those.
func GenerateLocal(t transcript.Transcript, opts anchors.Options, logger *slog.Logger) ([]Chapter, error) {
	indices, err := anchors.SelectFixed(t, opts)
	if err != nil {
		return nil, err
	}

	out := make([]Chapter, 0, len(indices))
	for i, idx := range indices {
		if i == 0 {
			out = append(out, Chapter{Timestamp: t.Segments[idx].Timestamp, Title: introChapter.Title})
			continue
		}
		out = append(out, Chapter{
			Timestamp: t.Segments[idx].Timestamp,
			Title:     TitleFromText(windowText(t, idx)),
		})
	}

	logger.Debug("Generated chapters locally",
		"segments", len(t.Segments),
		"chapters", len(out),
	)
	return out, nil
}

// TitleFromText synthesizes a short chapter title from raw transcript text:
// strip fillers, keep the first clause, capitalize, and truncate on a word
// boundary around 40 characters.
func TitleFromText(text string) string {
	if strings.TrimSpace(text) == "" {
		return fallbackTitle
	}

	cleaned := fillerWords.ReplaceAllString(text, "")
	first := sentenceEnd.Split(cleaned, 2)[0]
	title := strings.Join(strings.Fields(first), " ")

	// Cut on runes, not bytes; multi-byte text must never split mid-rune.
	runes := []rune(title)
	if len(runes) > maxTitleLen {
		cut := string(runes[:maxTitleLen-3])
		if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
			cut = cut[:idx]
		}
		runes = []rune(cut + "...")
	}

	if len(runes) < 3 {
		return fallbackTitle
	}

	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func windowText(t transcript.Transcript, idx int) string {
	lo := idx - titleWindow
	if lo < 0 {
		lo = 0
	}
	hi := idx + titleWindow + 1
	if hi > len(t.Segments) {
		hi = len(t.Segments)
	}
	parts := make([]string, 0, hi-lo)
	for _, seg := range t.Segments[lo:hi] {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}

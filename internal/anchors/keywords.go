package anchors

import "strings"

// stopWords are excluded from keyword extraction; what remains after
// filtering approximates the content words of a context window.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "but": {}, "or": {}, "for": {},
	"nor": {}, "on": {}, "at": {}, "to": {}, "by": {}, "is": {}, "am": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "shall": {}, "should": {}, "can": {},
	"could": {}, "may": {}, "might": {}, "must": {}, "so": {}, "such": {},
	"that": {}, "which": {}, "who": {}, "whom": {}, "this": {}, "these": {},
	"those": {}, "then": {}, "than": {}, "when": {}, "why": {}, "how": {},
	"what": {}, "where": {}, "with": {}, "um": {}, "uh": {}, "like": {},
	"just": {}, "very": {}, "really": {}, "quite": {}, "actually": {},
	"basically": {},
}

// transitionMarkers are discourse phrases that tend to open a new topic.
var transitionMarkers = []string{
	"next", "now let's", "moving on", "let's talk about", "turning to",
	"another", "additionally", "furthermore", "in addition", "next point",
	"let me show you", "as you can see", "new topic", "chapter", "section",
}

// extractKeywords lowercases the text, strips punctuation, and returns the
// set of content words longer than three characters.
func extractKeywords(text string) map[string]struct{} {
	if text == "" {
		return nil
	}

	cleaned := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '\'' {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	keywords := make(map[string]struct{})
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords[word] = struct{}{}
	}
	return keywords
}

// overlapRatio is the share of the previous keyword set also present in the
// current one. An empty previous set yields 0, which reads as a transition.
func overlapRatio(current, previous map[string]struct{}) float64 {
	if len(previous) == 0 {
		return 0
	}
	var shared int
	for word := range current {
		if _, ok := previous[word]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(previous))
}

// hasTransitionMarker reports whether the text contains a discourse marker.
func hasTransitionMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range transitionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

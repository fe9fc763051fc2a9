// Package chapters parses completion-service output into validated chapter
// lists and generates chapters locally when no completion service is
// reachable.
package chapters

// Chapter is the final output unit: a canonical timestamp plus a short title.
type Chapter struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
}

// LegacyChapter mirrors Chapter under the field names older consumers
// expect. Responses carry both representations.
type LegacyChapter struct {
	Time  string `json:"time"`
	Title string `json:"title"`
}

// Legacy converts a chapter list to the legacy field naming.
func Legacy(list []Chapter) []LegacyChapter {
	out := make([]LegacyChapter, len(list))
	for i, ch := range list {
		out[i] = LegacyChapter{Time: ch.Timestamp, Title: ch.Title}
	}
	return out
}

// introChapter is the guaranteed leading chapter.
var introChapter = Chapter{Timestamp: "00:00", Title: "Introduction"}

// Package extract fetches a video's caption track and hands it back as a
// raw transcript payload for normalization.
package extract

import (
	"regexp"

	"github.com/chapterforge/chapterforge-server/internal/errors"
)

// videoIDPattern matches the 11-character video identifier.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// watchURLPattern pulls the identifier out of the URL shapes in the wild:
// watch pages, short links, embeds, and channel video paths.
var watchURLPattern = regexp.MustCompile(`(?:youtu\.be/|/v/|/u/\w/|/embed/|/shorts/|watch\?(?:.*&)?v=)([A-Za-z0-9_-]{11})`)

// VideoID extracts the video identifier from a URL, or validates a bare
// identifier passed through unchanged.
func VideoID(input string) (string, error) {
	if videoIDPattern.MatchString(input) {
		return input, nil
	}
	if m := watchURLPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	return "", errors.Validation("not a recognizable video URL or identifier")
}

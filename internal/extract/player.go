package extract

import (
	"encoding/json/v2"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/chapterforge/chapterforge-server/internal/errors"
)

// playerResponseMarker precedes the JSON object embedded in the watch
// page that carries caption track metadata.
const playerResponseMarker = "ytInitialPlayerResponse"

// captionTrack is one entry in the player's caption track list.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
	Name         struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
}

type playerResponse struct {
	Captions struct {
		TracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// captionTracks parses the watch page and returns the caption track list.
func captionTracks(page []byte) ([]captionTrack, error) {
	payload, err := playerResponseJSON(page)
	if err != nil {
		return nil, err
	}

	var pr playerResponse
	if err := json.Unmarshal([]byte(payload), &pr); err != nil {
		return nil, errors.Wrap(err, errors.CodeExtractionFailed, "decode player response")
	}

	tracks := pr.Captions.TracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.ExtractionFailed("no caption tracks for this video")
	}
	return tracks, nil
}

// selectTrack prefers the auto-generated English track, then any English
// track, then the first track available.
func selectTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if t.LanguageCode == "en" && t.Kind == "asr" {
			return t
		}
	}
	for _, t := range tracks {
		if t.LanguageCode == "en" {
			return t
		}
	}
	return tracks[0]
}

// playerResponseJSON walks the watch page's script elements and cuts the
// player response object out of the one that assigns it.
func playerResponseJSON(page []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExtractionFailed, "parse watch page")
	}

	var payload string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if payload != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && n.FirstChild != nil {
			script := n.FirstChild.Data
			if idx := strings.Index(script, playerResponseMarker); idx >= 0 {
				if obj, err := cutJSONObject(script[idx:]); err == nil {
					payload = obj
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if payload == "" {
		return "", errors.ExtractionFailed("player response not found in watch page")
	}
	return payload, nil
}

// cutJSONObject returns the first balanced JSON object in s, tracking
// string literals and escapes so braces inside values don't end the scan.
func cutJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no object start")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced object")
}

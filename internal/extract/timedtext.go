package extract

import (
	"encoding/json/v2"
	"encoding/xml"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/chapterforge/chapterforge-server/internal/errors"
)

// json3Response is the timedtext payload in fmt=json3 form.
type json3Response struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	StartMs    *int64 `json:"tStartMs"`
	DurationMs int64  `json:"dDurationMs"`
	Segs       []struct {
		UTF8 string `json:"utf8"`
	} `json:"segs"`
}

// parseJSON3 converts a fmt=json3 timedtext body into loose segment
// records. Events without segs or a start time are skipped.
func parseJSON3(body []byte) ([]map[string]any, error) {
	var resp json3Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, errors.CodeExtractionFailed, "decode json3 captions")
	}
	if len(resp.Events) == 0 {
		return nil, errors.ExtractionFailed("caption response has no events")
	}

	recs := make([]map[string]any, 0, len(resp.Events))
	for _, ev := range resp.Events {
		if ev.StartMs == nil || len(ev.Segs) == 0 {
			continue
		}
		var text strings.Builder
		for _, seg := range ev.Segs {
			text.WriteString(seg.UTF8)
		}
		t := strings.TrimSpace(text.String())
		if t == "" {
			continue
		}
		recs = append(recs, map[string]any{
			"text":     t,
			"start":    float64(*ev.StartMs) / 1000,
			"duration": float64(ev.DurationMs) / 1000,
		})
	}
	if len(recs) == 0 {
		return nil, errors.ExtractionFailed("caption response has no usable events")
	}
	return recs, nil
}

// xmlTranscript is the legacy timedtext payload served when json3 is not
// available for a track.
type xmlTranscript struct {
	XMLName xml.Name  `xml:"transcript"`
	Texts   []xmlText `xml:"text"`
}

type xmlText struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

// parseTimedtextXML converts a legacy XML timedtext body into loose
// segment records. Caption text arrives entity-escaped, sometimes twice.
func parseTimedtextXML(body []byte) ([]map[string]any, error) {
	var doc xmlTranscript
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeExtractionFailed, "decode xml captions")
	}
	if len(doc.Texts) == 0 {
		return nil, errors.ExtractionFailed("caption document has no text nodes")
	}

	recs := make([]map[string]any, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		start, err := strconv.ParseFloat(t.Start, 64)
		if err != nil {
			continue
		}
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		recs = append(recs, map[string]any{
			"text":     text,
			"start":    start,
			"duration": dur,
		})
	}
	if len(recs) == 0 {
		return nil, errors.ExtractionFailed("caption document has no usable text nodes")
	}
	return recs, nil
}

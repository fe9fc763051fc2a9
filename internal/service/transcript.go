package service

import (
	"context"
	"log/slog"

	"github.com/chapterforge/chapterforge-server/internal/errors"
	"github.com/chapterforge/chapterforge-server/internal/extract"
	"github.com/chapterforge/chapterforge-server/internal/transcript"
)

// TranscriptEntry is one line of a fetched transcript on the wire.
type TranscriptEntry struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// TranscriptResult is a fetched, normalized transcript.
type TranscriptResult struct {
	VideoID string
	Track   string
	Entries []TranscriptEntry
	// Raw is kept so callers can feed the transcript straight into
	// chapter generation without a round trip through the wire format.
	Raw transcript.Raw
}

// TranscriptService fetches caption tracks for public videos.
type TranscriptService struct {
	extractor *extract.Extractor
	logger    *slog.Logger
}

// NewTranscriptService creates a transcript service.
func NewTranscriptService(extractor *extract.Extractor, logger *slog.Logger) *TranscriptService {
	return &TranscriptService{extractor: extractor, logger: logger}
}

// Fetch retrieves and normalizes the transcript for a video URL or ID.
func (s *TranscriptService) Fetch(ctx context.Context, videoURL string) (*TranscriptResult, error) {
	res, err := s.extractor.Fetch(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	t := transcript.Normalize(res.Raw, s.logger)
	if t.Empty() {
		return nil, errors.ExtractionFailed("caption track normalized to nothing")
	}

	entries := make([]TranscriptEntry, len(t.Segments))
	for i, seg := range t.Segments {
		entries[i] = TranscriptEntry{Timestamp: seg.Timestamp, Text: seg.Text}
	}

	s.logger.Info("transcript fetched",
		"video_id", res.VideoID,
		"track", res.Track,
		"segments", len(entries),
	)

	return &TranscriptResult{
		VideoID: res.VideoID,
		Track:   res.Track,
		Entries: entries,
		Raw:     res.Raw,
	}, nil
}

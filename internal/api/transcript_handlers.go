package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/chapterforge/chapterforge-server/internal/http/response"
	"github.com/chapterforge/chapterforge-server/internal/service"
)

// GetTranscriptRequest is the transcript retrieval request body.
type GetTranscriptRequest struct {
	VideoURL string `json:"videoUrl" validate:"required"`
}

// GetTranscriptResponse is the transcript retrieval response body.
type GetTranscriptResponse struct {
	Success    bool                      `json:"success"`
	VideoID    string                    `json:"videoId"`
	Transcript []service.TranscriptEntry `json:"transcript"`
}

// handleGetTranscript handles POST /api/v1/transcript.
func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	var req GetTranscriptRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", false, s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Video URL is required", false, s.logger)
		return
	}

	result, err := s.transcriptService.Fetch(r.Context(), req.VideoURL)
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.OK(w, GetTranscriptResponse{
		Success:    true,
		VideoID:    result.VideoID,
		Transcript: result.Entries,
	}, s.logger)
}

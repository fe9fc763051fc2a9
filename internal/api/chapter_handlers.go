package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/chapterforge/chapterforge-server/internal/chapters"
	"github.com/chapterforge/chapterforge-server/internal/http/response"
	"github.com/chapterforge/chapterforge-server/internal/service"
	"github.com/chapterforge/chapterforge-server/internal/transcript"
)

// GenerateChaptersRequest is the chapter generation request body. The
// snake_case credential fields predate this server and are kept for the
// extension builds that send them.
type GenerateChaptersRequest struct {
	// Transcript may be a string, an array of segment records, or any
	// other JSON value; normalization sorts out the shape.
	Transcript any    `json:"transcript"`
	VideoID    string `json:"videoId,omitempty"`
	// OpenAIKey is a caller-supplied completion credential.
	OpenAIKey string `json:"openai_api_key,omitempty"`
	// UseDirect opts in to spending the caller's credential.
	UseDirect bool `json:"use_openai_direct,omitempty"`
	// Debug asks for diagnostic detail in the response.
	Debug bool `json:"debug,omitempty"`
}

// GenerateChaptersResponse carries the chapter list twice: under the
// current field names and under the legacy ones older clients read.
type GenerateChaptersResponse struct {
	Titles   []chapters.Chapter       `json:"titles"`
	Chapters []chapters.LegacyChapter `json:"chapters"`
	Debug    *service.DebugInfo       `json:"debug,omitempty"`
}

// handleGenerateChapters handles POST /api/v1/chapters.
func (s *Server) handleGenerateChapters(w http.ResponseWriter, r *http.Request) {
	var req GenerateChaptersRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", false, s.logger)
		return
	}
	if req.Transcript == nil {
		response.Error(w, http.StatusBadRequest, "Transcript is required", false, s.logger)
		return
	}

	// The caller's credential participates only when they opted in.
	userKey := ""
	if req.UseDirect {
		userKey = req.OpenAIKey
	}

	result, err := s.chapterService.Generate(r.Context(), service.GenerateRequest{
		Raw:     transcript.DecodeRaw(req.Transcript),
		VideoID: req.VideoID,
		UserKey: userKey,
		Debug:   req.Debug,
	})
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	w.Header().Set("X-Generation-Method", result.Strategy)
	response.OK(w, GenerateChaptersResponse{
		Titles:   result.Chapters,
		Chapters: chapters.Legacy(result.Chapters),
		Debug:    result.Debug,
	}, s.logger)
}

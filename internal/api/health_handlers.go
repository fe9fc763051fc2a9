package api

import (
	"net/http"

	"github.com/chapterforge/chapterforge-server/internal/http/response"
)

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, HealthResponse{Status: "ok"}, s.logger)
}

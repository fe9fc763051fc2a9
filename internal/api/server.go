// Package api provides the HTTP server and handlers for chapter
// generation and transcript retrieval.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chapterforge/chapterforge-server/internal/ratelimit"
	"github.com/chapterforge/chapterforge-server/internal/service"
	"github.com/chapterforge/chapterforge-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	chapterService    *service.ChapterService
	transcriptService *service.TranscriptService
	limiter           *ratelimit.KeyedLimiter
	validator         *validation.Validator
	router            *chi.Mux
	logger            *slog.Logger
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(
	chapterService *service.ChapterService,
	transcriptService *service.TranscriptService,
	limiter *ratelimit.KeyedLimiter,
	validator *validation.Validator,
	logger *slog.Logger,
) *Server {
	s := &Server{
		chapterService:    chapterService,
		transcriptService: transcriptService,
		limiter:           limiter,
		validator:         validator,
		router:            chi.NewRouter(),
		logger:            logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack. CORS is wide open:
// the primary clients are browser extensions running on arbitrary
// origins.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With", "X-Api-Version", "X-Generation-Method"},
		ExposedHeaders: []string{"X-Generation-Method"},
		MaxAge:         300,
	}))
	s.router.Use(rateLimitMiddleware(s.limiter, s.logger))
}

// setupRoutes configures all HTTP routes. The /api/generate-chapters and
// /api/get-transcript aliases preserve the paths deployed extension
// builds still call.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/chapters", s.handleGenerateChapters)
		r.Post("/transcript", s.handleGetTranscript)
	})

	// Legacy aliases.
	s.router.Post("/api/generate-chapters", s.handleGenerateChapters)
	s.router.Post("/api/get-transcript", s.handleGetTranscript)
}

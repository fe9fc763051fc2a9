package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/chapterforge/chapterforge-server/internal/http/response"
	"github.com/chapterforge/chapterforge-server/internal/ratelimit"
)

// rateLimitMiddleware limits requests per client IP. Throttled callers
// get a 429 with the local-generation hint set, since a busy server is a
// recoverable condition for extension clients.
func rateLimitMiddleware(limiter *ratelimit.KeyedLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", true, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the client address set by the RealIP middleware,
// without the port.
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if idx := strings.LastIndexByte(ip, ':'); idx >= 0 {
		return ip[:idx]
	}
	return ip
}

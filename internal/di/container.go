// Package di provides dependency injection configuration for the server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/chapterforge/chapterforge-server/internal/completion"
	"github.com/chapterforge/chapterforge-server/internal/config"
	"github.com/chapterforge/chapterforge-server/internal/di/providers"
	"github.com/chapterforge/chapterforge-server/internal/extract"
	"github.com/chapterforge/chapterforge-server/internal/ratelimit"
	"github.com/chapterforge/chapterforge-server/internal/service"
	"github.com/chapterforge/chapterforge-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Clients
	do.Provide(injector, providers.ProvideCompletionFactory)
	do.Provide(injector, providers.ProvideExtractor)

	// Business services
	do.Provide(injector, providers.ProvideChapterService)
	do.Provide(injector, providers.ProvideTranscriptService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap triggers lazy initialization of all services, ending with the
// HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*slog.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*ratelimit.KeyedLimiter](injector)
	_ = do.MustInvoke[completion.Factory](injector)
	_ = do.MustInvoke[*extract.Extractor](injector)
	_ = do.MustInvoke[*service.ChapterService](injector)
	_ = do.MustInvoke[*service.TranscriptService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	return nil
}

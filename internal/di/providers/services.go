package providers

import (
	"log/slog"
	"time"

	"github.com/samber/do/v2"

	"github.com/chapterforge/chapterforge-server/internal/anchors"
	"github.com/chapterforge/chapterforge-server/internal/completion"
	"github.com/chapterforge/chapterforge-server/internal/config"
	"github.com/chapterforge/chapterforge-server/internal/extract"
	"github.com/chapterforge/chapterforge-server/internal/service"
)

// ProvideCompletionFactory provides the completion client factory.
func ProvideCompletionFactory(i do.Injector) (completion.Factory, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return completion.NewOpenAIFactory(completion.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.RequestTimeout,
	}, log), nil
}

// ProvideExtractor provides the caption extractor.
func ProvideExtractor(i do.Injector) (*extract.Extractor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return extract.New(extract.Config{
		HTTPTimeout: cfg.Extractor.HTTPTimeout,
		MaxAttempts: uint64(cfg.Extractor.MaxAttempts),
		BaseDelay:   cfg.Extractor.BaseDelay,
	}, log), nil
}

// ProvideChapterService provides the chapter generation service.
func ProvideChapterService(i do.Injector) (*service.ChapterService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	factory := do.MustInvoke[completion.Factory](i)
	log := do.MustInvoke[*slog.Logger](i)

	opts := anchors.DefaultOptions()
	opts.MinAnchors = cfg.Generator.MinChapters
	opts.MaxAnchors = cfg.Generator.MaxChapters
	opts.SecondsPerAnchor = float64(cfg.Generator.SecondsPerChapter)
	opts.OverlapThreshold = cfg.Generator.OverlapThreshold
	opts.SpacingDivisor = cfg.Generator.SpacingDivisor
	opts.GapSeconds = cfg.Generator.GapSeconds

	settings := service.Settings{
		Anchors:       opts,
		ContextWindow: cfg.Generator.ContextWindow,
		SampleCount:   cfg.Generator.SampleCount,
		Temperature:   cfg.OpenAI.Temperature,
	}

	return service.NewChapterService(factory, settings, log), nil
}

// ProvideTranscriptService provides the transcript retrieval service.
func ProvideTranscriptService(i do.Injector) (*service.TranscriptService, error) {
	extractor := do.MustInvoke[*extract.Extractor](i)
	log := do.MustInvoke[*slog.Logger](i)
	return service.NewTranscriptService(extractor, log), nil
}

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Package service implements chapter generation and transcript retrieval
// on top of the domain packages.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chapterforge/chapterforge-server/internal/anchors"
	"github.com/chapterforge/chapterforge-server/internal/chapters"
	"github.com/chapterforge/chapterforge-server/internal/completion"
	"github.com/chapterforge/chapterforge-server/internal/errors"
	"github.com/chapterforge/chapterforge-server/internal/prompt"
	"github.com/chapterforge/chapterforge-server/internal/timestamp"
	"github.com/chapterforge/chapterforge-server/internal/transcript"
)

// Generation strategy names, in attempt order. They surface in debug
// payloads and the X-Generation-Method response header.
const (
	StrategyServerKey = "server-key"
	StrategyUserKey   = "user-key"
	StrategyLocal     = "local"
)

// Settings tunes chapter generation.
type Settings struct {
	// Anchors configures key-segment selection.
	Anchors anchors.Options
	// ContextWindow is segments of context per anchor in the prompt.
	ContextWindow int
	// SampleCount is additional segments sampled into long prompts.
	SampleCount int
	// Temperature for the completion request.
	Temperature float32
}

// DefaultSettings returns production defaults.
func DefaultSettings() Settings {
	return Settings{
		Anchors:       anchors.DefaultOptions(),
		ContextWindow: prompt.DefaultContextWindow,
		SampleCount:   prompt.DefaultSampleCount,
		Temperature:   0.5,
	}
}

// GenerateRequest is one chapter generation job.
type GenerateRequest struct {
	// Raw is the transcript payload as received.
	Raw transcript.Raw
	// VideoID is echoed into debug output when known.
	VideoID string
	// UserKey is an optional caller-supplied completion credential tried
	// after the server credential.
	UserKey string
	// Debug requests diagnostic detail in the result.
	Debug bool
}

// GenerateResult is a successful generation.
type GenerateResult struct {
	Chapters []chapters.Chapter
	// Strategy names the strategy that produced the chapters.
	Strategy string
	Debug    *DebugInfo
}

// DebugInfo is the diagnostic payload returned when a caller asks for it.
type DebugInfo struct {
	RequestID       string            `json:"requestId"`
	VideoID         string            `json:"videoId,omitempty"`
	Segments        int               `json:"segments"`
	Untimed         bool              `json:"untimed"`
	DurationSeconds float64           `json:"durationSeconds"`
	Duration        string            `json:"duration"`
	Anchors         []string          `json:"anchors,omitempty"`
	Strategy        string            `json:"strategy"`
	Attempts        []string          `json:"attempts"`
	TitleAnalysis   chapters.Analysis `json:"titleAnalysis"`
}

// ChapterService turns raw transcripts into chapter lists.
type ChapterService struct {
	factory  completion.Factory
	settings Settings
	logger   *slog.Logger
}

// NewChapterService creates a chapter service.
func NewChapterService(factory completion.Factory, settings Settings, logger *slog.Logger) *ChapterService {
	return &ChapterService{
		factory:  factory,
		settings: settings,
		logger:   logger,
	}
}

// Generate normalizes the transcript and walks the strategy chain: the
// server credential, then a caller-supplied credential, then local
// synthesis. The first strategy yielding at least one chapter wins; a
// strategy failure is logged and the next one runs.
func (s *ChapterService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	requestID := uuid.NewString()
	log := s.logger.With("request_id", requestID)

	t := transcript.Normalize(req.Raw, log)
	if t.Empty() {
		return nil, errors.MissingTranscript("transcript is required")
	}

	duration := t.TotalDurationSeconds()
	durationLabel := timestamp.Format(duration)

	var (
		anchorIdx  []int
		userPrompt string
	)
	if t.Untimed {
		// No usable timing: the model sees plain text, and local
		// synthesis is off the table.
		userPrompt = prompt.AssembleText(t)
	} else {
		var err error
		anchorIdx, err = anchors.Select(t, s.settings.Anchors)
		if err != nil {
			return nil, err
		}
		userPrompt = prompt.Assemble(prompt.Input{
			Transcript:    t,
			Anchors:       anchorIdx,
			ContextWindow: s.settings.ContextWindow,
			SampleCount:   s.settings.SampleCount,
		})
	}

	log.Info("generating chapters",
		"video_id", req.VideoID,
		"segments", len(t.Segments),
		"untimed", t.Untimed,
		"duration", durationLabel,
		"anchors", len(anchorIdx),
	)

	completionReq := completion.Request{
		System:      prompt.SystemRules(durationLabel),
		User:        userPrompt,
		Temperature: s.settings.Temperature,
	}

	var attempts []string
	var lastErr error

	for _, strategy := range s.strategies(req.UserKey, t.Untimed) {
		list, err := s.attempt(ctx, strategy, completionReq, t, duration, log)
		if err != nil {
			attempts = append(attempts, strategy.name+": "+err.Error())
			lastErr = err
			continue
		}

		attempts = append(attempts, strategy.name+": ok")
		log.Info("chapters generated",
			"strategy", strategy.name,
			"chapters", len(list),
		)

		res := &GenerateResult{Chapters: list, Strategy: strategy.name}
		if req.Debug {
			res.Debug = s.debugInfo(requestID, req.VideoID, t, duration, anchorIdx, strategy.name, attempts, list)
		}
		return res, nil
	}

	if lastErr == nil {
		lastErr = errors.NoChapters("no generation strategy produced chapters")
	}
	log.Warn("all generation strategies failed", "attempts", attempts)
	return nil, lastErr
}

// strategy is one link in the generation chain.
type strategy struct {
	name string
	// client builds the completion client, or reports why it cannot.
	// Nil client with nil error marks the local strategy.
	client func() (completion.Client, error)
}

func (s *ChapterService) strategies(userKey string, untimed bool) []strategy {
	list := []strategy{
		{name: StrategyServerKey, client: s.factory.Server},
	}
	if userKey != "" {
		list = append(list, strategy{
			name:   StrategyUserKey,
			client: func() (completion.Client, error) { return s.factory.ForKey(userKey), nil },
		})
	}
	// Local synthesis slices the transcript by time, so it has nothing to
	// offer an untimed one.
	if !untimed {
		list = append(list, strategy{name: StrategyLocal})
	}
	return list
}

func (s *ChapterService) attempt(
	ctx context.Context,
	strat strategy,
	req completion.Request,
	t transcript.Transcript,
	duration float64,
	log *slog.Logger,
) ([]chapters.Chapter, error) {
	if strat.client == nil {
		return chapters.GenerateLocal(t, s.settings.Anchors, log)
	}

	client, err := strat.client()
	if err != nil {
		return nil, err
	}

	content, err := client.Complete(ctx, req)
	if err != nil {
		log.Warn("completion attempt failed", "strategy", strat.name, "error", err)
		return nil, err
	}

	list := chapters.ParseCompletion(content, duration, log)
	if len(list) == 0 {
		return nil, errors.NoChapters("completion contained no parseable chapters")
	}
	return list, nil
}

func (s *ChapterService) debugInfo(
	requestID, videoID string,
	t transcript.Transcript,
	duration float64,
	anchorIdx []int,
	strategyName string,
	attempts []string,
	list []chapters.Chapter,
) *DebugInfo {
	info := &DebugInfo{
		RequestID:       requestID,
		VideoID:         videoID,
		Segments:        len(t.Segments),
		Untimed:         t.Untimed,
		DurationSeconds: duration,
		Duration:        timestamp.Format(duration),
		Strategy:        strategyName,
		Attempts:        attempts,
		TitleAnalysis:   chapters.Analyze(list),
	}
	for _, i := range anchorIdx {
		info.Anchors = append(info.Anchors, t.Segments[i].Timestamp)
	}
	return info
}

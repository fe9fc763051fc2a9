package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/chapterforge/chapterforge-server/internal/errors"
	"github.com/chapterforge/chapterforge-server/internal/transcript"
)

const (
	defaultWatchBase   = "https://www.youtube.com/watch?v="
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond

	// Desktop user agent; the watch page serves a different shell to
	// unknown agents and the player response may be absent from it.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Config holds extractor settings.
type Config struct {
	// WatchBase is the watch page URL prefix the video ID is appended to.
	// Empty means the public default.
	WatchBase string
	// HTTPTimeout bounds a single page or caption fetch.
	HTTPTimeout time.Duration
	// MaxAttempts caps retries per fetch, including the first try.
	MaxAttempts uint64
	// BaseDelay seeds the exponential retry backoff.
	BaseDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.WatchBase == "" {
		c.WatchBase = defaultWatchBase
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	return c
}

// Extractor fetches caption tracks for public videos.
type Extractor struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New creates an extractor.
func New(cfg Config, logger *slog.Logger) *Extractor {
	cfg = cfg.withDefaults()
	return &Extractor{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logger,
	}
}

// Result is an extracted transcript plus the metadata callers echo back.
type Result struct {
	VideoID  string
	Track    string
	Raw      transcript.Raw
	Segments int
}

// Fetch resolves the video URL or ID, picks a caption track, and returns
// its segments as a raw transcript payload.
func (e *Extractor) Fetch(ctx context.Context, videoURL string) (*Result, error) {
	id, err := VideoID(videoURL)
	if err != nil {
		return nil, err
	}

	page, err := e.get(ctx, e.cfg.WatchBase+id)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeExtractionFailed, "fetch watch page for %s", id)
	}

	tracks, err := captionTracks(page)
	if err != nil {
		return nil, err
	}
	track := selectTrack(tracks)

	e.logger.Debug("caption track selected",
		"video_id", id,
		"language", track.LanguageCode,
		"kind", track.Kind,
		"name", track.Name.SimpleText,
	)

	recs, err := e.fetchCaptions(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Result{
		VideoID:  id,
		Track:    track.LanguageCode,
		Raw:      transcript.Records(recs),
		Segments: len(recs),
	}, nil
}

// fetchCaptions tries the json3 timedtext format first and falls back to
// the legacy XML document some tracks still serve.
func (e *Extractor) fetchCaptions(ctx context.Context, baseURL string) ([]map[string]any, error) {
	body, err := e.get(ctx, baseURL+"&fmt=json3")
	if err == nil {
		if recs, perr := parseJSON3(body); perr == nil {
			return recs, nil
		}
	}

	body, err = e.get(ctx, baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExtractionFailed, "fetch captions")
	}
	return parseTimedtextXML(body)
}

// get fetches a URL with jittered exponential retries. Client errors
// other than throttling are not retried.
func (e *Extractor) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", "en")

		resp, err := e.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err = io.ReadAll(resp.Body)
			return err
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("status %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.BaseDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, e.cfg.MaxAttempts-1), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}

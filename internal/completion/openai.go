package completion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chapterforge/chapterforge-server/internal/errors"
	"github.com/chapterforge/chapterforge-server/internal/ratelimit"
)

const (
	// Outbound rate limit per credential. Keeps one misbehaving key from
	// starving the others when the provider throttles the account.
	outboundRPS   = 2.0
	outboundBurst = 4

	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Config holds provider settings for the OpenAI-compatible backend.
type Config struct {
	// APIKey is the server-side credential. May be empty; user-supplied
	// keys still work through ForKey.
	APIKey string
	// Model names the chat model to request.
	Model string
	// BaseURL overrides the provider endpoint, for OpenAI-compatible
	// gateways. Empty means the upstream default.
	BaseURL string
	// Timeout bounds a single completion round trip.
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// OpenAIFactory builds rate-limited OpenAI clients. All clients built by
// one factory share the per-credential limiter.
type OpenAIFactory struct {
	cfg     Config
	limiter *ratelimit.KeyedLimiter
	logger  *slog.Logger
}

// NewOpenAIFactory creates a factory for the given provider settings.
func NewOpenAIFactory(cfg Config, logger *slog.Logger) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:     cfg.withDefaults(),
		limiter: ratelimit.New(outboundRPS, outboundBurst),
		logger:  logger,
	}
}

// Server returns a client bound to the configured server credential.
func (f *OpenAIFactory) Server() (Client, error) {
	if strings.TrimSpace(f.cfg.APIKey) == "" {
		return nil, errNoServerKey()
	}
	return f.client(f.cfg.APIKey), nil
}

// ForKey returns a client bound to a caller-supplied credential.
func (f *OpenAIFactory) ForKey(key string) Client {
	return f.client(key)
}

func (f *OpenAIFactory) client(key string) *openAIClient {
	cc := openai.DefaultConfig(key)
	if f.cfg.BaseURL != "" {
		cc.BaseURL = f.cfg.BaseURL
	}
	cc.HTTPClient = &http.Client{Timeout: f.cfg.Timeout}

	return &openAIClient{
		api:     openai.NewClientWithConfig(cc),
		model:   f.cfg.Model,
		limKey:  fingerprint(key),
		limiter: f.limiter,
		logger:  f.logger,
	}
}

type openAIClient struct {
	api     *openai.Client
	model   string
	limKey  string
	limiter *ratelimit.KeyedLimiter
	logger  *slog.Logger
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := c.limiter.Wait(ctx, c.limKey); err != nil {
		return "", errors.Wrap(err, errors.CodeCompletionUnavailable, "rate limit wait")
	}

	c.logger.Debug("completion request",
		"model", c.model,
		"credential", c.limKey,
		"prompt_bytes", len(req.System)+len(req.User),
	)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	})
	if err != nil {
		return "", mapProviderError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.CompletionUnavailable("provider returned an empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// mapProviderError translates provider failures into the coded errors the
// generation strategy chain keys on.
func mapProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.CredentialInvalid("completion credential rejected").WithCause(err)
		case http.StatusTooManyRequests:
			return errors.RateLimited("completion provider throttled the request").WithCause(err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Wrap(err, errors.CodeCompletionUnavailable, "completion timed out")
	}
	return errors.Wrap(err, errors.CodeCompletionUnavailable, "completion request failed")
}

// fingerprint reduces a credential to a short stable limiter key so raw
// keys never sit in the limiter map or in logs.
func fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:6])
}

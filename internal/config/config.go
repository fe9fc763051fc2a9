// Package config provides application configuration management with
// support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	OpenAI    OpenAIConfig
	Generator GeneratorConfig
	Extractor ExtractorConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// OpenAIConfig holds completion provider configuration.
type OpenAIConfig struct {
	// APIKey is the server-side credential. Empty is allowed; requests
	// then rely on caller-supplied keys or local generation.
	APIKey string
	// Model names the chat model (default: gpt-4o-mini).
	Model string
	// BaseURL overrides the provider endpoint for compatible gateways.
	BaseURL string
	// RequestTimeout bounds one completion round trip (default: 60s).
	RequestTimeout time.Duration
	// Temperature for chapter generation (default: 0.5).
	Temperature float32
}

// GeneratorConfig holds chapter generation tuning.
type GeneratorConfig struct {
	// MinChapters..MaxChapters bound the anchor count (defaults: 5..8).
	MinChapters int
	MaxChapters int
	// SecondsPerChapter sizes the fixed-interval target (default: 300).
	SecondsPerChapter int
	// ContextWindow is segments of context per anchor in the prompt
	// (default: 5).
	ContextWindow int
	// SampleCount is additional segments sampled into long prompts
	// (default: 20).
	SampleCount int
	// OverlapThreshold is the keyword-overlap ratio below which adjacent
	// windows read as a topic change (default: 0.3).
	OverlapThreshold float64
	// SpacingDivisor sets the minimum anchor spacing to
	// segmentCount/SpacingDivisor (default: 20).
	SpacingDivisor int
	// GapSeconds is the silence between segments that forces a transition
	// (default: 60).
	GapSeconds float64
}

// ExtractorConfig holds caption extraction configuration.
type ExtractorConfig struct {
	// MaxAttempts caps fetch retries, including the first try (default: 3).
	MaxAttempts int
	// BaseDelay seeds the retry backoff (default: 500ms).
	BaseDelay time.Duration
	// HTTPTimeout bounds a single fetch (default: 30s).
	HTTPTimeout time.Duration
}

// RateLimitConfig holds inbound rate limiting configuration.
type RateLimitConfig struct {
	// PerMinute is requests allowed per client IP per minute (default: 20).
	PerMinute float64
	// Burst is the per-IP burst size (default: 5).
	Burst int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 120s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	openaiModel := flag.String("openai-model", "", "Chat model for chapter generation")
	openaiBaseURL := flag.String("openai-base-url", "", "Override for the completion endpoint")
	openaiTimeout := flag.String("openai-timeout", "", "Completion request timeout (default: 60s)")

	extractAttempts := flag.String("extract-attempts", "", "Caption fetch attempts (default: 3)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env if present; missing file is not an error.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: value(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: value(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: value(*serverPort, "SERVER_PORT", "8080"),
		},
		OpenAI: OpenAIConfig{
			// The API key never has a flag; it would land in shell history.
			APIKey:      value("", "OPENAI_API_KEY", ""),
			Model:       value(*openaiModel, "OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:     value(*openaiBaseURL, "OPENAI_BASE_URL", ""),
			Temperature: floatValue("", "OPENAI_TEMPERATURE", 0.5),
		},
		Generator: GeneratorConfig{
			MinChapters:       intValue("", "GENERATOR_MIN_CHAPTERS", 5),
			MaxChapters:       intValue("", "GENERATOR_MAX_CHAPTERS", 8),
			SecondsPerChapter: intValue("", "GENERATOR_SECONDS_PER_CHAPTER", 300),
			ContextWindow:     intValue("", "GENERATOR_CONTEXT_WINDOW", 5),
			SampleCount:       intValue("", "GENERATOR_SAMPLE_COUNT", 20),
			OverlapThreshold:  floatValue64("", "GENERATOR_OVERLAP_THRESHOLD", 0.3),
			SpacingDivisor:    intValue("", "GENERATOR_SPACING_DIVISOR", 20),
			GapSeconds:        floatValue64("", "GENERATOR_GAP_SECONDS", 60),
		},
		Extractor: ExtractorConfig{
			MaxAttempts: intValue(*extractAttempts, "EXTRACT_MAX_ATTEMPTS", 3),
		},
		RateLimit: RateLimitConfig{
			PerMinute: floatValue64("", "RATE_LIMIT_PER_MINUTE", 20),
			Burst:     intValue("", "RATE_LIMIT_BURST", 5),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = durationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = durationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "120s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = durationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.OpenAI.RequestTimeout, err = durationValue(*openaiTimeout, "OPENAI_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Extractor.BaseDelay, err = durationValue("", "EXTRACT_BASE_DELAY", "500ms"); err != nil {
		return nil, err
	}
	if cfg.Extractor.HTTPTimeout, err = durationValue("", "EXTRACT_HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all config values are present and consistent.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	if c.Generator.MinChapters < 1 || c.Generator.MaxChapters < c.Generator.MinChapters {
		return errors.New("chapter bounds must satisfy 1 <= min <= max")
	}
	if c.Generator.SecondsPerChapter < 1 {
		return errors.New("seconds per chapter must be positive")
	}
	if c.Generator.OverlapThreshold <= 0 || c.Generator.OverlapThreshold > 1 {
		return errors.New("overlap threshold must be in (0, 1]")
	}
	if c.Generator.SpacingDivisor < 1 || c.Generator.GapSeconds <= 0 {
		return errors.New("anchor spacing settings must be positive")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return errors.New("temperature must be in [0, 2]")
	}
	if c.Extractor.MaxAttempts < 1 {
		return errors.New("extractor attempts must be at least 1")
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst < 1 {
		return errors.New("rate limit must allow at least one request")
	}

	return nil
}

// value returns the first non-empty of flag, env var, and default.
func value(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// intValue returns an int from flag, env var, or default. Unparseable
// values fall back to the default.
func intValue(flagValue, envKey string, defaultValue int) int {
	s := value(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return n
}

// floatValue returns a float32 from flag, env var, or default.
func floatValue(flagValue, envKey string, defaultValue float32) float32 {
	s := value(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return defaultValue
	}
	return float32(f)
}

// floatValue64 returns a float64 from flag, env var, or default.
func floatValue64(flagValue, envKey string, defaultValue float64) float64 {
	s := value(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// durationValue parses a duration from flag, env var, or default.
func durationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := value(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), s, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value, one per line, # starts a comment.
func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)

		// Real environment variables win over .env entries.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, val); err != nil {
				return fmt.Errorf("set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

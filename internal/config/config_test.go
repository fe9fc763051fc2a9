package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{Port: "8080"},
		OpenAI: OpenAIConfig{Temperature: 0.5},
		Generator: GeneratorConfig{
			MinChapters:       5,
			MaxChapters:       8,
			SecondsPerChapter: 300,
			ContextWindow:     5,
			SampleCount:       20,
			OverlapThreshold:  0.3,
			SpacingDivisor:    20,
			GapSeconds:        60,
		},
		Extractor: ExtractorConfig{MaxAttempts: 3},
		RateLimit: RateLimitConfig{PerMinute: 20, Burst: 5},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad environment", func(c *Config) { c.App.Environment = "prod" }},
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"bad port", func(c *Config) { c.Server.Port = "eighty" }},
		{"min above max", func(c *Config) { c.Generator.MinChapters = 9 }},
		{"zero interval", func(c *Config) { c.Generator.SecondsPerChapter = 0 }},
		{"overlap above one", func(c *Config) { c.Generator.OverlapThreshold = 1.5 }},
		{"temperature out of range", func(c *Config) { c.OpenAI.Temperature = 3 }},
		{"zero attempts", func(c *Config) { c.Extractor.MaxAttempts = 0 }},
		{"zero rate limit", func(c *Config) { c.RateLimit.PerMinute = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValueHelpers(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "from-env")
	assert.Equal(t, "from-flag", value("from-flag", "CFG_TEST_STR", "default"))
	assert.Equal(t, "from-env", value("", "CFG_TEST_STR", "default"))
	assert.Equal(t, "default", value("", "CFG_TEST_MISSING", "default"))

	t.Setenv("CFG_TEST_INT", "42")
	assert.Equal(t, 42, intValue("", "CFG_TEST_INT", 7))
	t.Setenv("CFG_TEST_INT", "nope")
	assert.Equal(t, 7, intValue("", "CFG_TEST_INT", 7))

	t.Setenv("CFG_TEST_FLOAT", "0.75")
	assert.InDelta(t, 0.75, floatValue("", "CFG_TEST_FLOAT", 0.5), 0.0001)

	d, err := durationValue("", "CFG_TEST_DUR_MISSING", "45s")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	t.Setenv("CFG_TEST_DUR", "not-a-duration")
	_, err = durationValue("", "CFG_TEST_DUR", "45s")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nENVFILE_TEST_A=hello\nENVFILE_TEST_B=\"quoted\"\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("ENVFILE_TEST_A", "")
	t.Setenv("ENVFILE_TEST_B", "")
	os.Unsetenv("ENVFILE_TEST_A")
	os.Unsetenv("ENVFILE_TEST_B")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("ENVFILE_TEST_A"))
	assert.Equal(t, "quoted", os.Getenv("ENVFILE_TEST_B"))
}

func TestLoadEnvFile_EnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENVFILE_TEST_WIN=file"), 0o600))

	t.Setenv("ENVFILE_TEST_WIN", "real")
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "real", os.Getenv("ENVFILE_TEST_WIN"))
}

func TestLoadEnvFile_BadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("no equals sign"), 0o600))

	assert.Error(t, loadEnvFile(path))
}

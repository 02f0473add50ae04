package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/nexus/internal/llm"
)

// isolate points the config search at an empty directory and clears every
// variable that could leak in from the developer's shell.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{
		"GEMINI_API_KEY", "API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"NEXUS_DB", "NEXUS_LOG_LEVEL", "NEXUS_LOG_FORMAT", "NEXUS_LLM_PROVIDER",
		"NEXUS_WORKSHEET_QUESTIONS", "NEXUS_WORKSHEET_TIME_LIMIT", "NEXUS_CACHE_URL",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DB)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Worksheet.Questions)
	assert.Equal(t, time.Duration(0), cfg.Worksheet.TimeLimit)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Gemini.Model)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.LLM.Gemini.ArtifactModel)
	assert.Equal(t, llm.DefaultConfig().Timeout, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.True(t, cfg.LLM.Breaker.Enabled)

	lc := cfg.LLMProvider()
	assert.Equal(t, "", lc.Provider, "no key configured means no provider")
	assert.Equal(t, llm.DefaultConfig().Retry, lc.Retry)
	assert.Equal(t, llm.DefaultConfig().Breaker, lc.Breaker)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "nexus", "config.yaml"), `
db: /tmp/school.db
log:
  level: debug
  format: json
llm:
  provider: openai
  openai:
    api_key: sk-test
    model: gpt-4o
    artifact_model: gpt-4o-mini
  timeout: 10s
  breaker:
    enabled: false
worksheet:
  questions: 8
  time_limit: 5m
cache:
  url: redis://localhost:6379/1
  ttl: 1h
`)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/school.db", cfg.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Worksheet.Questions)
	assert.Equal(t, 5*time.Minute, cfg.Worksheet.TimeLimit)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Cache.URL)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)

	lc := cfg.LLMProvider()
	assert.Equal(t, llm.ProviderOpenAI, lc.Provider)
	assert.Equal(t, "sk-test", lc.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", lc.OpenAI.Model)
	assert.Equal(t, "gpt-4o-mini", lc.OpenAI.ModelFor(llm.PurposeArtifact))
	assert.Equal(t, "claude-haiku-4-5", lc.Anthropic.ArtifactModel)
	assert.Equal(t, 10*time.Second, lc.Timeout)
	assert.False(t, lc.Breaker.Enabled)
	assert.NoError(t, lc.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "nexus", "config.yaml"), "worksheet:\n  questions: 8\n")

	t.Setenv("NEXUS_WORKSHEET_QUESTIONS", "12")
	t.Setenv("NEXUS_LLM_PROVIDER", "Anthropic")
	t.Setenv("NEXUS_LLM_ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("NEXUS_WORKSHEET_TIME_LIMIT", "90s")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Worksheet.Questions)
	assert.Equal(t, 90*time.Second, cfg.Worksheet.TimeLimit)

	lc := cfg.LLMProvider()
	assert.Equal(t, llm.ProviderAnthropic, lc.Provider)
	assert.Equal(t, "ak-test", lc.Anthropic.APIKey)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "log:\n  level: warn\n")

	cfg, err := Load(LoadOptions{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, err = Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err, "an explicit config file must exist")
}

func TestLoad_EnvFile(t *testing.T) {
	isolate(t)
	envPath := filepath.Join(t.TempDir(), "test.env")
	writeFile(t, envPath, "NEXUS_TEST_CACHE_PROBE=1\nNEXUS_CACHE_TTL=2h\n")
	t.Cleanup(func() {
		os.Unsetenv("NEXUS_TEST_CACHE_PROBE")
		os.Unsetenv("NEXUS_CACHE_TTL")
	})

	cfg, err := Load(LoadOptions{EnvFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "1", os.Getenv("NEXUS_TEST_CACHE_PROBE"))

	_, err = Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err, "an explicit env file must exist")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"level", "NEXUS_LOG_LEVEL", "loud"},
		{"format", "NEXUS_LOG_FORMAT", "xml"},
		{"questions", "NEXUS_WORKSHEET_QUESTIONS", "0"},
		{"too many questions", "NEXUS_WORKSHEET_QUESTIONS", "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load(LoadOptions{})
			assert.Error(t, err)
		})
	}
}

func TestLLMProvider_Discovery(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	lc := cfg.LLMProvider()
	assert.Equal(t, llm.ProviderGemini, lc.Provider)
	assert.Equal(t, "g-key", lc.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-flash", lc.Gemini.Model)
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "topic", "Math")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"topic":"Math"`)
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "nexus"), dir)
}

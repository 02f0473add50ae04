// Package config loads runtime settings from an optional YAML file, a .env
// file and NEXUS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/nexus/internal/llm"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NEXUS"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	DB        string          `mapstructure:"db"` // SQLite file path; empty uses the default location
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Worksheet WorksheetConfig `mapstructure:"worksheet"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// LLMConfig selects and tunes the content provider.
type LLMConfig struct {
	Provider  string         `mapstructure:"provider"`
	Gemini    EndpointConfig `mapstructure:"gemini"`
	Anthropic EndpointConfig `mapstructure:"anthropic"`
	OpenAI    EndpointConfig `mapstructure:"openai"`
	Timeout   time.Duration  `mapstructure:"timeout"`
	Retry     RetryConfig    `mapstructure:"retry"`
	Breaker   BreakerConfig  `mapstructure:"breaker"`
}

// EndpointConfig mirrors llm.Endpoint.
type EndpointConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	Model         string `mapstructure:"model"`
	ArtifactModel string `mapstructure:"artifact_model"`
}

func (e EndpointConfig) endpoint() llm.Endpoint {
	return llm.Endpoint{APIKey: e.APIKey, BaseURL: e.BaseURL, Model: e.Model, ArtifactModel: e.ArtifactModel}
}

// RetryConfig mirrors llm.RetryConfig.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// BreakerConfig mirrors llm.BreakerConfig.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// CacheConfig configures the optional Redis worksheet cache.
type CacheConfig struct {
	URL string        `mapstructure:"url"` // empty disables the cache
	TTL time.Duration `mapstructure:"ttl"`
}

// WorksheetConfig controls quiz sessions.
type WorksheetConfig struct {
	Questions int           `mapstructure:"questions"`
	TimeLimit time.Duration `mapstructure:"time_limit"` // zero means untimed
}

// LoadOptions locates the configuration sources.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. When empty, config.yaml is
	// searched in the user config directory and the working directory, and
	// a missing file is not an error.
	ConfigFile string

	// EnvFile is a dotenv file loaded before the environment is read.
	// Defaults to ".env"; a missing default file is ignored.
	EnvFile string
}

// Load reads configuration from config files and environment variables.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // llm.gemini.api_key -> NEXUS_LLM_GEMINI_API_KEY
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("llm.provider", "")
	for name, ep := range map[string]llm.Endpoint{"gemini": d.Gemini, "anthropic": d.Anthropic, "openai": d.OpenAI} {
		v.SetDefault("llm."+name+".api_key", "")
		v.SetDefault("llm."+name+".base_url", "")
		v.SetDefault("llm."+name+".model", ep.Model)
		v.SetDefault("llm."+name+".artifact_model", ep.ArtifactModel)
	}
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.breaker.enabled", d.Breaker.Enabled)
	v.SetDefault("llm.breaker.failure_threshold", d.Breaker.FailureThreshold)
	v.SetDefault("llm.breaker.open_timeout", d.Breaker.OpenTimeout)

	v.SetDefault("cache.url", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("worksheet.questions", 5)
	v.SetDefault("worksheet.time_limit", "0s")
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Worksheet.Questions < 1 || c.Worksheet.Questions > 20 {
		return fmt.Errorf("worksheet.questions must be between 1 and 20, got %d", c.Worksheet.Questions)
	}
	if c.Worksheet.TimeLimit < 0 {
		return fmt.Errorf("worksheet.time_limit must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// LLMProvider converts the llm section to provider configuration. When no
// provider is named, one is discovered from the standard API key variables;
// the result then has an empty Provider if no key is found.
func (c *Config) LLMProvider() llm.Config {
	l := c.LLM
	out := llm.Config{
		Provider:  strings.ToLower(strings.TrimSpace(l.Provider)),
		Gemini:    l.Gemini.endpoint(),
		Anthropic: l.Anthropic.endpoint(),
		OpenAI:    l.OpenAI.endpoint(),
		Retry: llm.RetryConfig{
			MaxAttempts: l.Retry.MaxAttempts,
			InitialWait: l.Retry.InitialWait,
			MaxWait:     l.Retry.MaxWait,
			Multiplier:  l.Retry.Multiplier,
		},
		Breaker: llm.BreakerConfig{
			Enabled:          l.Breaker.Enabled,
			FailureThreshold: l.Breaker.FailureThreshold,
			OpenTimeout:      l.Breaker.OpenTimeout,
		},
		Timeout: l.Timeout,
	}
	if out.Provider == "" {
		out.Discover()
	}
	return out
}

// Dir returns the user configuration directory for nexus:
// $XDG_CONFIG_HOME/nexus, falling back to ~/.config/nexus.
func Dir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "nexus"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "nexus"), nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// NewLogger builds the process logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

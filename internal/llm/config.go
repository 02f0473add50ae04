package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Config selects and tunes the content provider.
type Config struct {
	// Provider is empty when no credential is configured; callers then
	// serve offline content.
	Provider string

	Gemini    Endpoint
	Anthropic Endpoint
	OpenAI    Endpoint

	Retry   RetryConfig
	Breaker BreakerConfig

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration
}

// Endpoint configures one hosted provider.
type Endpoint struct {
	APIKey  string
	BaseURL string

	// Model serves worksheets. ArtifactModel serves the short reward
	// prompts and defaults to Model.
	Model         string
	ArtifactModel string
}

// ModelFor returns the model that serves purpose.
func (e Endpoint) ModelFor(p Purpose) string {
	if p == PurposeArtifact && e.ArtifactModel != "" {
		return e.ArtifactModel
	}
	return e.Model
}

// RetryConfig configures retries of transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// BreakerConfig configures the circuit breaker in front of the provider.
type BreakerConfig struct {
	Enabled bool

	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold int

	// OpenTimeout is how long the circuit stays open before a trial call.
	OpenTimeout time.Duration
}

// DefaultConfig returns the defaults with no provider selected.
func DefaultConfig() Config {
	return Config{
		Gemini:    Endpoint{Model: "gemini-2.5-flash", ArtifactModel: "gemini-2.5-flash-lite"},
		Anthropic: Endpoint{Model: "claude-sonnet-4-5", ArtifactModel: "claude-haiku-4-5"},
		OpenAI:    Endpoint{Model: "gpt-4.1-mini", ArtifactModel: "gpt-4.1-nano"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     8 * time.Second,
			Multiplier:  2,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			FailureThreshold: 3,
			OpenTimeout:      time.Minute,
		},
		Timeout: 45 * time.Second,
	}
}

// keyVars lists the environment variables probed by Discover, in priority
// order. API_KEY is the variable the hosted web build reads.
var keyVars = []struct {
	provider string
	env      string
}{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderGemini, "API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
}

// Discover selects a provider from the standard key variables when none is
// configured. It reports whether a provider is selected afterwards.
func (c *Config) Discover() bool {
	if c.Provider != "" {
		return true
	}
	for _, kv := range keyVars {
		key := os.Getenv(kv.env)
		if key == "" {
			continue
		}
		c.Provider = kv.provider
		c.endpoint(kv.provider).APIKey = key
		return true
	}
	return false
}

// Validate checks that the selected provider has a key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
		if c.endpoint(c.Provider).APIKey == "" {
			return fmt.Errorf("llm.%s.api_key is required for the %s provider", c.Provider, c.Provider)
		}
		return nil
	default:
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
}

func (c *Config) endpoint(provider string) *Endpoint {
	switch provider {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	default:
		return &c.Gemini
	}
}

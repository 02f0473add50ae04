package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// NewProvider builds the provider selected by cfg behind the standard
// middleware. events may be nil. The mock provider is returned bare.
func NewProvider(ctx context.Context, cfg Config, events EventRecorder, logger *slog.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return Wrap(base, cfg, events, logger), nil
}

// resilientProvider applies, outermost first: the overall deadline, the
// circuit breaker, retries, then event recording around the base call.
type resilientProvider struct {
	inner    Provider
	deadline time.Duration
	timeout  timeout.Timeout[*Response]
	breaker  circuitbreaker.CircuitBreaker[*Response]
	retrier  retry.Retry[*Response]
}

// Wrap puts base behind the deadline, breaker, retry and recording layers
// configured in cfg.
func Wrap(base Provider, cfg Config, events EventRecorder, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("provider", base.Name())

	r := &resilientProvider{inner: Record(base, events, logger)}

	r.retrier = retry.New[*Response](retry.Config{
		MaxAttempts:   max(cfg.Retry.MaxAttempts, 1),
		InitialDelay:  cfg.Retry.InitialWait,
		MaxDelay:      cfg.Retry.MaxWait,
		Multiplier:    cfg.Retry.Multiplier,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   Retryable,
		OnRetry: func(attempt int, err error) {
			log.Debug("retrying llm call", "attempt", attempt, "error", err)
		},
	})

	if cfg.Breaker.Enabled {
		threshold := uint32(max(cfg.Breaker.FailureThreshold, 1))
		r.breaker = circuitbreaker.New[*Response](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     cfg.Breaker.OpenTimeout,
			ReadyToTrip: func(c circuitbreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			// A cancelled caller says nothing about the provider's health.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				log.Warn("llm circuit breaker", "from", from.String(), "to", to.String())
			},
		})
	}

	if cfg.Timeout > 0 {
		r.deadline = cfg.Timeout
		r.timeout = timeout.New[*Response](timeout.Config{DefaultTimeout: cfg.Timeout})
	}
	return r
}

func (r *resilientProvider) Name() string { return r.inner.Name() }
func (r *resilientProvider) Model(purpose Purpose) string { return r.inner.Model(purpose) }

func (r *resilientProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	call := func(ctx context.Context) (*Response, error) {
		return r.retrier.Do(ctx, func(ctx context.Context) (*Response, error) {
			return r.inner.Generate(ctx, req)
		})
	}
	if r.breaker != nil {
		retried := call
		call = func(ctx context.Context) (*Response, error) {
			return r.breaker.Execute(ctx, retried)
		}
	}
	if r.timeout != nil {
		return r.timeout.Execute(ctx, r.deadline, call)
	}
	return call(ctx)
}

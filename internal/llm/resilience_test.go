package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/fortify/ferrors"

	"github.com/abhisek/nexus/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memEvents collects recorded events.
type memEvents struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (m *memEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, data)
	return nil
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Retry = RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
	cfg.Breaker = BreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Hour}
	cfg.Timeout = time.Second
	return cfg
}

func worksheetRequest() Request {
	return Request{Purpose: PurposeWorksheet, Instructions: "Write questions.", Prompt: "Grade 4, Math, 5 questions", MaxTokens: 4096}
}

func TestWrapRetriesTransientFailures(t *testing.T) {
	mock := NewMockProvider(
		Reply{Err: statusError(ProviderMock, PurposeWorksheet, 503, nil)},
		Reply{Err: statusError(ProviderMock, PurposeWorksheet, 429, nil)},
		Reply{Content: `{"questions":[]}`},
	)
	events := &memEvents{}
	p := Wrap(mock, fastConfig(), events, quietLogger())

	resp, err := p.Generate(context.Background(), worksheetRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"questions":[]}` {
		t.Errorf("content = %s", resp.Content)
	}
	if n := len(mock.Requests()); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
	if len(events.events) != 3 {
		t.Fatalf("recorded %d events, want one per attempt", len(events.events))
	}
	if events.events[0].Success || !events.events[2].Success {
		t.Errorf("success flags = %v, %v", events.events[0].Success, events.events[2].Success)
	}
}

func TestWrapDoesNotRetryRejection(t *testing.T) {
	mock := NewMockProvider(Reply{Err: statusError(ProviderMock, PurposeWorksheet, 401, nil)}, Reply{Content: `{}`})
	p := Wrap(mock, fastConfig(), nil, quietLogger())

	_, err := p.Generate(context.Background(), worksheetRequest())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("got %v, want ErrRejected", err)
	}
	if n := len(mock.Requests()); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestWrapGivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider()
	cfg := fastConfig()
	cfg.Breaker.Enabled = false
	p := Wrap(mock, cfg, nil, quietLogger())

	_, err := p.Generate(context.Background(), worksheetRequest())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
	if n := len(mock.Requests()); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestWrapBreakerOpens(t *testing.T) {
	mock := NewMockProvider()
	cfg := fastConfig()
	cfg.Retry.MaxAttempts = 1
	p := Wrap(mock, cfg, nil, quietLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := p.Generate(ctx, worksheetRequest()); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d: got %v", i, err)
		}
	}

	mock.Push(Reply{Content: `{}`})
	_, err := p.Generate(ctx, worksheetRequest())
	if !errors.Is(err, ferrors.ErrCircuitOpen) {
		t.Fatalf("got %v, want open circuit", err)
	}
	if n := len(mock.Requests()); n != 2 {
		t.Errorf("provider called %d times, want 2", n)
	}
}

// slowProvider blocks until its context ends.
type slowProvider struct{ MockProvider }

func (s *slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWrapDeadline(t *testing.T) {
	cfg := fastConfig()
	cfg.Timeout = 20 * time.Millisecond
	p := Wrap(&slowProvider{}, cfg, nil, quietLogger())

	start := time.Now()
	_, err := p.Generate(context.Background(), worksheetRequest())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("deadline not enforced")
	}
}

func TestRecordCapturesCall(t *testing.T) {
	events := &memEvents{}
	mock := NewMockProvider(Reply{Content: stickerJSON}, Reply{Err: invalidResponse(ProviderMock, PurposeArtifact, errors.New("no name"))})
	p := Record(mock, events, quietLogger())
	ctx := context.Background()

	if _, err := p.Generate(ctx, stickerRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, stickerRequest()); err == nil {
		t.Fatal("expected error")
	}

	if len(events.events) != 2 {
		t.Fatalf("recorded %d events", len(events.events))
	}
	ok, failed := events.events[0], events.events[1]
	if ok.Provider != ProviderMock || ok.Purpose != "artifact-gen" || ok.ResponseBody != stickerJSON || !ok.Success {
		t.Errorf("success event = %+v", ok)
	}
	for _, want := range []string{"purpose: artifact-gen", "schema: sticker", "[instructions]", "Fractions"} {
		if !strings.Contains(ok.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, ok.RequestBody)
		}
	}
	if failed.Success || !strings.Contains(failed.ErrorMessage, "no name") {
		t.Errorf("failure event = %+v", failed)
	}
}

func TestRecordIgnoresAppendFailure(t *testing.T) {
	events := &memEvents{err: errors.New("disk full")}
	p := Record(NewMockProvider(Reply{Content: `{}`}), events, quietLogger())
	if _, err := p.Generate(context.Background(), worksheetRequest()); err != nil {
		t.Fatalf("append failure leaked into the call: %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	if _, err := NewProvider(ctx, Config{Provider: "palm"}, nil, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewProvider(ctx, Config{Provider: ProviderOpenAI}, nil, nil); err == nil {
		t.Error("expected error for missing key")
	}

	p, err := NewProvider(ctx, Config{Provider: ProviderMock}, nil, nil)
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if p.Name() != ProviderMock {
		t.Errorf("name = %q", p.Name())
	}

	cfg := DefaultConfig()
	cfg.Provider = ProviderAnthropic
	cfg.Anthropic.APIKey = "k"
	p, err = NewProvider(ctx, cfg, nil, quietLogger())
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if p.Name() != ProviderAnthropic || p.Model(PurposeWorksheet) != "claude-sonnet-4-5" || p.Model(PurposeArtifact) != "claude-haiku-4-5" {
		t.Errorf("wrapped provider = %s %s/%s", p.Name(), p.Model(PurposeWorksheet), p.Model(PurposeArtifact))
	}
}

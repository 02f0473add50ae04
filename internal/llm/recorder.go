package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/nexus/internal/store"
)

// EventRecorder persists one event per provider call.
type EventRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// recordingProvider writes every call, failed or not, to the event log.
// It sits under the retry layer so each attempt is its own event.
type recordingProvider struct {
	inner  Provider
	events EventRecorder
	logger *slog.Logger
}

// Record wraps p so every call is logged and, when events is non-nil,
// appended to the event log. A failed append never fails the call.
func Record(p Provider, events EventRecorder, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordingProvider{inner: p, events: events, logger: logger}
}

func (r *recordingProvider) Name() string { return r.inner.Name() }
func (r *recordingProvider) Model(purpose Purpose) string { return r.inner.Model(purpose) }

func (r *recordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	ev := store.LLMRequestEventData{
		Provider:    r.inner.Name(),
		Model:       r.inner.Model(req.Purpose),
		Purpose:     req.Purpose.String(),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}

	log := r.logger.With("provider", ev.Provider, "model", ev.Model, "purpose", ev.Purpose, "elapsed", elapsed)
	if err != nil {
		ev.ErrorMessage = err.Error()
		log.Warn("llm call failed", "error", err)
	} else {
		log.Debug("llm call", "input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)
	}

	if r.events != nil {
		if aerr := r.events.AppendLLMRequest(ctx, ev); aerr != nil {
			r.logger.Warn("record llm event", "purpose", ev.Purpose, "error", aerr)
		}
	}
	return resp, err
}

// transcript renders a request for the event log.
func transcript(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "purpose: %s\n", req.Purpose)
	if req.Schema != nil {
		fmt.Fprintf(&b, "schema: %s\n", req.Schema.Name)
	}
	fmt.Fprintf(&b, "max_tokens: %d\ntemperature: %.2f\n", req.MaxTokens, req.Temperature)
	if req.Instructions != "" {
		b.WriteString("\n[instructions]\n")
		b.WriteString(req.Instructions)
		b.WriteString("\n")
	}
	b.WriteString("\n[prompt]\n")
	b.WriteString(req.Prompt)
	b.WriteString("\n")
	return b.String()
}

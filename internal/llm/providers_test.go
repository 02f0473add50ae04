package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const stickerJSON = `{"name":"Comet Badge","rarity":"Rare"}`

func stickerRequest() Request {
	return Request{
		Purpose:      PurposeArtifact,
		Instructions: "You design collectible rewards for students.",
		Prompt:       "Generate a digital sticker for mastering Fractions.",
		Schema:       stickerSchema,
		MaxTokens:    256,
		Temperature:  0.7,
	}
}

// captured is the last request a fake API server received.
type captured struct {
	path string
	body map[string]any
}

func fakeAPI(t *testing.T, status int, reply any) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &c.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func geminiReply(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
			"finishReason": finish,
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 40, "candidatesTokenCount": 12, "totalTokenCount": 52},
	}
}

func newGemini(t *testing.T, url string) *GeminiProvider {
	t.Helper()
	ep := DefaultConfig().Gemini
	ep.APIKey = "test-key"
	ep.BaseURL = url
	p, err := NewGeminiProvider(context.Background(), ep)
	if err != nil {
		t.Fatalf("new gemini provider: %v", err)
	}
	return p
}

func TestGeminiGenerate(t *testing.T) {
	srv, got := fakeAPI(t, http.StatusOK, geminiReply(stickerJSON, "STOP"))
	p := newGemini(t, srv.URL)

	resp, err := p.Generate(context.Background(), stickerRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != stickerJSON {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 12 || resp.Usage.Total() != 52 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if !strings.Contains(got.path, "gemini-2.5-flash-lite") {
		t.Errorf("artifact request went to %s, want the artifact model", got.path)
	}
	gc, _ := got.body["generationConfig"].(map[string]any)
	if gc["responseMimeType"] != "application/json" || gc["responseJsonSchema"] == nil {
		t.Errorf("generation config = %v", gc)
	}
	if got.body["systemInstruction"] == nil {
		t.Error("instructions not sent")
	}
}

func TestGeminiGenerateFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  any
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, map[string]any{"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}}, ErrRateLimited},
		{"server error", http.StatusInternalServerError, map[string]any{"error": map[string]any{"code": 500, "message": "internal", "status": "INTERNAL"}}, ErrUnavailable},
		{"truncated", http.StatusOK, geminiReply(`{"name":"Com`, "MAX_TOKENS"), ErrTruncated},
		{"off schema", http.StatusOK, geminiReply(`{"name":"Comet Badge","rarity":"Common"}`, "STOP"), ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeAPI(t, tt.status, tt.reply)
			_, err := newGemini(t, srv.URL).Generate(context.Background(), stickerRequest())
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func anthropicReply(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_01",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []any{map[string]any{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 55, "output_tokens": 18},
	}
}

func newAnthropic(t *testing.T, url string) *AnthropicProvider {
	t.Helper()
	ep := DefaultConfig().Anthropic
	ep.APIKey = "test-key"
	ep.BaseURL = url
	p, err := NewAnthropicProvider(ep)
	if err != nil {
		t.Fatalf("new anthropic provider: %v", err)
	}
	return p
}

func TestAnthropicGenerate(t *testing.T) {
	srv, got := fakeAPI(t, http.StatusOK, anthropicReply(stickerJSON, "end_turn"))
	p := newAnthropic(t, srv.URL)

	resp, err := p.Generate(context.Background(), stickerRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "claude-haiku-4-5-20251001" || resp.Usage.InputTokens != 55 {
		t.Errorf("response = %+v", resp)
	}
	if got.body["model"] != "claude-haiku-4-5" {
		t.Errorf("requested model = %v", got.body["model"])
	}
	if _, ok := got.body["output_config"]; !ok {
		t.Error("schema not sent as output format")
	}
}

func TestAnthropicGenerateFailures(t *testing.T) {
	apiError := func(kind string) map[string]any {
		return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
	}
	tests := []struct {
		name   string
		status int
		reply  any
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, apiError("rate_limit_error"), ErrRateLimited},
		{"bad key", http.StatusUnauthorized, apiError("authentication_error"), ErrRejected},
		{"overloaded", http.StatusServiceUnavailable, apiError("overloaded_error"), ErrUnavailable},
		{"truncated", http.StatusOK, anthropicReply(`{"name":`, "max_tokens"), ErrTruncated},
		{"not json", http.StatusOK, anthropicReply(`Here is your sticker!`, "end_turn"), ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeAPI(t, tt.status, tt.reply)
			_, err := newAnthropic(t, srv.URL).Generate(context.Background(), stickerRequest())
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func openAIReply(text, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"model":   "gpt-4.1-nano-2025-04-14",
		"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": text}, "finish_reason": finish}},
		"usage":   map[string]any{"prompt_tokens": 30, "completion_tokens": 9, "total_tokens": 39},
	}
}

func newOpenAI(t *testing.T, url string) *OpenAIProvider {
	t.Helper()
	ep := DefaultConfig().OpenAI
	ep.APIKey = "test-key"
	ep.BaseURL = url
	p, err := NewOpenAIProvider(ep)
	if err != nil {
		t.Fatalf("new openai provider: %v", err)
	}
	return p
}

func TestOpenAIGenerate(t *testing.T) {
	srv, got := fakeAPI(t, http.StatusOK, openAIReply(stickerJSON, "stop"))
	p := newOpenAI(t, srv.URL)

	resp, err := p.Generate(context.Background(), stickerRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.OutputTokens != 9 || resp.Model != "gpt-4.1-nano-2025-04-14" {
		t.Errorf("response = %+v", resp)
	}
	if got.body["model"] != "gpt-4.1-nano" {
		t.Errorf("requested model = %v", got.body["model"])
	}
	rf, _ := got.body["response_format"].(map[string]any)
	js, _ := rf["json_schema"].(map[string]any)
	if rf["type"] != "json_schema" || js["name"] != "sticker" || js["strict"] != true {
		t.Errorf("response_format = %v", rf)
	}
	msgs, _ := got.body["messages"].([]any)
	if len(msgs) != 2 {
		t.Errorf("sent %d messages, want system and user", len(msgs))
	}
}

func TestOpenAIGenerateFailures(t *testing.T) {
	apiError := map[string]any{"error": map[string]any{"message": "nope", "type": "invalid_request_error"}}
	tests := []struct {
		name   string
		status int
		reply  any
		want   error
	}{
		{"bad key", http.StatusUnauthorized, apiError, ErrRejected},
		{"rate limited", http.StatusTooManyRequests, apiError, ErrRateLimited},
		{"truncated", http.StatusOK, openAIReply(`{"name":"Co`, "length"), ErrTruncated},
		{"no choices", http.StatusOK, map[string]any{"id": "x", "choices": []any{}}, ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeAPI(t, tt.status, tt.reply)
			_, err := newOpenAI(t, srv.URL).Generate(context.Background(), stickerRequest())
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProvidersRequireKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), Endpoint{}); err == nil {
		t.Error("gemini: expected error without key")
	}
	if _, err := NewAnthropicProvider(Endpoint{}); err == nil {
		t.Error("anthropic: expected error without key")
	}
	if _, err := NewOpenAIProvider(Endpoint{}); err == nil {
		t.Error("openai: expected error without key")
	}
}

package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// Reply is one scripted MockProvider answer. A non-nil Err is returned
// instead of content.
type Reply struct {
	Content string
	Err     error
}

// MockProvider answers from a script of replies in order and keeps every
// request it saw. Replies are returned verbatim without schema checks, so
// callers can be fed malformed content. An exhausted script answers
// ErrUnavailable.
type MockProvider struct {
	mu       sync.Mutex
	script   []Reply
	requests []Request
}

// NewMockProvider creates a MockProvider scripted with replies.
func NewMockProvider(replies ...Reply) *MockProvider {
	return &MockProvider{script: replies}
}

func (m *MockProvider) Name() string { return ProviderMock }
func (m *MockProvider) Model(Purpose) string { return ProviderMock }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.script) == 0 {
		return nil, &Error{Provider: ProviderMock, Purpose: req.Purpose, Kind: ErrUnavailable}
	}
	r := m.script[0]
	m.script = m.script[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{
		Content: json.RawMessage(r.Content),
		Model:   ProviderMock,
		Usage:   Usage{InputTokens: len(req.Prompt) / 4, OutputTokens: len(r.Content) / 4},
	}, nil
}

// Push appends replies to the script.
func (m *MockProvider) Push(replies ...Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, replies...)
}

// Requests returns a copy of the requests received so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Package llm talks to hosted language models for worksheet and reward
// content. Every request asks for one JSON document matching a Schema.
package llm

import (
	"context"
	"encoding/json"
)

// Purpose identifies which content a request produces. It selects the model
// and labels the recorded request event.
type Purpose string

const (
	PurposeWorksheet Purpose = "worksheet-gen"
	PurposeArtifact  Purpose = "artifact-gen"
)

func (p Purpose) String() string { return string(p) }

// Provider generates structured content.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider label stored with request events, e.g. "gemini".
	Name() string

	// Model is the model that serves requests for purpose.
	Model(purpose Purpose) string
}

// Request is a single-turn prompt.
type Request struct {
	Purpose      Purpose
	Instructions string
	Prompt       string

	// Schema is required: providers ask for JSON output and reject content
	// that does not conform.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Response is a schema-conforming JSON document.
type Response struct {
	Content json.RawMessage
	Model   string
	Usage   Usage
}

// Usage is the token count billed for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

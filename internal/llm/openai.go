package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider calls an OpenAI-compatible chat completions API with a
// strict JSON schema response format.
type OpenAIProvider struct {
	client   *openai.Client
	endpoint Endpoint
}

// NewOpenAIProvider creates an OpenAI client for ep. BaseURL points it at a
// compatible gateway.
func NewOpenAIProvider(ep Endpoint) (*OpenAIProvider, error) {
	if ep.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	cc := openai.DefaultConfig(ep.APIKey)
	if ep.BaseURL != "" {
		cc.BaseURL = ep.BaseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cc), endpoint: ep}, nil
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }
func (p *OpenAIProvider) Model(purpose Purpose) string { return p.endpoint.ModelFor(purpose) }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var messages []openai.ChatCompletionMessage
	if req.Instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.Instructions})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	cr := openai.ChatCompletionRequest{
		Model:               p.Model(req.Purpose),
		Messages:            messages,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("openai: encode schema %s: %w", req.Schema.Name, err)
		}
		cr.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, cr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, statusError(ProviderOpenAI, req.Purpose, openAIStatus(err), err)
	}

	if len(resp.Choices) == 0 {
		return nil, invalidResponse(ProviderOpenAI, req.Purpose, errors.New("no choices"))
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return nil, &Error{Provider: ProviderOpenAI, Purpose: req.Purpose, Kind: ErrTruncated}
	}
	content := json.RawMessage(choice.Message.Content)
	if err := conform(ProviderOpenAI, req, content); err != nil {
		return nil, err
	}

	return &Response{
		Content: content,
		Model:   resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

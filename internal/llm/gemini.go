package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider calls the Gemini API. The response schema is passed as
// plain JSON Schema so the worksheet and artifact definitions are sent
// unchanged.
type GeminiProvider struct {
	client   *genai.Client
	endpoint Endpoint
}

// NewGeminiProvider creates a Gemini client for ep.
func NewGeminiProvider(ctx context.Context, ep Endpoint) (*GeminiProvider, error) {
	if ep.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}

	cc := &genai.ClientConfig{APIKey: ep.APIKey, Backend: genai.BackendGeminiAPI}
	if ep.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: ep.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiProvider{client: client, endpoint: ep}, nil
}

func (p *GeminiProvider) Name() string { return ProviderGemini }
func (p *GeminiProvider) Model(purpose Purpose) string { return p.endpoint.ModelFor(purpose) }

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	model := p.Model(req.Purpose)

	gc := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(req.MaxTokens),
		ResponseMIMEType: "application/json",
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		gc.Temperature = &t
	}
	if req.Instructions != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}
	if req.Schema != nil {
		gc.ResponseJsonSchema = req.Schema.Definition
	}

	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), gc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, statusError(ProviderGemini, req.Purpose, apiErr.Code, err)
		}
		return nil, statusError(ProviderGemini, req.Purpose, 0, err)
	}

	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return nil, &Error{Provider: ProviderGemini, Purpose: req.Purpose, Kind: ErrTruncated}
	}

	text := result.Text()
	if text == "" {
		return nil, invalidResponse(ProviderGemini, req.Purpose, errors.New("empty candidate"))
	}
	content := json.RawMessage(text)
	if err := conform(ProviderGemini, req, content); err != nil {
		return nil, err
	}

	resp := &Response{Content: content, Model: model}
	if result.ModelVersion != "" {
		resp.Model = result.ModelVersion
	}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
		}
	}
	return resp, nil
}

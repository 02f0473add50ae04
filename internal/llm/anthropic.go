package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider calls the Anthropic Messages API with a JSON output
// format.
type AnthropicProvider struct {
	client   anthropic.Client
	endpoint Endpoint
}

// NewAnthropicProvider creates an Anthropic client for ep.
func NewAnthropicProvider(ep Endpoint) (*AnthropicProvider, error) {
	if ep.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(ep.APIKey), option.WithMaxRetries(0)}
	if ep.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(ep.BaseURL))
	}
	return &AnthropicProvider{client: anthropic.NewClient(opts...), endpoint: ep}, nil
}

func (p *AnthropicProvider) Name() string { return ProviderAnthropic }
func (p *AnthropicProvider) Model(purpose Purpose) string { return p.endpoint.ModelFor(purpose) }

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.Model(req.Purpose)),
		MaxTokens: int64(req.MaxTokens),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
	}
	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{Schema: req.Schema.Definition},
		}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, statusError(ProviderAnthropic, req.Purpose, apiErr.StatusCode, err)
		}
		return nil, statusError(ProviderAnthropic, req.Purpose, 0, err)
	}

	if msg.StopReason == anthropic.StopReasonMaxTokens {
		return nil, &Error{Provider: ProviderAnthropic, Purpose: req.Purpose, Kind: ErrTruncated}
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, invalidResponse(ProviderAnthropic, req.Purpose, errors.New("no text block"))
	}
	content := json.RawMessage(text.String())
	if err := conform(ProviderAnthropic, req, content); err != nil {
		return nil, err
	}

	return &Response{
		Content: content,
		Model:   string(msg.Model),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

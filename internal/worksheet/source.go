package worksheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/nexus/internal/llm"
	"github.com/abhisek/nexus/internal/progress"
)

// DefaultQuestionCount is the number of questions in a worksheet.
const DefaultQuestionCount = 5

// Cache stores generated worksheets between runs.
type Cache interface {
	// Get decodes the value stored under key into dst and reports whether
	// it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set stores v under key.
	Set(ctx context.Context, key string, v any) error
}

// Config controls the behavior of the Source.
type Config struct {
	// Validators run in order on every generated worksheet; the first
	// failure discards it.
	Validators []Validator

	// MaxTokens is the token budget for a worksheet response.
	MaxTokens int

	// ArtifactMaxTokens is the token budget for an artifact response.
	ArtifactMaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DuplicateValidator{},
		},
		MaxTokens:         4096,
		ArtifactMaxTokens: 256,
		Temperature:       0.7,
	}
}

// Source produces worksheets and artifact descriptors. Both operations
// always succeed: any failure yields deterministic offline content.
type Source struct {
	provider llm.Provider
	cache    Cache
	config   Config
	logger   *slog.Logger
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithCache enables worksheet caching.
func WithCache(c Cache) SourceOption {
	return func(s *Source) { s.cache = c }
}

// WithLogger sets the logger used to report absorbed failures.
func WithLogger(l *slog.Logger) SourceOption {
	return func(s *Source) { s.logger = l }
}

// NewSource creates a Source. provider may be nil, meaning no credential is
// configured; every request then returns offline content immediately.
func NewSource(provider llm.Provider, cfg Config, opts ...SourceOption) *Source {
	s := &Source{provider: provider, config: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Online reports whether a provider is configured.
func (s *Source) Online() bool {
	return s.provider != nil
}

// worksheetOutput is the raw LLM response before validation.
type worksheetOutput struct {
	Questions []struct {
		QuestionText       string   `json:"questionText"`
		Options            []string `json:"options"`
		CorrectAnswerIndex int      `json:"correctAnswerIndex"`
		Explanation        string   `json:"explanation"`
	} `json:"questions"`
}

// GenerateWorksheet returns count questions about topic at grade level. It
// never fails; the returned worksheet has IsFallback set when the questions
// are the offline placeholder.
func (s *Source) GenerateWorksheet(ctx context.Context, topic string, grade, count int) *Worksheet {
	if count <= 0 {
		count = DefaultQuestionCount
	}

	if s.provider == nil {
		s.logger.Info("no LLM provider configured, using placeholder worksheet", "topic", topic)
		return Placeholder(topic, grade, count)
	}

	key := cacheKey(topic, grade, count)
	if s.cache != nil {
		var cached Worksheet
		ok, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("worksheet cache read failed", "key", key, "error", err)
		} else if ok && s.validate(&cached, count) == nil {
			s.logger.Debug("worksheet cache hit", "key", key)
			return &cached
		}
	}

	ws, err := s.generate(ctx, topic, grade, count)
	if err != nil {
		s.logger.Warn("worksheet generation failed, using placeholder", "topic", topic, "grade", grade, "error", err)
		return Placeholder(topic, grade, count)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, ws); err != nil {
			s.logger.Warn("worksheet cache write failed", "key", key, "error", err)
		}
	}
	return ws
}

func (s *Source) generate(ctx context.Context, topic string, grade, count int) (*Worksheet, error) {
	req := llm.Request{
		Purpose:      llm.PurposeWorksheet,
		Instructions: worksheetSystemPrompt,
		Prompt:       buildWorksheetMessage(topic, grade, count),
		Schema:       WorksheetSchema,
		MaxTokens:    s.config.MaxTokens,
		Temperature:  s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw worksheetOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	ws := &Worksheet{
		Topic:     topic,
		Grade:     grade,
		Questions: make([]Question, len(raw.Questions)),
	}
	for i, q := range raw.Questions {
		ws.Questions[i] = Question{
			ID:           i,
			Text:         strings.TrimSpace(q.QuestionText),
			Options:      q.Options,
			CorrectIndex: q.CorrectAnswerIndex,
			Explanation:  strings.TrimSpace(q.Explanation),
		}
	}

	if verr := s.validate(ws, count); verr != nil {
		return nil, verr
	}
	return ws, nil
}

func (s *Source) validate(ws *Worksheet, count int) *ValidationError {
	for _, v := range s.config.Validators {
		if verr := v.Validate(ws, count); verr != nil {
			return verr
		}
	}
	return nil
}

// artifactOutput is the raw LLM artifact response.
type artifactOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      string `json:"rarity"`
}

// ErrUnusableArtifact is returned when the provider answers but the payload
// does not describe an artifact. No artifact is awarded for it.
var ErrUnusableArtifact = errors.New("artifact response unusable")

// GenerateArtifact returns a reward descriptor for topic. Without a
// provider it returns OfflineArtifact without any network call; when the
// call fails it returns FailedArtifact. A response without a usable name
// yields ErrUnusableArtifact.
func (s *Source) GenerateArtifact(ctx context.Context, topic string) (progress.ArtifactDraft, error) {
	if s.provider == nil {
		return OfflineArtifact, nil
	}

	req := llm.Request{
		Purpose:      llm.PurposeArtifact,
		Instructions: artifactSystemPrompt,
		Prompt:       buildArtifactMessage(topic),
		Schema:       ArtifactSchema,
		MaxTokens:    s.config.ArtifactMaxTokens,
		Temperature:  s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("artifact generation failed", "topic", topic, "error", err)
		return FailedArtifact, nil
	}

	var raw artifactOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return progress.ArtifactDraft{}, fmt.Errorf("%w: %v", ErrUnusableArtifact, err)
	}
	if strings.TrimSpace(raw.Name) == "" {
		return progress.ArtifactDraft{}, fmt.Errorf("%w: no name", ErrUnusableArtifact)
	}

	return progress.ArtifactDraft{
		Name:        strings.TrimSpace(raw.Name),
		Description: strings.TrimSpace(raw.Description),
		Rarity:      raw.Rarity,
	}, nil
}

// cacheKey identifies a worksheet request.
func cacheKey(topic string, grade, count int) string {
	return fmt.Sprintf("nexus:worksheet:v1:%d:%d:%s", grade, count, strings.ToLower(strings.TrimSpace(topic)))
}

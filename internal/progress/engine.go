package progress

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArtifactDraft is the descriptor returned by an artifact source. Missing
// description and rarity are filled with defaults; a missing name makes the
// draft unusable.
type ArtifactDraft struct {
	Name        string
	Description string
	Rarity      string
}

// ArtifactSource produces a reward descriptor for a subject topic.
type ArtifactSource interface {
	GenerateArtifact(ctx context.Context, topic string) (ArtifactDraft, error)
}

// Result is the outcome of RecordWorksheetResult.
type Result struct {
	State    PlayerState
	Decision Decision

	// Artifact is the artifact added to the inventory, or nil.
	Artifact *Artifact

	ExperienceGained int
	PreviousLevel    int

	// UnlockedAvatars lists avatars unlocked by this transition.
	UnlockedAvatars []string
}

// LeveledUp reports whether the transition crossed a level boundary.
func (r Result) LeveledUp() bool {
	return r.State.Level > r.PreviousLevel
}

// Engine applies the progression rules to a PlayerState. It keeps no player
// data between calls: each operation takes a state value and returns a new
// one, leaving loading and saving to the caller.
type Engine struct {
	avatars   []Avatar
	artifacts ArtifactSource
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for artifact timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the artifact id generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithLogger sets the logger used to report swallowed artifact failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithAvatars replaces the avatar catalog.
func WithAvatars(catalog []Avatar) Option {
	return func(e *Engine) { e.avatars = append([]Avatar(nil), catalog...) }
}

// NewEngine creates an Engine. artifacts may be nil, in which case perfect
// scores never yield an artifact.
func NewEngine(artifacts ArtifactSource, opts ...Option) *Engine {
	e := &Engine{
		avatars:   Avatars(),
		artifacts: artifacts,
		now:       time.Now,
		newID:     newArtifactID,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetGrade sets the grade level. No other field changes.
func (e *Engine) SetGrade(s PlayerState, grade int) (PlayerState, error) {
	if grade < MinGrade || grade > MaxGrade {
		return s, ErrInvalidGrade
	}
	next := s.Clone()
	next.GradeLevel = grade
	return next, nil
}

// SelectAvatar makes avatarID the current avatar. Locked or unknown avatars
// are rejected with ErrAvatarLocked and the state is returned unchanged.
func (e *Engine) SelectAvatar(s PlayerState, avatarID string) (PlayerState, error) {
	if !s.IsUnlocked(avatarID) {
		return s, ErrAvatarLocked
	}
	next := s.Clone()
	next.CurrentAvatar = avatarID
	return next, nil
}

// UnlockAvatars unlocks every catalog avatar whose level threshold is met.
// It is idempotent and returns the ids newly unlocked.
func (e *Engine) UnlockAvatars(s PlayerState) (PlayerState, []string) {
	next := s.Clone()
	next.Level = LevelFor(next.Experience)
	return unlockAvatars(next, e.avatars)
}

// RecordWorksheetResult applies a finished worksheet to the state.
//
// The artifact request for a perfect score is the only call that can block.
// It runs before anything else is computed, and its failure only means no
// artifact: experience, level, unlocks and the navigation decision are
// applied the same way in either case.
func (e *Engine) RecordWorksheetResult(ctx context.Context, s PlayerState, outcome QuizOutcome, topic string) (Result, error) {
	if err := outcome.Validate(); err != nil {
		return Result{State: s, Decision: DecisionReturnToDashboard, PreviousLevel: s.Level}, err
	}

	percentage := outcome.Percentage()

	var artifact *Artifact
	if outcome.Perfect() {
		artifact = e.acquireArtifact(ctx, topic)
	}

	next := s.Clone()
	previousLevel := LevelFor(next.Experience)
	gained := ExperienceFor(outcome)

	next.RecentScores = pushRecent(next.RecentScores, percentage)
	next.Experience = addExperience(next.Experience, gained)
	next.Level = LevelFor(next.Experience)
	next.CompletedWorksheets++
	if artifact != nil {
		next.Inventory = append(next.Inventory, *artifact)
	}

	next, unlocked := unlockAvatars(next, e.avatars)

	return Result{
		State:            next,
		Decision:         DecisionFor(percentage),
		Artifact:         artifact,
		ExperienceGained: gained,
		PreviousLevel:    previousLevel,
		UnlockedAvatars:  unlocked,
	}, nil
}

// acquireArtifact asks the artifact source for one artifact. Any failure is
// logged and yields nil.
func (e *Engine) acquireArtifact(ctx context.Context, topic string) *Artifact {
	if e.artifacts == nil {
		return nil
	}

	draft, err := e.artifacts.GenerateArtifact(ctx, topic)
	if err != nil {
		e.logger.Warn("artifact generation failed", "topic", topic, "error", err)
		return nil
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		e.logger.Warn("artifact response has no name", "topic", topic)
		return nil
	}

	description := strings.TrimSpace(draft.Description)
	if description == "" {
		description = DefaultArtifactDescription
	}
	rarity, _ := ParseRarity(draft.Rarity)

	return &Artifact{
		ID:          e.newID(),
		Name:        name,
		Description: description,
		Rarity:      rarity,
		AcquiredAt:  e.now(),
	}
}

// newArtifactID returns a time-ordered UUIDv7 so ids sort by acquisition.
func newArtifactID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// addExperience adds gained to xp, saturating at MaxExperience.
func addExperience(xp, gained int) int {
	if gained > MaxExperience-xp {
		return MaxExperience
	}
	return xp + gained
}

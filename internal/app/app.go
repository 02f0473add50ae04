// Package app holds the player aggregate for one installation and runs every
// operation on it: one transition at a time, persisted after each one.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/nexus/internal/progress"
	"github.com/abhisek/nexus/internal/router"
	"github.com/abhisek/nexus/internal/session"
	"github.com/abhisek/nexus/internal/store"
	"github.com/abhisek/nexus/internal/worksheet"
)

var (
	// ErrGradeNotSelected is returned when a worksheet is requested before
	// the player picked a grade.
	ErrGradeNotSelected = errors.New("select a grade first")

	// ErrEmptyTopic is returned for a blank subject or topic.
	ErrEmptyTopic = errors.New("topic is empty")

	// ErrNotLoaded is returned when an operation runs before Load.
	ErrNotLoaded = errors.New("player state not loaded")
)

// ContentSource produces worksheets. It never fails.
type ContentSource interface {
	GenerateWorksheet(ctx context.Context, topic string, grade, count int) *worksheet.Worksheet
}

// Options configures a Service.
type Options struct {
	StateRepo store.StateRepo
	EventRepo store.EventRepo // optional
	Engine    *progress.Engine
	Content   ContentSource
	Logger    *slog.Logger

	// QuestionCount is the default worksheet length.
	QuestionCount int

	// TimeLimit bounds each quiz session. Zero means no limit.
	TimeLimit time.Duration
}

// Service is the caller of the progression engine. It owns the only
// in-memory copy of the player state.
type Service struct {
	mu     sync.Mutex
	opts   Options
	logger *slog.Logger

	loaded bool
	state  progress.PlayerState
	router *router.Router
}

// New creates a Service. Call Load before any other operation.
func New(opts Options) (*Service, error) {
	if opts.StateRepo == nil {
		return nil, fmt.Errorf("state repo is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("progression engine is required")
	}
	if opts.Content == nil {
		return nil, fmt.Errorf("content source is required")
	}
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = worksheet.DefaultQuestionCount
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{opts: opts, logger: logger}, nil
}

// Load reads the persisted aggregate. A missing record yields the initial
// state; malformed fields fall back to initial values and are logged.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := progress.InitialState()
	data, err := s.opts.StateRepo.Load(ctx, progress.StorageKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.logger.Debug("no saved player state, starting fresh")
	case err != nil:
		return fmt.Errorf("load player state: %w", err)
	default:
		var bad []string
		state, bad = progress.Decode(data)
		if len(bad) > 0 {
			s.logger.Warn("saved player state has malformed fields, using defaults for them", "fields", bad)
		}
	}

	s.state = state
	if next, unlocked := s.opts.Engine.UnlockAvatars(state); len(unlocked) > 0 {
		s.logger.Info("avatars unlocked on load", "avatars", unlocked)
		// The unlock is derived from experience, so a failed save is
		// repeated on the next load.
		if err := s.commit(ctx, next); err != nil {
			s.logger.Warn("persist avatars unlocked on load", "error", err)
			s.state = next
		}
		state = next
	}

	s.router = router.New(state)
	s.loaded = true
	return nil
}

// Player returns a copy of the current state.
func (s *Service) Player() (progress.PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return progress.PlayerState{}, ErrNotLoaded
	}
	return s.state.Clone(), nil
}

// View returns the active view.
func (s *Service) View() (router.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return "", ErrNotLoaded
	}
	return s.router.Active(), nil
}

// Navigate moves to the requested view, subject to the grade gate.
func (s *Service) Navigate(to router.ViewState) (router.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return "", ErrNotLoaded
	}
	return s.router.Navigate(to, s.state.GradeSelected()), nil
}

// Back returns to the previous view.
func (s *Service) Back() (router.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return "", ErrNotLoaded
	}
	return s.router.Back(), nil
}

// SetGrade records the player's grade and moves to the dashboard.
func (s *Service) SetGrade(ctx context.Context, grade int) (progress.PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return progress.PlayerState{}, ErrNotLoaded
	}

	next, err := s.opts.Engine.SetGrade(s.state, grade)
	if err != nil {
		return s.state.Clone(), err
	}
	if err := s.commit(ctx, next); err != nil {
		return s.state.Clone(), err
	}
	s.router.GradeSelected()
	return next.Clone(), nil
}

// SelectAvatar switches to an unlocked avatar.
func (s *Service) SelectAvatar(ctx context.Context, avatarID string) (progress.PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return progress.PlayerState{}, ErrNotLoaded
	}

	next, err := s.opts.Engine.SelectAvatar(s.state, avatarID)
	if err != nil {
		return s.state.Clone(), err
	}
	if err := s.commit(ctx, next); err != nil {
		return s.state.Clone(), err
	}
	return next.Clone(), nil
}

// StartWorksheet generates a worksheet for a catalog subject id or a free
// topic at the player's grade and opens the quiz view. count <= 0 uses the
// configured default.
func (s *Service) StartWorksheet(ctx context.Context, subjectOrTopic string, count int) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	if !s.state.GradeSelected() {
		s.router.Navigate(router.ViewGradeSelect, false)
		return nil, ErrGradeNotSelected
	}

	topic := worksheet.ResolveTopic(subjectOrTopic)
	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyTopic
	}
	if count <= 0 {
		count = s.opts.QuestionCount
	}

	ws := s.opts.Content.GenerateWorksheet(ctx, topic, s.state.GradeLevel, count)
	if ws.IsFallback {
		s.logger.Info("serving placeholder worksheet", "topic", topic, "grade", s.state.GradeLevel)
	}

	sess, err := session.New(ws, session.WithTimeLimit(s.opts.TimeLimit))
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	s.router.Navigate(router.ViewQuiz, true)
	return sess, nil
}

// CompleteWorksheet records a finished worksheet: experience, level,
// recent scores, the artifact on a perfect score and avatar unlocks. The new
// state is persisted before it replaces the current one, so a failed save
// leaves the player unchanged.
func (s *Service) CompleteWorksheet(ctx context.Context, ws *worksheet.Worksheet, outcome progress.QuizOutcome) (progress.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return progress.Result{}, ErrNotLoaded
	}

	topic := ""
	fallback := false
	if ws != nil {
		topic = ws.Topic
		fallback = ws.IsFallback
	}

	res, err := s.opts.Engine.RecordWorksheetResult(ctx, s.state, outcome, topic)
	if err != nil {
		return res, err
	}
	if err := s.commit(ctx, res.State); err != nil {
		return progress.Result{}, err
	}

	s.router.Apply(res.Decision)

	s.logger.Info("worksheet recorded",
		"topic", topic,
		"score", outcome.Score,
		"total", outcome.TotalQuestions,
		"xp_gained", res.ExperienceGained,
		"level", res.State.Level,
		"decision", res.Decision.String(),
	)
	s.recordEvents(ctx, res, outcome, topic, fallback)

	res.State = res.State.Clone()
	return res, nil
}

// History returns recorded worksheets, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]store.WorksheetEventRecord, error) {
	if s.opts.EventRepo == nil {
		return nil, nil
	}
	return s.opts.EventRepo.QueryWorksheetEvents(ctx, store.QueryOpts{Limit: limit})
}

// commit persists next and makes it the current state.
func (s *Service) commit(ctx context.Context, next progress.PlayerState) error {
	data, err := progress.Encode(next)
	if err != nil {
		return fmt.Errorf("encode player state: %w", err)
	}
	if err := s.opts.StateRepo.Save(ctx, progress.StorageKey, data); err != nil {
		return fmt.Errorf("save player state: %w", err)
	}
	s.state = next
	return nil
}

// recordEvents appends the worksheet and artifact events. Failures are
// logged only.
func (s *Service) recordEvents(ctx context.Context, res progress.Result, outcome progress.QuizOutcome, topic string, fallback bool) {
	if s.opts.EventRepo == nil {
		return
	}

	err := s.opts.EventRepo.AppendWorksheetEvent(ctx, store.WorksheetEventData{
		Topic:      topic,
		Grade:      res.State.GradeLevel,
		Score:      outcome.Score,
		Total:      outcome.TotalQuestions,
		XPGained:   res.ExperienceGained,
		LevelAfter: res.State.Level,
		Decision:   res.Decision.String(),
		Fallback:   fallback,
	})
	if err != nil {
		s.logger.Warn("failed to record worksheet event", "error", err)
	}

	if a := res.Artifact; a != nil {
		err := s.opts.EventRepo.AppendArtifactEvent(ctx, store.ArtifactEventData{
			ArtifactID: a.ID,
			Name:       a.Name,
			Rarity:     string(a.Rarity),
			Topic:      topic,
		})
		if err != nil {
			s.logger.Warn("failed to record artifact event", "error", err)
		}
	}
}

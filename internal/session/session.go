package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/nexus/internal/progress"
	"github.com/abhisek/nexus/internal/worksheet"
)

var (
	// ErrEmptyWorksheet is returned by New for a worksheet with no questions.
	ErrEmptyWorksheet = errors.New("worksheet has no questions")

	// ErrInvalidChoice is returned for an option index outside the question's options.
	ErrInvalidChoice = errors.New("invalid option")

	// ErrAlreadyAnswered is returned when the current question already has an answer.
	ErrAlreadyAnswered = errors.New("question already answered")

	// ErrFinished is returned for any operation on a finished session.
	ErrFinished = errors.New("session is finished")
)

// New starts a session over ws.
func New(ws *worksheet.Worksheet, opts ...Option) (*Session, error) {
	if ws == nil || len(ws.Questions) == 0 {
		return nil, ErrEmptyWorksheet
	}

	s := &Session{
		worksheet: ws,
		choices:   make([]int, len(ws.Questions)),
		phase:     PhaseActive,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.choices {
		s.choices[i] = unanswered
	}

	if id, err := uuid.NewV7(); err == nil {
		s.ID = id.String()
	} else {
		s.ID = uuid.NewString()
	}
	s.startTime = s.now()
	return s, nil
}

// Worksheet returns the worksheet being played.
func (s *Session) Worksheet() *worksheet.Worksheet {
	return s.worksheet
}

// Phase returns the current phase, ending the session first if its time
// limit has passed.
func (s *Session) Phase() Phase {
	s.checkExpiry()
	return s.phase
}

// Finished reports whether the session is over.
func (s *Session) Finished() bool {
	return s.Phase() == PhaseFinished
}

// TimeExpired reports whether the session ended because the limit ran out.
func (s *Session) TimeExpired() bool {
	s.checkExpiry()
	return s.timeExpired
}

// Index returns the zero-based position of the current question.
func (s *Session) Index() int {
	return s.index
}

// Score returns the number of correct answers so far.
func (s *Session) Score() int {
	return s.score
}

// Current returns the current question. The second result is false once
// the session has finished.
func (s *Session) Current() (worksheet.Question, bool) {
	if s.Finished() {
		return worksheet.Question{}, false
	}
	return s.worksheet.Questions[s.index], true
}

// Answer records choice for the current question. Each question accepts
// exactly one answer.
func (s *Session) Answer(choice int) (Feedback, error) {
	if s.Finished() {
		return Feedback{}, ErrFinished
	}
	if s.phase == PhaseFeedback {
		return Feedback{}, ErrAlreadyAnswered
	}

	q := s.worksheet.Questions[s.index]
	if choice < 0 || choice >= len(q.Options) {
		return Feedback{}, ErrInvalidChoice
	}

	s.choices[s.index] = choice
	correct := q.IsCorrect(choice)
	if correct {
		s.score++
	}
	s.phase = PhaseFeedback

	return Feedback{
		Correct:      correct,
		Choice:       choice,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
		Last:         s.index == len(s.worksheet.Questions)-1,
	}, nil
}

// Next moves to the following question. An unanswered current question is
// skipped and counts as wrong. Moving past the last question finishes the
// session. Next returns false once the session has finished.
func (s *Session) Next() bool {
	if s.Finished() {
		return false
	}
	if s.index == len(s.worksheet.Questions)-1 {
		s.finish(false)
		return false
	}
	s.index++
	s.phase = PhaseActive
	return true
}

// Finish ends the session early. Remaining questions count as wrong.
func (s *Session) Finish() {
	if s.phase != PhaseFinished {
		s.finish(false)
	}
}

// Remaining returns the time left before the limit, or zero when there is
// no limit or it has passed.
func (s *Session) Remaining() time.Duration {
	if s.timeLimit <= 0 {
		return 0
	}
	left := s.timeLimit - s.now().Sub(s.startTime)
	if left < 0 {
		return 0
	}
	return left
}

// Elapsed returns the time spent in the session.
func (s *Session) Elapsed() time.Duration {
	if s.phase == PhaseFinished {
		return s.endTime.Sub(s.startTime)
	}
	return s.now().Sub(s.startTime)
}

// Outcome returns the score over all questions of the worksheet.
// Unanswered questions count as wrong.
func (s *Session) Outcome() progress.QuizOutcome {
	return progress.QuizOutcome{
		Score:          s.score,
		TotalQuestions: len(s.worksheet.Questions),
	}
}

func (s *Session) checkExpiry() {
	if s.phase == PhaseFinished || s.timeLimit <= 0 {
		return
	}
	if s.now().Sub(s.startTime) >= s.timeLimit {
		s.finish(true)
	}
}

func (s *Session) finish(expired bool) {
	s.phase = PhaseFinished
	s.timeExpired = expired
	s.endTime = s.now()
	if expired && s.timeLimit > 0 {
		s.endTime = s.startTime.Add(s.timeLimit)
	}
}

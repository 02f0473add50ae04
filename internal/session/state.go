package session

import (
	"time"

	"github.com/abhisek/nexus/internal/worksheet"
)

// Phase represents the current phase of a quiz session.
type Phase int

const (
	PhaseActive   Phase = iota // Waiting for an answer to the current question
	PhaseFeedback              // Current question answered, feedback available
	PhaseFinished              // All questions done or time expired
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseFeedback:
		return "feedback"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// unanswered marks a question with no recorded choice.
const unanswered = -1

// Session is one run through a worksheet. It is not safe for concurrent use.
type Session struct {
	// ID is the UUID for this session.
	ID string

	worksheet *worksheet.Worksheet

	// index is the position of the current question.
	index int

	// choices holds the selected option per question, or unanswered.
	choices []int

	score int
	phase Phase

	// timeExpired is set when the session ended because the limit ran out.
	timeExpired bool

	startTime time.Time
	endTime   time.Time
	timeLimit time.Duration
	now       func() time.Time
}

// Feedback describes the result of answering one question.
type Feedback struct {
	Correct      bool
	Choice       int
	CorrectIndex int
	Explanation  string

	// Last is true when this was the final question of the worksheet.
	Last bool
}

// Option configures a Session.
type Option func(*Session)

// WithTimeLimit ends the session once d has elapsed since it started.
// Zero disables the limit.
func WithTimeLimit(d time.Duration) Option {
	return func(s *Session) { s.timeLimit = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

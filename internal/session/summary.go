package session

import "time"

// Missed is a question answered wrongly or left unanswered.
type Missed struct {
	Number       int // 1-based question number
	Text         string
	Choice       int // -1 when unanswered
	CorrectIndex int
	Explanation  string
}

// Summary holds the data displayed after a session.
type Summary struct {
	Topic          string
	Grade          int
	Duration       time.Duration
	TotalQuestions int
	Answered       int
	TotalCorrect   int
	Accuracy       float64
	TimeExpired    bool
	Fallback       bool
	Missed         []Missed
}

// BuildSummary creates a Summary from the session's answers.
func BuildSummary(s *Session) *Summary {
	sum := &Summary{
		Topic:          s.worksheet.Topic,
		Grade:          s.worksheet.Grade,
		Duration:       s.Elapsed(),
		TotalQuestions: len(s.worksheet.Questions),
		TotalCorrect:   s.score,
		TimeExpired:    s.timeExpired,
		Fallback:       s.worksheet.IsFallback,
	}

	for i, q := range s.worksheet.Questions {
		choice := s.choices[i]
		if choice != unanswered {
			sum.Answered++
		}
		if choice == unanswered || !q.IsCorrect(choice) {
			sum.Missed = append(sum.Missed, Missed{
				Number:       i + 1,
				Text:         q.Text,
				Choice:       choice,
				CorrectIndex: q.CorrectIndex,
				Explanation:  q.Explanation,
			})
		}
	}

	if sum.TotalQuestions > 0 {
		sum.Accuracy = float64(sum.TotalCorrect) / float64(sum.TotalQuestions)
	}
	return sum
}

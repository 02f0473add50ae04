package worksheet

import "strings"

// Question is one multiple-choice question of a worksheet.
type Question struct {
	ID           int      `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// IsCorrect reports whether choice is the index of the correct option.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.CorrectIndex
}

// Worksheet is a fixed-length set of questions on a topic at a grade level.
type Worksheet struct {
	Topic     string     `json:"topic"`
	Grade     int        `json:"grade"`
	Questions []Question `json:"questions"`

	// IsFallback is set when the questions are the offline placeholder
	// rather than generated content.
	IsFallback bool `json:"isFallback"`
}

// Subject is an entry of the built-in subject catalog.
type Subject struct {
	ID          string
	Name        string
	Topic       string // keyword sent to the content source
	Description string
}

var subjects = []Subject{
	{ID: "math", Name: "Mathematics", Topic: "Math", Description: "Numbers, Logic, and Problem Solving."},
	{ID: "science", Name: "Science", Topic: "Science", Description: "Biology, Chemistry, and Physics."},
	{ID: "english", Name: "English", Topic: "English Language Arts", Description: "Grammar, Reading Comprehension, and Vocabulary."},
	{ID: "history", Name: "History", Topic: "History", Description: "Past events, Civilizations, and Cultures."},
	{ID: "coding", Name: "Coding", Topic: "Computer Science", Description: "Logic, Algorithms, and Digital Skills."},
}

// Subjects returns the subject catalog in display order.
func Subjects() []Subject {
	return append([]Subject(nil), subjects...)
}

// LookupSubject finds a subject by id, case-insensitively.
func LookupSubject(id string) (Subject, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, s := range subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// ResolveTopic maps a subject id to its topic keyword. Anything else is
// treated as a custom free-text topic and returned trimmed.
func ResolveTopic(subjectOrTopic string) string {
	if s, ok := LookupSubject(subjectOrTopic); ok {
		return s.Topic
	}
	return strings.TrimSpace(subjectOrTopic)
}

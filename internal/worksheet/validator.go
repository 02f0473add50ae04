package worksheet

import (
	"fmt"
	"strings"
)

// OptionCount is the number of options every question carries.
const OptionCount = 4

// Validator checks a generated worksheet before it is handed to a session.
type Validator interface {
	// Name returns a short identifier for error messages and logging.
	Name() string

	// Validate returns nil if the worksheet passes.
	Validate(ws *Worksheet, wantCount int) *ValidationError
}

// ValidationError describes why a worksheet failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator checks question count, option count, correct index
// range and that no text field is blank.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(ws *Worksheet, wantCount int) *ValidationError {
	if len(ws.Questions) != wantCount {
		return v.fail("got %d questions, want %d", len(ws.Questions), wantCount)
	}
	for i, q := range ws.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return v.fail("question %d: text is empty", i+1)
		}
		if len(q.Options) != OptionCount {
			return v.fail("question %d: got %d options, want %d", i+1, len(q.Options), OptionCount)
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return v.fail("question %d: option %d is empty", i+1, j+1)
			}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return v.fail("question %d: correct index %d out of range", i+1, q.CorrectIndex)
		}
		if strings.TrimSpace(q.Explanation) == "" {
			return v.fail("question %d: explanation is empty", i+1)
		}
	}
	return nil
}

func (v *StructuralValidator) fail(format string, args ...any) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
}

// DuplicateValidator rejects worksheets that repeat a question.
type DuplicateValidator struct{}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(ws *Worksheet, _ int) *ValidationError {
	seen := make(map[string]int, len(ws.Questions))
	for i, q := range ws.Questions {
		key := strings.ToLower(strings.Join(strings.Fields(q.Text), " "))
		if first, ok := seen[key]; ok {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("question %d repeats question %d", i+1, first+1),
			}
		}
		seen[key] = i
	}
	return nil
}

package quiz

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
)

// Choice is a multiple-choice selector for one question.
type Choice struct {
	Question     string
	Options      []string
	CorrectIndex int

	// Cursor is the highlighted option.
	Cursor int

	// Chosen is the submitted option, or -1 while the question is open.
	Chosen int
}

// NewChoice creates an open selector with the cursor on the first option.
func NewChoice(question string, options []string, correctIndex int) Choice {
	return Choice{
		Question:     question,
		Options:      options,
		CorrectIndex: correctIndex,
		Chosen:       -1,
	}
}

// Submitted reports whether an option has been chosen.
func (c Choice) Submitted() bool {
	return c.Chosen >= 0
}

// Update moves the cursor with the arrow keys or j/k and submits on enter.
// A letter (a-d) or digit (1-4) submits that option directly.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if c.Submitted() {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return c, nil
	}

	switch k := kmsg.String(); k {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "enter", "space":
		c.Chosen = c.Cursor
	default:
		if i := optionIndex(k); i >= 0 && i < len(c.Options) {
			c.Cursor = i
			c.Chosen = i
		}
	}
	return c, nil
}

// View renders the question and its options. After submission the correct
// option is green and a wrong pick red.
func (c Choice) View() string {
	var b strings.Builder
	b.WriteString(questionStyle.Render(c.Question))
	b.WriteString("\n\n")

	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor && !c.Submitted() {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, optionLabel(i), opt)

		style := optionStyle
		switch {
		case c.Submitted() && i == c.CorrectIndex:
			style = correctStyle
		case c.Submitted() && i == c.Chosen:
			style = wrongStyle
		case c.Submitted():
			style = dimStyle
		case i == c.Cursor:
			style = cursorStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// IsCorrect reports whether the submitted option is the correct one.
func (c Choice) IsCorrect() bool {
	return c.Submitted() && c.Chosen == c.CorrectIndex
}

func optionLabel(i int) string {
	return string(rune('A' + i))
}

// optionIndex maps "a".."z" or "1".."9" to an option index; anything else is -1.
func optionIndex(k string) int {
	if len(k) != 1 {
		return -1
	}
	switch c := k[0]; {
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	case c >= '1' && c <= '9':
		return int(c - '1')
	default:
		return -1
	}
}

// Package quiz plays a worksheet session in the terminal.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/nexus/internal/session"
)

// tickMsg drives the countdown of timed sessions.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type keyMap struct {
	Move     key.Binding
	Pick     key.Binding
	Submit   key.Binding
	Continue key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Abort    key.Binding
}

var keys = keyMap{
	Move:     key.NewBinding(key.WithKeys("up", "down", "k", "j"), key.WithHelp("↑/↓", "move")),
	Pick:     key.NewBinding(key.WithKeys("a", "b", "c", "d", "1", "2", "3", "4"), key.WithHelp("a-d", "answer")),
	Submit:   key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "submit")),
	Continue: key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("any key", "continue")),
	Quit:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "stop")),
	Confirm:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "end worksheet")),
	Cancel:   key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "keep going")),
	Abort:    key.NewBinding(key.WithKeys("ctrl+c")),
}

// Model is the Bubble Tea model for one session. The session is finished
// when the program exits, whichever way it ends.
type Model struct {
	sess     *session.Session
	choice   Choice
	feedback *session.Feedback
	confirm  bool
	help     help.Model
}

var _ tea.Model = (*Model)(nil)

// New creates a Model positioned on the session's current question.
func New(sess *session.Session) *Model {
	m := &Model{sess: sess, help: help.New()}
	m.loadQuestion()
	return m
}

func (m *Model) loadQuestion() {
	if q, ok := m.sess.Current(); ok {
		m.choice = NewChoice(q.Text, q.Options, q.CorrectIndex)
	}
}

func (m *Model) Init() tea.Cmd {
	if m.sess.Remaining() > 0 {
		return tick()
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.sess.Finished() {
			return m, tea.Quit
		}
		return m, tick()

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Abort) {
		m.sess.Finish()
		return m, tea.Quit
	}
	if m.sess.Finished() {
		return m, tea.Quit
	}

	if m.confirm {
		switch {
		case key.Matches(msg, keys.Confirm):
			m.sess.Finish()
			return m, tea.Quit
		case key.Matches(msg, keys.Cancel):
			m.confirm = false
		}
		return m, nil
	}

	// Feedback is shown until any key.
	if m.feedback != nil {
		m.feedback = nil
		if !m.sess.Next() {
			return m, tea.Quit
		}
		m.loadQuestion()
		return m, nil
	}

	if key.Matches(msg, keys.Quit) {
		m.confirm = true
		return m, nil
	}

	m.choice, _ = m.choice.Update(msg)
	if !m.choice.Submitted() {
		return m, nil
	}

	fb, err := m.sess.Answer(m.choice.Chosen)
	switch {
	case errors.Is(err, session.ErrFinished):
		return m, tea.Quit
	case err != nil:
		m.loadQuestion()
		return m, nil
	}
	m.feedback = &fb
	return m, nil
}

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	if m.sess.Finished() {
		if m.sess.TimeExpired() {
			return warnStyle.Render("Time is up!") + "\n"
		}
		return ""
	}

	ws := m.sess.Worksheet()
	var b strings.Builder

	header := fmt.Sprintf("%s  ·  Question %d of %d  ·  Score %d", ws.Topic, m.sess.Index()+1, len(ws.Questions), m.sess.Score())
	if left := m.sess.Remaining(); left > 0 {
		header += fmt.Sprintf("  ·  %s left", left.Round(time.Second))
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")
	b.WriteString(m.choice.View())

	var hints []key.Binding
	switch {
	case m.confirm:
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("End the worksheet now? Unanswered questions count as wrong."))
		b.WriteString("\n")
		hints = []key.Binding{keys.Confirm, keys.Cancel}

	case m.feedback != nil:
		b.WriteString("\n")
		b.WriteString(feedbackText(m.choice, m.feedback))
		hints = []key.Binding{keys.Continue}

	default:
		hints = []key.Binding{keys.Move, keys.Pick, keys.Submit, keys.Quit}
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(hints))
	b.WriteString("\n")
	return b.String()
}

func feedbackText(c Choice, fb *session.Feedback) string {
	var b strings.Builder
	if fb.Correct {
		b.WriteString(correctStyle.Render("Correct!"))
	} else {
		b.WriteString(wrongStyle.Render(fmt.Sprintf("Not quite. The answer is %s) %s",
			optionLabel(fb.CorrectIndex), c.Options[fb.CorrectIndex])))
	}
	b.WriteString("\n")
	if fb.Explanation != "" {
		b.WriteString(dimStyle.Render(fb.Explanation))
		b.WriteString("\n")
	}
	return b.String()
}

// Run plays sess on the given terminal streams until it finishes, the
// player stops, or ctx is cancelled. The session is always finished on
// return.
func Run(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer) error {
	defer sess.Finish()

	p := tea.NewProgram(New(sess), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("play worksheet: %w", err)
	}
	return nil
}

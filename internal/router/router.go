package router

import "github.com/abhisek/nexus/internal/progress"

// ViewState identifies a top-level view of the application.
type ViewState string

const (
	ViewGradeSelect ViewState = "GRADE_SELECT"
	ViewDashboard   ViewState = "DASHBOARD"
	ViewQuiz        ViewState = "QUIZ"
	ViewArcade      ViewState = "ARCADE"
	ViewVault       ViewState = "VAULT"
)

// Router tracks the active view as a stack so Back returns to the previous
// one. The stack never becomes empty.
type Router struct {
	stack []ViewState
}

// Initial returns the view a player lands on: grade selection until a grade
// has been chosen, the dashboard afterwards.
func Initial(s progress.PlayerState) ViewState {
	if !s.GradeSelected() {
		return ViewGradeSelect
	}
	return ViewDashboard
}

// New creates a Router positioned at the initial view for s.
func New(s progress.PlayerState) *Router {
	return &Router{stack: []ViewState{Initial(s)}}
}

// Active returns the current view.
func (r *Router) Active() ViewState {
	return r.stack[len(r.stack)-1]
}

// Navigate moves to the requested view. While no grade is selected every
// request resolves to grade selection. The dashboard is the root: reaching
// it clears the history.
func (r *Router) Navigate(to ViewState, gradeSelected bool) ViewState {
	switch {
	case !gradeSelected:
		r.stack = []ViewState{ViewGradeSelect}
	case to == ViewDashboard:
		r.stack = []ViewState{ViewDashboard}
	case to == r.Active():
	default:
		r.stack = append(r.stack, to)
	}
	return r.Active()
}

// GradeSelected moves to the dashboard after the player picks a grade.
func (r *Router) GradeSelected() ViewState {
	return r.Navigate(ViewDashboard, true)
}

// Apply follows the navigation decision of a recorded worksheet. The quiz
// view is replaced so Back from the arcade returns to the dashboard.
func (r *Router) Apply(d progress.Decision) ViewState {
	r.stack = []ViewState{ViewDashboard}
	if d == progress.DecisionAdvanceToReward {
		r.stack = append(r.stack, ViewArcade)
	}
	return r.Active()
}

// Back pops the current view. No-op at the bottom of the stack.
func (r *Router) Back() ViewState {
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	return r.Active()
}

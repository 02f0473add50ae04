package progress

import "errors"

const (
	// ExperiencePerLevel is the XP width of every level.
	ExperiencePerLevel = 300

	// ExperiencePerCorrect is awarded for each correct answer.
	ExperiencePerCorrect = 20

	// ExperiencePerQuestion is awarded for each question attempted, so a
	// finished worksheet is worth something even with partial credit.
	ExperiencePerQuestion = 5

	// MaxExperience caps stored and earned XP.
	MaxExperience = 1_000_000_000

	// RecentScoreWindow is the number of most recent percentages kept.
	RecentScoreWindow = 5

	// PassThreshold is the minimum percentage that opens the reward flow.
	PassThreshold = 0.5

	// MinGrade and MaxGrade bound a selectable grade level.
	MinGrade = 1
	MaxGrade = 12

	// DefaultArtifactDescription is used when a generated artifact has none.
	DefaultArtifactDescription = "A reward for excellence."
)

var (
	// ErrInvalidGrade is returned by SetGrade for a grade outside 1-12.
	ErrInvalidGrade = errors.New("grade must be between 1 and 12")

	// ErrInvalidOutcome is returned for an outcome with no questions or a
	// score outside [0, total].
	ErrInvalidOutcome = errors.New("invalid quiz outcome")

	// ErrAvatarLocked is returned when selecting an avatar that is not unlocked.
	ErrAvatarLocked = errors.New("avatar is not unlocked")
)

// LevelFor returns the level for a cumulative XP total.
func LevelFor(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return experience/ExperiencePerLevel + 1
}

// LevelProgress returns the XP earned inside the current level and the
// fraction of the way to the next level.
func LevelProgress(experience int) (into int, fraction float64) {
	if experience < 0 {
		experience = 0
	}
	into = experience % ExperiencePerLevel
	return into, float64(into) / ExperiencePerLevel
}

// ExperienceFor returns the XP awarded for an outcome.
func ExperienceFor(o QuizOutcome) int {
	return o.Score*ExperiencePerCorrect + o.TotalQuestions*ExperiencePerQuestion
}

// pushRecent appends p and evicts the oldest entries beyond the window.
func pushRecent(scores []float64, p float64) []float64 {
	scores = append(scores, p)
	if len(scores) > RecentScoreWindow {
		scores = append([]float64(nil), scores[len(scores)-RecentScoreWindow:]...)
	}
	return scores
}

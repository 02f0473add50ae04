package progress

import (
	"encoding/json"
	"strings"
	"time"
)

// Rarity is the collectible tier of an artifact.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityLegendary Rarity = "Legendary"
)

// AllRarities returns all rarities in order from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityLegendary}
}

// ParseRarity maps a free-form rarity label to a Rarity. Matching is
// case-insensitive. The second return value is false when the label is not a
// known rarity, in which case RarityCommon is returned.
func ParseRarity(s string) (Rarity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common":
		return RarityCommon, true
	case "rare":
		return RarityRare, true
	case "legendary":
		return RarityLegendary, true
	default:
		return RarityCommon, false
	}
}

// Artifact is a collectible reward earned on a perfect worksheet.
// Artifacts are never modified after they are created.
type Artifact struct {
	ID          string
	Name        string
	Description string
	Rarity      Rarity
	AcquiredAt  time.Time
}

// artifactJSON is the persisted shape of an Artifact. The acquisition time is
// stored as Unix milliseconds.
type artifactJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Rarity       string `json:"rarity"`
	DateAcquired int64  `json:"dateAcquired"`
}

func (a Artifact) MarshalJSON() ([]byte, error) {
	return json.Marshal(artifactJSON{
		ID:           a.ID,
		Name:         a.Name,
		Description:  a.Description,
		Rarity:       string(a.Rarity),
		DateAcquired: a.AcquiredAt.UnixMilli(),
	})
}

func (a *Artifact) UnmarshalJSON(data []byte) error {
	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rarity, _ := ParseRarity(raw.Rarity)
	*a = Artifact{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Rarity:      rarity,
		AcquiredAt:  time.UnixMilli(raw.DateAcquired).UTC(),
	}
	return nil
}

// PlayerState is the single persistent aggregate for an installation.
//
// Level is derived from Experience and is recomputed by every transition that
// changes Experience; it is stored only so the persisted record is complete.
type PlayerState struct {
	Experience          int        `json:"xp"`
	GradeLevel          int        `json:"grade"`
	Level               int        `json:"level"`
	CompletedWorksheets int        `json:"completedWorksheets"`
	RecentScores        []float64  `json:"recentScores"`
	Inventory           []Artifact `json:"inventory"`
	UnlockedAvatars     []string   `json:"unlockedAvatars"`
	CurrentAvatar       string     `json:"currentAvatar"`
}

// InitialState returns the state of a fresh installation: no experience,
// grade unset, and only the default avatar unlocked.
func InitialState() PlayerState {
	return PlayerState{
		Experience:      0,
		GradeLevel:      0,
		Level:           1,
		RecentScores:    []float64{},
		Inventory:       []Artifact{},
		UnlockedAvatars: []string{DefaultAvatarID},
		CurrentAvatar:   DefaultAvatarID,
	}
}

// Clone returns a deep copy of the state. Transitions work on clones so the
// caller's value is never mutated.
func (s PlayerState) Clone() PlayerState {
	cp := s
	cp.RecentScores = append(make([]float64, 0, len(s.RecentScores)), s.RecentScores...)
	cp.Inventory = append(make([]Artifact, 0, len(s.Inventory)), s.Inventory...)
	cp.UnlockedAvatars = append(make([]string, 0, len(s.UnlockedAvatars)), s.UnlockedAvatars...)
	return cp
}

// GradeSelected reports whether the player has picked a grade level.
func (s PlayerState) GradeSelected() bool {
	return s.GradeLevel != 0
}

// IsUnlocked reports whether avatarID is in the unlocked set.
func (s PlayerState) IsUnlocked(avatarID string) bool {
	for _, id := range s.UnlockedAvatars {
		if id == avatarID {
			return true
		}
	}
	return false
}

// AverageRecentScore returns the mean of the recent score window, or 0 when
// no worksheet has been completed yet.
func (s PlayerState) AverageRecentScore() float64 {
	if len(s.RecentScores) == 0 {
		return 0
	}
	var sum float64
	for _, p := range s.RecentScores {
		sum += p
	}
	return sum / float64(len(s.RecentScores))
}

// QuizOutcome is the result of one completed worksheet.
type QuizOutcome struct {
	Score          int
	TotalQuestions int
}

// Validate checks 0 <= Score <= TotalQuestions and TotalQuestions > 0.
func (o QuizOutcome) Validate() error {
	if o.TotalQuestions <= 0 || o.Score < 0 || o.Score > o.TotalQuestions {
		return ErrInvalidOutcome
	}
	return nil
}

// Percentage returns Score / TotalQuestions in [0, 1].
func (o QuizOutcome) Percentage() float64 {
	if o.TotalQuestions <= 0 {
		return 0
	}
	return float64(o.Score) / float64(o.TotalQuestions)
}

// Perfect reports whether every question was answered correctly.
func (o QuizOutcome) Perfect() bool {
	return o.TotalQuestions > 0 && o.Score == o.TotalQuestions
}

// Passed reports whether the outcome meets the pass threshold (inclusive).
func (o QuizOutcome) Passed() bool {
	return o.TotalQuestions > 0 && o.Percentage() >= PassThreshold
}

// Decision is the navigation outcome of a recorded worksheet.
type Decision int

const (
	// DecisionReturnToDashboard sends the player back to the dashboard.
	DecisionReturnToDashboard Decision = iota
	// DecisionAdvanceToReward opens the reward (arcade) flow.
	DecisionAdvanceToReward
)

func (d Decision) String() string {
	switch d {
	case DecisionAdvanceToReward:
		return "ADVANCE_TO_REWARD"
	case DecisionReturnToDashboard:
		return "RETURN_TO_DASHBOARD"
	default:
		return "UNKNOWN"
	}
}

// DecisionFor returns the navigation decision for a score percentage.
func DecisionFor(percentage float64) Decision {
	if percentage >= PassThreshold {
		return DecisionAdvanceToReward
	}
	return DecisionReturnToDashboard
}

package progress

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// StorageKey is the fixed key the player aggregate is stored under.
const StorageKey = "nexus_school_v1"

// Encode serializes the state as a flat JSON record.
func Encode(s PlayerState) ([]byte, error) {
	if s.RecentScores == nil {
		s.RecentScores = []float64{}
	}
	if s.Inventory == nil {
		s.Inventory = []Artifact{}
	}
	if s.UnlockedAvatars == nil {
		s.UnlockedAvatars = []string{}
	}
	return json.Marshal(s)
}

// Decode parses a persisted record. It never fails: unknown fields are
// ignored, and each missing or malformed field keeps its initial value. The
// names of fields that could not be read are returned for logging. The
// result is normalized so every state invariant holds.
func Decode(data []byte) (PlayerState, []string) {
	s := InitialState()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return s, []string{"document"}
	}

	var bad []string
	decodeInt(raw, "xp", &s.Experience, &bad)
	decodeInt(raw, "grade", &s.GradeLevel, &bad)
	decodeInt(raw, "completedWorksheets", &s.CompletedWorksheets, &bad)
	decodeField(raw, "recentScores", &s.RecentScores, &bad)
	decodeField(raw, "unlockedAvatars", &s.UnlockedAvatars, &bad)
	decodeField(raw, "currentAvatar", &s.CurrentAvatar, &bad)
	decodeInventory(raw, &s.Inventory, &bad)

	return Normalize(s), bad
}

// Normalize repairs a state so that every invariant holds: non-negative
// counters, a grade in 0-12, level derived from experience, a bounded score
// window, the default avatar unlocked and a current avatar that is unlocked.
// Level-eligible avatars are left to Engine.UnlockAvatars so the caller can
// tell when the stored record is behind.
func Normalize(s PlayerState) PlayerState {
	s = s.Clone()

	s.Experience = min(max(s.Experience, 0), MaxExperience)
	if s.CompletedWorksheets < 0 {
		s.CompletedWorksheets = 0
	}
	if s.GradeLevel < 0 || s.GradeLevel > MaxGrade {
		s.GradeLevel = 0
	}
	s.Level = LevelFor(s.Experience)

	scores := s.RecentScores[:0]
	for _, p := range s.RecentScores {
		if math.IsNaN(p) {
			continue
		}
		scores = append(scores, math.Min(1, math.Max(0, p)))
	}
	if len(scores) > RecentScoreWindow {
		scores = scores[len(scores)-RecentScoreWindow:]
	}
	s.RecentScores = scores

	seen := map[string]bool{DefaultAvatarID: true}
	unlocked := []string{DefaultAvatarID}
	for _, id := range s.UnlockedAvatars {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unlocked = append(unlocked, id)
	}
	s.UnlockedAvatars = unlocked

	if !s.IsUnlocked(s.CurrentAvatar) {
		s.CurrentAvatar = DefaultAvatarID
	}
	return s
}

func decodeField[T any](raw map[string]json.RawMessage, key string, dst *T, bad *[]string) {
	v, ok := raw[key]
	if !ok || isNull(v) {
		return
	}
	var tmp T
	if err := json.Unmarshal(v, &tmp); err != nil {
		*bad = append(*bad, key)
		return
	}
	*dst = tmp
}

// decodeInt accepts any JSON number and truncates it toward zero. Values
// outside the int range saturate.
func decodeInt(raw map[string]json.RawMessage, key string, dst *int, bad *[]string) {
	var f float64
	before := len(*bad)
	decodeField(raw, key, &f, bad)
	if len(*bad) > before {
		return
	}
	if _, ok := raw[key]; ok && !isNull(raw[key]) {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			*bad = append(*bad, key)
			return
		}
		switch {
		case f >= float64(math.MaxInt):
			*dst = math.MaxInt
		case f <= float64(math.MinInt):
			*dst = math.MinInt
		default:
			*dst = int(f)
		}
	}
}

// decodeInventory reads artifacts one by one, dropping entries that cannot
// be parsed or have no name.
func decodeInventory(raw map[string]json.RawMessage, dst *[]Artifact, bad *[]string) {
	var items []json.RawMessage
	decodeField(raw, "inventory", &items, bad)

	out := make([]Artifact, 0, len(items))
	dropped := false
	for _, item := range items {
		var a Artifact
		if err := json.Unmarshal(item, &a); err != nil || strings.TrimSpace(a.Name) == "" {
			dropped = true
			continue
		}
		out = append(out, a)
	}
	if dropped {
		*bad = append(*bad, "inventory")
	}
	if len(items) > 0 || len(out) > 0 {
		*dst = out
	}
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

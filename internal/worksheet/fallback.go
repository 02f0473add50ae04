package worksheet

import (
	"fmt"

	"github.com/abhisek/nexus/internal/progress"
)

const placeholderExplanation = "Great job! This is the correct answer."

// Placeholder returns the deterministic offline worksheet: count questions
// that name the topic and grade, four generic options, and the first option
// correct.
func Placeholder(topic string, grade, count int) *Worksheet {
	questions := make([]Question, count)
	for i := range questions {
		questions[i] = Question{
			ID:           i,
			Text:         fmt.Sprintf("(Grade %d) Question %d about %s?", grade, i+1, topic),
			Options:      []string{"Answer A", "Answer B", "Answer C", "Answer D"},
			CorrectIndex: 0,
			Explanation:  placeholderExplanation,
		}
	}
	return &Worksheet{
		Topic:      topic,
		Grade:      grade,
		Questions:  questions,
		IsFallback: true,
	}
}

// Reward descriptors used when no generated artifact is available.
var (
	// OfflineArtifact is returned without any network call when no provider
	// is configured.
	OfflineArtifact = progress.ArtifactDraft{
		Name:        "Gold Star",
		Description: "A classic reward.",
		Rarity:      string(progress.RarityCommon),
	}

	// FailedArtifact is returned when the provider call fails.
	FailedArtifact = progress.ArtifactDraft{
		Name:        "Mystery Sticker",
		Description: "A shiny sticker.",
		Rarity:      string(progress.RarityRare),
	}
)

package worksheet

import (
	"fmt"
	"strings"
)

const worksheetSystemPrompt = `You are a helpful AI tutor designed to generate educational content.

Rules:
- Every question is multiple choice with exactly 4 options and exactly one correct option.
- correctAnswerIndex is the zero-based position of the correct option.
- Distractors should be plausible, not silly.
- The explanation tells the student why the correct option is right.
- Return strictly JSON matching the schema.`

const artifactSystemPrompt = `You design collectible rewards for students who finish a worksheet with a perfect score.`

// gradeBand describes the expected difficulty for a grade level.
func gradeBand(grade int) string {
	switch {
	case grade <= 5:
		return "Keep language simple, fun, and encouraging."
	case grade <= 8:
		return "Moderate difficulty, middle school level."
	default:
		return "High school level, more complex concepts."
	}
}

// buildWorksheetMessage constructs the user message for a worksheet request.
func buildWorksheetMessage(topic string, grade, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a %d-question multiple-choice worksheet for a Grade %d student about %q.\n", count, grade, topic)
	b.WriteString("\nContext:\n")
	fmt.Fprintf(&b, "- %s\n", gradeBand(grade))
	fmt.Fprintf(&b, "\nSubject: %s\n", topic)

	return b.String()
}

// buildArtifactMessage constructs the user message for an artifact request.
func buildArtifactMessage(topic string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a creative \"Digital Sticker\" or \"Badge\" name and description related to the school subject %q.\n", topic)
	b.WriteString("Reward for a perfect worksheet.\n")
	b.WriteString("Example for Math: \"Calculator Hero Badge\", \"Pi Master Sticker\".\n")
	b.WriteString("Example for Science: \"Future Scientist Ribbon\", \"Microscope Token\".\n")
	b.WriteString("Rarity is either Rare or Legendary.")

	return b.String()
}

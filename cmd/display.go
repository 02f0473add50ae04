package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/nexus/internal/progress"
)

const barWidth = 20

// printPlayerCard writes the dashboard header: grade, level and XP bar.
func printPlayerCard(w io.Writer, p progress.PlayerState) {
	grade := "not selected"
	if p.GradeSelected() {
		grade = fmt.Sprintf("Grade %d", p.GradeLevel)
	}
	avatar := p.CurrentAvatar
	if a, ok := progress.LookupAvatar(p.CurrentAvatar); ok {
		avatar = a.Name
	}
	into, frac := progress.LevelProgress(p.Experience)

	fmt.Fprintf(w, "Avatar:    %s\n", avatar)
	fmt.Fprintf(w, "Grade:     %s\n", grade)
	fmt.Fprintf(w, "Level:     %d  %s %d/%d XP\n", p.Level, progressBar(frac, barWidth), into, progress.ExperiencePerLevel)
	fmt.Fprintf(w, "Total XP:  %d\n", p.Experience)
	fmt.Fprintf(w, "Completed: %d worksheets\n", p.CompletedWorksheets)
}

func progressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p*100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/nexus/internal/app"
	"github.com/abhisek/nexus/internal/progress"
	"github.com/abhisek/nexus/internal/quiz"
	"github.com/abhisek/nexus/internal/session"
)

var worksheetCmd = &cobra.Command{
	Use:   "worksheet [subject]",
	Short: "Take a worksheet on a subject or custom topic",
	Long: `Take a multiple-choice worksheet at your grade level.

The subject is one of the ids listed by "nexus subjects"; --topic accepts any
free-text topic instead. Pick answers with the arrow keys and enter, or press
A-D (1-4). Esc stops early; unanswered questions count as wrong.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		count, _ := cmd.Flags().GetInt("count")
		if len(args) == 1 {
			if topic != "" {
				return fmt.Errorf("use either a subject or --topic, not both")
			}
			topic = args[0]
		}
		if topic == "" {
			return fmt.Errorf("choose a subject (see: nexus subjects) or pass --topic")
		}
		if d, _ := cmd.Flags().GetDuration("time-limit"); d > 0 {
			cfg.Worksheet.TimeLimit = d
		}

		e, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		sess, err := e.service.StartWorksheet(cmd.Context(), topic, count)
		if errors.Is(err, app.ErrGradeNotSelected) {
			fmt.Fprintln(out, "Pick your grade first: nexus grade <1-12>")
			return nil
		}
		if err != nil {
			return err
		}

		ws := sess.Worksheet()
		fmt.Fprintf(out, "%s worksheet, Grade %d, %d questions\n", ws.Topic, ws.Grade, len(ws.Questions))
		if ws.IsFallback {
			fmt.Fprintln(out, "(offline practice questions)")
		}
		if limit := cfg.Worksheet.TimeLimit; limit > 0 {
			fmt.Fprintf(out, "Time limit: %s\n", limit)
		}

		if err := quiz.Run(cmd.Context(), sess, cmd.InOrStdin(), out); err != nil {
			return err
		}

		summary := session.BuildSummary(sess)
		fmt.Fprintln(out)
		if summary.TimeExpired {
			fmt.Fprintln(out, "Time is up!")
		}
		fmt.Fprintf(out, "Score: %d/%d (%s)\n", summary.TotalCorrect, summary.TotalQuestions, formatPercent(summary.Accuracy))

		res, err := e.service.CompleteWorksheet(cmd.Context(), ws, sess.Outcome())
		if err != nil {
			return fmt.Errorf("record worksheet: %w", err)
		}
		printResult(out, res)
		return nil
	},
}

func init() {
	worksheetCmd.Flags().StringP("topic", "t", "", "Custom topic instead of a built-in subject")
	worksheetCmd.Flags().IntP("count", "n", 0, "Number of questions (default from config)")
	worksheetCmd.Flags().Duration("time-limit", 0, "Time limit for the worksheet, e.g. 5m (default from config)")
}

// printResult reports experience, level changes, artifacts and unlocks.
func printResult(out io.Writer, res progress.Result) {
	fmt.Fprintf(out, "+%d XP", res.ExperienceGained)
	if res.LeveledUp() {
		fmt.Fprintf(out, "  LEVEL UP! You reached level %d", res.State.Level)
	}
	fmt.Fprintln(out)

	if a := res.Artifact; a != nil {
		fmt.Fprintf(out, "Perfect score! New %s artifact: %s (%s)\n", a.Rarity, a.Name, a.Description)
	}
	for _, id := range res.UnlockedAvatars {
		name := id
		if a, ok := progress.LookupAvatar(id); ok {
			name = a.Name
		}
		fmt.Fprintf(out, "Avatar unlocked: %s (nexus avatar %s)\n", name, id)
	}

	switch res.Decision {
	case progress.DecisionAdvanceToReward:
		fmt.Fprintln(out, "Great work! The arcade is open.")
	default:
		fmt.Fprintln(out, "Keep practicing. Back to the dashboard.")
	}
}

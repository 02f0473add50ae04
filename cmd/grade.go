package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/nexus/internal/progress"
)

var gradeCmd = &cobra.Command{
	Use:   "grade [1-12]",
	Short: "Show or set your grade level",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			p, err := e.service.Player()
			if err != nil {
				return err
			}
			if !p.GradeSelected() {
				fmt.Fprintln(out, "No grade selected yet. Run: nexus grade <1-12>")
				return nil
			}
			fmt.Fprintf(out, "Grade %d\n", p.GradeLevel)
			return nil
		}

		grade, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid grade %q: must be a number between %d and %d", args[0], progress.MinGrade, progress.MaxGrade)
		}

		p, err := e.service.SetGrade(cmd.Context(), grade)
		if errors.Is(err, progress.ErrInvalidGrade) {
			return fmt.Errorf("invalid grade %d: must be between %d and %d", grade, progress.MinGrade, progress.MaxGrade)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Grade set to %d. Welcome to the dashboard!\n", p.GradeLevel)
		return nil
	},
}

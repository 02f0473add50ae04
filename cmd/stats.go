package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.service.Player()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printPlayerCard(out, p)

		scores := make([]string, len(p.RecentScores))
		for i, s := range p.RecentScores {
			scores[i] = formatPercent(s)
		}
		recent := "none yet"
		if len(scores) > 0 {
			recent = strings.Join(scores, "  ")
		}
		fmt.Fprintf(out, "Recent:    %s\n", recent)
		if len(p.RecentScores) > 0 {
			fmt.Fprintf(out, "Average:   %s\n", formatPercent(p.AverageRecentScore()))
		}
		fmt.Fprintf(out, "Artifacts: %d\n", len(p.Inventory))
		fmt.Fprintf(out, "Avatars:   %d unlocked\n", len(p.UnlockedAvatars))
		return nil
	},
}

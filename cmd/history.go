package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed worksheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.service.History(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No worksheets completed yet.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-24s  %5s  %5s  %5s  %5s  %s\n",
			"Time", "Topic", "Grade", "Score", "XP", "Level", "Next")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, ev := range events {
			topic := truncate(ev.Topic, 24)
			if ev.Fallback {
				topic = truncate(ev.Topic, 22) + " *"
			}
			fmt.Fprintf(out, "%-16s  %-24s  %5d  %2d/%-2d  %5d  %5d  %s\n",
				ev.Timestamp.Local().Format("2006-01-02 15:04"),
				topic, ev.Grade, ev.Score, ev.Total, ev.XPGained, ev.LevelAfter, ev.Decision)
		}
		fmt.Fprintln(out, "\n* offline placeholder worksheet")
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of worksheets to show")
}

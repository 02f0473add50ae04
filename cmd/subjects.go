package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/nexus/internal/worksheet"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List the built-in subjects",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-10s  %-12s  %s\n", "ID", "Subject", "Covers")
		for _, s := range worksheet.Subjects() {
			fmt.Fprintf(out, "%-10s  %-12s  %s\n", s.ID, s.Name, s.Description)
		}
		fmt.Fprintln(out, "\nAny other text is used as a custom topic, e.g. nexus worksheet --topic \"Volcanoes\"")
	},
}

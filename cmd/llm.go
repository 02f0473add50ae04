package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/nexus/internal/llm"
	"github.com/abhisek/nexus/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded worksheet and artifact generation calls",
}

var llmEventsCmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"list"},
	Short:   "List recent generation calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query llm events: %w", err)
		}
		writeLLMEvents(cmd.OutOrStdout(), events, purpose)
		return nil
	},
}

var llmShowCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"view"},
	Short:   "Show the prompt and reply of one generation call",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid event id %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get llm event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("llm event %d not found", id)
		}
		writeLLMEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmUsageCmd = &cobra.Command{
	Use:     "usage",
	Aliases: []string{"stats"},
	Short:   "Summarize token usage and estimated spend",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage by purpose: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query usage by model: %w", err)
		}
		writeLLMUsage(cmd.OutOrStdout(), byPurpose, byModel)
		return nil
	},
}

func init() {
	llmEventsCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmEventsCmd.Flags().StringP("purpose", "p", "", "Only show one purpose ("+llm.PurposeWorksheet.String()+" or "+llm.PurposeArtifact.String()+")")

	llmCmd.AddCommand(llmEventsCmd, llmShowCmd, llmUsageCmd)
}

func rule(n int) string { return strings.Repeat("-", n) }

func writeLLMEvents(w io.Writer, events []store.LLMRequestEventRecord, purpose string) {
	shown := 0
	for _, e := range events {
		if purpose != "" && e.Purpose != purpose {
			continue
		}
		if shown == 0 {
			fmt.Fprintf(w, "%5s  %-16s  %-12s  %-26s  %7s  %6s  %s\n", "ID", "When", "Purpose", "Model", "Tokens", "Ms", "Result")
			fmt.Fprintln(w, rule(92))
		}
		shown++

		result := "ok"
		if !e.Success {
			result = "failed"
		}
		fmt.Fprintf(w, "%5d  %-16s  %-12s  %-26s  %7d  %6d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			strings.TrimSuffix(e.Purpose, "-gen"),
			truncate(e.Model, 26),
			e.InputTokens+e.OutputTokens,
			e.LatencyMs,
			result,
		)
	}
	if shown == 0 {
		fmt.Fprintln(w, "No generation calls recorded.")
	}
}

func writeLLMEvent(w io.Writer, e *store.LLMRequestEventRecord) {
	fmt.Fprintf(w, "Call %d  %s\n", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  purpose   %s\n", e.Purpose)
	fmt.Fprintf(w, "  provider  %s (%s)\n", e.Provider, e.Model)
	fmt.Fprintf(w, "  tokens    %d prompt, %d reply\n", e.InputTokens, e.OutputTokens)
	if p, ok := llm.PriceOf(e.Model); ok {
		fmt.Fprintf(w, "  cost      %s\n", formatCost(p.Estimate(llm.Usage{InputTokens: e.InputTokens, OutputTokens: e.OutputTokens})))
	}
	fmt.Fprintf(w, "  latency   %dms\n", e.LatencyMs)
	if !e.Success {
		fmt.Fprintf(w, "  error     %s\n", e.ErrorMessage)
	}

	for _, part := range []struct{ title, body string }{
		{"Prompt", e.RequestBody},
		{"Reply", e.ResponseBody},
	} {
		fmt.Fprintf(w, "\n%s\n%s\n", part.title, rule(len(part.title)))
		if part.body == "" {
			fmt.Fprintln(w, "(empty)")
			continue
		}
		fmt.Fprintln(w, strings.TrimRight(part.body, "\n"))
	}
}

func writeLLMUsage(w io.Writer, byPurpose []store.LLMUsageStats, byModel []store.LLMModelUsage) {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "No generation calls recorded.")
		return
	}

	fmt.Fprintf(w, "%-14s  %6s  %6s  %10s  %10s  %7s\n", "Purpose", "Calls", "Failed", "Prompt", "Reply", "Avg ms")
	fmt.Fprintln(w, rule(62))
	for _, st := range byPurpose {
		fmt.Fprintf(w, "%-14s  %6d  %6d  %10d  %10d  %7d\n",
			st.Purpose, st.Calls, st.Failures, st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
	}

	if len(byModel) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%-30s  %6s  %10s\n", "Model", "Calls", "Est. USD")
	fmt.Fprintln(w, rule(50))

	var total float64
	var unpriced []string
	for _, mu := range byModel {
		p, ok := llm.PriceOf(mu.Model)
		if !ok {
			unpriced = append(unpriced, mu.Model)
			fmt.Fprintf(w, "%-30s  %6d  %10s\n", truncate(mu.Model, 30), mu.Calls, "n/a")
			continue
		}
		cost := p.Estimate(llm.Usage{InputTokens: mu.InputTokens, OutputTokens: mu.OutputTokens})
		total += cost
		fmt.Fprintf(w, "%-30s  %6d  %10s\n", truncate(mu.Model, 30), mu.Calls, formatCost(cost))
	}
	fmt.Fprintln(w, rule(50))
	fmt.Fprintf(w, "%-30s  %6s  %10s\n", "Total", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "No list price for %s; the total leaves them out.\n", strings.Join(unpriced, ", "))
	}
}

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/blink-new/studytrack/internal/llm"
	"github.com/blink-new/studytrack/internal/store"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect quiz generation requests and their cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		writeEventTable(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeEvent(cmd.OutOrStdout(), *e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage by purpose and estimated cost by model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}
		writePurposeUsage(out, byPurpose)
		if len(byModel) > 0 {
			fmt.Fprintln(out)
			writeModelCost(out, byModel)
		}
		return nil
	},
}

func writeEventTable(out io.Writer, events []store.LLMEvent) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No LLM events found.")
		return
	}
	const row = "%-5v  %-16v  %-10v  %-28v  %6v  %6v  %7v  %v\n"
	fmt.Fprintf(out, row, "ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
	fmt.Fprintln(out, rule(96))
	for _, e := range events {
		fmt.Fprintf(out, row,
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			truncate(e.Purpose, 10),
			truncate(e.Model, 28),
			e.InputTokens,
			e.OutputTokens,
			e.LatencyMs,
			checkMark(e.Success),
		)
	}
}

func writeEvent(out io.Writer, e store.LLMEvent) {
	field := func(label string, v any) { fmt.Fprintf(out, "%-10s %v\n", label+":", v) }
	field("ID", e.ID)
	field("Time", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	field("Provider", e.Provider)
	field("Model", e.Model)
	field("Purpose", e.Purpose)
	field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
	if usd, ok := llm.EstimateCost(e.Model, e.InputTokens, e.OutputTokens); ok {
		field("Cost", formatCost(usd))
	}
	field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
	field("Success", e.Success)
	if e.ErrorMessage != "" {
		field("Error", e.ErrorMessage)
	}

	section := func(title, body string) {
		fmt.Fprintf(out, "\n%s\n%s\n", title, rule(60))
		if body == "" {
			body = "(not captured)"
		}
		fmt.Fprintln(out, body)
	}
	section("REQUEST", e.RequestBody)
	section("RESPONSE", e.ResponseBody)
}

func writePurposeUsage(out io.Writer, usage []store.LLMUsage) {
	const row = "%-16v  %6v  %10v  %10v  %10v  %8v\n"
	fmt.Fprintln(out, "Usage by purpose")
	fmt.Fprintf(out, row, "Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Fprintln(out, rule(72))

	var calls, in, outTok int
	for _, u := range usage {
		fmt.Fprintf(out, row, u.Purpose, u.Calls, u.InputTokens, u.OutputTokens,
			u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		outTok += u.OutputTokens
	}
	fmt.Fprintln(out, rule(72))
	fmt.Fprintf(out, row, "TOTAL", calls, in, outTok, in+outTok, "")
}

func writeModelCost(out io.Writer, usage []store.ModelUsage) {
	const row = "%-32v  %6v  %10v  %10v  %9v\n"
	fmt.Fprintln(out, "Estimated cost (USD)")
	fmt.Fprintf(out, row, "Model", "Calls", "Input", "Output", "Cost")
	fmt.Fprintln(out, rule(72))

	var total float64
	var unpriced []string
	for _, u := range usage {
		cost := "?"
		if usd, ok := llm.EstimateCost(u.Model, u.InputTokens, u.OutputTokens); ok {
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(out, row, truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	fmt.Fprintln(out, rule(72))

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(out, row, label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
}

// openEventStore opens the SQLite file that records LLM requests.
func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func rule(n int) string {
	return strings.Repeat("─", n)
}

func checkMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. quiz-gen)")
	llmListCmd.Flags().Duration("since", 0, "Only events newer than this (e.g. 24h)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}

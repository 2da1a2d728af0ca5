package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/sheetz/internal/llm"
	"github.com/abhisek/sheetz/internal/store"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM calls made by problem search",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{
			Limit:      limit,
			Purpose:    purpose,
			FailedOnly: failed,
		})
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No LLM calls recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-14s  %-28s  %6s  %6s  %7s  %s\n",
			"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "")
		fmt.Println(rule(100))
		for _, e := range events {
			fmt.Printf("%-5d  %-19s  %-14s  %-28s  %6d  %6d  %7d  %s\n",
				e.ID, e.Timestamp.Local().Format(timeLayout),
				truncate(e.Purpose, 14), truncate(e.Model, 28),
				e.InputTokens, e.OutputTokens, e.LatencyMs, outcome(e.Success))
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("LLM call %d not found", id)
		}

		fmt.Printf("Call %d  %s  %s\n", e.ID, e.Timestamp.Local().Format(timeLayout), outcome(e.Success))
		fmt.Printf("  backend  %s (%s)\n", e.Provider, e.Model)
		fmt.Printf("  purpose  %s\n", e.Purpose)
		fmt.Printf("  tokens   %d in, %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Printf("  latency  %dms\n", e.LatencyMs)
		if c := llm.LookupCost(e.Model); c != nil {
			fmt.Printf("  cost     %s\n", formatCost(c.Cost(e.InputTokens, e.OutputTokens)))
		}
		if e.ErrorMessage != "" {
			fmt.Printf("  error    %s\n", e.ErrorMessage)
		}

		section("Request", e.RequestBody)
		section("Response", prettyJSON(e.ResponseBody))
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return err
		}
		if len(byPurpose) == 0 {
			fmt.Println("No LLM calls recorded.")
			return nil
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("%-28s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Avg Ms")
		fmt.Println(rule(70))
		var sum store.LLMUsage
		for _, u := range byPurpose {
			fmt.Printf("%-28s  %6d  %10d  %10d  %8d\n",
				truncate(u.Purpose, 28), u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			sum.Calls += u.Calls
			sum.InputTokens += u.InputTokens
			sum.OutputTokens += u.OutputTokens
		}
		fmt.Printf("%-28s  %6d  %10d  %10d\n\n", "all", sum.Calls, sum.InputTokens, sum.OutputTokens)

		fmt.Printf("%-28s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
		fmt.Println(rule(70))
		total, unpriced := 0.0, []string{}
		for _, u := range byModel {
			cost := "?"
			if c := llm.LookupCost(u.Model); c != nil {
				usd := c.Cost(u.InputTokens, u.OutputTokens)
				total += usd
				cost = formatCost(usd)
			} else {
				unpriced = append(unpriced, u.Model)
			}
			fmt.Printf("%-28s  %6d  %10d  %10d  %10s\n",
				truncate(u.Model, 28), u.Calls, u.InputTokens, u.OutputTokens, cost)
		}
		fmt.Printf("%-28s  %6s  %10s  %10s  %10s\n", "estimated total", "", "", "", formatCost(total))
		if len(unpriced) > 0 {
			fmt.Printf("\nNo price for %s; excluded from the total.\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func rule(n int) string { return strings.Repeat("─", n) }

func outcome(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func section(title, body string) {
	fmt.Printf("\n%s\n%s\n", title, rule(60))
	if body == "" {
		body = "(not captured)"
	}
	fmt.Println(body)
}

// prettyJSON indents body when it is JSON and returns it unchanged
// otherwise.
func prettyJSON(body string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
		return body
	}
	return buf.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only calls with this purpose (e.g. problem-search)")
	llmListCmd.Flags().Bool("failed", false, "Only failed calls")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

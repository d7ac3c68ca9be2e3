package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls, newest first",
	RunE:  runLLMList,
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one call",
	Args:  cobra.ExactArgs(1),
	RunE:  runLLMView,
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE:  runLLMStats,
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose (graph, quiz, summary)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

func runLLMList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	purpose, _ := cmd.Flags().GetString("purpose")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No model calls recorded.")
		return nil
	}

	t := newTable(os.Stdout, "ID", "Time", "Purpose", "Provider", "Model", "In", "Out", "Ms", "OK")
	for _, e := range events {
		t.rowf("%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s",
			e.ID, formatTime(e.Timestamp), e.Purpose, e.Provider, truncate(e.Model, 28),
			e.InputTokens, e.OutputTokens, e.LatencyMs, lo.Ternary(e.Success, "✓", "✗"))
	}
	return t.flush()
}

func runLLMView(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	e, err := st.EventRepo().GetLLMEvent(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if e == nil {
		return fmt.Errorf("no call with id %d", id)
	}

	fmt.Printf("%s  %s/%s  purpose=%s\n", formatTime(e.Timestamp), e.Provider, e.Model, e.Purpose)
	fmt.Printf("tokens %d in, %d out  latency %dms  ok=%t\n", e.InputTokens, e.OutputTokens, e.LatencyMs, e.Success)
	if e.ErrorMessage != "" {
		fmt.Println("error:", e.ErrorMessage)
	}
	fmt.Println()
	section(os.Stdout, "REQUEST", e.RequestBody)
	section(os.Stdout, "RESPONSE", e.ResponseBody)
	return nil
}

func runLLMStats(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	byPurpose, err := st.EventRepo().LLMUsageByPurpose(ctx)
	if err != nil {
		return fmt.Errorf("query usage: %w", err)
	}
	if len(byPurpose) == 0 {
		fmt.Println("No model calls recorded.")
		return nil
	}

	fmt.Println("Usage by purpose")
	t := newTable(os.Stdout, "Purpose", "Calls", "Input", "Output", "Avg ms")
	for _, u := range byPurpose {
		t.rowf("%s\t%d\t%d\t%d\t%d", u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
	}
	t.rowf("TOTAL\t%d\t%d\t%d\t",
		lo.SumBy(byPurpose, func(u store.PurposeUsage) int { return u.Calls }),
		lo.SumBy(byPurpose, func(u store.PurposeUsage) int { return u.InputTokens }),
		lo.SumBy(byPurpose, func(u store.PurposeUsage) int { return u.OutputTokens }))
	if err := t.flush(); err != nil {
		return err
	}

	byModel, err := st.EventRepo().LLMUsageByModel(ctx)
	if err != nil {
		return fmt.Errorf("query model usage: %w", err)
	}

	fmt.Println()
	fmt.Println("Estimated cost (USD)")
	t = newTable(os.Stdout, "Provider", "Model", "Calls", "Cost")
	var (
		total   float64
		unknown []string
	)
	for _, u := range byModel {
		cost, ok := llm.EstimateCost(llm.ProviderKind(u.Provider), u.Model, u.InputTokens, u.OutputTokens)
		if !ok {
			unknown = append(unknown, u.Model)
			t.rowf("%s\t%s\t%d\t?", u.Provider, truncate(u.Model, 28), u.Calls)
			continue
		}
		total += cost
		t.rowf("%s\t%s\t%d\t%s", u.Provider, truncate(u.Model, 28), u.Calls, formatCost(cost))
	}
	t.rowf("%s\t\t\t%s", lo.Ternary(len(unknown) > 0, "TOTAL (partial)", "TOTAL"), formatCost(total))
	if err := t.flush(); err != nil {
		return err
	}
	if len(unknown) > 0 {
		fmt.Printf("\nNo pricing for: %s\n", strings.Join(lo.Uniq(unknown), ", "))
	}
	return nil
}

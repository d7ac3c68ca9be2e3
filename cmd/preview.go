package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/knowflow/internal/gateway"
	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/markdown"
	"github.com/abhisek/knowflow/internal/skilltree"
	"github.com/abhisek/knowflow/internal/ui/theme"
)

var previewCmd = &cobra.Command{
	Use:   "preview <topic>",
	Short: "Preview a generated path and quiz for a topic (no database)",
	Long: `Generate a learning path for a topic and answer a quiz on its first step.

This is a stateless developer tool: nothing is saved and no events are
recorded. Useful for evaluating prompt and model quality.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("provider", "", "Provider to use (default from config)")
	previewCmd.Flags().String("model", "", "Model to use (default for the provider)")
	previewCmd.Flags().Int("questions", 0, "Questions in the quiz (default from config)")
	previewCmd.Flags().Bool("no-quiz", false, "Only print the path")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	topic := strings.Join(args, " ")

	c := cfg.LLMDefaults()
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		kind, err := llm.ParseProviderKind(v)
		if err != nil {
			return err
		}
		c = c.WithProvider(kind)
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		c.Model = v
	}
	if err := c.Ready(); err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	provider, err := llm.NewProvider(ctx, c, nil, newLogger(os.Stderr))
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	gc := gateway.DefaultConfig()
	gc.QuestionCount = cfg.Quiz.Questions
	if n, _ := cmd.Flags().GetInt("questions"); n > 0 {
		gc.QuestionCount = n
	}
	gc.Temperature = c.Temperature
	gw := gateway.New(provider, gc)

	fmt.Printf("Topic: %s (%s, %s)\n", topic, c.Provider.DisplayName(), c.Model)
	fmt.Println("Generating path...")
	fmt.Println()

	nodes, err := gw.GenerateGraph(ctx, topic)
	if err != nil {
		return err
	}
	for i, n := range nodes {
		fmt.Printf("%2d. %s %s\n", i+1, n.Status.Icon(), n.Label)
		if n.Description != "" {
			fmt.Printf("    %s\n", n.Description)
		}
	}
	fmt.Println()

	if noQuiz, _ := cmd.Flags().GetBool("no-quiz"); noQuiz {
		return nil
	}

	first := nodes[0]
	fmt.Printf("Generating %d questions on %q...\n\n", gc.Questions(), first.Label)
	questions, err := gw.GenerateQuiz(ctx, first, topic)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	var correct int
	for i, q := range questions {
		fmt.Printf("── Question %d/%d ──\n", i+1, len(questions))
		fmt.Println(q.Text)
		for j, opt := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, opt)
		}

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Println("(skipped)")
			fmt.Println()
			continue
		}

		if q.IsCorrect(choice - 1) {
			correct++
		}
		lipgloss.Println(feedback(q, choice-1))
		if q.Explanation != "" {
			fmt.Println(markdown.Render(q.Explanation, 80))
		}
		fmt.Println()
	}

	stars := skilltree.Stars(correct, len(questions))
	fmt.Printf("── Summary: %d/%d correct, %d stars ──\n", correct, len(questions), stars)

	summary, err := gw.GenerateSummary(ctx, correct, len(questions), first.Label)
	if err != nil {
		fmt.Println("(summary unavailable:", err, ")")
		return nil
	}
	fmt.Println(markdown.Render(summary, 80))
	return nil
}

// feedback is the styled verdict printed after an answer.
func feedback(q skilltree.Question, choice int) string {
	if q.IsCorrect(choice) {
		return theme.Correct.Render("✓ Correct!")
	}
	return theme.Incorrect.Render("✗ Wrong.") +
		fmt.Sprintf(" Answer: %d) %s", q.CorrectIndex+1, q.Options[q.CorrectIndex])
}

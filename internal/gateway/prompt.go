package gateway

import (
	"fmt"
	"strings"

	"github.com/abhisek/knowflow/internal/skilltree"
)

const graphSystemPrompt = `You are a curriculum designer building a step-by-step learning path.

Rules:
- Break the topic into 5 to 8 concepts ordered from fundamentals to advanced.
- Each concept must build on the one before it. The path is linear.
- Give every node a short unique kebab-case id, a concise label and a one-sentence description.
- List the ids of prerequisite nodes in "dependencies". The first node has none.
- Respond with JSON only: {"nodes": [...]}. No prose, no code fences.`

const quizSystemPrompt = `You are a tutor writing a short multiple-choice quiz on a single concept.

Rules:
- Every question has 4 options and exactly one correct option.
- "correctIndex" is the zero-based position of the correct option.
- Distractors should reflect common misconceptions, not random values.
- The explanation says briefly why the correct option is right.
- Code snippets go in Markdown code fences with a language label.
- Respond with JSON only: {"questions": [...]}. No prose outside the JSON.`

const summarySystemPrompt = `You are an encouraging tutor. Write 2 to 3 sentences of plain text
reacting to a learner's quiz result. Be specific about the concept, honest about the score,
and suggest what to review or what comes next. No Markdown, no lists.`

// buildGraphMessage constructs the user message for graph generation.
func buildGraphMessage(topic string) string {
	return fmt.Sprintf("Topic: %s\n", strings.TrimSpace(topic))
}

// buildQuizMessage constructs the user message for quiz generation.
func buildQuizMessage(node skilltree.Node, topic string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Concept: %s\n", node.Label)
	if node.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", node.Description)
	}
	fmt.Fprintf(&b, "Number of questions: %d\n", count)

	return b.String()
}

// buildSummaryMessage constructs the user message for the result summary.
func buildSummaryMessage(correct, total int, label string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concept: %s\n", label)
	fmt.Fprintf(&b, "Score: %d of %d correct\n", correct, total)

	return b.String()
}

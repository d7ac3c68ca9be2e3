// Package gateway turns LLM calls into knowledge graphs, quizzes and result
// summaries.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/skilltree"
)

// Gateway generates learning content through an llm.Provider.
type Gateway struct {
	provider llm.Provider
	config   Config
}

// New creates a Gateway with the given provider and config.
func New(provider llm.Provider, cfg Config) *Gateway {
	return &Gateway{provider: provider, config: cfg}
}

// GenerateGraph asks for a learning path on topic. The returned nodes are
// normalized: the first is AVAILABLE and the rest LOCKED.
func (g *Gateway) GenerateGraph(ctx context.Context, topic string) ([]skilltree.Node, error) {
	const op = "generate graph"
	ctx = llm.WithPurpose(ctx, llm.PurposeGraph)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      graphSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildGraphMessage(topic)}},
		Schema:      GraphSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, &GenerationError{Op: op, Err: err}
	}

	var raw graphOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &GenerationError{Op: op, Err: fmt.Errorf("parse response: %w", err)}
	}

	nodes := make([]skilltree.Node, 0, len(raw.Nodes))
	for _, n := range raw.Nodes {
		if strings.TrimSpace(n.Label) == "" {
			continue
		}
		nodes = append(nodes, skilltree.Node{
			ID:           n.ID,
			Label:        strings.TrimSpace(n.Label),
			Description:  strings.TrimSpace(n.Description),
			Dependencies: n.Dependencies,
		})
	}
	if len(nodes) == 0 {
		return nil, &ValidationError{Op: op, Message: "model returned no nodes"}
	}

	return skilltree.Normalize(nodes), nil
}

// GenerateQuiz asks for multiple-choice questions on node. Questions without
// an id get q-<n>.
func (g *Gateway) GenerateQuiz(ctx context.Context, node skilltree.Node, topic string) ([]skilltree.Question, error) {
	const op = "generate quiz"
	ctx = llm.WithPurpose(ctx, llm.PurposeQuiz)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      quizSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildQuizMessage(node, topic, g.config.Questions())}},
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, &GenerationError{Op: op, Err: err}
	}

	var raw quizOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &GenerationError{Op: op, Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(raw.Questions) == 0 {
		return nil, &ValidationError{Op: op, Message: "model returned no questions"}
	}

	questions := make([]skilltree.Question, len(raw.Questions))
	for i, q := range raw.Questions {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			id = fmt.Sprintf("q-%d", i+1)
		}
		questions[i] = skilltree.Question{
			ID:           id,
			Text:         q.Text,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		}
		if err := questions[i].Validate(); err != nil {
			return nil, &GenerationError{Op: op, Err: err}
		}
	}
	return questions, nil
}

// GenerateSummary asks for a short encouraging note on a quiz result.
func (g *Gateway) GenerateSummary(ctx context.Context, correct, total int, label string) (string, error) {
	const op = "generate summary"
	ctx = llm.WithPurpose(ctx, llm.PurposeSummary)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      summarySystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildSummaryMessage(correct, total, label)}},
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", &GenerationError{Op: op, Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &GenerationError{Op: op, Err: errors.New("empty response")}
	}
	return text, nil
}

package session

import (
	"slices"

	"github.com/abhisek/knowflow/internal/history"
	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/skilltree"
)

// View is the screen the user is on.
type View string

const (
	ViewHome    View = "home"
	ViewGraph   View = "graph"
	ViewQuiz    View = "quiz"
	ViewSummary View = "summary"
)

// NoSelection marks a quiz question with no option picked yet.
const NoSelection = -1

// Quiz is one attempt at a node's questions.
type Quiz struct {
	NodeID    string               `json:"nodeId"`
	Questions []skilltree.Question `json:"questions"`
	Index     int                  `json:"index"`
	Selected  int                  `json:"selected"`
	Confirmed bool                 `json:"confirmed"`
	Correct   int                  `json:"correct"`
}

// Current returns the question being answered.
func (q *Quiz) Current() skilltree.Question {
	return q.Questions[q.Index]
}

// IsLast reports whether the current question is the final one.
func (q *Quiz) IsLast() bool {
	return q.Index >= len(q.Questions)-1
}

// Total is the number of questions in the attempt.
func (q *Quiz) Total() int {
	return len(q.Questions)
}

// Summary is the result of a finished quiz.
type Summary struct {
	NodeID    string `json:"nodeId"`
	NodeLabel string `json:"nodeLabel"`
	Text      string `json:"text"`
	Stars     int    `json:"stars"`
	Correct   int    `json:"correct"`
	Total     int    `json:"total"`
}

// State is everything the presentation layer renders.
type State struct {
	View         View             `json:"view"`
	Topic        string           `json:"topic"`
	SessionID    string           `json:"sessionId"`
	Nodes        []skilltree.Node `json:"nodes"`
	ActiveNodeID string           `json:"activeNodeId,omitempty"`
	Quiz         *Quiz            `json:"quiz,omitempty"`
	Summary      *Summary         `json:"summary,omitempty"`
	Busy         bool             `json:"busy"`
	StatusText   string           `json:"statusText,omitempty"`
	Error        string           `json:"error,omitempty"`
	History      []history.Item   `json:"history"`
	Config       llm.Config       `json:"config"`
}

// HasSession reports whether a topic is loaded in memory.
func (s State) HasSession() bool {
	return len(s.Nodes) > 0
}

// ActiveNode returns the node the current quiz or summary belongs to.
func (s State) ActiveNode() (skilltree.Node, bool) {
	return skilltree.Find(s.Nodes, s.ActiveNodeID)
}

// clone returns a copy that shares no mutable slices with s.
func (s State) clone() State {
	out := s
	out.Nodes = skilltree.Clone(s.Nodes)
	out.History = slices.Clone(s.History)
	if s.Quiz != nil {
		q := *s.Quiz
		out.Quiz = &q
	}
	if s.Summary != nil {
		sum := *s.Summary
		out.Summary = &sum
	}
	return out
}

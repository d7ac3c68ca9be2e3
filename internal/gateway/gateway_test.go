package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/skilltree"
)

func graphJSON() json.RawMessage {
	return json.RawMessage(`{
		"nodes": [
			{"id": "basics", "label": "Python Basics", "description": "Syntax and values", "status": "COMPLETED", "stars": 3},
			{"id": "control", "label": "Control Flow", "description": "if and loops", "dependencies": ["basics"]},
			{"label": "Functions", "description": "def and return"}
		]
	}`)
}

func quizJSON() json.RawMessage {
	return json.RawMessage(`{
		"questions": [
			{"id": "a", "text": "What does len([1,2]) return?", "options": ["1", "2", "3", "error"], "correctIndex": 1, "explanation": "Two items."},
			{"text": "Which keyword defines a function?", "options": ["func", "def"], "correctIndex": 1, "explanation": "def."}
		]
	}`)
}

func lastCall(t *testing.T, mock *llm.MockProvider) llm.Request {
	t.Helper()
	req, ok := mock.LastCall()
	if !ok {
		t.Fatal("provider was not called")
	}
	return req
}

func TestGenerateGraph_Normalizes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: graphJSON()})
	gw := New(mock, DefaultConfig())

	nodes, err := gw.GenerateGraph(context.Background(), "Python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if nodes[0].Status != skilltree.StatusAvailable || nodes[0].Stars != 0 {
		t.Errorf("first node = %+v, want AVAILABLE with 0 stars", nodes[0])
	}
	for _, n := range nodes[1:] {
		if n.Status != skilltree.StatusLocked {
			t.Errorf("node %s status = %s, want LOCKED", n.ID, n.Status)
		}
	}
	if nodes[2].ID == "" {
		t.Error("missing id was not filled in")
	}
	if got := nodes[2].Dependencies; len(got) != 1 || got[0] != "control" {
		t.Errorf("dependencies = %v, want [control]", got)
	}

	call := lastCall(t, mock)
	if call.Schema != GraphSchema {
		t.Error("graph request must use GraphSchema")
	}
	if !strings.Contains(call.Messages[0].Content, "Python") {
		t.Errorf("user message lacks topic: %q", call.Messages[0].Content)
	}
}

func TestGenerateGraph_Empty(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"nodes": []}`)})
	_, err := New(mock, DefaultConfig()).GenerateGraph(context.Background(), "Go")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
}

func TestGenerateGraph_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	_, err := New(mock, DefaultConfig()).GenerateGraph(context.Background(), "Go")

	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %T (%v)", err, err)
	}
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatal("GenerationError must unwrap to the provider error")
	}
}

func TestGenerateGraph_Unparseable(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})
	_, err := New(mock, DefaultConfig()).GenerateGraph(context.Background(), "Go")

	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %T (%v)", err, err)
	}
}

func TestGenerateQuiz(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: quizJSON()})
	node := skilltree.Node{ID: "fn", Label: "Functions", Description: "def and return"}

	qs, err := New(mock, Config{QuestionCount: 2}).GenerateQuiz(context.Background(), node, "Python")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	if qs[0].ID != "a" || qs[1].ID != "q-2" {
		t.Errorf("ids = %q, %q; want a, q-2", qs[0].ID, qs[1].ID)
	}
	if !qs[1].IsCorrect(1) {
		t.Error("question 2 correct index lost")
	}

	msg := lastCall(t, mock).Messages[0].Content
	for _, want := range []string{"Topic: Python", "Concept: Functions", "Number of questions: 2"} {
		if !strings.Contains(msg, want) {
			t.Errorf("quiz message missing %q:\n%s", want, msg)
		}
	}
}

func TestGenerateQuiz_Broken(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantGen bool
	}{
		{"no questions", `{"questions": []}`, false},
		{"index out of range", `{"questions": [{"text": "Q", "options": ["a", "b"], "correctIndex": 5, "explanation": ""}]}`, true},
		{"empty text", `{"questions": [{"text": " ", "options": ["a", "b"], "correctIndex": 0, "explanation": ""}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.payload)})
			_, err := New(mock, DefaultConfig()).GenerateQuiz(context.Background(), skilltree.Node{Label: "X"}, "T")

			var gerr *GenerationError
			var verr *ValidationError
			switch {
			case tt.wantGen && !errors.As(err, &gerr):
				t.Fatalf("expected GenerationError, got %T (%v)", err, err)
			case !tt.wantGen && !errors.As(err, &verr):
				t.Fatalf("expected ValidationError, got %T (%v)", err, err)
			}
		})
	}
}

func TestGenerateSummary(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("  Nice work on loops!  \n")},
		llm.MockResponse{Content: json.RawMessage("")},
	)
	gw := New(mock, DefaultConfig())

	text, err := gw.GenerateSummary(context.Background(), 2, 3, "Loops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Nice work on loops!" {
		t.Errorf("summary = %q", text)
	}
	call := lastCall(t, mock)
	if call.Schema != nil {
		t.Error("summary must be a plain-text request")
	}
	if !strings.Contains(call.Messages[0].Content, "Score: 2 of 3 correct") {
		t.Errorf("summary message = %q", call.Messages[0].Content)
	}

	if _, err := gw.GenerateSummary(context.Background(), 0, 3, "Loops"); err == nil {
		t.Error("empty summary should be an error")
	}
}

func TestQuestionCountClamp(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 3}, {-1, 3}, {1, 1}, {10, 10}, {25, 10},
	}
	for _, tt := range tests {
		if got := (Config{QuestionCount: tt.in}).Questions(); got != tt.want {
			t.Errorf("Questions(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSchemas(t *testing.T) {
	for _, s := range []*llm.Schema{GraphSchema, QuizSchema} {
		if _, ok := s.Definition["$schema"]; ok {
			t.Errorf("%s: $schema should be stripped", s.Name)
		}
		if s.Definition["type"] != "object" {
			t.Errorf("%s: type = %v, want object", s.Name, s.Definition["type"])
		}
	}

	props := GraphSchema.Definition["properties"].(map[string]any)
	nodes := props["nodes"].(map[string]any)
	item := nodes["items"].(map[string]any)
	required := item["required"].([]any)
	for _, r := range required {
		if r == "id" || r == "dependencies" {
			t.Errorf("%v should be optional", r)
		}
	}
}

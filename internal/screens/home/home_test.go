package home

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/history"
	"github.com/abhisek/knowflow/internal/screen"
	"github.com/abhisek/knowflow/internal/session"
	"github.com/abhisek/knowflow/internal/skilltree"
)

type fakeController struct {
	submitted []string
	opened    []string
	deleted   []string
	resumed   int
}

func (f *fakeController) SubmitTopic(_ context.Context, topic string) error {
	f.submitted = append(f.submitted, topic)
	return nil
}
func (f *fakeController) OpenHistory(_ context.Context, id string) error {
	f.opened = append(f.opened, id)
	return nil
}
func (f *fakeController) DeleteHistory(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeController) Resume() error {
	f.resumed++
	return nil
}

func testState() session.State {
	nodes := skilltree.Normalize([]skilltree.Node{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}})
	return session.State{
		View: session.ViewHome,
		History: []history.Item{
			{ID: "s1", Topic: "Python", Nodes: nodes, LastAccessed: time.Now()},
			{ID: "s2", Topic: "Renaissance art", Nodes: nodes, LastAccessed: time.Now()},
		},
	}
}

func typeText(s *HomeScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// run executes cmd and returns its message.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func TestHomeScreen_SubmitTopic(t *testing.T) {
	ctrl := &fakeController{}
	s := New(ctrl, testState())

	typeText(s, "Go generics")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	msg := run(t, cmd)

	if _, ok := msg.(screen.ResultMsg); !ok {
		t.Fatalf("expected ResultMsg, got %T", msg)
	}
	if len(ctrl.submitted) != 1 || ctrl.submitted[0] != "Go generics" {
		t.Errorf("submitted = %v", ctrl.submitted)
	}
}

func TestHomeScreen_BlankEnterDoesNothing(t *testing.T) {
	s := New(&fakeController{}, testState())
	typeText(s, "   ")
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command for a blank topic")
	}
}

func TestHomeScreen_OpenHistory(t *testing.T) {
	ctrl := &fakeController{}
	s := New(ctrl, testState())

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(t, cmd)

	if len(ctrl.opened) != 1 || ctrl.opened[0] != "s2" {
		t.Errorf("opened = %v, want [s2]", ctrl.opened)
	}
}

func TestHomeScreen_DeleteHistory(t *testing.T) {
	ctrl := &fakeController{}
	s := New(ctrl, testState())

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl})
	run(t, cmd)

	if len(ctrl.deleted) != 1 || ctrl.deleted[0] != "s1" {
		t.Errorf("deleted = %v, want [s1]", ctrl.deleted)
	}
}

func TestHomeScreen_FuzzyFilter(t *testing.T) {
	ctrl := &fakeController{}
	s := New(ctrl, testState())

	typeText(s, "rnsnc")
	if len(s.filtered) != 1 || s.filtered[0].ID != "s2" {
		t.Fatalf("filtered = %+v, want only s2", s.filtered)
	}

	view := s.View(100, 40)
	if strings.Contains(view, "Python") {
		t.Error("filtered-out topic should not render")
	}
	if !strings.Contains(view, "Recent (2/10)") {
		t.Error("expected total history count in header")
	}
}

func TestHomeScreen_TabFillsSuggestion(t *testing.T) {
	s := New(&fakeController{}, testState())
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.input.Value() != Suggestions[0] {
		t.Errorf("input = %q, want %q", s.input.Value(), Suggestions[0])
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.input.Value() != Suggestions[1] {
		t.Errorf("input = %q, want %q", s.input.Value(), Suggestions[1])
	}
}

func TestHomeScreen_ResumeOnlyWithSession(t *testing.T) {
	ctrl := &fakeController{}
	s := New(ctrl, testState())

	if _, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl}); cmd != nil {
		t.Error("resume without a session should be ignored")
	}

	st := testState()
	st.Topic = "Python"
	st.Nodes = st.History[0].Nodes
	s.Update(screen.StateMsg{State: st})

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	run(t, cmd)
	if ctrl.resumed != 1 {
		t.Errorf("resumed = %d, want 1", ctrl.resumed)
	}
}

func TestHomeScreen_ShowsError(t *testing.T) {
	st := testState()
	st.Error = "provider unavailable"
	s := New(&fakeController{}, st)
	if !strings.Contains(s.View(100, 40), "provider unavailable") {
		t.Error("expected error banner")
	}
}

func TestHomeScreen_WideTopicFitsRow(t *testing.T) {
	it := history.Item{
		ID:           "s1",
		Topic:        strings.Repeat("机器学习", 8),
		Nodes:        skilltree.Normalize([]skilltree.Node{{ID: "a"}}),
		LastAccessed: time.Now(),
	}
	for _, cw := range []int{60, 72, 120} {
		row := renderHistoryRow(it, true, cw)
		if w := lipgloss.Width(row); w > cw {
			t.Errorf("cw=%d: row is %d cells wide", cw, w)
		}
	}

	st := testState()
	st.History[0].Topic = it.Topic
	s := New(&fakeController{}, st)
	if view := s.View(80, 40); !strings.Contains(view, "机器") {
		t.Error("view should show the start of the wide topic")
	}
}

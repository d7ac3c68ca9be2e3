// Package quiz runs one multiple-choice attempt at a node.
package quiz

import (
	"context"
	"strconv"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/knowflow/internal/screen"
	"github.com/abhisek/knowflow/internal/session"
	"github.com/abhisek/knowflow/internal/ui/layout"
)

// Controller is the part of session.Controller the quiz drives.
type Controller interface {
	SelectOption(i int) error
	ConfirmAnswer() error
	NextQuestion(ctx context.Context) error
	CloseQuiz() error
}

// QuizScreen shows the current question of the active quiz.
type QuizScreen struct {
	ctrl  Controller
	state session.State

	// cursor is the highlighted option; selecting it is a controller intent.
	cursor      int
	confirmQuit bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen for the state's quiz.
func New(ctrl Controller, state session.State) *QuizScreen {
	return &QuizScreen{ctrl: ctrl, state: state}
}

func (s *QuizScreen) Init() tea.Cmd {
	return nil
}

func (s *QuizScreen) Title() string {
	if n, ok := s.state.ActiveNode(); ok {
		return "Quiz: " + n.Label
	}
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Stay"},
		}
	}
	q := s.state.Quiz
	if q != nil && q.Confirmed {
		next := "Next"
		if q.IsLast() {
			next = "Finish"
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: next},
			{Key: "Esc", Description: "Leave"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "1-9", Description: "Pick"},
		{Key: "Enter", Description: "Confirm"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		prev := s.state.Quiz
		s.state = msg.State
		if q := s.state.Quiz; q != nil && (prev == nil || prev.Index != q.Index) {
			s.cursor = 0
		}
		return s, nil

	case tea.KeyPressMsg:
		if s.confirmQuit {
			return s, s.handleQuitConfirm(msg)
		}
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleQuitConfirm(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		s.confirmQuit = false
		return screen.Do(s.ctrl.CloseQuiz)
	case "n", "N", "esc":
		s.confirmQuit = false
	}
	return nil
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	q := s.state.Quiz
	if q == nil {
		return nil
	}
	key := msg.String()

	if key == "esc" {
		s.confirmQuit = true
		return nil
	}

	if q.Confirmed {
		if key == "enter" || key == "space" {
			return screen.Do(func() error { return s.ctrl.NextQuestion(context.Background()) })
		}
		return nil
	}

	options := len(q.Current().Options)
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
		return s.pick(s.cursor)
	case "down", "j":
		if s.cursor < options-1 {
			s.cursor++
		}
		return s.pick(s.cursor)
	case "enter":
		if q.Selected == session.NoSelection {
			return s.pickThen(s.cursor, s.ctrl.ConfirmAnswer)
		}
		return screen.Do(s.ctrl.ConfirmAnswer)
	}

	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= options {
		s.cursor = n - 1
		return s.pick(s.cursor)
	}
	return nil
}

func (s *QuizScreen) pick(i int) tea.Cmd {
	return screen.Do(func() error { return s.ctrl.SelectOption(i) })
}

// pickThen selects option i and runs next once the selection is stored.
func (s *QuizScreen) pickThen(i int, next func() error) tea.Cmd {
	return screen.Do(func() error {
		if err := s.ctrl.SelectOption(i); err != nil {
			return err
		}
		return next()
	})
}

package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/markdown"
	"github.com/abhisek/knowflow/internal/screen"
	"github.com/abhisek/knowflow/internal/session"
	"github.com/abhisek/knowflow/internal/skilltree"
	"github.com/abhisek/knowflow/internal/ui/components"
	"github.com/abhisek/knowflow/internal/ui/layout"
	"github.com/abhisek/knowflow/internal/ui/theme"
)

// Controller is the part of session.Controller the summary drives.
type Controller interface {
	Continue() error
	GoHome() error
}

// SummaryScreen displays the result of a finished quiz.
type SummaryScreen struct {
	state session.State
	menu  components.Menu
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(ctrl Controller, state session.State) *SummaryScreen {
	return &SummaryScreen{
		state: state,
		menu: components.NewMenu([]components.MenuItem{
			{Label: "Continue", Action: func() tea.Cmd { return screen.Do(ctrl.Continue) }},
			{Label: "Home", Action: func() tea.Cmd { return screen.Do(ctrl.GoHome) }},
		}),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		s.state = msg.State
		return s, nil
	case tea.KeyPressMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.state.Summary
	if sum == nil {
		return ""
	}
	cw := min(width-8, 70)
	center := func(v string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, v)
	}

	var b strings.Builder

	b.WriteString(center(theme.Title.Render(sum.NodeLabel + " complete!")))
	b.WriteString("\n\n")

	b.WriteString(center(bigStars(sum.Stars)))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text).Render(
		fmt.Sprintf("%d of %d correct", sum.Correct, sum.Total))))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Width(cw).Render(markdown.Render(sum.Text, cw))))
	b.WriteString("\n\n")

	if next, ok := s.unlocked(); ok {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Secondary).Render("Unlocked: " + next)))
		b.WriteString("\n\n")
	}

	b.WriteString(center(s.menu.View()))
	return b.String()
}

// unlocked returns the label of the node after the finished one, when it is
// now open.
func (s *SummaryScreen) unlocked() (string, bool) {
	for i, n := range s.state.Nodes {
		if n.ID == s.state.Summary.NodeID && i+1 < len(s.state.Nodes) {
			next := s.state.Nodes[i+1]
			return next.Label, next.Selectable()
		}
	}
	return "", false
}

// bigStars renders the rating with spacing, e.g. "★ ★ ☆".
func bigStars(n int) string {
	stars := make([]string, skilltree.MaxStars)
	for i := range stars {
		if i < n {
			stars[i] = theme.StarsStyle.Bold(true).Render("★")
		} else {
			stars[i] = lipgloss.NewStyle().Foreground(theme.Border).Render("☆")
		}
	}
	return strings.Join(stars, " ")
}

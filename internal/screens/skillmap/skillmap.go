// Package skillmap shows the learning path as a vertical list of nodes.
package skillmap

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/screen"
	"github.com/abhisek/knowflow/internal/session"
	"github.com/abhisek/knowflow/internal/skilltree"
	"github.com/abhisek/knowflow/internal/ui/components"
	"github.com/abhisek/knowflow/internal/ui/layout"
	"github.com/abhisek/knowflow/internal/ui/theme"
)

// Controller is the part of session.Controller the map drives.
type Controller interface {
	SelectNode(ctx context.Context, id string) error
	GoHome() error
}

// SkillMapScreen lists the nodes of the current topic.
type SkillMapScreen struct {
	ctrl         Controller
	state        session.State
	cursor       int
	scrollOffset int
	notice       string
}

var _ screen.Screen = (*SkillMapScreen)(nil)
var _ screen.KeyHintProvider = (*SkillMapScreen)(nil)

// New creates a SkillMapScreen with the cursor on the first open node.
func New(ctrl Controller, state session.State) *SkillMapScreen {
	s := &SkillMapScreen{ctrl: ctrl, state: state}
	for i, n := range state.Nodes {
		if n.Status == skilltree.StatusAvailable {
			s.cursor = i
			break
		}
	}
	return s
}

func (s *SkillMapScreen) Init() tea.Cmd {
	return nil
}

func (s *SkillMapScreen) Title() string {
	return s.state.Topic
}

// KeyHints returns the key binding hints for the footer.
func (s *SkillMapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Quiz"},
		{Key: "Esc", Description: "Home"},
		{Key: "Ctrl+S", Description: "Settings"},
	}
}

func (s *SkillMapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		s.state = msg.State
		s.cursor = min(s.cursor, max(len(s.state.Nodes)-1, 0))
	case tea.KeyPressMsg:
		s.notice = ""
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.state.Nodes)-1 {
				s.cursor++
			}
		case "enter":
			return s, s.selectNode()
		case "esc", "q":
			return s, screen.Do(s.ctrl.GoHome)
		}
	}
	return s, nil
}

// selectNode starts a quiz on the node under the cursor.
func (s *SkillMapScreen) selectNode() tea.Cmd {
	if s.cursor >= len(s.state.Nodes) {
		return nil
	}
	n := s.state.Nodes[s.cursor]
	if !n.Selectable() {
		s.notice = "Complete the previous step to unlock this one."
		return nil
	}
	return screen.Do(func() error { return s.ctrl.SelectNode(context.Background(), n.ID) })
}

func (s *SkillMapScreen) View(width, height int) string {
	if len(s.state.Nodes) == 0 {
		return ""
	}

	var top []string
	p := skilltree.ProgressOf(s.state.Nodes)
	bar := components.NewProgressBar(
		fmt.Sprintf("%d/%d complete  %s %d", p.Completed, p.Total, theme.StarsStyle.Render("★"), p.TotalStars),
		p.Ratio(), true, min(width-4, 72))
	top = append(top, "  "+bar.View(), "")
	if s.state.Error != "" {
		top = append(top, "  "+theme.ErrorBanner.Render(s.state.Error))
	}
	if s.notice != "" {
		top = append(top, "  "+theme.Hint.Render(s.notice))
	}

	// Each node takes three lines: label, description, spacer.
	const rowHeight = 3
	visible := max((height-len(top))/rowHeight, 1)
	s.adjustScroll(visible)

	lines := top
	for i := s.scrollOffset; i < len(s.state.Nodes) && i < s.scrollOffset+visible; i++ {
		lines = append(lines, s.renderNodeRow(i, width))
	}
	return strings.Join(lines, "\n")
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *SkillMapScreen) adjustScroll(visible int) {
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+visible {
		s.scrollOffset = s.cursor - visible + 1
	}
}

// renderNodeRow renders one node with its connector to the next.
func (s *SkillMapScreen) renderNodeRow(i, width int) string {
	n := s.state.Nodes[i]
	selected := i == s.cursor

	nameStyle := lipgloss.NewStyle().Foreground(theme.StatusColor(n.Status))
	if selected {
		nameStyle = theme.Selected
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	label := fmt.Sprintf("%d. %s", i+1, n.Label)
	right := components.Stars(n.Stars) + "  " +
		lipgloss.NewStyle().Foreground(theme.StatusColor(n.Status)).Render(fmt.Sprintf("%9s", n.Status.Label()))

	nameWidth := max(width-lipgloss.Width(right)-12, 10)

	row := fmt.Sprintf("  %s%s  %s  %s", cursor, n.Status.Icon(), nameStyle.Render(components.Fit(label, nameWidth)), right)

	connector := "│"
	if i == len(s.state.Nodes)-1 {
		connector = " "
	}
	desc := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		MaxWidth(max(width-12, 10)).
		Render(n.Description)
	descLine := fmt.Sprintf("     %s   %s", lipgloss.NewStyle().Foreground(theme.Border).Render(connector), firstLine(desc))

	return row + "\n" + descLine + "\n"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

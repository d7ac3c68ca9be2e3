package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/ui/theme"
)

// MultiChoice renders the options of one quiz question. The selection
// itself lives in the session controller; this only draws it.
type MultiChoice struct {
	Options      []string
	CorrectIndex int
	// Cursor is the highlighted option before confirmation.
	Cursor int
	// Selected is the chosen option, or -1.
	Selected  int
	Confirmed bool
	Width     int
}

// OptionLabel returns the letter shown in front of option i.
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// View renders the option list.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Confirmed {
			prefix = "▸ "
		}
		mark := " "
		if i == m.Selected {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, OptionLabel(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Confirmed && i == m.CorrectIndex:
			style = theme.Correct
		case m.Confirmed && i == m.Selected:
			style = theme.Incorrect
		case m.Confirmed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		}
		if m.Width > 0 {
			style = style.Width(m.Width)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

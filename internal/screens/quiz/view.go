package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/markdown"
	"github.com/abhisek/knowflow/internal/ui/components"
	"github.com/abhisek/knowflow/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}
	q := s.state.Quiz
	if q == nil {
		return ""
	}
	question := q.Current()
	cw := min(width-8, 76)

	var b strings.Builder

	// Progress line.
	bar := components.NewStepBar(q.Index+1, q.Total(), cw-16)
	score := lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("✓ %d", q.Correct))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()+"   "+score))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))))
	b.WriteString("\n\n")

	if s.state.Error != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.ErrorBanner.Width(cw).Render(s.state.Error)))
		b.WriteString("\n\n")
	}

	// Question text.
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Bold(true).Render(question.Text)))
	b.WriteString("\n\n")

	mc := components.MultiChoice{
		Options:      question.Options,
		CorrectIndex: question.CorrectIndex,
		Cursor:       s.cursor,
		Selected:     q.Selected,
		Confirmed:    q.Confirmed,
		Width:        cw,
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, mc.View()))

	if q.Confirmed {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(width, cw))
	}

	return b.String()
}

// renderFeedback shows the verdict and the explanation after confirming.
func (s *QuizScreen) renderFeedback(width, cw int) string {
	q := s.state.Quiz
	question := q.Current()

	var b strings.Builder
	verdict := theme.Correct.Render("Correct!")
	if !question.IsCorrect(q.Selected) {
		verdict = theme.Incorrect.Render("Not quite.") +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(
				fmt.Sprintf("  The answer is %s.", components.OptionLabel(question.CorrectIndex)))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(verdict)))
	b.WriteString("\n\n")

	if question.Explanation != "" {
		exp := markdown.Render(question.Explanation, cw)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(exp)))
		b.WriteString("\n\n")
	}

	next := "Press Enter for the next question"
	if q.IsLast() {
		next = "Press Enter to see your results"
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(next)))
	return b.String()
}

// renderQuitConfirm renders the leave-quiz confirmation dialog.
func renderQuitConfirm(width int) string {
	center := func(st lipgloss.Style, s string) string {
		return st.Width(width).Align(lipgloss.Center).Render(s)
	}
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "Leave this quiz?"))
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Answers so far will not count."))
	b.WriteString("\n\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error), "[Y] Yes, back to the map"))
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}

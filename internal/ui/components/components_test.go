package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestProgressBar_Width(t *testing.T) {
	for _, pct := range []float64{-1, 0, 0.5, 1, 2} {
		out := NewProgressBar("", pct, false, 40).View()
		assert.Equal(t, 40, lipgloss.Width(out), "percent %v", pct)
	}
}

func TestProgressBar_Percent(t *testing.T) {
	out := ansi.Strip(NewProgressBar("2/3 complete", 2.0/3.0, true, 60).View())
	assert.True(t, strings.HasPrefix(out, "2/3 complete"))
	assert.True(t, strings.HasSuffix(out, "67%"))
}

func TestStepBar(t *testing.T) {
	b := NewStepBar(2, 4, 30)
	assert.Equal(t, "2/4", b.Label)
	assert.InDelta(t, 0.5, b.Percent, 1e-9)

	assert.Zero(t, NewStepBar(0, 0, 30).Percent)
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★☆", ansi.Strip(Stars(2)))
	assert.Equal(t, "☆☆☆", ansi.Strip(Stars(-1)))
	assert.Equal(t, "★★★", ansi.Strip(Stars(7)))
}

func TestMenu_SkipsDisabled(t *testing.T) {
	var picked string
	pick := func(s string) func() tea.Cmd {
		return func() tea.Cmd { picked = s; return nil }
	}
	m := NewMenu([]MenuItem{
		{Label: "Back", Disabled: true},
		{Label: "Retry", Action: pick("retry")},
		{Label: "Skip", Disabled: true},
		{Label: "Continue", Action: pick("continue")},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, 3, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "continue", picked)
}

func TestMultiChoice_Confirmed(t *testing.T) {
	out := ansi.Strip(MultiChoice{
		Options:      []string{"alpha", "beta"},
		CorrectIndex: 0,
		Cursor:       1,
		Selected:     1,
		Confirmed:    true,
	}.View())

	assert.Contains(t, out, "A)  alpha")
	assert.Contains(t, out, "● B)  beta")
	assert.NotContains(t, out, "▸")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "abc  ", Fit("abc", 5))
	assert.Equal(t, "abcd…", Fit("abcdefgh", 5))
	assert.Equal(t, "", Fit("abc", 0))

	wide := Fit("机器学习机器学习", 7)
	assert.Equal(t, 7, lipgloss.Width(wide))
	assert.True(t, strings.HasPrefix(wide, "机器学"))
}

package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestIsTooSmall(t *testing.T) {
	assert.True(t, IsTooSmall(79, 40))
	assert.True(t, IsTooSmall(100, 23))
	assert.False(t, IsTooSmall(80, 24))
}

func TestRenderHeader(t *testing.T) {
	out := RenderHeader("Skill map", "gemini/gemini-2.5-flash", 120)
	plain := ansi.Strip(out)

	assert.Contains(t, plain, "knowflow")
	assert.Contains(t, plain, "Skill map")
	assert.Contains(t, plain, "gemini-2.5-flash")
	assert.Equal(t, 3, lipgloss.Height(out))
}

func TestRenderFooter(t *testing.T) {
	out := ansi.Strip(RenderFooter([]KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}, 100))

	assert.Contains(t, out, "Enter Start")
	assert.Contains(t, out, "Esc Back")
}

func TestRenderFrame_FillsHeight(t *testing.T) {
	header := RenderHeader("Home", "", 80)
	footer := RenderFooter(nil, 80)

	out := RenderFrame(header, "body", footer, 80, 30)
	assert.Equal(t, 30, lipgloss.Height(out))

	long := strings.Repeat("line\n", 100)
	out = RenderFrame(header, long, footer, 80, 30)
	assert.Equal(t, 30, lipgloss.Height(out))
}

func TestRenderMinSizeMessage(t *testing.T) {
	out := ansi.Strip(RenderMinSizeMessage(60, 20))
	assert.Contains(t, out, "60×20")
	assert.Contains(t, out, "80×24")
}

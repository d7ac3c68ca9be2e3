// Package layout draws the frame around every screen: a header bar, the
// screen body and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// Below this height screens drop decorative elements such as the banner.
	CompactHeightThreshold = 30
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	body := fmt.Sprintf("The terminal is %d×%d.\nknowflow needs at least %d×%d.\n\nResize the window to continue.",
		width, height, MinWidth, MinHeight)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(body))
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// RenderHeader draws the brand on the left, title in the middle and status
// (usually provider/model) on the right.
func RenderHeader(title, status string, width int) string {
	inner := max(width-4, 0)
	third := inner / 3

	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
		Width(third).Render(" knowflow")
	mid := lipgloss.NewStyle().Foreground(theme.Text).
		Width(inner - 2*third).Align(lipgloss.Center).Render(title)
	right := lipgloss.NewStyle().Foreground(theme.TextDim).
		Width(third).Align(lipgloss.Right).MaxHeight(1).Render(status)

	return bar.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, brand, mid, right))
}

// RenderFooter draws key hints in one row.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString(" ")
	for i, h := range hints {
		if i > 0 {
			b.WriteString("   ")
		}
		b.WriteString(key.Render(h.Key) + " " + desc.Render(h.Description))
	}
	return bar.Width(width).Render(b.String())
}

// RenderOverlay centers box in the given area.
func RenderOverlay(box string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// RenderFrame stacks header, content and footer. The content is padded or
// clipped to the height left between the bars.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content = lipgloss.NewStyle().Width(width).Height(body).MaxHeight(body).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

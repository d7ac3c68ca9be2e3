package components

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Fit truncates s to width terminal cells, ending in "…" when cut, and pads
// it with spaces to exactly width cells. Widths are display cells, so wide
// (CJK) runes count as two.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", max(width-ansi.StringWidth(s), 0))
}

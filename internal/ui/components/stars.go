package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/skilltree"
	"github.com/abhisek/knowflow/internal/ui/theme"
)

// Stars renders an n-of-3 star rating.
func Stars(n int) string {
	n = max(0, min(n, skilltree.MaxStars))
	return theme.StarsStyle.Render(strings.Repeat("★", n)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("☆", skilltree.MaxStars-n))
}

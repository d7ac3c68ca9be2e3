package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/ui/layout"
	"github.com/abhisek/knowflow/internal/ui/theme"
)

const bannerArt = `
██╗  ██╗███╗   ██╗ ██████╗ ██╗    ██╗███████╗██╗      ██████╗ ██╗    ██╗
██║ ██╔╝████╗  ██║██╔═══██╗██║    ██║██╔════╝██║     ██╔═══██╗██║    ██║
█████╔╝ ██╔██╗ ██║██║   ██║██║ █╗ ██║█████╗  ██║     ██║   ██║██║ █╗ ██║
██╔═██╗ ██║╚██╗██║██║   ██║██║███╗██║██╔══╝  ██║     ██║   ██║██║███╗██║
██║  ██╗██║ ╚████║╚██████╔╝╚███╔███╔╝██║     ███████╗╚██████╔╝╚███╔███╔╝
╚═╝  ╚═╝╚═╝  ╚═══╝ ╚═════╝  ╚══╝╚══╝ ╚═╝     ╚══════╝ ╚═════╝  ╚══╝╚══╝`

const bannerCompact = "K N O W F L O W"

// bannerWidth is the widest line of bannerArt.
const bannerWidth = 72

// RenderBanner returns the banner centered in width columns, falling back to
// spaced letters when the art does not fit or the terminal is short.
func RenderBanner(width, height int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Width(width).
		Align(lipgloss.Center)

	if width < bannerWidth || layout.IsCompactHeight(height) {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}

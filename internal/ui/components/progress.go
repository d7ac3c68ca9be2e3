package components

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/ui/theme"
)

const minBarCells = 4

// ProgressBar is a label followed by a filled track and optional percentage.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

// NewStepBar shows step of total, e.g. question 2 of 5.
func NewStepBar(step, total, width int) ProgressBar {
	pct := 0.0
	if total > 0 {
		pct = float64(step) / float64(total)
	}
	return ProgressBar{Label: fmt.Sprintf("%d/%d", step, total), Percent: pct, Width: width}
}

func (p ProgressBar) View() string {
	var label, suffix string
	if p.Label != "" {
		label = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	pct := math.Max(0, math.Min(1, p.Percent))
	if p.ShowPercent {
		suffix = lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %3d%%", int(math.Round(pct*100))))
	}

	cells := max(p.Width-lipgloss.Width(label)-lipgloss.Width(suffix), minBarCells)
	filled := int(math.Round(float64(cells) * pct))

	return label +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", cells-filled)) +
		suffix
}

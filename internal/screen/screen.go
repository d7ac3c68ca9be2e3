package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/knowflow/internal/session"
	"github.com/abhisek/knowflow/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is implemented by screens with a focused text field. The
// app skips its single-letter shortcuts while it returns true.
type InputCapturer interface {
	CapturesInput() bool
}

// ResultMsg reports that a controller intent finished.
type ResultMsg struct {
	Err error
}

// StateMsg carries a fresh controller snapshot to the active screen.
type StateMsg struct {
	State session.State
}

// OpenSettingsMsg asks the app to show the settings overlay.
type OpenSettingsMsg struct{}

// Do runs an intent off the UI goroutine and reports its result.
func Do(fn func() error) tea.Cmd {
	return func() tea.Msg {
		return ResultMsg{Err: fn()}
	}
}

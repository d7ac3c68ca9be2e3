package app

import (
	"fmt"
	"log/slog"
	"os"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/knowflow/internal/router"
	"github.com/abhisek/knowflow/internal/screen"
	"github.com/abhisek/knowflow/internal/screens/home"
	"github.com/abhisek/knowflow/internal/screens/quiz"
	"github.com/abhisek/knowflow/internal/screens/settings"
	"github.com/abhisek/knowflow/internal/screens/skillmap"
	"github.com/abhisek/knowflow/internal/screens/summary"
	"github.com/abhisek/knowflow/internal/session"
	"github.com/abhisek/knowflow/internal/ui/layout"
	"github.com/abhisek/knowflow/internal/ui/theme"
)

// Options wires the TUI.
type Options struct {
	Controller *session.Controller
	Logger     *slog.Logger
}

// AppModel is the root Bubble Tea model. The base screen always matches
// the controller's view; settings is pushed on top as an overlay.
type AppModel struct {
	ctrl    *session.Controller
	logger  *slog.Logger
	router  *router.Router
	view    session.View
	spinner spinner.Model
	flash   string
	width   int
	height  int
}

// newAppModel creates a new AppModel on the controller's current view.
func newAppModel(opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	st := opts.Controller.Snapshot()
	return AppModel{
		ctrl:    opts.Controller,
		logger:  logger,
		router:  router.New(screenFor(opts.Controller, st)),
		view:    st.View,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary))),
	}
}

// screenFor builds the base screen for the state's view.
func screenFor(ctrl *session.Controller, st session.State) screen.Screen {
	switch st.View {
	case session.ViewGraph:
		return skillmap.New(ctrl, st)
	case session.ViewQuiz:
		return quiz.New(ctrl, st)
	case session.ViewSummary:
		return summary.New(ctrl, st)
	default:
		return home.New(ctrl, st)
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.spinner.Tick)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case screen.ResultMsg:
		if msg.Err != nil {
			if session.IsUserError(msg.Err) {
				m.flash = msg.Err.Error()
			} else {
				m.logger.Warn("intent failed", "err", msg.Err)
			}
		}
		return m, m.sync()

	case screen.OpenSettingsMsg:
		return m, m.openSettings()

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// Input is blocked while a request is in flight.
		if m.ctrl.Snapshot().Busy {
			return m, nil
		}
		m.flash = ""
		switch msg.String() {
		case "ctrl+s":
			return m, m.openSettings()
		case "ctrl+e":
			m.ctrl.DismissError()
			return m, m.sync()
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m *AppModel) openSettings() tea.Cmd {
	if m.router.Depth() > 1 {
		return nil
	}
	return m.router.Push(settings.New(m.ctrl, m.ctrl.Snapshot().Config))
}

// sync rebuilds the base screen when the controller changed view, and
// hands the active screen a fresh snapshot otherwise.
func (m *AppModel) sync() tea.Cmd {
	st := m.ctrl.Snapshot()
	if st.View != m.view {
		m.view = st.View
		return m.router.Reset(screenFor(m.ctrl, st))
	}
	return m.router.Update(screen.StateMsg{State: st})
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	st := m.ctrl.Snapshot()
	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	status := fmt.Sprintf("%s · %s", st.Config.Provider.DisplayName(), st.Config.Model)
	header := layout.RenderHeader(title, status, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if st.Error != "" {
		footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+E", Description: "Dismiss error"})
	}
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	var content string
	if st.Busy {
		content = m.renderLoading(st.StatusText, contentHeight)
	} else {
		content = m.router.View(m.width, contentHeight)
		if m.flash != "" {
			content += "\n  " + theme.Hint.Render(m.flash)
		}
	}

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// renderLoading renders the loading overlay.
func (m AppModel) renderLoading(status string, height int) string {
	if status == "" {
		status = "Working..."
	}
	box := theme.Overlay.Render(m.spinner.View() + " " + theme.Body.Render(status))
	return layout.RenderOverlay(box, m.width, height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

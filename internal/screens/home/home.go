package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/abhisek/knowflow/internal/history"
	"github.com/abhisek/knowflow/internal/screen"
	"github.com/abhisek/knowflow/internal/session"
	"github.com/abhisek/knowflow/internal/ui/components"
	"github.com/abhisek/knowflow/internal/ui/layout"
	"github.com/abhisek/knowflow/internal/ui/theme"
)

// Suggestions are offered when the topic input is empty.
var Suggestions = []string{
	"JavaScript basics",
	"Renaissance history",
	"Deep learning",
	"Photography fundamentals",
}

// Controller is the part of session.Controller the home screen drives.
type Controller interface {
	SubmitTopic(ctx context.Context, topic string) error
	OpenHistory(ctx context.Context, id string) error
	DeleteHistory(ctx context.Context, id string) error
	Resume() error
}

// HomeScreen takes a topic and lists recent sessions.
type HomeScreen struct {
	ctrl  Controller
	state session.State
	input components.TextInput

	filtered []history.Item
	// cursor is -1 while the input has focus, else an index into filtered.
	cursor     int
	suggestion int
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.InputCapturer = (*HomeScreen)(nil)

// New creates a HomeScreen for the given state.
func New(ctrl Controller, state session.State) *HomeScreen {
	h := &HomeScreen{
		ctrl:   ctrl,
		state:  state,
		input:  components.NewTextInput("", "What do you want to learn?", 48),
		cursor: -1,
	}
	h.refilter()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.input.Init()
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) CapturesInput() bool {
	return true
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Learn"},
		{Key: "↑↓", Description: "History"},
		{Key: "Tab", Description: "Suggest"},
	}
	if h.cursor >= 0 {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+D", Description: "Delete"})
	}
	if h.state.HasSession() {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Resume"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+S", Description: "Settings"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StateMsg:
		h.state = msg.State
		h.refilter()
		return h, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return h, h.submit()
		case "down":
			if h.cursor < len(h.filtered)-1 {
				h.setCursor(h.cursor + 1)
			}
			return h, nil
		case "up":
			if h.cursor >= 0 {
				h.setCursor(h.cursor - 1)
			}
			return h, nil
		case "tab":
			h.input.SetValue(Suggestions[h.suggestion%len(Suggestions)])
			h.suggestion++
			h.setCursor(-1)
			h.refilter()
			return h, nil
		case "ctrl+d", "delete":
			if h.cursor < 0 {
				break
			}
			id := h.filtered[h.cursor].ID
			return h, screen.Do(func() error { return h.ctrl.DeleteHistory(context.Background(), id) })
		case "ctrl+r":
			if !h.state.HasSession() {
				return h, nil
			}
			return h, screen.Do(h.ctrl.Resume)
		}
	}

	var cmd tea.Cmd
	before := h.input.Value()
	h.input, cmd = h.input.Update(msg)
	if h.input.Value() != before {
		h.setCursor(-1)
		h.refilter()
	}
	return h, cmd
}

func (h *HomeScreen) submit() tea.Cmd {
	if h.cursor >= 0 {
		id := h.filtered[h.cursor].ID
		return screen.Do(func() error { return h.ctrl.OpenHistory(context.Background(), id) })
	}
	topic := strings.TrimSpace(h.input.Value())
	if topic == "" {
		return nil
	}
	return screen.Do(func() error { return h.ctrl.SubmitTopic(context.Background(), topic) })
}

func (h *HomeScreen) setCursor(c int) {
	h.cursor = c
	if c < 0 {
		h.input.Focus()
	} else {
		h.input.Blur()
	}
}

// refilter narrows the history list to fuzzy matches of the typed text,
// keeping recency order.
func (h *HomeScreen) refilter() {
	query := strings.TrimSpace(h.input.Value())
	h.filtered = lo.Filter(h.state.History, func(it history.Item, _ int) bool {
		return query == "" || fuzzy.MatchNormalizedFold(query, it.Topic)
	})
	if h.cursor >= len(h.filtered) {
		h.setCursor(len(h.filtered) - 1)
	}
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(max(width-8, 20), 72)
	var sections []string

	sections = append(sections, renderTitle(cw, height))

	if h.state.Error != "" {
		sections = append(sections, theme.ErrorBanner.Width(cw).Render(h.state.Error))
	}

	sections = append(sections, theme.Card.Width(cw).Render(h.input.View()))

	if strings.TrimSpace(h.input.Value()) == "" {
		sections = append(sections, renderSuggestions(cw))
	}

	if h.state.HasSession() {
		resume := fmt.Sprintf("Current session: %s (Ctrl+R to resume)", h.state.Topic)
		sections = append(sections, theme.Hint.Width(cw).Render(resume))
	}

	sections = append(sections, h.renderHistory(cw))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, content)
}

func renderTitle(cw, height int) string {
	title := RenderBanner(cw, height)
	sub := theme.Subtitle.Width(cw).Render("Turn any topic into a path you can master")
	return title + "\n" + sub + "\n"
}

func renderSuggestions(cw int) string {
	chips := lo.Map(Suggestions, func(s string, _ int) string {
		return lipgloss.NewStyle().Foreground(theme.Secondary).Render("#" + s)
	})
	return theme.Hint.Width(cw).Render("Try: ") + strings.Join(chips, "  ")
}

func (h *HomeScreen) renderHistory(cw int) string {
	header := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Bold(true).
		Render(fmt.Sprintf("\nRecent (%d/%d)", len(h.state.History), history.MaxEntries))

	if len(h.filtered) == 0 {
		empty := "No sessions yet."
		if len(h.state.History) > 0 {
			empty = "No matches."
		}
		return header + "\n" + theme.Hint.Render("  "+empty)
	}

	lines := []string{header}
	for i, it := range h.filtered {
		lines = append(lines, renderHistoryRow(it, i == h.cursor, cw))
	}
	return strings.Join(lines, "\n")
}

func renderHistoryRow(it history.Item, selected bool, cw int) string {
	p := it.Progress()
	cursor := "  "
	style := theme.Unselected
	if selected {
		cursor = "▸ "
		style = theme.Selected
	}
	meta := fmt.Sprintf("%3d%%  %s %d  %s",
		p.Percent(),
		theme.StarsStyle.Render("★"),
		p.TotalStars,
		it.LastAccessed.Local().Format("Jan 2 15:04"),
	)
	nameWidth := max(cw-lipgloss.Width(meta)-4, 10)
	return cursor + style.Render(components.Fit(it.Topic, nameWidth)) + "  " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(meta)
}

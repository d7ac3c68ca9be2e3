// Package settings is the provider configuration overlay.
package settings

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/samber/lo"

	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/router"
	"github.com/abhisek/knowflow/internal/screen"
	"github.com/abhisek/knowflow/internal/ui/components"
	"github.com/abhisek/knowflow/internal/ui/layout"
	"github.com/abhisek/knowflow/internal/ui/theme"
)

// Saver persists a configuration. session.Controller satisfies it.
type Saver interface {
	UpdateConfig(ctx context.Context, cfg llm.Config) error
}

type field int

const (
	fieldProvider field = iota
	fieldModel
	fieldBaseURL
	fieldAPIKey
	fieldTemperature
	fieldSave
)

// SettingsScreen edits a draft config. Nothing is stored until Save.
type SettingsScreen struct {
	saver Saver
	draft llm.Config

	model   components.TextInput
	baseURL components.TextInput
	apiKey  components.TextInput

	focus field
	err   string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)
var _ screen.InputCapturer = (*SettingsScreen)(nil)

type savedMsg struct{ err error }

// New creates the overlay from the current config.
func New(saver Saver, cfg llm.Config) *SettingsScreen {
	s := &SettingsScreen{
		saver:   saver,
		draft:   cfg,
		model:   components.NewTextInput("Model", "", 40),
		baseURL: components.NewTextInput("Base URL", "", 40),
		apiKey:  components.NewTextInput("API key", "", 40).Masked(),
	}
	s.model.SetValue(cfg.Model)
	s.baseURL.SetValue(cfg.BaseURL)
	s.apiKey.SetValue(cfg.APIKey)
	s.refreshPlaceholders()
	s.setFocus(fieldProvider)
	return s
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) CapturesInput() bool {
	return true
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Save"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// visibleFields lists the fields shown for the draft's provider. The base
// URL is hidden for the built-in provider and the key for providers that
// do not need one.
func (s *SettingsScreen) visibleFields() []field {
	fields := []field{fieldProvider, fieldModel}
	if !s.draft.Provider.BuiltIn() {
		fields = append(fields, fieldBaseURL)
	}
	if s.draft.Provider.NeedsAPIKey() {
		fields = append(fields, fieldAPIKey)
	}
	return append(fields, fieldTemperature, fieldSave)
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if msg.err != nil {
			s.err = msg.err.Error()
			return s, nil
		}
		return s, tea.Sequence(
			func() tea.Msg { return router.PopScreenMsg{} },
			func() tea.Msg { return screen.ResultMsg{} },
		)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			return s, s.save()
		case "down", "tab":
			s.moveFocus(1)
			return s, nil
		case "up", "shift+tab":
			s.moveFocus(-1)
			return s, nil
		case "left", "right":
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			switch s.focus {
			case fieldProvider:
				s.cycleProvider(delta)
				return s, nil
			case fieldTemperature:
				s.draft = s.draft.StepTemperature(delta)
				return s, nil
			}
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case fieldModel:
		s.model, cmd = s.model.Update(msg)
	case fieldBaseURL:
		s.baseURL, cmd = s.baseURL.Update(msg)
	case fieldAPIKey:
		s.apiKey, cmd = s.apiKey.Update(msg)
	}
	return s, cmd
}

// Draft returns the config as currently edited.
func (s *SettingsScreen) Draft() llm.Config {
	cfg := s.draft
	cfg.Model = strings.TrimSpace(s.model.Value())
	cfg.BaseURL = strings.TrimSpace(s.baseURL.Value())
	cfg.APIKey = strings.TrimSpace(s.apiKey.Value())
	if cfg.Provider.BuiltIn() {
		cfg.BaseURL = ""
	}
	if !cfg.Provider.NeedsAPIKey() && !cfg.Provider.BuiltIn() {
		cfg.APIKey = ""
	}
	return cfg
}

func (s *SettingsScreen) save() tea.Cmd {
	cfg := s.Draft()
	if err := cfg.Validate(); err != nil {
		s.err = err.Error()
		return nil
	}
	return func() tea.Msg {
		return savedMsg{err: s.saver.UpdateConfig(context.Background(), cfg)}
	}
}

// cycleProvider switches to the next provider, resetting model and base URL
// to that provider's defaults.
func (s *SettingsScreen) cycleProvider(delta int) {
	kinds := llm.ProviderKinds()
	_, idx, _ := lo.FindIndexOf(kinds, func(k llm.ProviderKind) bool { return k == s.draft.Provider })
	next := kinds[(idx+delta+len(kinds))%len(kinds)]
	s.draft = s.draft.WithProvider(next)
	s.model.SetValue(s.draft.Model)
	s.baseURL.SetValue("")
	s.refreshPlaceholders()
	s.err = ""
}

func (s *SettingsScreen) refreshPlaceholders() {
	s.model.Model.Placeholder = s.draft.Provider.DefaultModel()
	s.baseURL.Model.Placeholder = s.draft.Provider.DefaultBaseURL()
}

func (s *SettingsScreen) moveFocus(delta int) {
	fields := s.visibleFields()
	_, idx, ok := lo.FindIndexOf(fields, func(f field) bool { return f == s.focus })
	if !ok {
		idx = 0
	}
	idx = max(0, min(idx+delta, len(fields)-1))
	s.setFocus(fields[idx])
}

func (s *SettingsScreen) setFocus(f field) {
	s.focus = f
	s.model.Blur()
	s.baseURL.Blur()
	s.apiKey.Blur()
	switch f {
	case fieldModel:
		s.model.Focus()
	case fieldBaseURL:
		s.baseURL.Focus()
	case fieldAPIKey:
		s.apiKey.Focus()
	}
}

func (s *SettingsScreen) View(width, height int) string {
	var rows []string
	for _, f := range s.visibleFields() {
		rows = append(rows, s.renderField(f))
	}
	if s.err != "" {
		rows = append(rows, theme.Incorrect.Render(s.err))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	box := theme.Overlay.Width(min(width-4, 64)).Render(
		theme.Title.Render("LLM settings") + "\n\n" + body)
	return layout.RenderOverlay(box, width, height)
}

func (s *SettingsScreen) renderField(f field) string {
	focused := s.focus == f
	label := func(text string) string {
		if focused {
			return theme.Selected.Render(text)
		}
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render(text)
	}
	switch f {
	case fieldProvider:
		value := fmt.Sprintf("◂ %s ▸", s.draft.Provider.DisplayName())
		return label("Provider") + "\n" + theme.Body.Render(value) + "\n"
	case fieldModel:
		return s.model.View() + "\n"
	case fieldBaseURL:
		return s.baseURL.View() + "\n"
	case fieldAPIKey:
		return s.apiKey.View() + "\n"
	case fieldTemperature:
		value := fmt.Sprintf("◂ %.1f ▸", s.draft.Temperature)
		bar := components.NewProgressBar("", s.draft.Temperature/llm.MaxTemperature, false, 24)
		return label("Temperature") + "\n" + theme.Body.Render(value) + "  " + bar.View() + "\n"
	case fieldSave:
		return components.NewButton("Save", focused).View()
	}
	return ""
}

package settings

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/router"
	"github.com/abhisek/knowflow/internal/screen"
)

type fakeSaver struct {
	saved []llm.Config
	err   error
}

func (f *fakeSaver) UpdateConfig(_ context.Context, cfg llm.Config) error {
	f.saved = append(f.saved, cfg)
	return f.err
}

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestSettings_CycleProviderResetsModel(t *testing.T) {
	s := New(&fakeSaver{}, llm.DefaultConfig())

	s.Update(key(tea.KeyRight))
	d := s.Draft()
	if d.Provider != llm.ProviderOpenAI {
		t.Fatalf("provider = %s, want openai", d.Provider)
	}
	if d.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", d.Model)
	}

	s.Update(key(tea.KeyLeft))
	s.Update(key(tea.KeyLeft))
	if got := s.Draft().Provider; got != llm.ProviderLMStudio {
		t.Errorf("provider = %s, want wrap to lmstudio", got)
	}
}

func TestSettings_VisibleFieldsFollowProvider(t *testing.T) {
	tests := []struct {
		provider    llm.ProviderKind
		wantBaseURL bool
		wantKey     bool
	}{
		{llm.ProviderGemini, false, false},
		{llm.ProviderOpenAI, true, true},
		{llm.ProviderOllama, true, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			s := New(&fakeSaver{}, llm.DefaultConfig().WithProvider(tt.provider))
			view := ansi.Strip(s.View(100, 40))
			if got := strings.Contains(view, "Base URL"); got != tt.wantBaseURL {
				t.Errorf("base URL shown = %v, want %v", got, tt.wantBaseURL)
			}
			if got := strings.Contains(view, "API key"); got != tt.wantKey {
				t.Errorf("API key shown = %v, want %v", got, tt.wantKey)
			}
		})
	}
}

func TestSettings_TemperatureStep(t *testing.T) {
	s := New(&fakeSaver{}, llm.DefaultConfig())

	// provider -> model -> temperature
	s.Update(key(tea.KeyDown))
	s.Update(key(tea.KeyDown))
	if s.focus != fieldTemperature {
		t.Fatalf("focus = %d, want temperature", s.focus)
	}
	s.Update(key(tea.KeyRight))
	s.Update(key(tea.KeyRight))
	if got := s.Draft().Temperature; got != 0.9 {
		t.Errorf("temperature = %v, want 0.9", got)
	}
	if !strings.Contains(ansi.Strip(s.View(100, 40)), "0.9") {
		t.Error("view should show the new temperature")
	}
}

func TestSettings_SaveCallsSaverThenPops(t *testing.T) {
	saver := &fakeSaver{}
	s := New(saver, llm.DefaultConfig().WithProvider(llm.ProviderOllama))

	_, cmd := s.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected save command")
	}
	msg := cmd()
	if len(saver.saved) != 1 || saver.saved[0].Provider != llm.ProviderOllama {
		t.Fatalf("saved = %+v", saver.saved)
	}

	_, cmd = s.Update(msg)
	if cmd == nil {
		t.Fatal("expected pop after save")
	}
}

func TestSettings_SaveErrorStaysOpen(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk full")}
	s := New(saver, llm.DefaultConfig())

	_, cmd := s.Update(key(tea.KeyEnter))
	_, cmd = s.Update(cmd())
	if cmd != nil {
		t.Error("failed save should not close the overlay")
	}
	if !strings.Contains(ansi.Strip(s.View(100, 40)), "disk full") {
		t.Error("expected save error in view")
	}
}

func TestSettings_InvalidDraftNotSaved(t *testing.T) {
	saver := &fakeSaver{}
	s := New(saver, llm.DefaultConfig())
	s.model.SetValue("   ")

	_, cmd := s.Update(key(tea.KeyEnter))
	if cmd != nil {
		t.Error("invalid draft should not produce a save command")
	}
	if len(saver.saved) != 0 {
		t.Errorf("saved = %+v", saver.saved)
	}
	if !strings.Contains(ansi.Strip(s.View(100, 40)), "model is required") {
		t.Error("expected validation error in view")
	}
}

func TestSettings_EscPops(t *testing.T) {
	saver := &fakeSaver{}
	s := New(saver, llm.DefaultConfig())

	_, cmd := s.Update(key(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	if len(saver.saved) != 0 {
		t.Error("esc must discard the draft")
	}
}

func TestSettings_CapturesInput(t *testing.T) {
	var s screen.Screen = New(&fakeSaver{}, llm.DefaultConfig())
	if c, ok := s.(screen.InputCapturer); !ok || !c.CapturesInput() {
		t.Error("settings should capture input")
	}
}

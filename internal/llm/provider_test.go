package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/knowflow/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text() != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text() != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
	if last, ok := mock.LastCall(); !ok || last.Messages[0].Content != "second" {
		t.Fatalf("LastCall = %+v, want second request", last)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_WaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`), Wait: block})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := mock.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error when context expires before release")
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeQuiz)
	if p := PurposeFrom(ctx); p != PurposeQuiz {
		t.Fatalf("expected %q, got %q", PurposeQuiz, p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"openai without key still saves", Config{Provider: ProviderOpenAI, Model: "gpt-4o", Temperature: 0.7}, false},
		{"missing model", Config{Provider: ProviderOllama, Temperature: 0.7}, true},
		{"temperature too high", Config{Provider: ProviderOllama, Model: "m", Temperature: 2.5}, true},
		{"negative temperature", Config{Provider: ProviderOllama, Model: "m", Temperature: -0.1}, true},
		{"unknown provider", Config{Provider: "anthropic", Model: "m"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Ready(t *testing.T) {
	t.Setenv("KNOWFLOW_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("API_KEY", "")

	if err := (Config{Provider: ProviderOpenAI, Model: "gpt-4o"}).Ready(); err == nil {
		t.Error("openai without key should not be ready")
	}
	if err := (Config{Provider: ProviderOllama, Model: "llama3:8b"}).Ready(); err != nil {
		t.Errorf("ollama needs no key: %v", err)
	}
	if err := DefaultConfig().Ready(); err == nil {
		t.Error("gemini without env key should not be ready")
	}

	t.Setenv("GEMINI_API_KEY", "g-key")
	if err := DefaultConfig().Ready(); err != nil {
		t.Errorf("gemini with env key: %v", err)
	}
}

func TestConfig_EffectiveBaseURL(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Provider: ProviderOpenAI}, "https://api.openai.com/v1"},
		{Config{Provider: ProviderDeepSeek}, "https://api.deepseek.com/v1"},
		{Config{Provider: ProviderOllama}, "http://localhost:11434/v1"},
		{Config{Provider: ProviderLMStudio}, "http://localhost:1234/v1"},
		{Config{Provider: ProviderOllama, BaseURL: "http://gpu-box:11434/v1/"}, "http://gpu-box:11434/v1"},
		{Config{Provider: ProviderGemini}, ""},
	}
	for _, tt := range tests {
		if got := tt.cfg.EffectiveBaseURL(); got != tt.want {
			t.Errorf("%s: EffectiveBaseURL = %q, want %q", tt.cfg.Provider, got, tt.want)
		}
	}
}

func TestConfig_WithProviderResetsModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://custom"

	cfg = cfg.WithProvider(ProviderDeepSeek)
	if cfg.Model != "deepseek-chat" {
		t.Errorf("model = %q, want deepseek-chat", cfg.Model)
	}
	if cfg.BaseURL != "" {
		t.Errorf("base URL = %q, want cleared", cfg.BaseURL)
	}

	cfg.Model = "deepseek-reasoner"
	if same := cfg.WithProvider(ProviderDeepSeek); same.Model != "deepseek-reasoner" {
		t.Error("re-selecting the same provider should keep the model")
	}
}

func TestConfig_StepTemperature(t *testing.T) {
	cfg := Config{Temperature: 0.7}
	if got := cfg.StepTemperature(1).Temperature; got != 0.8 {
		t.Errorf("0.7 + step = %v, want 0.8", got)
	}
	if got := (Config{Temperature: 2.0}).StepTemperature(1).Temperature; got != 2.0 {
		t.Errorf("clamped high = %v, want 2.0", got)
	}
	if got := (Config{Temperature: 0.0}).StepTemperature(-1).Temperature; got != 0.0 {
		t.Errorf("clamped low = %v, want 0.0", got)
	}
}

func TestParseProviderKind(t *testing.T) {
	if k, err := ParseProviderKind(" LMStudio "); err != nil || k != ProviderLMStudio {
		t.Fatalf("ParseProviderKind = %q, %v", k, err)
	}
	if _, err := ParseProviderKind("openrouter"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("sk-abcdef1234"); got != "••••••••1234" {
		t.Errorf("MaskKey = %q", got)
	}
	if got := MaskKey("abc"); got != "•••" {
		t.Errorf("MaskKey short = %q", got)
	}
}

type fakeEventRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, data)
	return nil
}

func TestLoggingProvider_RecordsEvent(t *testing.T) {
	repo := &fakeEventRepo{}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 3, OutputTokens: 4}})
	p := WithLogging(mock, ProviderOllama, repo, nil)

	ctx := WithPurpose(context.Background(), PurposeGraph)
	if _, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Provider != "ollama" || e.Purpose != PurposeGraph || !e.Success {
		t.Errorf("event = %+v", e)
	}
	if e.InputTokens != 3 || e.OutputTokens != 4 {
		t.Errorf("tokens = %d/%d, want 3/4", e.InputTokens, e.OutputTokens)
	}
}

func TestLoggingProvider_RepoFailureDoesNotFailRequest(t *testing.T) {
	repo := &fakeEventRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), ProviderOpenAI, repo, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("expected success despite repo failure, got %v", err)
	}
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	repo := &fakeEventRepo{}
	p := WithLogging(NewMockProvider(MockResponse{Err: &ErrRateLimit{}}), ProviderOpenAI, repo, nil)

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("expected one failed event, got %+v", repo.events)
	}
}

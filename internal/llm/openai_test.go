package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type capturedRequest struct {
	auth string
	body map[string]any
}

func newTestServer(t *testing.T, status int, content string, captured *capturedRequest) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			captured.auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&captured.body)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"type": "error", "message": http.StatusText(status)},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "served-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}))
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

func newTestOpenAIProvider(t *testing.T, kind ProviderKind, key, baseURL string) *OpenAIProvider {
	t.Helper()
	p, err := NewOpenAIProvider(Config{
		Provider:    kind,
		BaseURL:     baseURL,
		APIKey:      key,
		Model:       kind.DefaultModel(),
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func TestOpenAIProvider_HappyPath(t *testing.T) {
	var captured capturedRequest
	url := newTestServer(t, http.StatusOK, "Great job!", &captured)
	p := newTestOpenAIProvider(t, ProviderOpenAI, "sk-test", url)

	resp, err := p.Generate(context.Background(), Request{
		System:      "You are a tutor.",
		Messages:    []Message{{Role: RoleUser, Content: "Summarize."}},
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Great job!" {
		t.Fatalf("content = %q", resp.Text())
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
	if resp.Model != "served-model" {
		t.Fatalf("model = %q, want served-model", resp.Model)
	}
	if captured.auth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q, want bearer token", captured.auth)
	}
	if _, ok := captured.body["response_format"]; ok {
		t.Fatal("text mode must not send response_format")
	}
	msgs, _ := captured.body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(msgs))
	}
}

func TestOpenAIProvider_JSONModeAndLocalNoKey(t *testing.T) {
	var captured capturedRequest
	url := newTestServer(t, http.StatusOK, "```json\n{\"nodes\":[{\"label\":\"Intro\"}]}\n```", &captured)
	p := newTestOpenAIProvider(t, ProviderOllama, "", url)

	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Return JSON."}},
		Schema:   nodeListSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != `{"nodes":[{"label":"Intro"}]}` {
		t.Fatalf("content = %q, want unfenced JSON", resp.Text())
	}
	if captured.auth != "" {
		t.Fatalf("local provider sent Authorization %q", captured.auth)
	}
	rf, _ := captured.body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("response_format = %v, want json_object", captured.body["response_format"])
	}
	if captured.body["model"] != "llama3:8b" {
		t.Fatalf("model = %v, want llama3:8b", captured.body["model"])
	}
}

func TestOpenAIProvider_InvalidJSON(t *testing.T) {
	url := newTestServer(t, http.StatusOK, "I cannot do that.", nil)
	p := newTestOpenAIProvider(t, ProviderLMStudio, "", url)

	_, err := p.Generate(context.Background(), Request{Schema: nodeListSchema()})
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusTooManyRequests, func(err error) bool {
			var rl *ErrRateLimit
			return errors.As(err, &rl)
		}},
		{http.StatusInternalServerError, func(err error) bool {
			var u *ErrProviderUnavailable
			return errors.As(err, &u) && u.Status == http.StatusInternalServerError
		}},
		{http.StatusUnauthorized, func(err error) bool {
			var u *ErrProviderUnavailable
			return errors.As(err, &u)
		}},
	}

	for _, tt := range tests {
		url := newTestServer(t, tt.status, "", nil)
		p := newTestOpenAIProvider(t, ProviderDeepSeek, "sk-test", url)
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
		if err == nil || !tt.check(err) {
			t.Errorf("status %d: unexpected error %T (%v)", tt.status, err, err)
		}
	}
}

func TestOpenAIProvider_Unreachable(t *testing.T) {
	p := newTestOpenAIProvider(t, ProviderOllama, "", "http://127.0.0.1:1/v1")
	_, err := p.Generate(context.Background(), Request{})
	var u *ErrProviderUnavailable
	if !errors.As(err, &u) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
}

func TestNewOpenAIProvider_KeyRules(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{Provider: ProviderOpenAI, Model: "gpt-4o"}); err == nil {
		t.Error("openai without key should fail")
	}
	if _, err := NewOpenAIProvider(Config{Provider: ProviderLMStudio, Model: "local-model"}); err != nil {
		t.Errorf("lmstudio without key: %v", err)
	}
	if _, err := NewOpenAIProvider(DefaultConfig()); err == nil {
		t.Error("gemini is not OpenAI-compatible")
	}
}

func TestNewProvider_Dispatch(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderOllama, Model: "llama3:8b", Temperature: 0.7}, nil, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if p.ModelID() != "llama3:8b" {
		t.Fatalf("model = %q", p.ModelID())
	}
	if _, ok := p.(*LoggingProvider); !ok {
		t.Fatalf("expected logging wrapper, got %T", p)
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "bogus", Model: "x"}, nil, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

package llm

import (
	"fmt"
	"math"
	"os"
	"strings"
)

// ProviderKind selects the backend that serves requests.
type ProviderKind string

const (
	ProviderGemini   ProviderKind = "gemini"
	ProviderOpenAI   ProviderKind = "openai"
	ProviderDeepSeek ProviderKind = "deepseek"
	ProviderOllama   ProviderKind = "ollama"
	ProviderLMStudio ProviderKind = "lmstudio"
)

// ProviderKinds lists every supported provider in display order.
func ProviderKinds() []ProviderKind {
	return []ProviderKind{
		ProviderGemini,
		ProviderOpenAI,
		ProviderDeepSeek,
		ProviderOllama,
		ProviderLMStudio,
	}
}

// ParseProviderKind parses a provider name, case-insensitively.
func ParseProviderKind(s string) (ProviderKind, error) {
	k := ProviderKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ProviderKinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown LLM provider: %q", s)
}

// DisplayName returns a human-readable provider name.
func (k ProviderKind) DisplayName() string {
	switch k {
	case ProviderGemini:
		return "Google Gemini"
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderDeepSeek:
		return "DeepSeek"
	case ProviderOllama:
		return "Ollama (local)"
	case ProviderLMStudio:
		return "LM Studio (local)"
	default:
		return string(k)
	}
}

// BuiltIn reports whether the provider uses the native Gemini client rather
// than the OpenAI-compatible transport.
func (k ProviderKind) BuiltIn() bool {
	return k == ProviderGemini
}

// Local reports whether the provider runs on the user's machine and needs
// no API key.
func (k ProviderKind) Local() bool {
	return k == ProviderOllama || k == ProviderLMStudio
}

// NeedsAPIKey reports whether the user must configure a key.
func (k ProviderKind) NeedsAPIKey() bool {
	return !k.BuiltIn() && !k.Local()
}

// DefaultBaseURL returns the endpoint used when no base URL is configured.
// The built-in provider has none.
func (k ProviderKind) DefaultBaseURL() string {
	switch k {
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	case ProviderDeepSeek:
		return "https://api.deepseek.com/v1"
	case ProviderOllama:
		return "http://localhost:11434/v1"
	case ProviderLMStudio:
		return "http://localhost:1234/v1"
	default:
		return ""
	}
}

// DefaultModel returns the model selected when switching to the provider.
func (k ProviderKind) DefaultModel() string {
	switch k {
	case ProviderOpenAI:
		return "gpt-4o"
	case ProviderDeepSeek:
		return "deepseek-chat"
	case ProviderOllama:
		return "llama3:8b"
	case ProviderLMStudio:
		return "local-model"
	default:
		return "gemini-3-pro-preview"
	}
}

const (
	DefaultTemperature = 0.7
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
	TemperatureStep    = 0.1
)

// Config is the user's provider selection. It is persisted as JSON and
// edited from the settings view.
type Config struct {
	Provider    ProviderKind `json:"provider"`
	BaseURL     string       `json:"baseUrl,omitempty"`
	APIKey      string       `json:"apiKey,omitempty"`
	Model       string       `json:"model"`
	Temperature float64      `json:"temperature"`
}

// DefaultConfig returns the first-run configuration.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderGemini,
		Model:       ProviderGemini.DefaultModel(),
		Temperature: DefaultTemperature,
	}
}

// WithProvider switches provider and resets the model to that provider's
// default. The base URL is cleared so the new provider's default applies.
func (c Config) WithProvider(k ProviderKind) Config {
	if c.Provider == k {
		return c
	}
	c.Provider = k
	c.Model = k.DefaultModel()
	c.BaseURL = ""
	return c
}

// EffectiveBaseURL returns the configured base URL, or the provider default.
func (c Config) EffectiveBaseURL() string {
	if u := strings.TrimSpace(c.BaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return c.Provider.DefaultBaseURL()
}

// EffectiveAPIKey returns the key to authenticate with. The built-in provider
// falls back to the environment; local providers never send one unless set.
func (c Config) EffectiveAPIKey() string {
	if k := strings.TrimSpace(c.APIKey); k != "" {
		return k
	}
	if c.Provider.BuiltIn() {
		return builtInAPIKey()
	}
	return ""
}

// builtInAPIKey reads the Gemini key from the environment.
func builtInAPIKey() string {
	for _, name := range []string{"KNOWFLOW_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"} {
		if k := os.Getenv(name); k != "" {
			return k
		}
	}
	return ""
}

// StepTemperature moves the temperature by delta steps, clamped to range and
// rounded to one decimal.
func (c Config) StepTemperature(delta int) Config {
	t := c.Temperature + float64(delta)*TemperatureStep
	t = math.Round(t*10) / 10
	c.Temperature = math.Max(MinTemperature, math.Min(MaxTemperature, t))
	return c
}

// Validate checks the configuration is complete enough to save.
func (c Config) Validate() error {
	if _, err := ParseProviderKind(string(c.Provider)); err != nil {
		return err
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model is required for the %s provider", c.Provider)
	}
	if c.Temperature < MinTemperature || c.Temperature > MaxTemperature {
		return fmt.Errorf("temperature %.1f out of range [%.1f, %.1f]", c.Temperature, MinTemperature, MaxTemperature)
	}
	return nil
}

// Ready reports whether requests can be sent with this configuration. It is
// stricter than Validate: a config may be saved before its key is entered.
func (c Config) Ready() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Provider.NeedsAPIKey() && c.EffectiveAPIKey() == "" {
		return fmt.Errorf("an API key is required for the %s provider", c.Provider.DisplayName())
	}
	if c.Provider.BuiltIn() && c.EffectiveAPIKey() == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	return nil
}

// Masked returns a copy safe to display, with the API key obscured.
func (c Config) Masked() Config {
	if c.APIKey != "" {
		c.APIKey = MaskKey(c.APIKey)
	}
	return c
}

// MaskKey keeps the last four characters of a secret.
func MaskKey(k string) string {
	if len(k) <= 4 {
		return strings.Repeat("•", len(k))
	}
	return strings.Repeat("•", 8) + k[len(k)-4:]
}

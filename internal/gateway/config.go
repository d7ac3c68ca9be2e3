package gateway

import "github.com/abhisek/knowflow/internal/llm"

const (
	DefaultQuestionCount = 3
	MinQuestionCount     = 1
	MaxQuestionCount     = 10
)

// Config controls the behavior of the Gateway.
type Config struct {
	// QuestionCount is the number of questions asked per quiz, clamped to
	// [MinQuestionCount, MaxQuestionCount].
	QuestionCount int

	// MaxTokens is the token budget for structured responses. Zero leaves
	// the provider default.
	MaxTokens int

	// Temperature controls output randomness (0.0-2.0).
	Temperature float64
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		QuestionCount: DefaultQuestionCount,
		MaxTokens:     4096,
		Temperature:   llm.DefaultTemperature,
	}
}

// Questions returns QuestionCount clamped to the supported range, or the
// default when unset.
func (c Config) Questions() int {
	switch {
	case c.QuestionCount <= 0:
		return DefaultQuestionCount
	case c.QuestionCount > MaxQuestionCount:
		return MaxQuestionCount
	}
	return c.QuestionCount
}

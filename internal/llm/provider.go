package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one prompt to a model and returns its output.
type Provider interface {
	// Generate runs a single completion. When req.Schema is set the provider
	// switches to JSON output and the returned Content has been validated
	// against the schema; otherwise Content holds the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model requests are sent to.
	ModelID() string
}

// Request is a single prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema enables JSON mode. Nil means free text.
	Schema *Schema

	// MaxTokens caps the response length. Zero leaves it to the provider.
	MaxTokens int

	// Temperature in [0, 2].
	Temperature float64
}

// JSONMode reports whether structured output was requested.
func (r Request) JSONMode() bool {
	return r.Schema != nil
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema describes the JSON object a model must return.
type Schema struct {
	// Name is a kebab-case identifier, also used as the validation cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Text returns Content as a string.
func (r *Response) Text() string {
	return string(r.Content)
}

// Usage is token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

package gateway

import "fmt"

// GenerationError means the provider call failed or its output could not be
// used: transport errors, unparseable JSON, structurally broken questions.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ValidationError means the provider answered well-formed JSON that holds
// nothing usable, such as an empty node list.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

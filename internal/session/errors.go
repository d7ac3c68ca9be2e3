package session

import "errors"

var (
	ErrBusy              = errors.New("another request is in progress")
	ErrNodeLocked        = errors.New("node is locked")
	ErrUnknownNode       = errors.New("unknown node")
	ErrNoSession         = errors.New("no active session")
	ErrInvalidTransition = errors.New("not allowed in the current view")
	ErrInvalidOption     = errors.New("option out of range")
)

// ConfigError means no generator could be built from the current LLM
// config, for example because the API key is missing.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

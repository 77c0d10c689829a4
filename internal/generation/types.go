package generation

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable reports that no generation client could be constructed.
var ErrUnavailable = errors.New("generation client unavailable")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Request is one completion call. System is sent as the leading system
// message; zero tuning values fall back to provider defaults.
type Request struct {
	System           string
	Messages         []Message
	Temperature      float32
	MaxTokens        int
	PresencePenalty  float32
	FrequencyPenalty float32
}

// Generator produces a single reply for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Error is a provider failure after retries were exhausted.
type Error struct {
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("generation failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Unavailable is the Generator used when the provider cannot be configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}

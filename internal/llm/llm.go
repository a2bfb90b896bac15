// Package llm provides a swappable chat-completion client used for problem
// extraction and reply generation.
package llm

import (
	"context"
	"errors"
)

// ErrMissingAPIKey indicates the client was constructed without credentials.
var ErrMissingAPIKey = errors.New("llm: missing API key")

// ErrUnavailable indicates the completion service could not be reached.
var ErrUnavailable = errors.New("llm: service unavailable")

// Roles for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client produces a text completion for a chat transcript.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)

	// Name returns the client name for logging.
	Name() string
}

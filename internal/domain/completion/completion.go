// Package completion describes the upstream language model as the chat core sees it.
package completion

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is a single chat completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature *float32
	MaxTokens   int
}

// DeltaFunc receives text as it arrives. Returning an error aborts the stream.
type DeltaFunc func(delta string) error

// Provider is the upstream completion service.
type Provider interface {
	// Stream delivers deltas to onDelta and returns the assembled text once the upstream signals the
	// natural end of the answer. Any other outcome, including ctx cancellation, returns an error.
	Stream(ctx context.Context, req Request, onDelta DeltaFunc) (string, error)
	// Complete performs a non-streaming call and returns the answer text.
	Complete(ctx context.Context, req Request) (string, error)
}

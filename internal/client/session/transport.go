package session

import "context"

// TurnRequest is the body of one chat turn. It always carries the full transcript.
type TurnRequest struct {
	Messages       []Message `json:"messages"`
	CharacterSlug  string    `json:"characterSlug"`
	ConversationID string    `json:"conversationId,omitempty"`
	Model          string    `json:"model,omitempty"`
}

// Transport sends a turn and streams the answer back.
type Transport interface {
	// StreamTurn calls onStart once with the server assigned conversation id before the first delta,
	// or before returning the error of a turn whose conversation the server already stored. It returns
	// nil only when the stream ended cleanly.
	StreamTurn(ctx context.Context, req TurnRequest, onStart func(conversationID string), onDelta func(delta string) error) error
}

package session

import (
	"strings"
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

const (
	PartTypeText = "text"
	// PartTypeError carries a failure notice shown in place of an answer. The server ignores it.
	PartTypeError = "error"
)

type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Message is a transcript entry as the client holds and sends it.
type Message struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
	// Failed marks entries of a turn that did not complete: the notice and any partial answer. They
	// stay visible but are never sent back.
	Failed bool `json:"-"`
}

// TextOf joins the text parts of m.
func TextOf(m Message) string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// DisplayText is TextOf plus any failure notice, for rendering.
func DisplayText(m Message) string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartTypeText || p.Type == PartTypeError {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func textMessage(id string, role Role, text string) Message {
	return Message{ID: id, Role: role, Parts: []Part{{Type: PartTypeText, Text: text}}}
}

// StoredMessage is a message as the server persisted it.
type StoredMessage struct {
	ID        string
	Role      string
	Content   string
	CreatedAt time.Time
}

// FromStored converts a persisted transcript into client messages, keeping order.
func FromStored(stored []StoredMessage) []Message {
	out := make([]Message, 0, len(stored))
	for _, m := range stored {
		out = append(out, textMessage(m.ID, Role(m.Role), m.Content))
	}
	return out
}

func cloneMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, m := range messages {
		out[i] = Message{ID: m.ID, Role: m.Role, Parts: append([]Part(nil), m.Parts...), Failed: m.Failed}
	}
	return out
}

// outgoing is the transcript as sent with a turn: failed entries were never stored server side.
func outgoing(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Failed {
			continue
		}
		out = append(out, Message{ID: m.ID, Role: m.Role, Parts: append([]Part(nil), m.Parts...)})
	}
	return out
}

// ConversationIDHolder is the mutable conversation id read at send time. It starts empty for a new
// conversation and is filled from the first response.
type ConversationIDHolder struct {
	mu sync.RWMutex
	id string
}

func NewConversationIDHolder(id string) *ConversationIDHolder {
	return &ConversationIDHolder{id: id}
}

func (h *ConversationIDHolder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id
}

// SetIfEmpty stores id unless one is held already and reports whether it did.
func (h *ConversationIDHolder) SetIfEmpty(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.id != "" || id == "" {
		return false
	}
	h.id = id
	return true
}

// Package conversationtest provides in-memory conversation storage for tests.
package conversationtest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/utils/platformerrors"
)

// Store keeps conversations and messages in memory. The zero value is not usable; call NewStore.
type Store struct {
	mu            sync.Mutex
	conversations map[string]*conversation.Conversation
	messages      []*conversation.Message

	// Optional failure injection.
	CreateConversationErr error
	CreateMessageErr      func(msg *conversation.Message) error
	UpdateTitleErr        error
}

func NewStore() *Store {
	return &Store{conversations: map[string]*conversation.Conversation{}}
}

// Conversations returns the ConversationRepository view of the store.
func (s *Store) Conversations() conversation.ConversationRepository { return conversationRepo{s} }

// Messages returns the MessageRepository view of the store.
func (s *Store) Messages() conversation.MessageRepository { return messageRepo{s} }

// Seed inserts a conversation and messages as-is.
func (s *Store) Seed(conv *conversation.Conversation, messages ...*conversation.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *conv
	s.conversations[conv.ID] = &c
	for _, m := range messages {
		mm := *m
		s.messages = append(s.messages, &mm)
	}
}

// Conversation returns a copy of the stored conversation, or nil.
func (s *Store) Conversation(id string) *conversation.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// ConversationCount returns the number of stored conversations.
func (s *Store) ConversationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// MessagesOf returns copies of the conversation's messages filtered by role; an empty role matches all.
func (s *Store) MessagesOf(conversationID string, role conversation.Role) []conversation.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []conversation.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID && (role == "" || m.Role == role) {
			out = append(out, *m)
		}
	}
	return out
}

// MessageCount returns the total number of stored messages.
func (s *Store) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func notFound(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "")
}

type conversationRepo struct{ s *Store }

func (r conversationRepo) Create(ctx context.Context, conv *conversation.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateConversationErr != nil {
		return r.s.CreateConversationErr
	}
	c := *conv
	r.s.conversations[conv.ID] = &c
	return nil
}

func (r conversationRepo) FindByID(ctx context.Context, id string) (*conversation.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conversations[id]
	if !ok {
		return nil, notFound(ctx)
	}
	cp := *c
	return &cp, nil
}

func (r conversationRepo) matching(filter conversation.ConversationFilter) []*conversation.Conversation {
	var out []*conversation.Conversation
	for _, c := range r.s.conversations {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.CharacterSlug != nil && c.CharacterSlug != *filter.CharacterSlug {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func (r conversationRepo) FindByFilter(ctx context.Context, filter conversation.ConversationFilter, pagination *conversation.Pagination) ([]*conversation.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.matching(filter)
	if pagination != nil {
		if pagination.Offset >= len(out) {
			return nil, nil
		}
		out = out[pagination.Offset:]
		if pagination.Limit > 0 && pagination.Limit < len(out) {
			out = out[:pagination.Limit]
		}
	}
	return out, nil
}

func (r conversationRepo) Count(ctx context.Context, filter conversation.ConversationFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r conversationRepo) UpdateTitle(ctx context.Context, id string, title string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UpdateTitleErr != nil {
		return r.s.UpdateTitleErr
	}
	c, ok := r.s.conversations[id]
	if !ok {
		return notFound(ctx)
	}
	c.Title = &title
	return nil
}

func (r conversationRepo) Touch(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.conversations[id]; ok {
		c.UpdatedAt = at
	}
	return nil
}

func (r conversationRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.conversations[id]; !ok {
		return notFound(ctx)
	}
	delete(r.s.conversations, id)
	r.s.messages = slices.DeleteFunc(r.s.messages, func(m *conversation.Message) bool { return m.ConversationID == id })
	return nil
}

type messageRepo struct{ s *Store }

func (r messageRepo) Create(ctx context.Context, msg *conversation.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateMessageErr != nil {
		if err := r.s.CreateMessageErr(msg); err != nil {
			return err
		}
	}
	if slices.ContainsFunc(r.s.messages, func(m *conversation.Message) bool { return m.ID == msg.ID }) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict, "message already exists", nil, "")
	}
	m := *msg
	r.s.messages = append(r.s.messages, &m)
	return nil
}

func (r messageRepo) CreateIfAbsent(ctx context.Context, msg *conversation.Message) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateMessageErr != nil {
		if err := r.s.CreateMessageErr(msg); err != nil {
			return false, err
		}
	}
	if slices.ContainsFunc(r.s.messages, func(m *conversation.Message) bool { return m.ID == msg.ID }) {
		return false, nil
	}
	m := *msg
	r.s.messages = append(r.s.messages, &m)
	return true, nil
}

func (r messageRepo) ListByConversation(ctx context.Context, conversationID string) ([]*conversation.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*conversation.Message
	for _, m := range r.s.messages {
		if m.ConversationID == conversationID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r messageRepo) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.messages {
		if m.ConversationID == conversationID {
			n++
		}
	}
	return n, nil
}

func (r messageRepo) FirstByRole(ctx context.Context, conversationID string, role conversation.Role) (*conversation.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.ConversationID == conversationID && m.Role == role {
			cp := *m
			return &cp, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "message not found", nil, "")
}

package parley

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

// Session holds the single active conversation, drives the
// streaming-append protocol against a Provider, and synchronizes
// mutations into a Store. The active conversation is owned exclusively by
// the session; the store owns only serialized snapshots, so the two may
// diverge between a mutation and the next Save.
type Session struct {
	provider Provider
	store    Store

	mu      sync.Mutex
	current *Conversation
	sending bool
}

// NewSession creates a session with no active conversation. The first
// Current, Resume, NewChat, or Send call installs one.
func NewSession(provider Provider, store Store) *Session {
	return &Session{provider: provider, store: store}
}

// Current returns the active conversation, creating a fresh one if none
// exists yet.
func (s *Session) Current() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		s.current = NewConversation()
	}
	return s.current
}

// NewChat installs a fresh empty conversation as active and returns it.
// An in-flight send on the previous conversation stops applying updates
// once the new conversation is installed.
func (s *Session) NewChat() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = NewConversation()
	return s.current
}

// Resume installs the most recently persisted conversation as active, or
// a fresh one when the store is empty.
func (s *Session) Resume() *Conversation {
	all := s.store.All()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(all) > 0 {
		s.current = all[0]
	} else {
		s.current = NewConversation()
	}
	return s.current
}

// Load installs the stored conversation with the given id as active. It
// reports false, leaving the active conversation unchanged, when the id
// is not in the store.
func (s *Session) Load(id string) (*Conversation, bool) {
	conv, ok := s.store.Get(id)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	s.current = conv
	s.mu.Unlock()
	return conv, true
}

// Delete removes a conversation from the store. Deleting the active
// conversation also replaces it with a fresh chat — eviction never
// touches the active conversation, only explicit deletion does.
func (s *Session) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == id {
		s.current = NewConversation()
	}
	return nil
}

// Store returns the session's conversation store.
func (s *Session) Store() Store {
	return s.store
}

// SendOption configures a single Send invocation.
type SendOption func(*sendConfig)

type sendConfig struct {
	onEvent func(Event)
	model   string
}

func (c *sendConfig) emit(e Event) {
	if c.onEvent != nil {
		c.onEvent(e)
	}
}

// WithEventHandler sets a callback that receives each session event during
// the send. If nil or not set, events are silently discarded.
func WithEventHandler(h func(Event)) SendOption {
	return func(c *sendConfig) {
		c.onEvent = h
	}
}

// WithModel sets the model ID for the provider request during this send.
// Empty string means the provider uses its default model.
func WithModel(model string) SendOption {
	return func(c *sendConfig) {
		c.model = model
	}
}

// Send runs one exchange with the provider: it appends the user message,
// appends an empty assistant placeholder, streams fragments into the
// placeholder via full-replace updates, and persists the conversation
// exactly once after the stream completes. Intermediate streaming states
// are never persisted.
//
// On transport failure after the placeholder exists, the placeholder is
// removed and the conversation is left with the user message only; no
// partial assistant message survives. If a new conversation is installed
// mid-stream (NewChat, Load, Resume), the remaining fragments are ignored,
// the placeholder is rolled back, and nothing is saved.
func (s *Session) Send(ctx context.Context, text string, opts ...SendOption) error {
	var cfg sendConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return ErrSendInProgress
	}
	if s.current == nil {
		s.current = NewConversation()
	}
	conv := s.current
	s.sending = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	user := conv.AddMessage(RoleUser, text)
	cfg.emit(EventMessageAppended{Message: snapshot(user)})

	// Capture the context before appending the placeholder so the model
	// never sees the empty assistant turn.
	msgs := slices.Collect(conv.Context())

	placeholder := conv.AddMessage(RoleAssistant, "")
	cfg.emit(EventMessageAppended{Message: snapshot(placeholder)})

	stream, err := s.provider.Stream(ctx, Request{Model: cfg.model, Messages: msgs})
	if err != nil {
		s.rollback(conv, placeholder.ID, &cfg)
		return fmt.Errorf("start stream: %w", err)
	}
	defer stream.Close()

	var buf strings.Builder
	for {
		frag, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.rollback(conv, placeholder.ID, &cfg)
			return fmt.Errorf("stream: %w", err)
		}
		if !s.isCurrent(conv) {
			s.rollback(conv, placeholder.ID, &cfg)
			return nil
		}
		buf.WriteString(frag.Text)
		conv.UpdateMessage(placeholder.ID, buf.String())
		cfg.emit(EventContentUpdate{MessageID: placeholder.ID, Content: buf.String()})
	}

	if !s.isCurrent(conv) {
		s.rollback(conv, placeholder.ID, &cfg)
		return nil
	}

	conv.maybeDeriveTitle(placeholder)

	if err := s.store.Save(conv); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (s *Session) isCurrent(conv *Conversation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == conv
}

// snapshot copies a message for an event payload. Handlers typically hand
// events to another goroutine, which must never observe the in-place
// content rewrites that follow.
func snapshot(msg *Message) *Message {
	copied := *msg
	return &copied
}

func (s *Session) rollback(conv *Conversation, placeholderID string, cfg *sendConfig) {
	if conv.removeMessage(placeholderID) {
		cfg.emit(EventMessageRemoved{MessageID: placeholderID})
	}
}

package parley

import (
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

// DefaultTitle is the sentinel title of a conversation whose title has not
// yet been derived.
const DefaultTitle = "New Conversation"

// titleMaxGraphemes is the maximum title length in grapheme clusters.
const titleMaxGraphemes = 50

// Conversation is one chat thread: ordered messages plus metadata.
// Messages are append-ordered; content edits never reorder them. ID is
// immutable once assigned. Tags behaves as a set: adding an existing tag is
// a no-op and order carries no meaning.
type Conversation struct {
	ID          string
	Title       string
	Messages    []*Message
	Tags        []string
	LastUpdated time.Time
}

// NewConversation creates an empty conversation with a fresh id, the
// sentinel title, and no tags.
func NewConversation() *Conversation {
	return &Conversation{
		ID:          NewID(),
		Title:       DefaultTitle,
		LastUpdated: time.Now(),
	}
}

// AddMessage appends a new message with a fresh id and the current
// timestamp, and bumps LastUpdated. If the title is still the sentinel and
// role is assistant, the title is derived from content; this happens at
// most once per conversation and is never re-derived, even if the source
// message is edited later. The returned message is the one held by the
// conversation — callers may pass its ID back to UpdateMessage for
// streaming updates.
func (c *Conversation) AddMessage(role Role, content string) *Message {
	msg := &Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	c.Messages = append(c.Messages, msg)
	c.LastUpdated = time.Now()
	c.maybeDeriveTitle(msg)

	return msg
}

// maybeDeriveTitle derives the title from msg when it is an assistant
// message with content and the title is still the sentinel. The session
// calls this again once a streamed placeholder is finalized, since the
// placeholder is appended empty.
func (c *Conversation) maybeDeriveTitle(msg *Message) {
	if c.Title != DefaultTitle || msg.Role != RoleAssistant {
		return
	}
	if strings.TrimSpace(msg.Content) == "" {
		return
	}
	c.Title = deriveTitle(msg.Content)
}

// UpdateMessage replaces the content of the message with the given id and
// marks it edited. An unknown id is a no-op, not an error — callers must
// not assume success.
func (c *Conversation) UpdateMessage(id, newContent string) {
	for _, msg := range c.Messages {
		if msg.ID == id {
			msg.Content = newContent
			msg.Edited = true
			msg.EditedAt = time.Now()
			return
		}
	}
}

// removeMessage deletes the message with the given id, preserving the
// order of the rest. It reports whether a message was removed.
func (c *Conversation) removeMessage(id string) bool {
	for i, msg := range c.Messages {
		if msg.ID == id {
			c.Messages = slices.Delete(c.Messages, i, i+1)
			return true
		}
	}
	return false
}

// ContextMessage is the {role, content} projection of a message, the exact
// payload handed to the model call.
type ContextMessage struct {
	Role    Role
	Content string
}

// Context returns a lazy, restartable sequence of {role, content} pairs in
// message order.
func (c *Conversation) Context() iter.Seq[ContextMessage] {
	return func(yield func(ContextMessage) bool) {
		for _, msg := range c.Messages {
			if !yield(ContextMessage{Role: msg.Role, Content: msg.Content}) {
				return
			}
		}
	}
}

// AddTag adds tag to the conversation. Adding an existing tag is a no-op.
func (c *Conversation) AddTag(tag string) {
	if !slices.Contains(c.Tags, tag) {
		c.Tags = append(c.Tags, tag)
	}
}

// RemoveTag removes tag from the conversation if present.
func (c *Conversation) RemoveTag(tag string) {
	c.Tags = slices.DeleteFunc(c.Tags, func(t string) bool { return t == tag })
}

// LastMessage returns the most recently appended message, or nil if the
// conversation is empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// deriveTitle builds a title from the first line of content: trimmed,
// truncated to titleMaxGraphemes grapheme clusters, with "..." appended
// when truncation occurred.
func deriveTitle(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimSpace(line)

	g := uniseg.NewGraphemes(line)
	n := 0
	for g.Next() {
		n++
		if n > titleMaxGraphemes {
			from, _ := g.Positions()
			return line[:from] + "..."
		}
	}
	return line
}

package json

import (
	"fmt"
	"time"

	"github.com/parleychat/parley"
)

// conversationDTO is the persisted form of a conversation. Timestamps
// round-trip through RFC 3339 via encoding/json.
type conversationDTO struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Tags        []string     `json:"tags,omitempty"`
	LastUpdated time.Time    `json:"last_updated"`
	Messages    []messageDTO `json:"messages"`
}

type messageDTO struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Edited    bool       `json:"edited,omitempty"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

func marshalConversation(c *parley.Conversation) conversationDTO {
	dto := conversationDTO{
		ID:          c.ID,
		Title:       c.Title,
		Tags:        c.Tags,
		LastUpdated: c.LastUpdated,
		Messages:    make([]messageDTO, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		m := messageDTO{
			ID:        msg.ID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
			Edited:    msg.Edited,
		}
		if msg.Edited {
			at := msg.EditedAt
			m.EditedAt = &at
		}
		dto.Messages[i] = m
	}
	return dto
}

func unmarshalConversation(dto conversationDTO) *parley.Conversation {
	c := &parley.Conversation{
		ID:          dto.ID,
		Title:       dto.Title,
		Tags:        dto.Tags,
		LastUpdated: dto.LastUpdated,
		Messages:    make([]*parley.Message, len(dto.Messages)),
	}
	for i, m := range dto.Messages {
		msg := &parley.Message{
			ID:        m.ID,
			Role:      parley.Role(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Edited:    m.Edited,
		}
		if m.EditedAt != nil {
			msg.EditedAt = *m.EditedAt
		}
		c.Messages[i] = msg
	}
	return c
}

// validateRecords checks that every record is conversation-shaped: a
// non-empty id, and every message with a non-empty id and a known role.
// Errors wrap parley.ErrValidation.
func validateRecords(records []conversationDTO) error {
	for i, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record %d: missing id: %w", i, parley.ErrValidation)
		}
		for j, msg := range rec.Messages {
			if msg.ID == "" {
				return fmt.Errorf("record %d: message %d: missing id: %w", i, j, parley.ErrValidation)
			}
			if !parley.Role(msg.Role).Valid() {
				return fmt.Errorf("record %d: message %d: unknown role %q: %w", i, j, msg.Role, parley.ErrValidation)
			}
		}
	}
	return nil
}

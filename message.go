package parley

import "time"

// Message is a single turn in a conversation. ID is assigned at creation
// and never reused. Content is mutable only through
// [Conversation.UpdateMessage], which also records the edit.
type Message struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
	Edited    bool
	EditedAt  time.Time // zero unless Edited
}

package models

import "time"

// DeletedMessagePlaceholder replaces the conversation preview when the latest
// message is soft-deleted.
const DeletedMessagePlaceholder = "This message was deleted"

// Message is a chat message. Messages are never hard-deleted: DeletedAt marks
// a soft delete and the text is retained for audit, which keeps ordering and
// ids stable for reactions.
type Message struct {
	ID             int64      `db:"id" json:"id"`
	ConversationID int64      `db:"conversation_id" json:"conversation_id"`
	SenderClerkID  string     `db:"sender_clerk_id" json:"sender_clerk_id"`
	Text           string     `db:"text" json:"text"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Deleted reports whether the message has been soft-deleted.
func (m Message) Deleted() bool {
	return m.DeletedAt != nil
}

// ConversationEvent is broadcast through websockets to conversation members.
type ConversationEvent struct {
	Type      string   `json:"type"`
	Message   *Message `json:"message,omitempty"`
	MessageID int64    `json:"message_id,omitempty"`
	ClerkID   string   `json:"clerk_id,omitempty"`
	Emoji     string   `json:"emoji,omitempty"`
	Typing    bool     `json:"typing,omitempty"`
}

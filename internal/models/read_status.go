package models

import "time"

// ReadStatus tracks the last-read timestamp per (user, conversation). Unread
// counts are derived from messages newer than LastReadAt, never stored.
type ReadStatus struct {
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	ClerkID        string    `db:"clerk_id" json:"clerk_id"`
	LastReadAt     time.Time `db:"last_read_at" json:"last_read_at"`
}

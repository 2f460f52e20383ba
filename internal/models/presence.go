package models

import "time"

// Presence is a per-user liveness row. Row absence means offline; a row older
// than the threshold is offline even if the sweeper has not removed it yet.
type Presence struct {
	ClerkID    string    `db:"clerk_id" json:"clerk_id"`
	LastSeenAt time.Time `db:"last_seen_at" json:"last_seen_at"`
}

// Online derives liveness purely from (now, lastSeenAt, threshold). The
// background sweep only reclaims storage; it is never the source of truth.
func (p Presence) Online(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastSeenAt) < threshold
}

// Typing is a per-(user, conversation) ephemeral signal with the same
// read-time liveness pattern as Presence but a much shorter window and no
// background sweep.
type Typing struct {
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	ClerkID        string    `db:"clerk_id" json:"clerk_id"`
	TypingAt       time.Time `db:"typing_at" json:"typing_at"`
}

// Active reports whether the typing signal is still fresh at read time.
func (t Typing) Active(now time.Time, ttl time.Duration) bool {
	return now.Sub(t.TypingAt) < ttl
}

package models

import (
	"sort"
	"strings"
	"time"
)

// MaxGroupMembers bounds a group roster, creator included.
const MaxGroupMembers = 50

// Conversation is either a direct pair or a group. Membership lives solely in
// the conversation_members join table; IsGroup is the discriminant. DirectKey
// canonicalizes the unordered participant pair for direct conversations so a
// pair can never map to two rows.
type Conversation struct {
	ID              int64      `db:"id" json:"id"`
	IsGroup         bool       `db:"is_group" json:"is_group"`
	GroupName       *string    `db:"group_name" json:"group_name,omitempty"`
	DirectKey       *string    `db:"direct_key" json:"-"`
	LastMessageText *string    `db:"last_message_text" json:"last_message_text,omitempty"`
	LastMessageAt   *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// ConversationSummary is the enriched list/detail view of a conversation.
type ConversationSummary struct {
	ID              int64           `json:"id"`
	IsGroup         bool            `json:"is_group"`
	GroupName       *string         `json:"group_name,omitempty"`
	MemberCount     int             `json:"member_count"`
	OtherUser       *PublicProfile  `json:"other_user,omitempty"`
	Members         []PublicProfile `json:"members,omitempty"`
	LastMessageText *string         `json:"last_message_text,omitempty"`
	LastMessageAt   *time.Time      `json:"last_message_at,omitempty"`
}

// Member is a row of the conversation membership join table.
type Member struct {
	ConversationID int64  `db:"conversation_id" json:"conversation_id"`
	ClerkID        string `db:"clerk_id" json:"clerk_id"`
}

// DirectKey builds the canonical key for an unordered pair of clerk ids, so
// (A,B) and (B,A) resolve to the same conversation row.
func DirectKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

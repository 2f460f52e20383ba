package models

import "fmt"

// Emoji is the closed set of reaction emojis. Modeled as a named type rather
// than a free string so rendering and validation stay exhaustive.
type Emoji string

const (
	EmojiThumbsUp Emoji = "thumbsup"
	EmojiHeart    Emoji = "heart"
	EmojiLaugh    Emoji = "laugh"
	EmojiSad      Emoji = "sad"
	EmojiAngry    Emoji = "angry"
)

// AllEmojis lists the closed set in display order.
var AllEmojis = []Emoji{EmojiThumbsUp, EmojiHeart, EmojiLaugh, EmojiSad, EmojiAngry}

var emojiGlyphs = map[Emoji]string{
	EmojiThumbsUp: "👍",
	EmojiHeart:    "❤️",
	EmojiLaugh:    "😂",
	EmojiSad:      "😢",
	EmojiAngry:    "😠",
}

// ParseEmoji validates a wire value against the closed set.
func ParseEmoji(raw string) (Emoji, error) {
	e := Emoji(raw)
	if _, ok := emojiGlyphs[e]; !ok {
		return "", fmt.Errorf("unknown emoji %q", raw)
	}
	return e, nil
}

// Glyph returns the display character for the emoji.
func (e Emoji) Glyph() string {
	if glyph, ok := emojiGlyphs[e]; ok {
		return glyph
	}
	return string(e)
}

// Reaction is a per-(message, user, emoji) row. A user holds at most one row
// per emoji on a message but may hold several distinct emojis at once.
type Reaction struct {
	ID        int64  `db:"id" json:"id"`
	MessageID int64  `db:"message_id" json:"message_id"`
	ClerkID   string `db:"clerk_id" json:"clerk_id"`
	Emoji     Emoji  `db:"emoji" json:"emoji"`
}

// ReactionSummary is the aggregated per-emoji view for one message.
type ReactionSummary struct {
	Emoji       Emoji `json:"emoji"`
	Count       int   `json:"count"`
	UserReacted bool  `json:"user_reacted"`
}

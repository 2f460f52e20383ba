package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectKeyOrderIndependent(t *testing.T) {
	assert.Equal(t, DirectKey("user_a", "user_b"), DirectKey("user_b", "user_a"))
	assert.Equal(t, "user_a:user_b", DirectKey("user_b", "user_a"))
}

func TestDirectKeyDistinctPairs(t *testing.T) {
	assert.NotEqual(t, DirectKey("user_a", "user_b"), DirectKey("user_a", "user_c"))
}

func TestParseEmoji(t *testing.T) {
	for _, e := range AllEmojis {
		parsed, err := ParseEmoji(string(e))
		require.NoError(t, err)
		assert.Equal(t, e, parsed)
	}

	_, err := ParseEmoji("sparkles")
	assert.Error(t, err)
	_, err = ParseEmoji("")
	assert.Error(t, err)
}

func TestEmojiGlyph(t *testing.T) {
	assert.Equal(t, "👍", EmojiThumbsUp.Glyph())
	assert.Equal(t, "❤️", EmojiHeart.Glyph())
	assert.Equal(t, "😂", EmojiLaugh.Glyph())
	assert.Equal(t, "😢", EmojiSad.Glyph())
	assert.Equal(t, "😠", EmojiAngry.Glyph())
}

func TestPresenceOnline(t *testing.T) {
	now := time.Now()
	threshold := 20 * time.Second

	fresh := Presence{ClerkID: "user_a", LastSeenAt: now.Add(-5 * time.Second)}
	assert.True(t, fresh.Online(now, threshold))

	stale := Presence{ClerkID: "user_a", LastSeenAt: now.Add(-threshold)}
	assert.False(t, stale.Online(now, threshold))
}

func TestTypingActive(t *testing.T) {
	now := time.Now()
	ttl := 3 * time.Second

	assert.True(t, Typing{TypingAt: now.Add(-time.Second)}.Active(now, ttl))
	assert.False(t, Typing{TypingAt: now.Add(-ttl)}.Active(now, ttl))
}

func TestMessageDeleted(t *testing.T) {
	assert.False(t, Message{}.Deleted())

	deletedAt := time.Now()
	assert.True(t, Message{DeletedAt: &deletedAt}.Deleted())
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
	"messenger-service/internal/ws"
)

// TypingHandler manages the typing tracker endpoints. Unlike presence there
// is no sweep: freshness is evaluated against the TTL by every reader, and
// stale rows simply wait to be overwritten or cleared.
type TypingHandler struct {
	typingRepo repositories.TypingRepository
	hub        *ws.Hub
	ttl        time.Duration
}

// NewTypingHandler builds a TypingHandler.
func NewTypingHandler(typingRepo repositories.TypingRepository, hub *ws.Hub, ttl time.Duration) *TypingHandler {
	return &TypingHandler{typingRepo: typingRepo, hub: hub, ttl: ttl}
}

// SetTyping refreshes the caller's typing signal for a conversation.
// Anonymous calls are no-ops. Clients debounce keystrokes and schedule an
// explicit clear; the TTL is only the fallback for clients that vanish.
func (h *TypingHandler) SetTyping(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id")
	if !ok {
		return
	}

	clerkID := clerkIDFromContext(c)
	if clerkID == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.typingRepo.Set(c.Request.Context(), conversationID, clerkID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record typing"})
		return
	}

	h.hub.BroadcastTyping(conversationID, clerkID, true)
	c.Status(http.StatusNoContent)
}

// ClearTyping removes the caller's typing signal outright. Anonymous calls
// are no-ops.
func (h *TypingHandler) ClearTyping(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id")
	if !ok {
		return
	}

	clerkID := clerkIDFromContext(c)
	if clerkID == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.typingRepo.Clear(c.Request.Context(), conversationID, clerkID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear typing"})
		return
	}

	h.hub.BroadcastTyping(conversationID, clerkID, false)
	c.Status(http.StatusNoContent)
}

// WhoIsTyping lists users with a fresh typing signal in the conversation,
// excluding the caller when authenticated. Public.
func (h *TypingHandler) WhoIsTyping(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id")
	if !ok {
		return
	}

	rows, err := h.typingRepo.ListForConversation(c.Request.Context(), conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load typing"})
		return
	}

	clerkID := clerkIDFromContext(c)
	now := time.Now()
	typing := make([]string, 0, len(rows))
	for _, t := range rows {
		if t.ClerkID != clerkID && t.Active(now, h.ttl) {
			typing = append(typing, t.ClerkID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"typing": typing})
}

// TypingConversations returns the conversations where someone other than the
// caller is actively typing, for sidebar indicators.
func (h *TypingHandler) TypingConversations(c *gin.Context) {
	rows, err := h.typingRepo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load typing"})
		return
	}

	clerkID := clerkIDFromContext(c)
	now := time.Now()
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(rows))
	for _, t := range rows {
		if t.ClerkID == clerkID || !t.Active(now, h.ttl) {
			continue
		}
		if _, dup := seen[t.ConversationID]; dup {
			continue
		}
		seen[t.ConversationID] = struct{}{}
		ids = append(ids, t.ConversationID)
	}

	c.JSON(http.StatusOK, gin.H{"conversation_ids": ids})
}

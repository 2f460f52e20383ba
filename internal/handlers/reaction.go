package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
	"messenger-service/internal/ws"
)

// ReactionHandler toggles and aggregates message reactions.
type ReactionHandler struct {
	msgRepo      repositories.MessageRepository
	reactionRepo repositories.ReactionRepository
	hub          *ws.Hub
}

// NewReactionHandler builds a ReactionHandler.
func NewReactionHandler(msgRepo repositories.MessageRepository, reactionRepo repositories.ReactionRepository, hub *ws.Hub) *ReactionHandler {
	return &ReactionHandler{msgRepo: msgRepo, reactionRepo: reactionRepo, hub: hub}
}

type toggleReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

// Toggle adds the caller's reaction to a message, or removes it when the same
// (emoji, user) pair already exists.
func (h *ReactionHandler) Toggle(c *gin.Context) {
	messageID, ok := parseID(c, "message_id")
	if !ok {
		return
	}

	var req toggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "emoji is required"})
		return
	}
	emoji, err := models.ParseEmoji(req.Emoji)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown emoji"})
		return
	}

	clerkID := clerkIDFromContext(c)

	// Fetch first so unknown messages 404 before the toggle, and so the
	// broadcast knows which room to target.
	msg, err := h.msgRepo.Get(c.Request.Context(), messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load message"})
		return
	}

	added, err := h.reactionRepo.Toggle(c.Request.Context(), messageID, clerkID, emoji)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not toggle reaction"})
		return
	}

	observability.IncReactionToggled(added)
	h.hub.BroadcastReaction(msg.ConversationID, messageID, clerkID, emoji)
	c.JSON(http.StatusOK, gin.H{"added": added})
}

type reactionQueryRequest struct {
	MessageIDs []int64 `json:"message_ids" binding:"required"`
}

// GetForMessages returns per-emoji counts for a batch of messages, with a
// user_reacted flag from the caller's perspective. Messages without reactions
// are absent from the map; present emojis keep a stable display order.
func (h *ReactionHandler) GetForMessages(c *gin.Context) {
	var req reactionQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message_ids is required"})
		return
	}

	rows, err := h.reactionRepo.ForMessages(c.Request.Context(), req.MessageIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load reactions"})
		return
	}

	clerkID := clerkIDFromContext(c)

	type key struct {
		messageID int64
		emoji     models.Emoji
	}
	counts := make(map[key]*models.ReactionSummary)
	for _, r := range rows {
		k := key{r.MessageID, r.Emoji}
		s, ok := counts[k]
		if !ok {
			s = &models.ReactionSummary{Emoji: r.Emoji}
			counts[k] = s
		}
		s.Count++
		if r.ClerkID == clerkID {
			s.UserReacted = true
		}
	}

	result := make(map[int64][]models.ReactionSummary, len(req.MessageIDs))
	for _, id := range req.MessageIDs {
		var summaries []models.ReactionSummary
		for _, e := range models.AllEmojis {
			if s, ok := counts[key{id, e}]; ok {
				summaries = append(summaries, *s)
			}
		}
		if len(summaries) > 0 {
			result[id] = summaries
		}
	}

	c.JSON(http.StatusOK, gin.H{"reactions": result})
}

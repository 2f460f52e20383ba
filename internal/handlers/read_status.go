package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
)

// ReadStatusHandler marks conversations read and reports unread counts.
type ReadStatusHandler struct {
	readRepo repositories.ReadStatusRepository
}

// NewReadStatusHandler builds a ReadStatusHandler.
func NewReadStatusHandler(readRepo repositories.ReadStatusRepository) *ReadStatusHandler {
	return &ReadStatusHandler{readRepo: readRepo}
}

// MarkRead stamps the caller's last-read mark for a conversation at now.
// Idempotent; repeated calls just advance the mark.
func (h *ReadStatusHandler) MarkRead(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id")
	if !ok {
		return
	}

	clerkID := clerkIDFromContext(c)
	if err := h.readRepo.MarkRead(c.Request.Context(), conversationID, clerkID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark read"})
		return
	}
	c.Status(http.StatusNoContent)
}

// UnreadCounts returns the caller's per-conversation unread counts. Only
// conversations with at least one unread message appear.
func (h *ReadStatusHandler) UnreadCounts(c *gin.Context) {
	clerkID := clerkIDFromContext(c)
	counts, err := h.readRepo.UnreadCounts(c.Request.Context(), clerkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load unread counts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

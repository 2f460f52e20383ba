package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/ws"
)

// MessageHandler manages the message store endpoints.
type MessageHandler struct {
	convRepo repositories.ConversationRepository
	msgRepo  repositories.MessageRepository
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{convRepo: convRepo, msgRepo: msgRepo, hub: hub, audit: audit}
}

// Send stores a message and broadcasts it to the conversation's subscribers.
// Empty text is rejected here rather than trusting callers to trim.
func (h *MessageHandler) Send(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message text is required"})
		return
	}

	clerkID := clerkIDFromContext(c)
	if !h.requireMembership(c, conversationID, clerkID) {
		return
	}

	msg, err := h.msgRepo.Create(c.Request.Context(), conversationID, clerkID, text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store message"})
		return
	}

	observability.IncMessageSent()
	h.hub.BroadcastMessage(conversationID, msg)
	c.JSON(http.StatusCreated, msg)
}

// List returns all messages of a conversation ascending by creation time.
// Soft-deleted rows come back with deleted_at set; hiding them is up to the
// caller.
func (h *MessageHandler) List(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id")
	if !ok {
		return
	}

	if !h.requireMembership(c, conversationID, clerkIDFromContext(c)) {
		return
	}

	msgs, err := h.msgRepo.ListForConversation(c.Request.Context(), conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Delete soft-deletes a message, sender only. The text is retained and the
// conversation preview is rewritten when the deleted message was the latest.
func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, ok := parseID(c, "message_id")
	if !ok {
		return
	}

	clerkID := clerkIDFromContext(c)
	msg, err := h.msgRepo.Get(c.Request.Context(), messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load message"})
		return
	}
	if msg.SenderClerkID != clerkID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can delete a message"})
		return
	}

	if _, err := h.msgRepo.SoftDelete(c.Request.Context(), messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "message deleted", requestIDFromContext(c), clerkIDPointer(c))
	h.hub.BroadcastDeletion(msg.ConversationID, messageID)
	c.Status(http.StatusNoContent)
}

// requireMembership resolves the conversation and verifies the caller is a
// member, writing 404/403 responses itself.
func (h *MessageHandler) requireMembership(c *gin.Context, conversationID int64, clerkID string) bool {
	if _, err := h.convRepo.GetByID(c.Request.Context(), conversationID); err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load conversation"})
		return false
	}

	member, err := h.convRepo.IsMember(c.Request.Context(), conversationID, clerkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify membership"})
		return false
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation member"})
		return false
	}
	return true
}

package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
)

// Other members shown inline per conversation in listings.
const maxInlineMembers = 5

// ConversationHandler manages the conversation directory endpoints.
type ConversationHandler struct {
	convRepo repositories.ConversationRepository
	userRepo repositories.UserRepository
	audit    *telemetry.AuditEmitter
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(convRepo repositories.ConversationRepository, userRepo repositories.UserRepository, audit *telemetry.AuditEmitter) *ConversationHandler {
	return &ConversationHandler{convRepo: convRepo, userRepo: userRepo, audit: audit}
}

// StartDirect returns the direct conversation for the caller and the given
// user, creating it when absent.
func (h *ConversationHandler) StartDirect(c *gin.Context) {
	var req struct {
		OtherClerkID string `json:"other_clerk_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clerkID := clerkIDFromContext(c)
	if clerkID == req.OtherClerkID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
		return
	}

	conv, err := h.convRepo.GetOrCreateDirect(c.Request.Context(), clerkID, req.OtherClerkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID})
}

// CreateGroup validates and creates a group conversation.
func (h *ConversationHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name           string   `json:"name" binding:"required"`
		MemberClerkIDs []string `json:"member_clerk_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group name is required"})
		return
	}

	clerkID := clerkIDFromContext(c)
	memberSet := map[string]struct{}{clerkID: {}}
	for _, id := range req.MemberClerkIDs {
		memberSet[id] = struct{}{}
	}
	if len(memberSet)-1 < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a group needs at least 2 other members"})
		return
	}
	if len(memberSet) > models.MaxGroupMembers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group exceeds the member limit"})
		return
	}

	members := make([]string, 0, len(memberSet))
	for id := range memberSet {
		members = append(members, id)
	}
	sort.Strings(members)

	missing, err := h.userRepo.MissingClerkIDs(c.Request.Context(), members)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not validate members"})
		return
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown members", "missing": missing})
		return
	}

	conv, err := h.convRepo.CreateGroup(c.Request.Context(), name, members)
	if err != nil {
		h.emitAudit(c, "ERROR", "group creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}

	h.emitAudit(c, "INFO", "group created")
	c.JSON(http.StatusCreated, gin.H{"conversation_id": conv.ID})
}

// List returns the caller's conversations, most recently active first,
// enriched with member profiles.
func (h *ConversationHandler) List(c *gin.Context) {
	clerkID := clerkIDFromContext(c)

	convs, err := h.convRepo.ListForUser(c.Request.Context(), clerkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load conversations"})
		return
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary, ok, err := h.summarize(c, conv, clerkID, false)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load conversations"})
			return
		}
		if !ok {
			// Direct conversation whose other side has no user row;
			// never shown rather than crashing the listing.
			continue
		}
		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// GetByID returns one enriched conversation, membership required.
func (h *ConversationHandler) GetByID(c *gin.Context) {
	conversationID, ok := parseID(c, "conversation_id")
	if !ok {
		return
	}

	clerkID := clerkIDFromContext(c)
	conv, err := h.convRepo.GetByID(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load conversation"})
		return
	}

	member, err := h.convRepo.IsMember(c.Request.Context(), conversationID, clerkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation member"})
		return
	}

	summary, _, err := h.summarize(c, conv, clerkID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load conversation"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// summarize enriches a conversation with member profiles. For a direct
// conversation whose other participant has no user row, ok is false when
// keepUnknown is false; with keepUnknown true a placeholder profile is
// returned instead (detail view keeps working for dangling pairs).
func (h *ConversationHandler) summarize(c *gin.Context, conv models.Conversation, clerkID string, keepUnknown bool) (models.ConversationSummary, bool, error) {
	members, err := h.convRepo.ListMembers(c.Request.Context(), conv.ID)
	if err != nil {
		return models.ConversationSummary{}, false, err
	}

	others := make([]string, 0, len(members))
	for _, id := range members {
		if id != clerkID {
			others = append(others, id)
		}
	}

	inline := others
	if len(inline) > maxInlineMembers {
		inline = inline[:maxInlineMembers]
	}

	profiles, err := h.userRepo.ByClerkIDs(c.Request.Context(), inline)
	if err != nil {
		return models.ConversationSummary{}, false, err
	}

	summary := models.ConversationSummary{
		ID:              conv.ID,
		IsGroup:         conv.IsGroup,
		GroupName:       conv.GroupName,
		MemberCount:     len(members),
		LastMessageText: conv.LastMessageText,
		LastMessageAt:   conv.LastMessageAt,
	}

	if !conv.IsGroup {
		if len(others) == 0 {
			return models.ConversationSummary{}, false, nil
		}
		otherID := others[0]
		user, found := profiles[otherID]
		if !found {
			if !keepUnknown {
				return models.ConversationSummary{}, false, nil
			}
			summary.OtherUser = &models.PublicProfile{ClerkID: otherID, Name: "Unknown"}
			return summary, true, nil
		}
		profile := user.Public()
		summary.OtherUser = &profile
		return summary, true, nil
	}

	summary.Members = make([]models.PublicProfile, 0, len(inline))
	for _, id := range inline {
		if user, found := profiles[id]; found {
			summary.Members = append(summary.Members, user.Public())
		}
	}
	return summary, true, nil
}

func (h *ConversationHandler) emitAudit(c *gin.Context, level, text string) {
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), clerkIDPointer(c))
}

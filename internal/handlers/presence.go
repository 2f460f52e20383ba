package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
)

// PresenceHandler manages the presence tracker endpoints. Liveness is always
// derived at read time from the threshold; the background sweeper only
// reclaims rows.
type PresenceHandler struct {
	presenceRepo repositories.PresenceRepository
	threshold    time.Duration
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(presenceRepo repositories.PresenceRepository, threshold time.Duration) *PresenceHandler {
	return &PresenceHandler{presenceRepo: presenceRepo, threshold: threshold}
}

// Heartbeat refreshes the caller's liveness row. Anonymous calls are no-ops.
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	clerkID := clerkIDFromContext(c)
	if clerkID == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.presenceRepo.Heartbeat(c.Request.Context(), clerkID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record heartbeat"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GoOffline deletes the caller's liveness row immediately, for tab-hide and
// navigate-away. Anonymous calls are no-ops.
func (h *PresenceHandler) GoOffline(c *gin.Context) {
	clerkID := clerkIDFromContext(c)
	if clerkID == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.presenceRepo.GoOffline(c.Request.Context(), clerkID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not go offline"})
		return
	}

	c.Status(http.StatusNoContent)
}

// IsOnline reports one user's liveness, threshold-checked even when the
// sweeper has not caught up yet. Public.
func (h *PresenceHandler) IsOnline(c *gin.Context) {
	clerkID := c.Param("clerk_id")

	p, err := h.presenceRepo.Get(c.Request.Context(), clerkID)
	if err != nil {
		if errors.Is(err, repositories.ErrPresenceNotFound) {
			c.JSON(http.StatusOK, gin.H{"clerk_id": clerkID, "online": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load presence"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clerk_id": clerkID, "online": p.Online(time.Now(), h.threshold)})
}

// OnlineUsers returns the ids of users with a fresh liveness row. Public.
func (h *PresenceHandler) OnlineUsers(c *gin.Context) {
	rows, err := h.presenceRepo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load presence"})
		return
	}

	now := time.Now()
	online := make([]string, 0, len(rows))
	for _, p := range rows {
		if p.Online(now, h.threshold) {
			online = append(online, p.ClerkID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"online": online})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/repositories"
)

// UserHandler manages the identity bridge endpoints.
type UserHandler struct {
	userRepo repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// SyncUser upserts the caller's profile on sign-in. Keyed on the verified
// identity, so repeated calls with the same arguments change nothing.
func (h *UserHandler) SyncUser(c *gin.Context) {
	var req struct {
		Email    string  `json:"email" binding:"required"`
		Name     string  `json:"name" binding:"required"`
		ImageURL *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.Upsert(c.Request.Context(), clerkIDFromContext(c), req.Email, req.Name, req.ImageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sync user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile patches the caller's name and/or avatar.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name         *string `json:"name"`
		ImageURL     *string `json:"image_url"`
		RemoveAvatar bool    `json:"remove_avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.UpdateProfile(c.Request.Context(), clerkIDFromContext(c), req.Name, req.ImageURL, req.RemoveAvatar)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetByClerkID returns one user profile. Public.
func (h *UserHandler) GetByClerkID(c *gin.Context) {
	user, err := h.userRepo.GetByClerkID(c.Request.Context(), c.Param("clerk_id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers returns every profile, for discovery. Public.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

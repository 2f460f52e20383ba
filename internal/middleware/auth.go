package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/auth"
)

// ClerkIDKey is the gin context key holding the verified identity id.
const ClerkIDKey = "clerkID"

// RequireAuth validates the Authorization header and aborts with 401 when no
// verified identity is attached to the call.
func RequireAuth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		clerkID, ok := verify(c, verifier)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		c.Set(ClerkIDKey, clerkID)
		c.Next()
	}
}

// OptionalAuth resolves the identity when a valid token is present and passes
// the request through either way. Handlers behind it decide what an anonymous
// call means (presence and typing mutations are defined as no-ops).
func OptionalAuth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if clerkID, ok := verify(c, verifier); ok {
			c.Set(ClerkIDKey, clerkID)
		}
		c.Next()
	}
}

func verify(c *gin.Context, verifier auth.Verifier) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	clerkID, err := verifier.Verify(c.Request.Context(), parts[1])
	if err != nil || clerkID == "" {
		return "", false
	}
	return clerkID, true
}

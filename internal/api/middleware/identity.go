package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OwnerKey is the context key holding the authenticated owner identity
const OwnerKey = "owner_id"

// Identity extracts the authenticated owner identity set by the upstream
// auth layer (X-User-ID header) and rejects requests without one.
// Authentication itself is handled by surrounding infrastructure.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetHeader("X-User-ID")
		if ownerID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			c.Abort()
			return
		}
		c.Set(OwnerKey, ownerID)
		c.Next()
	}
}

// Owner returns the owner identity stored by Identity
func Owner(c *gin.Context) string {
	return c.GetString(OwnerKey)
}

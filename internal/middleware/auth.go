package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mekelletech/recycle-golang/internal/auth"
	"github.com/mekelletech/recycle-golang/internal/models"
)

const identityKey = "identity"

// AuthMiddleware validates the Bearer token and stores the resulting
// Identity on the request context. Handlers downstream read it with
// GetIdentity and pass it explicitly into core operations.
func AuthMiddleware(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}

		ident, err := tm.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// SellerMiddleware gates seller-only routes. It must run after
// AuthMiddleware.
func SellerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := GetIdentity(c)
		if !ok || ident.Role != models.RoleSeller {
			c.JSON(http.StatusForbidden, gin.H{"error": "Seller account required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity returns the request identity set by AuthMiddleware.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	raw, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	ident, ok := raw.(auth.Identity)
	return ident, ok
}

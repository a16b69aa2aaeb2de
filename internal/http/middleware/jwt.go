package middleware

import (
	"net/http"
	"strings"

	"kanban_board/internal/service"

	"github.com/gin-gonic/gin"
)

// UserKey is the gin context key holding the caller name.
const UserKey = "user"

const anonymous = "anonymous"

// JWT reads a Bearer token and stores its subject under UserKey. Without
// required a missing token is let through as anonymous; a bad token is always
// rejected.
func JWT(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
				return
			}
			c.Set(UserKey, anonymous)
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}

		user, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// User returns the caller stored by JWT.
func User(c *gin.Context) string {
	if v, ok := c.Get(UserKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return anonymous
}

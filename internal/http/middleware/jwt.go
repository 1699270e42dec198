package middleware

import (
	"net/http"
	"strings"

	"idle_garage/internal/logger"
	"idle_garage/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT requires "Authorization: Bearer <token>" and stores the user id in the
// context under "user_id" (int64).
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		userID, err := service.ParseJWT(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user_id", userID)
		c.Request = c.Request.WithContext(logger.ContextWithUser(c.Request.Context(), userID))
		c.Next()
	}
}

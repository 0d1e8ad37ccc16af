package middleware

import (
	"github.com/gin-gonic/gin"
)

// RequireUser rejects guests. It must run after Authenticate.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			unauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

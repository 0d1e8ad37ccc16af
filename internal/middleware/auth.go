package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskverse/internal/models"
	"taskverse/internal/services"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	ParseToken(token string) (*services.Claims, error)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.Envelope{Result: models.ResultError, Error: msg})
}

// Authenticate resolves the caller from the Authorization header. A request
// without the header continues as a guest; a present but invalid token is
// rejected.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "Missing or invalid Authorization header")
			return
		}

		claims, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller, or "" for guests.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

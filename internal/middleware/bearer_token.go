package middleware

import (
	"net/http"
	"strings"

	"github.com/raakesh-m/autosendr-backend/internal/services/auth"

	"github.com/gin-gonic/gin"
)

type BearerTokenMiddleware struct {
	authService *auth.AuthService
}

func NewBearerTokenMiddleware(authService *auth.AuthService) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{authService: authService}
}

// BearerTokenAuthMiddleware validates the JWT access token and sets user info
// in the request context
func (m *BearerTokenMiddleware) BearerTokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		tokenInfo, err := m.authService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", tokenInfo.UserID)
		c.Set("username", tokenInfo.Username)
		c.Set("token_info", tokenInfo)

		c.Next()
	}
}

// OptionalBearerTokenMiddleware sets user info when a valid bearer token is
// present but never rejects the request. Used on routes that also accept a
// signed query token.
func (m *BearerTokenMiddleware) OptionalBearerTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenInfo, err := m.authService.ValidateToken(tokenString); err == nil {
				c.Set("user_id", tokenInfo.UserID)
				c.Set("username", tokenInfo.Username)
				c.Set("token_info", tokenInfo)
			}
		}
		c.Next()
	}
}

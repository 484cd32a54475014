package middleware

import (
	"errors"
	"strings"

	"github.com/akshayrajput12/chronical-sub004/internal/pkg/jwt"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const ContextKeyUserID = "user_id"

// Auth returns a middleware that enforces bearer-token authentication for
// admin routes. Editor accounts themselves are provisioned out of band.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := validateToken(extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// OptionalAuth sets the editor ID if a valid token is present, but does not
// block the request. Public handlers use it to decide whether unpublished
// content is visible.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := validateToken(extractToken(c)); err == nil && claims.UserID != "" {
			c.Set(ContextKeyUserID, claims.UserID)
		}
		c.Next()
	}
}

// CurrentUserID extracts the authenticated editor ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request carries a valid token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func validateToken(rawToken string) (*jwt.Claims, error) {
	if rawToken == "" {
		return nil, errors.New("token is required")
	}
	return jwt.Parse(rawToken)
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return normalizeToken(auth)
	}
	return normalizeToken(c.Query("token"))
}

func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipebox/internal/types"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID      = "user_id"
	ContextEmail       = "email"
	ContextSessionType = "session_type"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens.
// "Authorization: Bearer " with an empty token is rejected like a missing header.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, types.CodeUnauthorized, "missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			abortWithError(c, http.StatusUnauthorized, types.CodeUnauthorized, "invalid authorization header format")
			return
		}

		token = strings.TrimSpace(token)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, types.CodeUnauthorized, "missing access token")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, types.CodeUnauthorized, "invalid or expired token")
			return
		}

		// Store user info in context
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextSessionType, claims.SessionType)
		c.Next()
	}
}

// UserID returns the authenticated user's id
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

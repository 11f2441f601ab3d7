package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes carried in the "purpose" claim
const (
	PurposeAccess   = "access"
	PurposeRefresh  = "refresh"
	PurposeRecovery = "recovery"
)

// TokenClaims represents the claims in a JWT token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	Purpose string    `json:"purpose"`
	// SessionType is "recovery" for sessions opened from a recovery link
	SessionType string `json:"session_type,omitempty"`
}

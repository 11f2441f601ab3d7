package types

import "time"

// Session types issued by the auth endpoints
const (
	SessionPassword = "password"
	SessionRecovery = "recovery"
)

// User is the identity attached to a session
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is what the auth endpoints hand back after a successful sign-in
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
	Type         string    `json:"type"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

// Credentials is the body of POST /auth/signup and /auth/token
type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RecoverRequest is the body of POST /auth/recover
type RecoverRequest struct {
	Email      string `json:"email" binding:"required"`
	RedirectTo string `json:"redirectTo"`
}

// VerifyRequest is the body of POST /auth/verify
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// UpdateUserRequest is the body of PUT /auth/user
type UpdateUserRequest struct {
	Password string `json:"password" binding:"required"`
}

// SessionResponse is the envelope of the session-issuing auth endpoints
type SessionResponse struct {
	Envelope
	Session *Session `json:"session"`
}

// UserResponse is the envelope of GET/PUT /auth/user. PUT also carries the
// replacement session.
type UserResponse struct {
	Envelope
	User    *User    `json:"user"`
	Session *Session `json:"session,omitempty"`
}

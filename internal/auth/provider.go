// Package auth is the client side of the session provider: it signs users in
// against the API, persists the session and broadcasts lifecycle events.
package auth

import (
	"context"

	"github.com/pageza/recipebox/internal/types"
)

// EventType names a session lifecycle transition
type EventType string

const (
	EventInitialSession   EventType = "INITIAL_SESSION"
	EventSignedIn         EventType = "SIGNED_IN"
	EventSignedOut        EventType = "SIGNED_OUT"
	EventPasswordRecovery EventType = "PASSWORD_RECOVERY"
	EventTokenRefreshed   EventType = "TOKEN_REFRESHED"
	EventUserUpdated      EventType = "USER_UPDATED"
)

// Event is delivered to subscribers; Session is nil after sign-out
type Event struct {
	Type    EventType
	Session *types.Session
}

// Provider is the session provider consumed by the rest of the client
type Provider interface {
	// GetSession returns the current session, refreshing it when expired
	GetSession(ctx context.Context) (*types.Session, error)
	// AccessToken returns a usable token or "" when signed out
	AccessToken(ctx context.Context) string
	// Subscribe delivers INITIAL_SESSION first, then every later event.
	// The returned func stops delivery.
	Subscribe() (<-chan Event, func())

	SignUp(ctx context.Context, email, password string) (*types.Session, error)
	SignIn(ctx context.Context, email, password string) (*types.Session, error)
	SignOut(ctx context.Context) error
	Refresh(ctx context.Context) (*types.Session, error)
	UpdateUser(ctx context.Context, password string) (types.User, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	VerifyRecovery(ctx context.Context, token string) (*types.Session, error)
}

// SessionStore persists the session between runs
type SessionStore interface {
	Session() (*types.Session, error)
	SaveSession(*types.Session) error
}

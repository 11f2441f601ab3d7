package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pageza/recipebox/internal/client"
	"github.com/pageza/recipebox/internal/types"
)

// ErrNoSession is returned by operations that need a signed-in user
var ErrNoSession = errors.New("not signed in")

// refreshLeeway renews tokens slightly before they expire
const refreshLeeway = 30 * time.Second

type subscriber struct {
	ch   chan Event
	done chan struct{}
}

// HTTPProvider implements Provider against the /auth endpoints
type HTTPProvider struct {
	api   *client.Client
	store SessionStore
	now   func() time.Time

	mu      sync.Mutex
	session *types.Session

	subMu  sync.Mutex
	subs   map[int]*subscriber
	nextID int
}

var _ Provider = (*HTTPProvider)(nil)

// NewHTTPProvider loads any stored session from store
func NewHTTPProvider(baseURL string, store SessionStore, opts ...client.Option) (*HTTPProvider, error) {
	session, err := store.Session()
	if err != nil {
		return nil, err
	}
	p := &HTTPProvider{
		store:   store,
		now:     time.Now,
		session: session,
		subs:    make(map[int]*subscriber),
	}
	p.api = client.New(baseURL, client.TokenFunc(p.AccessToken), opts...)
	return p, nil
}

func (p *HTTPProvider) Subscribe() (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, 16), done: make(chan struct{})}

	p.mu.Lock()
	initial := copySession(p.session)
	p.mu.Unlock()
	sub.ch <- Event{Type: EventInitialSession, Session: initial}

	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = sub
	p.subMu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subs, id)
			p.subMu.Unlock()
			close(sub.done)
		})
	}
}

func (p *HTTPProvider) emit(eventType EventType, session *types.Session) {
	p.subMu.Lock()
	subs := make([]*subscriber, 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	p.subMu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- Event{Type: eventType, Session: copySession(session)}:
		case <-s.done:
		}
	}
}

func (p *HTTPProvider) setSession(session *types.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.SaveSession(session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	p.session = session
	return nil
}

func (p *HTTPProvider) GetSession(ctx context.Context) (*types.Session, error) {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return nil, nil
	}
	if !p.expiring(session) {
		return copySession(session), nil
	}
	return p.Refresh(ctx)
}

// AccessToken never fails; callers send whatever it returns and let the
// server reject a stale token.
func (p *HTTPProvider) AccessToken(ctx context.Context) string {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return ""
	}
	if !p.expiring(session) {
		return session.AccessToken
	}

	refreshed, err := p.Refresh(ctx)
	if err != nil {
		log.Printf("[Auth] token refresh failed: %v", err)
		return session.AccessToken
	}
	if refreshed == nil {
		return ""
	}
	return refreshed.AccessToken
}

func (p *HTTPProvider) expiring(s *types.Session) bool {
	return s.Expired(p.now().Add(refreshLeeway))
}

func (p *HTTPProvider) Refresh(ctx context.Context) (*types.Session, error) {
	p.mu.Lock()
	current := p.session
	p.mu.Unlock()
	if current == nil {
		return nil, ErrNoSession
	}

	session, err := p.api.RefreshSession(ctx, current.RefreshToken)
	if err != nil {
		if client.IsUnauthorized(err) {
			// the refresh token is gone for good
			if clearErr := p.setSession(nil); clearErr != nil {
				return nil, clearErr
			}
			p.emit(EventSignedOut, nil)
			return nil, nil
		}
		return nil, err
	}
	if err := p.setSession(session); err != nil {
		return nil, err
	}
	p.emit(EventTokenRefreshed, session)
	return copySession(session), nil
}

func (p *HTTPProvider) SignUp(ctx context.Context, email, password string) (*types.Session, error) {
	session, err := p.api.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return p.signedIn(session, EventSignedIn)
}

func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	session, err := p.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return p.signedIn(session, EventSignedIn)
}

// VerifyRecovery opens a recovery session from the emailed token
func (p *HTTPProvider) VerifyRecovery(ctx context.Context, token string) (*types.Session, error) {
	session, err := p.api.VerifyRecovery(ctx, token)
	if err != nil {
		return nil, err
	}
	return p.signedIn(session, EventPasswordRecovery)
}

func (p *HTTPProvider) signedIn(session *types.Session, eventType EventType) (*types.Session, error) {
	if err := p.setSession(session); err != nil {
		return nil, err
	}
	p.emit(eventType, session)
	return copySession(session), nil
}

// SignOut always clears the local session, even if the server call fails
func (p *HTTPProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	signedIn := p.session != nil
	p.mu.Unlock()

	if signedIn {
		if err := p.api.SignOut(ctx); err != nil {
			log.Printf("[Auth] server sign-out failed: %v", err)
		}
	}
	if err := p.setSession(nil); err != nil {
		return err
	}
	p.emit(EventSignedOut, nil)
	return nil
}

func (p *HTTPProvider) UpdateUser(ctx context.Context, password string) (types.User, error) {
	p.mu.Lock()
	signedIn := p.session != nil
	p.mu.Unlock()
	if !signedIn {
		return types.User{}, ErrNoSession
	}

	user, fresh, err := p.api.UpdatePassword(ctx, password)
	if err != nil {
		return types.User{}, err
	}

	session := fresh
	if session == nil {
		p.mu.Lock()
		session = copySession(p.session)
		p.mu.Unlock()
		if session != nil {
			// a changed password ends recovery even without new tokens
			session.User = user
			session.Type = types.SessionPassword
		}
	}
	if session != nil {
		if err := p.setSession(session); err != nil {
			return types.User{}, err
		}
	}
	p.emit(EventUserUpdated, copySession(session))
	return user, nil
}

func (p *HTTPProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return p.api.RequestRecovery(ctx, email, redirectTo)
}

func copySession(s *types.Session) *types.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Package session holds who is signed in and their preferences, and reacts to
// auth provider events.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/muesli/termenv"

	"github.com/pageza/recipebox/internal/auth"
	"github.com/pageza/recipebox/internal/nav"
	"github.com/pageza/recipebox/internal/types"
)

type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type PreferencesAPI interface {
	GetPreferences(ctx context.Context) (*types.Preferences, error)
	UpdatePreferences(ctx context.Context, update types.UpdatePreferencesRequest) (*types.Preferences, error)
	UploadAvatar(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// ListCache is the identity-scoped recipe list
type ListCache interface {
	Refresh(ctx context.Context) error
	Clear()
}

// LocalData is identity-scoped state persisted on disk
type LocalData interface {
	ClearUserData() error
}

type Router interface {
	Navigate(nav.Route)
	Current() nav.Route
}

type Context struct {
	prefsAPI   PreferencesAPI
	list       ListCache
	local      LocalData
	router     Router
	detectDark func() bool

	// handling serialises event processing
	handling sync.Mutex

	mu          sync.RWMutex
	state       State
	user        *types.User
	sessionType string
	prefs       types.Preferences
	prefsFor    string
	theme       types.Theme
}

type Option func(*Context)

// WithDarkDetector replaces the terminal background probe
func WithDarkDetector(f func() bool) Option {
	return func(c *Context) {
		c.detectDark = f
	}
}

func New(prefsAPI PreferencesAPI, list ListCache, local LocalData, router Router, opts ...Option) *Context {
	c := &Context{
		prefsAPI:   prefsAPI,
		list:       list,
		local:      local,
		router:     router,
		detectDark: termenv.HasDarkBackground,
		theme:      types.ThemeLight,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run handles events until the channel closes or ctx is done
func (c *Context) Run(ctx context.Context, events <-chan auth.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.Handle(ctx, ev)
		}
	}
}

// Handle applies one auth event
func (c *Context) Handle(ctx context.Context, ev auth.Event) {
	c.handling.Lock()
	defer c.handling.Unlock()

	log.Printf("[Session] %s", ev.Type)
	switch ev.Type {
	case auth.EventInitialSession:
		if ev.Session == nil {
			c.signedOut(false)
			return
		}
		c.authenticate(ctx, ev.Session)
		switch {
		case ev.Session.Type == types.SessionRecovery:
			c.router.Navigate(nav.RouteChangePassword)
		case c.router.Current() == nav.RouteLogin || c.router.Current() == "":
			c.router.Navigate(nav.RouteImport)
		default:
			c.router.Navigate(c.router.Current())
		}

	case auth.EventSignedIn:
		if ev.Session == nil {
			return
		}
		c.authenticate(ctx, ev.Session)
		c.router.Navigate(nav.RouteImport)

	case auth.EventPasswordRecovery:
		if ev.Session != nil {
			c.authenticate(ctx, ev.Session)
		}
		c.router.Navigate(nav.RouteChangePassword)

	case auth.EventTokenRefreshed:
		if ev.Session != nil {
			c.authenticate(ctx, ev.Session)
		}

	case auth.EventUserUpdated:
		if ev.Session != nil {
			c.authenticate(ctx, ev.Session)
		}
		if c.router.Current() == nav.RouteChangePassword {
			c.router.Navigate(nav.RouteImport)
		}

	case auth.EventSignedOut:
		c.signedOut(true)

	default:
		log.Printf("[Session] ignoring unknown event %q", ev.Type)
	}
}

// authenticate loads preferences and the recipe list only when the identity
// changes.
func (c *Context) authenticate(ctx context.Context, s *types.Session) {
	user := s.User

	c.mu.Lock()
	c.state = StateAuthenticated
	c.user = &user
	c.sessionType = s.Type
	fresh := c.prefsFor != user.ID
	c.mu.Unlock()

	if !fresh {
		return
	}

	prefs := c.loadPreferences(ctx, user.ID)
	theme := ResolveTheme(prefs.Theme, c.detectDark)

	c.mu.Lock()
	c.prefs = prefs
	c.prefsFor = user.ID
	c.theme = theme
	c.mu.Unlock()

	if c.list != nil {
		if err := c.list.Refresh(ctx); err != nil {
			log.Printf("[Session] initial recipe list load failed: %v", err)
		}
	}
}

// loadPreferences never fails; the defaults stand in when the server cannot answer
func (c *Context) loadPreferences(ctx context.Context, userID string) types.Preferences {
	prefs, err := c.prefsAPI.GetPreferences(ctx)
	if err != nil {
		log.Printf("[Session] failed to load preferences, using defaults: %v", err)
		return types.DefaultPreferences(userID)
	}
	if prefs == nil {
		return types.DefaultPreferences(userID)
	}
	if !prefs.Theme.Valid() {
		prefs.Theme = types.ThemeSystem
	}
	return *prefs
}

// signedOut clears every identity-scoped cache before showing the login screen
func (c *Context) signedOut(clearLocal bool) {
	c.mu.Lock()
	c.state = StateAnonymous
	c.user = nil
	c.sessionType = ""
	c.prefs = types.Preferences{}
	c.prefsFor = ""
	c.theme = ResolveTheme(types.ThemeSystem, c.detectDark)
	c.mu.Unlock()

	if c.list != nil {
		c.list.Clear()
	}
	if clearLocal && c.local != nil {
		if err := c.local.ClearUserData(); err != nil {
			log.Printf("[Session] failed to clear local data: %v", err)
		}
	}
	c.router.Navigate(nav.RouteLogin)
}

func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns nil unless authenticated
func (c *Context) User() *types.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// UserID is "" unless authenticated
func (c *Context) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

// InRecovery reports whether the session came from a recovery link
func (c *Context) InRecovery() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionType == types.SessionRecovery
}

func (c *Context) Preferences() types.Preferences {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefs
}

// Theme is the resolved colour scheme, never ThemeSystem
func (c *Context) Theme() types.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// UpdatePreferences saves the change and re-resolves the theme
func (c *Context) UpdatePreferences(ctx context.Context, update types.UpdatePreferencesRequest) (types.Preferences, error) {
	if c.State() != StateAuthenticated {
		return types.Preferences{}, auth.ErrNoSession
	}
	if update.Theme != nil && !update.Theme.Valid() {
		return types.Preferences{}, fmt.Errorf("invalid theme %q", *update.Theme)
	}

	saved, err := c.prefsAPI.UpdatePreferences(ctx, update)
	if err != nil {
		return types.Preferences{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if saved != nil {
		c.prefs = *saved
	}
	if update.Theme != nil {
		c.theme = ResolveTheme(c.prefs.Theme, c.detectDark)
	}
	return c.prefs, nil
}

// UploadAvatar replaces the avatar and records its URL in the preferences
func (c *Context) UploadAvatar(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if c.State() != StateAuthenticated {
		return "", auth.ErrNoSession
	}
	url, err := c.prefsAPI.UploadAvatar(ctx, filename, contentType, data)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.prefs.AvatarURL = &url
	c.mu.Unlock()
	return url, nil
}

// ResolveTheme maps ThemeSystem onto light or dark using isDark
func ResolveTheme(theme types.Theme, isDark func() bool) types.Theme {
	switch theme {
	case types.ThemeLight, types.ThemeDark:
		return theme
	}
	if isDark != nil && isDark() {
		return types.ThemeDark
	}
	return types.ThemeLight
}

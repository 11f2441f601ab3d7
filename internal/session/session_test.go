package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/internal/auth"
	"github.com/pageza/recipebox/internal/nav"
	"github.com/pageza/recipebox/internal/types"
)

type mockPrefsAPI struct {
	mock.Mock
}

func (m *mockPrefsAPI) GetPreferences(ctx context.Context) (*types.Preferences, error) {
	args := m.Called(ctx)
	prefs, _ := args.Get(0).(*types.Preferences)
	return prefs, args.Error(1)
}

func (m *mockPrefsAPI) UpdatePreferences(ctx context.Context, update types.UpdatePreferencesRequest) (*types.Preferences, error) {
	args := m.Called(ctx, update)
	prefs, _ := args.Get(0).(*types.Preferences)
	return prefs, args.Error(1)
}

func (m *mockPrefsAPI) UploadAvatar(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, filename, contentType, data)
	return args.String(0), args.Error(1)
}

// recorder notes the order in which identity-scoped state is cleared and the
// login screen is shown.
type recorder struct {
	steps        []string
	refreshCalls int
	route        nav.Route
}

func (r *recorder) Refresh(context.Context) error {
	r.refreshCalls++
	return nil
}

func (r *recorder) Clear() { r.steps = append(r.steps, "list") }

func (r *recorder) ClearUserData() error {
	r.steps = append(r.steps, "local")
	return nil
}

func (r *recorder) Navigate(route nav.Route) {
	r.route = route
	r.steps = append(r.steps, "navigate:"+string(route))
}

func (r *recorder) Current() nav.Route { return r.route }

func newContext(api *mockPrefsAPI, rec *recorder, dark bool) *Context {
	return New(api, rec, rec, rec, WithDarkDetector(func() bool { return dark }))
}

func session(userID, typ string) *types.Session {
	return &types.Session{AccessToken: "tok-" + userID, Type: typ, User: types.User{ID: userID, Email: userID + "@example.com"}}
}

func strPtr(s string) *string { return &s }

func TestInitialSessionWithoutUser(t *testing.T) {
	api := new(mockPrefsAPI)
	rec := &recorder{}
	c := newContext(api, rec, false)
	assert.Equal(t, StateUnknown, c.State())

	c.Handle(context.Background(), auth.Event{Type: auth.EventInitialSession})

	assert.Equal(t, StateAnonymous, c.State())
	assert.Equal(t, nav.RouteLogin, rec.route)
	assert.Empty(t, c.UserID())
	api.AssertNotCalled(t, "GetPreferences", mock.Anything)
}

func TestPreferencesLoadOncePerAuthentication(t *testing.T) {
	api := new(mockPrefsAPI)
	rec := &recorder{route: nav.RouteLogin}
	api.On("GetPreferences", mock.Anything).Return(&types.Preferences{UserID: "u1", Theme: types.ThemeDark, DisplayName: strPtr("Cook")}, nil).Once()

	c := newContext(api, rec, false)
	ctx := context.Background()
	c.Handle(ctx, auth.Event{Type: auth.EventSignedIn, Session: session("u1", types.SessionPassword)})
	c.Handle(ctx, auth.Event{Type: auth.EventTokenRefreshed, Session: session("u1", types.SessionPassword)})
	c.Handle(ctx, auth.Event{Type: auth.EventUserUpdated, Session: session("u1", types.SessionPassword)})

	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "u1", c.UserID())
	assert.Equal(t, "Cook", *c.Preferences().DisplayName)
	assert.Equal(t, types.ThemeDark, c.Theme())
	assert.Equal(t, nav.RouteImport, rec.route)
	assert.Equal(t, 1, rec.refreshCalls)
	api.AssertNumberOfCalls(t, "GetPreferences", 1)
}

func TestPreferencesFallBackToDefaults(t *testing.T) {
	tests := []struct {
		name  string
		prefs *types.Preferences
		err   error
	}{
		{"never saved", nil, nil},
		{"load failed", nil, errors.New("offline")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mockPrefsAPI)
			api.On("GetPreferences", mock.Anything).Return(tt.prefs, tt.err)
			c := newContext(api, &recorder{}, true)

			c.Handle(context.Background(), auth.Event{Type: auth.EventInitialSession, Session: session("u1", types.SessionPassword)})

			assert.Equal(t, StateAuthenticated, c.State())
			assert.Equal(t, types.DefaultPreferences("u1"), c.Preferences())
			// system resolves against the terminal
			assert.Equal(t, types.ThemeDark, c.Theme())
		})
	}
}

func TestSignedOutClearsBeforeLogin(t *testing.T) {
	api := new(mockPrefsAPI)
	api.On("GetPreferences", mock.Anything).Return(&types.Preferences{UserID: "u1", Theme: types.ThemeLight}, nil)
	rec := &recorder{}
	c := newContext(api, rec, false)
	ctx := context.Background()

	c.Handle(ctx, auth.Event{Type: auth.EventSignedIn, Session: session("u1", types.SessionPassword)})
	rec.steps = nil

	c.Handle(ctx, auth.Event{Type: auth.EventSignedOut})

	assert.Equal(t, []string{"list", "local", "navigate:login"}, rec.steps)
	assert.Equal(t, StateAnonymous, c.State())
	assert.Nil(t, c.User())
	assert.Equal(t, types.Preferences{}, c.Preferences())

	// signing in again reloads preferences
	c.Handle(ctx, auth.Event{Type: auth.EventSignedIn, Session: session("u1", types.SessionPassword)})
	api.AssertNumberOfCalls(t, "GetPreferences", 2)
}

func TestPasswordRecoveryOverridesRoute(t *testing.T) {
	api := new(mockPrefsAPI)
	api.On("GetPreferences", mock.Anything).Return(nil, nil)
	rec := &recorder{route: nav.RecipeRoute("r1")}
	c := newContext(api, rec, false)
	ctx := context.Background()

	c.Handle(ctx, auth.Event{Type: auth.EventPasswordRecovery, Session: session("u1", types.SessionRecovery)})
	assert.Equal(t, nav.RouteChangePassword, rec.route)
	assert.True(t, c.InRecovery())

	// the new password returns the user to the app
	c.Handle(ctx, auth.Event{Type: auth.EventUserUpdated, Session: session("u1", types.SessionRecovery)})
	assert.Equal(t, nav.RouteImport, rec.route)
}

func TestInitialRecoverySessionGoesToChangePassword(t *testing.T) {
	api := new(mockPrefsAPI)
	api.On("GetPreferences", mock.Anything).Return(nil, nil)
	rec := &recorder{route: nav.RouteSettings}
	c := newContext(api, rec, false)

	c.Handle(context.Background(), auth.Event{Type: auth.EventInitialSession, Session: session("u1", types.SessionRecovery)})
	assert.Equal(t, nav.RouteChangePassword, rec.route)
}

func TestInitialSessionKeepsRestoredRoute(t *testing.T) {
	api := new(mockPrefsAPI)
	api.On("GetPreferences", mock.Anything).Return(nil, nil)
	rec := &recorder{route: nav.RecipeRoute("r9")}
	c := newContext(api, rec, false)

	c.Handle(context.Background(), auth.Event{Type: auth.EventInitialSession, Session: session("u1", types.SessionPassword)})
	assert.Equal(t, nav.RecipeRoute("r9"), rec.route)
}

func TestThemeResolvedOnExplicitChangeOnly(t *testing.T) {
	api := new(mockPrefsAPI)
	api.On("GetPreferences", mock.Anything).Return(&types.Preferences{UserID: "u1", Theme: types.ThemeSystem}, nil)
	dark := false
	rec := &recorder{}
	c := New(api, rec, rec, rec, WithDarkDetector(func() bool { return dark }))
	ctx := context.Background()

	c.Handle(ctx, auth.Event{Type: auth.EventSignedIn, Session: session("u1", types.SessionPassword)})
	assert.Equal(t, types.ThemeLight, c.Theme())

	// the terminal changing is not observed until the next explicit change
	dark = true
	assert.Equal(t, types.ThemeLight, c.Theme())

	system := types.ThemeSystem
	api.On("UpdatePreferences", mock.Anything, types.UpdatePreferencesRequest{Theme: &system}).
		Return(&types.Preferences{UserID: "u1", Theme: types.ThemeSystem}, nil)
	_, err := c.UpdatePreferences(ctx, types.UpdatePreferencesRequest{Theme: &system})
	require.NoError(t, err)
	assert.Equal(t, types.ThemeDark, c.Theme())

	name := "Chef"
	api.On("UpdatePreferences", mock.Anything, types.UpdatePreferencesRequest{DisplayName: &name}).
		Return(&types.Preferences{UserID: "u1", Theme: types.ThemeSystem, DisplayName: &name}, nil)
	dark = false
	prefs, err := c.UpdatePreferences(ctx, types.UpdatePreferencesRequest{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Chef", *prefs.DisplayName)
	assert.Equal(t, types.ThemeDark, c.Theme())
}

func TestUpdatePreferencesRequiresSession(t *testing.T) {
	c := newContext(new(mockPrefsAPI), &recorder{}, false)
	_, err := c.UpdatePreferences(context.Background(), types.UpdatePreferencesRequest{})
	assert.ErrorIs(t, err, auth.ErrNoSession)

	_, err = c.UploadAvatar(context.Background(), "a.png", "image/png", nil)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestUploadAvatarUpdatesPreferences(t *testing.T) {
	api := new(mockPrefsAPI)
	api.On("GetPreferences", mock.Anything).Return(nil, nil)
	api.On("UploadAvatar", mock.Anything, "me.png", "image/png", []byte("png")).Return("https://cdn.test/u1/avatar.png", nil)
	c := newContext(api, &recorder{}, false)
	c.Handle(context.Background(), auth.Event{Type: auth.EventSignedIn, Session: session("u1", types.SessionPassword)})

	url, err := c.UploadAvatar(context.Background(), "me.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/u1/avatar.png", url)
	require.NotNil(t, c.Preferences().AvatarURL)
	assert.Equal(t, url, *c.Preferences().AvatarURL)
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	rec := &recorder{}
	c := newContext(new(mockPrefsAPI), rec, false)
	events := make(chan auth.Event, 1)
	events <- auth.Event{Type: auth.EventInitialSession}
	close(events)

	c.Run(context.Background(), events)
	assert.Equal(t, StateAnonymous, c.State())
}

func TestResolveTheme(t *testing.T) {
	assert.Equal(t, types.ThemeLight, ResolveTheme(types.ThemeLight, func() bool { return true }))
	assert.Equal(t, types.ThemeDark, ResolveTheme(types.ThemeDark, nil))
	assert.Equal(t, types.ThemeDark, ResolveTheme(types.ThemeSystem, func() bool { return true }))
	assert.Equal(t, types.ThemeLight, ResolveTheme(types.ThemeSystem, nil))
}

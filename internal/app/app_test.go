package app

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/internal/auth"
	"github.com/pageza/recipebox/internal/client"
	"github.com/pageza/recipebox/internal/importflow"
	"github.com/pageza/recipebox/internal/nav"
	"github.com/pageza/recipebox/internal/session"
	"github.com/pageza/recipebox/internal/types"
)

// fakeAPI is an in-memory recipe backend
type fakeAPI struct {
	mu        sync.Mutex
	recipes   map[string]types.Recipe
	nextID    int
	clock     time.Time
	creates   int
	updates   int
	extracted string
	prefs     *types.Preferences
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		recipes: make(map[string]types.Recipe),
		clock:   time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeAPI) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeAPI) ListRecipes(ctx context.Context) ([]types.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Recipe, 0, len(f.recipes))
	for _, r := range f.recipes {
		out = append(out, r)
	}
	// server order is by creation only
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAPI) GetRecipe(ctx context.Context, id string) (types.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[id]
	if !ok {
		return types.Recipe{}, &client.Error{Kind: client.KindBackend, Message: "Recipe not found", Status: 404}
	}
	return r, nil
}

func (f *fakeAPI) CreateRecipe(ctx context.Context, markdown string, isPublic bool) (types.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.nextID++
	r := types.Recipe{ID: "r" + strconv.Itoa(f.nextID), UserID: "u1", RecipeMarkdown: markdown, IsPublic: isPublic, CreatedAt: f.tick()}
	f.recipes[r.ID] = r
	return r, nil
}

func (f *fakeAPI) UpdateRecipe(ctx context.Context, id string, update types.UpdateRecipeRequest) (types.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	r, ok := f.recipes[id]
	if !ok {
		return types.Recipe{}, &client.Error{Kind: client.KindBackend, Message: "Recipe not found", Status: 404}
	}
	if update.RecipeMarkdown != nil {
		r.RecipeMarkdown = *update.RecipeMarkdown
	}
	now := f.tick()
	r.UpdatedAt = &now
	f.recipes[id] = r
	return r, nil
}

func (f *fakeAPI) DeleteRecipe(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[id]; !ok {
		return &client.Error{Kind: client.KindBackend, Message: "Recipe not found", Status: 404}
	}
	delete(f.recipes, id)
	return nil
}

func (f *fakeAPI) ImportFromImages(ctx context.Context, files []client.ImageFile) (string, error) {
	return f.extracted, nil
}

func (f *fakeAPI) ImportFromText(ctx context.Context, text string) (string, error) {
	if f.extracted == "" {
		return "", errors.New("Failed to process recipe")
	}
	return f.extracted, nil
}

func (f *fakeAPI) GetPreferences(ctx context.Context) (*types.Preferences, error) {
	return f.prefs, nil
}

func (f *fakeAPI) UpdatePreferences(ctx context.Context, update types.UpdatePreferencesRequest) (*types.Preferences, error) {
	return f.prefs, nil
}

func (f *fakeAPI) UploadAvatar(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	return "https://cdn.test/avatar.png", nil
}

func (f *fakeAPI) GetUsage(ctx context.Context) (types.Usage, error) {
	return types.Usage{}, nil
}

func (f *fakeAPI) RequestBetaAccess(ctx context.Context, email string) error {
	return nil
}

// fakeProvider emits events the way the HTTP provider does
type fakeProvider struct {
	mu      sync.Mutex
	session *types.Session
	events  chan auth.Event
}

func newFakeProvider(initial *types.Session) *fakeProvider {
	return &fakeProvider{session: initial, events: make(chan auth.Event, 16)}
}

func (p *fakeProvider) emit(t auth.EventType, s *types.Session) {
	p.events <- auth.Event{Type: t, Session: s}
}

func (p *fakeProvider) GetSession(ctx context.Context) (*types.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session, nil
}

func (p *fakeProvider) AccessToken(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return ""
	}
	return p.session.AccessToken
}

func (p *fakeProvider) Subscribe() (<-chan auth.Event, func()) {
	p.mu.Lock()
	initial := p.session
	p.mu.Unlock()
	p.emit(auth.EventInitialSession, initial)
	return p.events, func() {}
}

func (p *fakeProvider) signIn(typ string, eventType auth.EventType) *types.Session {
	s := &types.Session{AccessToken: "tok", Type: typ, User: types.User{ID: "u1", Email: "cook@example.com"}}
	p.mu.Lock()
	p.session = s
	p.mu.Unlock()
	p.emit(eventType, s)
	return s
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password string) (*types.Session, error) {
	return p.signIn(types.SessionPassword, auth.EventSignedIn), nil
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	if password != "secret1" {
		return nil, errors.New("Invalid login credentials")
	}
	return p.signIn(types.SessionPassword, auth.EventSignedIn), nil
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()
	p.emit(auth.EventSignedOut, nil)
	return nil
}

func (p *fakeProvider) Refresh(ctx context.Context) (*types.Session, error) {
	return p.GetSession(ctx)
}

func (p *fakeProvider) UpdateUser(ctx context.Context, password string) (types.User, error) {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	p.emit(auth.EventUserUpdated, s)
	return s.User, nil
}

func (p *fakeProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return nil
}

func (p *fakeProvider) VerifyRecovery(ctx context.Context, token string) (*types.Session, error) {
	return p.signIn(types.SessionRecovery, auth.EventPasswordRecovery), nil
}

type memoryLocal struct {
	mu      sync.Mutex
	route   string
	draft   string
	cleared int
}

func (m *memoryLocal) ClearUserData() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.route, m.draft = "", ""
	m.cleared++
	return nil
}

func (m *memoryLocal) LastRoute() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.route, nil
}

func (m *memoryLocal) SetLastRoute(route string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.route = route
	return nil
}

func (m *memoryLocal) ImportDraft() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft, nil
}

func (m *memoryLocal) SetImportDraft(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = text
	return nil
}

func startApp(t *testing.T, api *fakeAPI, provider *fakeProvider, local *memoryLocal) *App {
	t.Helper()
	a := Assemble(api, provider, local, session.WithDarkDetector(func() bool { return false }))
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func signedIn() *types.Session {
	return &types.Session{AccessToken: "tok", Type: types.SessionPassword, User: types.User{ID: "u1"}}
}

func TestImportTextScenario(t *testing.T) {
	api := newFakeAPI()
	api.extracted = "# Pasta with Tomato Sauce\n\n## Ingredients\n- pasta\n"
	older, err := api.CreateRecipe(context.Background(), "# Older", false)
	require.NoError(t, err)

	a := startApp(t, api, newFakeProvider(signedIn()), &memoryLocal{})
	ctx := context.Background()
	require.Equal(t, nav.RouteImport, a.Nav.Current())

	require.NoError(t, a.Import.ChooseMethod(importflow.MethodText))
	require.NoError(t, a.Import.SetText("Pasta with tomato sauce"))
	require.NoError(t, a.Import.Submit(ctx))
	assert.Equal(t, api.extracted, a.Import.Markdown())

	recipe, err := a.SaveImport(ctx)
	require.NoError(t, err)
	assert.False(t, recipe.IsPublic)
	assert.Equal(t, importflow.StateIdle, a.Import.State())

	list := a.List.Recipes()
	require.Len(t, list, 2)
	assert.Equal(t, recipe.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, nav.RecipeRoute(recipe.ID), a.Nav.Current())
}

func TestSaveImportWithoutUserMakesNoCall(t *testing.T) {
	api := newFakeAPI()
	api.extracted = "# Soup"
	a := startApp(t, api, newFakeProvider(nil), &memoryLocal{})

	require.NoError(t, a.Import.ChooseMethod(importflow.MethodText))
	require.NoError(t, a.Import.SetText("soup"))
	require.NoError(t, a.Import.Submit(context.Background()))

	_, err := a.SaveImport(context.Background())
	require.Error(t, err)
	assert.Zero(t, api.creates)
	assert.Equal(t, importflow.StatePreviewReady, a.Import.State())
}

func TestDeleteShownRecipeNavigatesToImport(t *testing.T) {
	api := newFakeAPI()
	r1, _ := api.CreateRecipe(context.Background(), "# One", false)
	r2, _ := api.CreateRecipe(context.Background(), "# Two", false)

	a := startApp(t, api, newFakeProvider(signedIn()), &memoryLocal{})
	ctx := context.Background()

	detail, err := a.OpenRecipe(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, nav.RecipeRoute(r1.ID), a.Nav.Current())

	// deleting a different recipe keeps the detail screen
	require.NoError(t, a.DeleteRecipe(ctx, r2.ID))
	assert.Equal(t, nav.RecipeRoute(r1.ID), a.Nav.Current())

	require.NoError(t, detail.Delete(ctx))
	assert.Equal(t, nav.RouteImport, a.Nav.Current())
	assert.Empty(t, a.List.Recipes())
}

func TestDetailEditSaveAndCancel(t *testing.T) {
	api := newFakeAPI()
	r1, _ := api.CreateRecipe(context.Background(), "# One", false)
	r2, _ := api.CreateRecipe(context.Background(), "# Two", false)

	a := startApp(t, api, newFakeProvider(signedIn()), &memoryLocal{})
	ctx := context.Background()
	assert.Equal(t, []string{r2.ID, r1.ID}, recipeIDs(a.List.Recipes()))

	detail, err := a.OpenRecipe(ctx, r1.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, detail.SetDraft("x"), ErrNotEditing)
	detail.BeginEdit()
	require.NoError(t, detail.SetDraft("# One, revised"))
	detail.Cancel()
	assert.Equal(t, "# One", detail.Recipe().RecipeMarkdown)
	assert.Zero(t, api.updates)

	detail.BeginEdit()
	require.NoError(t, detail.SetDraft("# One, revised"))
	require.NoError(t, detail.Save(ctx))
	assert.False(t, detail.Editing())
	assert.Equal(t, "# One, revised", detail.Recipe().RecipeMarkdown)
	assert.True(t, detail.Recipe().Edited())
	assert.Equal(t, 1, api.updates)

	// the edit moved r1 to the top before Save returned
	assert.Equal(t, []string{r1.ID, r2.ID}, recipeIDs(a.List.Recipes()))
}

func recipeIDs(recipes []types.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.ID
	}
	return out
}

func TestSignOutClearsEverything(t *testing.T) {
	api := newFakeAPI()
	api.prefs = &types.Preferences{UserID: "u1", Theme: types.ThemeDark}
	_, _ = api.CreateRecipe(context.Background(), "# One", false)
	local := &memoryLocal{}

	a := startApp(t, api, newFakeProvider(signedIn()), local)
	ctx := context.Background()
	require.Len(t, a.List.Recipes(), 1)
	require.Equal(t, types.ThemeDark, a.Session.Preferences().Theme)

	require.NoError(t, a.SignOut(ctx))

	assert.Equal(t, nav.RouteLogin, a.Nav.Current())
	assert.Empty(t, a.List.Recipes())
	assert.Equal(t, types.Preferences{}, a.Session.Preferences())
	assert.Equal(t, 1, local.cleared)
	_, err := a.RequireUser()
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestSignInLoadsState(t *testing.T) {
	api := newFakeAPI()
	_, _ = api.CreateRecipe(context.Background(), "# One", false)
	a := startApp(t, api, newFakeProvider(nil), &memoryLocal{})
	ctx := context.Background()
	assert.Equal(t, nav.RouteLogin, a.Nav.Current())

	require.Error(t, a.SignIn(ctx, "cook@example.com", "wrong"))
	assert.Equal(t, session.StateAnonymous, a.Session.State())

	require.NoError(t, a.SignIn(ctx, "cook@example.com", "secret1"))
	assert.Equal(t, session.StateAuthenticated, a.Session.State())
	assert.Equal(t, nav.RouteImport, a.Nav.Current())
	assert.Len(t, a.List.Recipes(), 1)
}

func TestRecoveryFlow(t *testing.T) {
	a := startApp(t, newFakeAPI(), newFakeProvider(nil), &memoryLocal{})
	ctx := context.Background()

	require.NoError(t, a.OpenRecoveryLink(ctx, "token"))
	assert.Equal(t, nav.RouteChangePassword, a.Nav.Current())

	require.NoError(t, a.ChangePassword(ctx, "newpassword"))
	assert.Equal(t, nav.RouteImport, a.Nav.Current())
}

func TestCloseRemembersRoute(t *testing.T) {
	api := newFakeAPI()
	r1, _ := api.CreateRecipe(context.Background(), "# One", false)
	local := &memoryLocal{}
	a := Assemble(api, newFakeProvider(signedIn()), local, session.WithDarkDetector(func() bool { return false }))
	require.NoError(t, a.Start(context.Background()))

	_, err := a.OpenRecipe(context.Background(), r1.ID)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.Equal(t, string(nav.RecipeRoute(r1.ID)), local.route)

	// the next run restores it
	b := startApp(t, api, newFakeProvider(signedIn()), local)
	assert.Equal(t, nav.RecipeRoute(r1.ID), b.Nav.Current())
}

func TestSuspendImportKeepsDraft(t *testing.T) {
	local := &memoryLocal{}
	a := startApp(t, newFakeAPI(), newFakeProvider(signedIn()), local)

	require.NoError(t, a.Import.ChooseMethod(importflow.MethodText))
	require.NoError(t, a.Import.SetText("half typed recipe"))
	a.SuspendImport()
	assert.Equal(t, "half typed recipe", local.draft)
}

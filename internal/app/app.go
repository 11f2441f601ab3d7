// Package app owns the client-side state and hands it to the views.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/pageza/recipebox/internal/auth"
	"github.com/pageza/recipebox/internal/client"
	"github.com/pageza/recipebox/internal/importflow"
	"github.com/pageza/recipebox/internal/localstore"
	"github.com/pageza/recipebox/internal/nav"
	"github.com/pageza/recipebox/internal/recipelist"
	"github.com/pageza/recipebox/internal/recipes"
	"github.com/pageza/recipebox/internal/session"
	"github.com/pageza/recipebox/internal/types"
)

// settleTimeout bounds how long a command waits for the session to react to
// an auth event.
const settleTimeout = 10 * time.Second

// API is everything the app needs from the REST API
type API interface {
	recipelist.Lister
	recipes.API
	importflow.Extractor
	session.PreferencesAPI
	GetRecipe(ctx context.Context, id string) (types.Recipe, error)
	GetUsage(ctx context.Context) (types.Usage, error)
	RequestBetaAccess(ctx context.Context, email string) error
}

// LocalState is the on-disk state the app reads and clears
type LocalState interface {
	session.LocalData
	LastRoute() (string, error)
	SetLastRoute(route string) error
	ImportDraft() (string, error)
	SetImportDraft(text string) error
}

type App struct {
	API      API
	Auth     auth.Provider
	Local    LocalState
	Nav      *nav.Navigator
	List     *recipelist.Cache
	Recipes  *recipes.Adapter
	Import   *importflow.Controller
	Session  *session.Context
	closers  []func() error
	stopOnce sync.Once
	stop     func()
	done     chan struct{}
}

// Config is what New needs to build the real dependencies
type Config struct {
	BaseURL    string
	StatePath  string
	HTTPClient *http.Client
}

// New opens the local store and connects every component to the API at cfg.BaseURL
func New(cfg Config) (*App, error) {
	store, err := localstore.Open(cfg.StatePath)
	if err != nil {
		return nil, err
	}

	var opts []client.Option
	if cfg.HTTPClient != nil {
		opts = append(opts, client.WithHTTPClient(cfg.HTTPClient))
	}
	provider, err := auth.NewHTTPProvider(cfg.BaseURL, store, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	api := client.New(cfg.BaseURL, provider, opts...)

	a := Assemble(api, provider, store)
	a.closers = append(a.closers, store.Close)
	return a, nil
}

// Assemble wires the components around already-built dependencies
func Assemble(api API, provider auth.Provider, local LocalState, opts ...session.Option) *App {
	navigator := nav.New(nav.RouteLogin)
	list := recipelist.New(api)
	adapter := recipes.NewAdapter(api, list)

	return &App{
		API:     api,
		Auth:    provider,
		Local:   local,
		Nav:     navigator,
		List:    list,
		Recipes: adapter,
		Import:  importflow.New(api, adapter),
		Session: session.New(api, list, local, navigator, opts...),
		done:    make(chan struct{}),
	}
}

// Start restores the last route, applies the initial session and then keeps
// following auth events in the background.
func (a *App) Start(ctx context.Context) error {
	if last, err := a.Local.LastRoute(); err == nil && last != "" {
		a.Nav.Navigate(nav.Route(last))
	}

	events, unsubscribe := a.Auth.Subscribe()
	select {
	case ev := <-events:
		a.Session.Handle(ctx, ev)
	case <-ctx.Done():
		unsubscribe()
		return ctx.Err()
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.stop = func() {
		unsubscribe()
		cancel()
	}
	go func() {
		defer close(a.done)
		a.Session.Run(runCtx, events)
	}()
	return nil
}

// Close stops event handling, remembers the route and releases the store
func (a *App) Close() error {
	a.stopOnce.Do(func() {
		if a.stop != nil {
			a.stop()
			<-a.done
		}
	})

	var errs []error
	if a.Session.State() == session.StateAuthenticated {
		if err := a.Local.SetLastRoute(string(a.Nav.Current())); err != nil {
			errs = append(errs, err)
		}
	}
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// await runs action and waits for the navigation it causes
func (a *App) await(ctx context.Context, match func(nav.Route) bool, action func() error) error {
	seq := a.Nav.Seq()
	if err := action(); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	if _, err := a.Nav.WaitFor(waitCtx, seq, match); err != nil {
		return fmt.Errorf("session did not settle: %w", err)
	}
	return nil
}

func (a *App) SignIn(ctx context.Context, email, password string) error {
	return a.await(ctx, nav.Is(nav.RouteImport), func() error {
		_, err := a.Auth.SignIn(ctx, email, password)
		return err
	})
}

func (a *App) SignUp(ctx context.Context, email, password string) error {
	return a.await(ctx, nav.Is(nav.RouteImport), func() error {
		_, err := a.Auth.SignUp(ctx, email, password)
		return err
	})
}

// SignOut returns once every identity-scoped cache has been cleared
func (a *App) SignOut(ctx context.Context) error {
	return a.await(ctx, nav.Is(nav.RouteLogin), func() error {
		return a.Auth.SignOut(ctx)
	})
}

// OpenRecoveryLink consumes an emailed recovery token; the session then
// forces the change-password screen.
func (a *App) OpenRecoveryLink(ctx context.Context, token string) error {
	return a.await(ctx, nav.Is(nav.RouteChangePassword), func() error {
		_, err := a.Auth.VerifyRecovery(ctx, token)
		return err
	})
}

func (a *App) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	return a.Auth.ResetPasswordForEmail(ctx, email, redirectTo)
}

func (a *App) ChangePassword(ctx context.Context, password string) error {
	fromRecovery := a.Nav.Current() == nav.RouteChangePassword
	update := func() error {
		_, err := a.Auth.UpdateUser(ctx, password)
		return err
	}
	if !fromRecovery {
		return update()
	}
	return a.await(ctx, nav.Is(nav.RouteImport), update)
}

// RequireUser fails when nobody is signed in
func (a *App) RequireUser() (string, error) {
	if id := a.Session.UserID(); id != "" {
		return id, nil
	}
	return "", auth.ErrNoSession
}

// OpenRecipe loads one recipe and shows its detail screen
func (a *App) OpenRecipe(ctx context.Context, id string) (*Detail, error) {
	recipe, err := a.API.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Nav.Navigate(nav.RecipeRoute(id))
	return &Detail{app: a, recipe: recipe}, nil
}

// DeleteRecipe removes the recipe from the server and the list, leaving its
// detail screen if that is what is shown.
func (a *App) DeleteRecipe(ctx context.Context, id string) error {
	if err := a.Recipes.Delete(ctx, id); err != nil {
		return err
	}
	if shown, ok := a.Nav.Current().RecipeID(); ok && shown == id {
		a.Nav.Navigate(nav.RouteImport)
	}
	return nil
}

// SaveImport stores the previewed import and opens the new recipe
func (a *App) SaveImport(ctx context.Context) (*types.Recipe, error) {
	userID := a.Session.UserID()
	recipe, err := a.Import.Save(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := a.Local.SetImportDraft(""); err != nil {
		log.Printf("[App] failed to clear import draft: %v", err)
	}
	if recipe != nil {
		a.Nav.Navigate(nav.RecipeRoute(recipe.ID))
	}
	return recipe, nil
}

// SuspendImport keeps pasted text so an interrupted import can resume
func (a *App) SuspendImport() {
	if text := a.Import.Text(); text != "" {
		if err := a.Local.SetImportDraft(text); err != nil {
			log.Printf("[App] failed to keep import draft: %v", err)
		}
	}
	a.Import.MarkUnmounted()
}

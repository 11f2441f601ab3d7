// Package nav tracks which screen the client is on.
package nav

import (
	"context"
	"strings"
	"sync"
)

// Route names a screen
type Route string

const (
	RouteLogin          Route = "login"
	RouteImport         Route = "import"
	RouteSettings       Route = "settings"
	RouteChangePassword Route = "change-password"
	RouteBeta           Route = "beta"

	recipePrefix = "recipe/"
)

// RecipeRoute is the detail screen of one recipe
func RecipeRoute(id string) Route {
	return Route(recipePrefix + id)
}

// RecipeID returns the id of a recipe route
func (r Route) RecipeID() (string, bool) {
	s := string(r)
	if !strings.HasPrefix(s, recipePrefix) || len(s) == len(recipePrefix) {
		return "", false
	}
	return strings.TrimPrefix(s, recipePrefix), true
}

// Navigator holds the current route. Every Navigate counts as a change, even
// to the route already shown.
type Navigator struct {
	mu      sync.Mutex
	current Route
	seq     uint64
	changed chan struct{}
}

func New(initial Route) *Navigator {
	return &Navigator{current: initial, changed: make(chan struct{})}
}

func (n *Navigator) Navigate(r Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = r
	n.seq++
	close(n.changed)
	n.changed = make(chan struct{})
}

func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Seq increases by one on every Navigate
func (n *Navigator) Seq() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq
}

// WaitFor blocks until a navigation after seq lands on a route accepted by match
func (n *Navigator) WaitFor(ctx context.Context, after uint64, match func(Route) bool) (Route, error) {
	for {
		n.mu.Lock()
		current, seq, changed := n.current, n.seq, n.changed
		n.mu.Unlock()

		if seq > after && match(current) {
			return current, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return current, ctx.Err()
		}
	}
}

// Is matches one exact route
func Is(want Route) func(Route) bool {
	return func(r Route) bool { return r == want }
}

// Any matches every route
func Any(Route) bool { return true }

// Package recipelist holds the signed-in user's recipes for the sidebar and
// list views.
package recipelist

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/pageza/recipebox/internal/types"
)

// ErrLoadFailed is what views show when a refresh fails
const ErrLoadFailed = "Failed to load recipes"

type Lister interface {
	ListRecipes(ctx context.Context) ([]types.Recipe, error)
}

// Cache is shared by every caller in the process. Concurrent refreshes are
// not coordinated: whichever response resolves last replaces the list.
type Cache struct {
	lister Lister

	mu       sync.RWMutex
	recipes  []types.Recipe
	inflight int
	err      error
	// generation changes on Clear so a refresh started before sign-out
	// cannot repopulate the list afterwards
	generation uint64
}

func New(lister Lister) *Cache {
	return &Cache{lister: lister, recipes: []types.Recipe{}}
}

// Refresh fetches the whole list and replaces the cached one on success
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.inflight++
	gen := c.generation
	c.mu.Unlock()

	recipes, err := c.lister.ListRecipes(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if gen != c.generation {
		return nil
	}
	if err != nil {
		log.Printf("[RecipeList] refresh failed: %v", err)
		c.err = err
		return err
	}

	sorted := make([]types.Recipe, len(recipes))
	copy(sorted, recipes)
	SortByEffectiveChange(sorted)
	c.recipes = sorted
	c.err = nil
	return nil
}

// SortByEffectiveChange orders most recently changed first; ties keep their
// input order.
func SortByEffectiveChange(recipes []types.Recipe) {
	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].EffectiveChangeTime().After(recipes[j].EffectiveChangeTime())
	})
}

// Recipes returns a copy of the cached list
func (c *Cache) Recipes() []types.Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

func (c *Cache) Get(id string) (types.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.recipes {
		if r.ID == id {
			return r, true
		}
	}
	return types.Recipe{}, false
}

func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight > 0
}

// Err is the error of the last resolved refresh, nil after a success
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Remove drops id from the cached list and reports whether it was present
func (c *Cache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.recipes {
		if r.ID == id {
			c.recipes = append(c.recipes[:i:i], c.recipes[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cache; used when nobody is signed in
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipes = []types.Recipe{}
	c.err = nil
	c.generation++
}

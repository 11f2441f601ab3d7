package app

import (
	"context"
	"errors"
	"sync"

	"github.com/pageza/recipebox/internal/types"
)

// ErrNotEditing is returned by draft operations outside edit mode
var ErrNotEditing = errors.New("recipe is not being edited")

// Detail is the recipe detail screen with in-place markdown editing
type Detail struct {
	app *App

	mu      sync.Mutex
	recipe  types.Recipe
	editing bool
	draft   string
}

func (d *Detail) Recipe() types.Recipe {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recipe
}

func (d *Detail) Editing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.editing
}

func (d *Detail) Draft() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

// BeginEdit copies the current markdown into the draft
func (d *Detail) BeginEdit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editing = true
	d.draft = d.recipe.RecipeMarkdown
}

func (d *Detail) SetDraft(markdown string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.editing {
		return ErrNotEditing
	}
	d.draft = markdown
	return nil
}

// Cancel drops the draft
func (d *Detail) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editing = false
	d.draft = ""
}

// Save writes the draft back; the list is refreshed before it returns. On
// failure the draft is kept for another try.
func (d *Detail) Save(ctx context.Context) error {
	d.mu.Lock()
	if !d.editing {
		d.mu.Unlock()
		return ErrNotEditing
	}
	id, draft := d.recipe.ID, d.draft
	d.mu.Unlock()

	if _, err := d.app.Recipes.Save(ctx, draft, d.app.Session.UserID(), id); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if fresh, ok := d.app.List.Get(id); ok {
		d.recipe = fresh
	} else {
		d.recipe.RecipeMarkdown = draft
	}
	d.editing = false
	d.draft = ""
	return nil
}

// Delete removes the shown recipe
func (d *Detail) Delete(ctx context.Context) error {
	return d.app.DeleteRecipe(ctx, d.Recipe().ID)
}

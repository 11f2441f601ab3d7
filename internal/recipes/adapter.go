// Package recipes turns save and delete intents into API calls and keeps the
// recipe list in step with them.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pageza/recipebox/internal/types"
)

// ErrUserIDRequired is returned before any request is made
var ErrUserIDRequired = errors.New("User ID is required")

type API interface {
	CreateRecipe(ctx context.Context, markdown string, isPublic bool) (types.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, update types.UpdateRecipeRequest) (types.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
}

// ListSync is the part of the recipe list the adapter keeps current
type ListSync interface {
	Refresh(ctx context.Context) error
	Remove(id string) bool
}

type Adapter struct {
	api  API
	list ListSync
}

// NewAdapter wires the adapter; list may be nil
func NewAdapter(api API, list ListSync) *Adapter {
	return &Adapter{api: api, list: list}
}

// Save creates a recipe when recipeID is empty and returns it; otherwise it
// updates only the markdown and returns nil. The list is refreshed before
// Save returns.
func (a *Adapter) Save(ctx context.Context, markdown, userID, recipeID string) (*types.Recipe, error) {
	if recipeID == "" {
		if userID == "" {
			return nil, ErrUserIDRequired
		}
		created, err := a.api.CreateRecipe(ctx, markdown, false)
		if err != nil {
			return nil, fmt.Errorf("Failed to save recipe: %w", err)
		}
		a.refresh(ctx)
		return &created, nil
	}

	if _, err := a.api.UpdateRecipe(ctx, recipeID, types.UpdateRecipeRequest{RecipeMarkdown: &markdown}); err != nil {
		return nil, fmt.Errorf("Failed to update recipe: %w", err)
	}
	a.refresh(ctx)
	return nil, nil
}

// Delete removes the recipe and patches it out of the list
func (a *Adapter) Delete(ctx context.Context, recipeID string) error {
	if err := a.api.DeleteRecipe(ctx, recipeID); err != nil {
		return fmt.Errorf("Failed to delete recipe: %w", err)
	}
	if a.list != nil {
		a.list.Remove(recipeID)
	}
	return nil
}

// refresh failures leave the list error set for the sidebar; the save itself
// already succeeded.
func (a *Adapter) refresh(ctx context.Context) {
	if a.list == nil {
		return
	}
	if err := a.list.Refresh(ctx); err != nil {
		log.Printf("[Recipes] list refresh after save failed: %v", err)
	}
}

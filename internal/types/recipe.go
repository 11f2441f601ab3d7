package types

import (
	"strings"
	"time"
)

// UntitledRecipe is shown when a recipe body carries no H1 heading
const UntitledRecipe = "Untitled recipe"

// Recipe is the wire representation of a stored recipe
type Recipe struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	RecipeMarkdown string     `json:"recipeMarkdown"`
	IsPublic       bool       `json:"isPublic"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt"`
}

// Title returns the display title taken from the first H1 heading
func (r Recipe) Title() string {
	return TitleFromMarkdown(r.RecipeMarkdown)
}

// EffectiveChangeTime is the update timestamp when it is set and later than
// creation, otherwise the creation timestamp.
func (r Recipe) EffectiveChangeTime() time.Time {
	if r.UpdatedAt != nil && r.UpdatedAt.After(r.CreatedAt) {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

// Edited reports whether the recipe changed after it was created
func (r Recipe) Edited() bool {
	return r.UpdatedAt != nil && r.UpdatedAt.After(r.CreatedAt)
}

// TitleFromMarkdown extracts the text of the first "# " heading.
func TitleFromMarkdown(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			if title := strings.TrimSpace(strings.TrimPrefix(line, "# ")); title != "" {
				return title
			}
		}
		break
	}
	return UntitledRecipe
}

// CreateRecipeRequest is the body of POST /recipes
type CreateRecipeRequest struct {
	RecipeMarkdown string `json:"recipeMarkdown" binding:"required"`
	IsPublic       bool   `json:"isPublic"`
}

// UpdateRecipeRequest is the body of PATCH /recipes/{id}; nil fields are left untouched
type UpdateRecipeRequest struct {
	RecipeMarkdown *string `json:"recipeMarkdown,omitempty"`
	IsPublic       *bool   `json:"isPublic,omitempty"`
}

// ImportTextRequest is the body of POST /recipes/import-text
type ImportTextRequest struct {
	Text string `json:"text"`
}

// ListRecipesResponse is the envelope of GET /recipes
type ListRecipesResponse struct {
	Envelope
	Recipes []Recipe `json:"recipes"`
}

// GetRecipeResponse is the envelope of GET/PATCH /recipes/{id}
type GetRecipeResponse struct {
	Envelope
	Recipe *Recipe `json:"recipe"`
}

// CreateRecipeResponse is the envelope of POST /recipes
type CreateRecipeResponse struct {
	Envelope
	CreatedRecipe *Recipe `json:"createdRecipe"`
}

// ImportRecipeResponse is the envelope of both import endpoints
type ImportRecipeResponse struct {
	Envelope
	RecipeMarkdown string `json:"recipeMarkdown"`
}

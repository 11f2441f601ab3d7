package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pageza/recipebox/internal/types"
)

func recipePath(id string) string {
	return "/recipes/" + url.PathEscape(id)
}

// ListRecipes returns the caller's recipes in server order
func (c *Client) ListRecipes(ctx context.Context) ([]types.Recipe, error) {
	var resp types.ListRecipesResponse
	if err := c.call(ctx, http.MethodGet, "/recipes", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Recipes == nil {
		return []types.Recipe{}, nil
	}
	return resp.Recipes, nil
}

func (c *Client) GetRecipe(ctx context.Context, id string) (types.Recipe, error) {
	var resp types.GetRecipeResponse
	if err := c.call(ctx, http.MethodGet, recipePath(id), nil, &resp); err != nil {
		return types.Recipe{}, err
	}
	if resp.Recipe == nil {
		return types.Recipe{}, &Error{Kind: KindDecode, Message: "Recipe missing from response", Status: http.StatusOK}
	}
	return *resp.Recipe, nil
}

func (c *Client) CreateRecipe(ctx context.Context, markdown string, isPublic bool) (types.Recipe, error) {
	var resp types.CreateRecipeResponse
	body := types.CreateRecipeRequest{RecipeMarkdown: markdown, IsPublic: isPublic}
	if err := c.call(ctx, http.MethodPost, "/recipes", body, &resp); err != nil {
		return types.Recipe{}, err
	}
	if resp.CreatedRecipe == nil {
		return types.Recipe{}, &Error{Kind: KindDecode, Message: "Created recipe missing from response", Status: http.StatusCreated}
	}
	return *resp.CreatedRecipe, nil
}

// UpdateRecipe sends only the non-nil fields of update
func (c *Client) UpdateRecipe(ctx context.Context, id string, update types.UpdateRecipeRequest) (types.Recipe, error) {
	var resp types.GetRecipeResponse
	if err := c.call(ctx, http.MethodPatch, recipePath(id), update, &resp); err != nil {
		return types.Recipe{}, err
	}
	if resp.Recipe == nil {
		return types.Recipe{}, nil
	}
	return *resp.Recipe, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	var resp types.Envelope
	return c.call(ctx, http.MethodDelete, recipePath(id), nil, &resp)
}

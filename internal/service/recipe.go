package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/internal/model"
	"github.com/pageza/recipebox/internal/types"
)

type RecipeService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db, now: time.Now}
}

// ListRecipes returns the caller's own recipes, newest first
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID) ([]types.Recipe, error) {
	var rows []model.Recipe
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]types.Recipe, 0, len(rows))
	for i := range rows {
		recipes = append(recipes, rows[i].ToType())
	}
	return recipes, nil
}

// GetRecipe returns a recipe owned by userID or marked public
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*types.Recipe, error) {
	var row model.Recipe
	err := s.db.WithContext(ctx).
		Where("id = ? AND (user_id = ? OR is_public = ?)", id, userID, true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	recipe := row.ToType()
	return &recipe, nil
}

func (s *RecipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, req *types.CreateRecipeRequest) (*types.Recipe, error) {
	if strings.TrimSpace(req.RecipeMarkdown) == "" {
		return nil, ErrEmptyRecipe
	}

	row := model.Recipe{
		UserID:         userID,
		RecipeMarkdown: req.RecipeMarkdown,
		IsPublic:       req.IsPublic,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	recipe := row.ToType()
	return &recipe, nil
}

// UpdateRecipe applies the non-nil fields and stamps updated_at
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id uuid.UUID, req *types.UpdateRecipeRequest) (*types.Recipe, error) {
	row, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updated_at": s.now().UTC(),
	}
	if req.RecipeMarkdown != nil {
		if strings.TrimSpace(*req.RecipeMarkdown) == "" {
			return nil, ErrEmptyRecipe
		}
		updates["recipe_markdown"] = *req.RecipeMarkdown
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	if err := s.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	if err := s.db.WithContext(ctx).First(row, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload recipe: %w", err)
	}
	recipe := row.ToType()
	return &recipe, nil
}

// DeleteRecipe removes a recipe owned by userID
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Recipe{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func (s *RecipeService) owned(ctx context.Context, userID, id uuid.UUID) (*model.Recipe, error) {
	var row model.Recipe
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &row, nil
}

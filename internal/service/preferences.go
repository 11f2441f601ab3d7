package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/internal/model"
	"github.com/pageza/recipebox/internal/types"
)

type PreferencesService struct {
	db *gorm.DB
}

func NewPreferencesService(db *gorm.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// GetPreferences returns nil, nil when the user never saved any
func (s *PreferencesService) GetPreferences(ctx context.Context, userID uuid.UUID) (*types.Preferences, error) {
	var row model.UserPreferences
	if err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	prefs := row.ToType()
	return &prefs, nil
}

// UpdatePreferences merges the request into the stored row, creating it on first save
func (s *PreferencesService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdatePreferencesRequest) (*types.Preferences, error) {
	if req.Theme != nil && !req.Theme.Valid() {
		return nil, ErrInvalidTheme
	}

	var result *types.Preferences
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := model.UserPreferences{UserID: userID, Theme: string(types.ThemeSystem)}
		if err := tx.First(&row, "user_id = ?", userID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if req.DisplayName != nil {
			row.DisplayName = nullable(*req.DisplayName)
		}
		if req.Theme != nil {
			row.Theme = string(*req.Theme)
		}
		if req.AvatarURL != nil {
			row.AvatarURL = nullable(*req.AvatarURL)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(&row).Error; err != nil {
			return err
		}

		prefs := row.ToType()
		result = &prefs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return result, nil
}

// SetAvatarURL records a freshly uploaded avatar
func (s *PreferencesService) SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) error {
	_, err := s.UpdatePreferences(ctx, userID, &types.UpdatePreferencesRequest{AvatarURL: &url})
	return err
}

// nullable maps blank strings to NULL
func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

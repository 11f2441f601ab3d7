package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/internal/model"
	"github.com/pageza/recipebox/internal/types"
)

// UsageRecord describes one extraction call
type UsageRecord struct {
	UserID           uuid.UUID
	ImportType       string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
}

type UsageService struct {
	db *gorm.DB
}

func NewUsageService(db *gorm.DB) *UsageService {
	return &UsageService{db: db}
}

func (s *UsageService) RecordUsage(ctx context.Context, record UsageRecord) error {
	row := model.ImportUsage{
		UserID:           record.UserID,
		ImportType:       record.ImportType,
		Model:            record.Model,
		PromptTokens:     record.PromptTokens,
		CompletionTokens: record.CompletionTokens,
		TotalTokens:      record.PromptTokens + record.CompletionTokens,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// GetUsage sums every extraction call the user made; zero when there are none
func (s *UsageService) GetUsage(ctx context.Context, userID uuid.UUID) (*types.Usage, error) {
	var usage types.Usage
	err := s.db.WithContext(ctx).
		Model(&model.ImportUsage{}).
		Select("COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens, "+
			"COALESCE(SUM(completion_tokens), 0) AS completion_tokens, "+
			"COALESCE(SUM(total_tokens), 0) AS total_tokens, "+
			"COUNT(*) AS total_calls").
		Where("user_id = ?", userID).
		Scan(&usage).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return &usage, nil
}

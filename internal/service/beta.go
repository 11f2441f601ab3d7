package service

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/internal/model"
)

type BetaService struct {
	db *gorm.DB
}

func NewBetaService(db *gorm.DB) *BetaService {
	return &BetaService{db: db}
}

// RequestAccess records an early-access request; repeating it is a no-op
func (s *BetaService) RequestAccess(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	req := model.BetaRequest{Email: email, Status: model.BetaStatusRequested}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&req)
	if result.Error != nil {
		return fmt.Errorf("failed to submit beta request: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("[BetaService] New beta request %s", req.ID)
	}
	return nil
}

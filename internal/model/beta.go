package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const BetaStatusRequested = "requested"

// BetaRequest records an early-access sign-up
type BetaRequest struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Status    string    `gorm:"size:20;not null;default:'requested'"`
	CreatedAt time.Time
}

func (b *BetaRequest) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

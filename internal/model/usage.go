package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Import types recorded against ImportUsage
const (
	ImportTypeImage = "image"
	ImportTypeText  = "text"
)

// ImportUsage is one extraction call and the tokens it consumed
type ImportUsage struct {
	ID               uuid.UUID `gorm:"type:varchar(36);primarykey"`
	UserID           uuid.UUID `gorm:"type:varchar(36);not null;index"`
	ImportType       string    `gorm:"size:10;not null"`
	Model            string    `gorm:"size:100;not null"`
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	CreatedAt        time.Time
}

func (u *ImportUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// All lists every model for auto-migration
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Recipe{},
		&UserPreferences{},
		&BetaRequest{},
		&ImportUsage{},
	}
}

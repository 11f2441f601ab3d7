package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/internal/types"
)

// Recipe is a stored markdown recipe owned by one account
type Recipe struct {
	ID             uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"user_id"`
	RecipeMarkdown string     `gorm:"type:text;not null" json:"recipe_markdown"`
	IsPublic       bool       `gorm:"not null;default:false" json:"is_public"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// BeforeCreate assigns an id; sqlite has no uuid default
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ToType converts the row to its wire form
func (r *Recipe) ToType() types.Recipe {
	return types.Recipe{
		ID:             r.ID.String(),
		UserID:         r.UserID.String(),
		RecipeMarkdown: r.RecipeMarkdown,
		IsPublic:       r.IsPublic,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/internal/types"
)

// UserPreferences is the settings singleton, keyed by the owning account
type UserPreferences struct {
	UserID      uuid.UUID `gorm:"type:varchar(36);primarykey"`
	DisplayName *string   `gorm:"size:100"`
	Theme       string    `gorm:"size:10;not null;default:'system'"`
	AvatarURL   *string   `gorm:"size:512"`
	UpdatedAt   time.Time
}

// ToType converts the row to its wire form
func (p *UserPreferences) ToType() types.Preferences {
	updated := p.UpdatedAt
	return types.Preferences{
		UserID:      p.UserID.String(),
		DisplayName: p.DisplayName,
		Theme:       types.Theme(p.Theme),
		AvatarURL:   p.AvatarURL,
		UpdatedAt:   &updated,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/internal/types"
)

// Account is a password identity issued by the auth endpoints
type Account struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ToUser converts the account to the identity exposed on sessions
func (a *Account) ToUser() types.User {
	return types.User{ID: a.ID.String(), Email: a.Email}
}

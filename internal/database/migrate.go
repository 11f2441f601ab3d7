package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/pageza/recipebox/internal/model"
)

// Migrate brings the schema up to date with the models
func Migrate(db *gorm.DB) error {
	log.Printf("Running auto-migration on %s", db.Dialector.Name())
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

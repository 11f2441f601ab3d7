package main

import (
	"log"

	"github.com/pageza/recipebox/config"
	"github.com/pageza/recipebox/internal/database"
)

// migrate brings the configured database schema up to date and exits
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("Schema is up to date")
}

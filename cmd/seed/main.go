package main

import (
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/config"
	"github.com/pageza/recipebox/internal/database"
	"github.com/pageza/recipebox/internal/model"
)

const seedPassword = "testpassword123"

var seedUsers = []string{
	"john.doe@example.com",
	"jane.smith@example.com",
}

var seedRecipes = []string{
	`# Classic Pancakes

## Description
Fluffy weeknight pancakes. Easy, about 20 minutes start to finish.

## Yield
8 pancakes

## Ingredients
- 1 1/2 cups all-purpose flour
- 3 1/2 tsp baking powder
- 1 Tbsp sugar
- 1/4 tsp salt
- 1 1/4 cups milk
- 1 egg
- 3 Tbsp melted butter

## Instructions
1. Whisk the flour, baking powder, sugar and salt together.
2. Add the milk, egg and butter and stir until just combined.
3. Cook 1/4 cup portions on a hot griddle until bubbles form, then flip.
`,
	`# Tomato Soup

## Description
A simple, smooth soup that uses canned tomatoes. Mild and ready in 35 minutes.

## Ingredients
- 2 Tbsp olive oil
- 1 onion, diced
- 2 cloves garlic
- 800 g canned whole tomatoes
- 500 mL vegetable stock

## Instructions
1. Soften the onion in the oil for 8 minutes.
2. Add the garlic, tomatoes and stock and simmer for 20 minutes.
3. Blend until smooth and season to taste.
`,
}

// seed creates demo accounts with a couple of recipes each; existing accounts are skipped
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	for _, email := range seedUsers {
		var existing model.Account
		err := db.Where("email = ?", email).First(&existing).Error
		if err == nil {
			log.Printf("Account %s already exists, skipping", email)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to look up %s: %v", email, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			account := model.Account{Email: email, PasswordHash: string(hashedPassword)}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
			for i, md := range seedRecipes {
				recipe := model.Recipe{
					UserID:         account.ID,
					RecipeMarkdown: md,
					CreatedAt:      time.Now().Add(-time.Duration(len(seedRecipes)-i) * time.Hour),
				}
				if err := tx.Create(&recipe).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Fatalf("Failed to seed %s: %v", email, err)
		}
		log.Printf("Created %s with %d recipes", email, len(seedRecipes))
	}

	log.Printf("Seeding complete. Password for all demo accounts: %s", seedPassword)
}

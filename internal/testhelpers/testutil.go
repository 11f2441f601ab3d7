package testhelpers

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/internal/model"
)

// TestPassword is the plain-text password of accounts made by CreateTestAccount
const TestPassword = "testpassword123"

// CreateTestAccount creates an account with TestPassword
func CreateTestAccount(t *testing.T, db *gorm.DB) *model.Account {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	id := uuid.New()
	account := &model.Account{
		ID:           id,
		Email:        fmt.Sprintf("testuser+%s@example.com", id.String()),
		PasswordHash: string(hashed),
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

// CreateTestRecipe stores a recipe for userID with the given markdown
func CreateTestRecipe(t *testing.T, db *gorm.DB, userID uuid.UUID, markdown string) *model.Recipe {
	t.Helper()

	recipe := &model.Recipe{
		UserID:         userID,
		RecipeMarkdown: markdown,
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

// TouchRecipe sets a recipe's update timestamp
func TouchRecipe(t *testing.T, db *gorm.DB, recipe *model.Recipe, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(recipe).Update("updated_at", at).Error)
	recipe.UpdatedAt = &at
}

// JSONMarshal is a helper function to marshal JSON for testing
func JSONMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

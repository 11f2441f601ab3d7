package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	SignUp(ctx context.Context, email, password string) (*types.Session, error)
	SignIn(ctx context.Context, email, password string) (*types.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*types.Session, error)
	RequestRecovery(ctx context.Context, email, redirectTo string) error
	VerifyRecovery(ctx context.Context, token string) (*types.Session, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, password string) (*types.Session, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context, userID uuid.UUID) ([]types.Recipe, error)
	GetRecipe(ctx context.Context, userID, id uuid.UUID) (*types.Recipe, error)
	CreateRecipe(ctx context.Context, userID uuid.UUID, req *types.CreateRecipeRequest) (*types.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, id uuid.UUID, req *types.UpdateRecipeRequest) (*types.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error
}

// IPreferencesService defines the interface for the settings singleton
type IPreferencesService interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*types.Preferences, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdatePreferencesRequest) (*types.Preferences, error)
}

// IAvatarService defines the interface for avatar uploads
type IAvatarService interface {
	ReplaceAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (string, error)
}

// IExtractionService turns photos or pasted text into recipe markdown
type IExtractionService interface {
	ExtractFromImages(ctx context.Context, userID uuid.UUID, images []ImageInput) (string, error)
	ExtractFromText(ctx context.Context, userID uuid.UUID, text string) (string, error)
}

// IBetaService defines the interface for early-access requests
type IBetaService interface {
	RequestAccess(ctx context.Context, email string) error
}

// IUsageService defines the interface for extraction usage totals
type IUsageService interface {
	GetUsage(ctx context.Context, userID uuid.UUID) (*types.Usage, error)
	RecordUsage(ctx context.Context, record UsageRecord) error
}

// IEmailService defines the interface for email operations
type IEmailService interface {
	SendEmail(to, subject, body string) error
	SendRecoveryEmail(to, link string) error
}

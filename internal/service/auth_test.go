package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/internal/service"
	"github.com/pageza/recipebox/internal/testhelpers"
	"github.com/pageza/recipebox/internal/types"
)

type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) SendEmail(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func (m *mockEmailService) SendRecoveryEmail(to, link string) error {
	args := m.Called(to, link)
	return args.Error(0)
}

const testSecret = "test-secret-that-is-long-enough-123"

func setupAuthService(t *testing.T) (*service.AuthService, *mockEmailService) {
	db := testhelpers.SetupSQLiteDB(t)
	email := &mockEmailService{}
	return service.NewAuthService(db, testSecret, time.Hour, email), email
}

func TestSignUpAndSignIn(t *testing.T) {
	auth, _ := setupAuthService(t)
	ctx := context.Background()

	session, err := auth.SignUp(ctx, "  Cook@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", session.User.Email)
	assert.Equal(t, types.SessionPassword, session.Type)
	assert.Equal(t, "bearer", session.TokenType)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	_, err = auth.SignUp(ctx, "cook@example.com", "another1")
	assert.ErrorIs(t, err, service.ErrAccountExists)

	signedIn, err := auth.SignIn(ctx, "COOK@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, signedIn.User.ID)

	_, err = auth.SignIn(ctx, "cook@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestSignUpValidation(t *testing.T) {
	auth, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "not-an-email", "secret1")
	assert.ErrorIs(t, err, service.ErrInvalidEmail)

	_, err = auth.SignUp(ctx, "a@example.com", "12345")
	assert.ErrorIs(t, err, service.ErrWeakPassword)
}

func TestValidateTokenAcceptsAccessTokensOnly(t *testing.T) {
	auth, _ := setupAuthService(t)
	session, err := auth.SignUp(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID.String())
	assert.Equal(t, types.PurposeAccess, claims.Purpose)

	_, err = auth.ValidateToken(session.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = auth.ValidateToken("")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other := service.NewAuthService(testhelpers.SetupSQLiteDB(t), "a-different-secret-of-some-length", time.Hour, nil)
	_, err = other.ValidateToken(session.AccessToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	auth, _ := setupAuthService(t)
	ctx := context.Background()
	session, err := auth.SignUp(ctx, "a@example.com", "secret1")
	require.NoError(t, err)

	refreshed, err := auth.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.User, refreshed.User)
	assert.Equal(t, types.SessionPassword, refreshed.Type)
	assert.NotEqual(t, session.AccessToken, refreshed.AccessToken)

	_, err = auth.Refresh(ctx, session.AccessToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRecoveryFlow(t *testing.T) {
	auth, email := setupAuthService(t)
	ctx := context.Background()
	session, err := auth.SignUp(ctx, "a@example.com", "secret1")
	require.NoError(t, err)

	var link string
	email.On("SendRecoveryEmail", "a@example.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { link = args.String(1) }).
		Return(nil).Once()

	require.NoError(t, auth.RequestRecovery(ctx, "A@example.com", "http://localhost:5173/change-password"))
	email.AssertExpectations(t)
	require.True(t, strings.HasPrefix(link, "http://localhost:5173/change-password?token="), link)
	token := strings.TrimPrefix(link, "http://localhost:5173/change-password?token=")

	// unknown emails succeed without sending anything
	require.NoError(t, auth.RequestRecovery(ctx, "nobody@example.com", ""))
	email.AssertNumberOfCalls(t, "SendRecoveryEmail", 1)

	recovery, err := auth.VerifyRecovery(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, types.SessionRecovery, recovery.Type)
	assert.Equal(t, session.User.ID, recovery.User.ID)

	// the recovery session stays a recovery session across refreshes
	refreshed, err := auth.Refresh(ctx, recovery.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, types.SessionRecovery, refreshed.Type)

	_, err = auth.VerifyRecovery(ctx, session.AccessToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	userID := uuid.MustParse(session.User.ID)
	updated, err := auth.UpdatePassword(ctx, userID, "brand-new")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", updated.User.Email)
	// the new password ends the recovery session
	assert.Equal(t, types.SessionPassword, updated.Type)
	refreshed, err = auth.Refresh(ctx, updated.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, types.SessionPassword, refreshed.Type)

	_, err = auth.SignIn(ctx, "a@example.com", "secret1")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.SignIn(ctx, "a@example.com", "brand-new")
	assert.NoError(t, err)
}

func TestUpdatePasswordAndGetUser(t *testing.T) {
	auth, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := auth.UpdatePassword(ctx, uuid.New(), "long-enough")
	assert.ErrorIs(t, err, service.ErrAccountNotFound)

	session, err := auth.SignUp(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	userID := uuid.MustParse(session.User.ID)

	_, err = auth.UpdatePassword(ctx, userID, "123")
	assert.ErrorIs(t, err, service.ErrWeakPassword)

	user, err := auth.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, session.User, *user)
}

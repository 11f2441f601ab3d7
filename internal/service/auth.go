package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/internal/model"
	"github.com/pageza/recipebox/internal/types"
)

const (
	minPasswordLength = 6
	refreshTokenTTL   = 30 * 24 * time.Hour
	recoveryTokenTTL  = 15 * time.Minute
	tokenTypeBearer   = "bearer"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	accessTTL time.Duration
	email     IEmailService
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, jwtSecret string, accessTTL time.Duration, email IEmailService) *AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		accessTTL: accessTTL,
		email:     email,
		now:       time.Now,
	}
}

// SignUp creates an account and opens a password session for it
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*types.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	var existing model.Account
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrAccountExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := model.Account{Email: email, PasswordHash: string(hashed)}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Printf("[AuthService] Created account %s", account.ID)
	return s.issueSession(&account, types.SessionPassword)
}

// SignIn checks the password and opens a password session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var account model.Account
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(&account, types.SessionPassword)
}

// Refresh exchanges a refresh token for a new session of the same type
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*types.Session, error) {
	claims, err := s.parseToken(refreshToken, types.PurposeRefresh)
	if err != nil {
		return nil, err
	}

	account, err := s.findAccount(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	sessionType := claims.SessionType
	if sessionType == "" {
		sessionType = types.SessionPassword
	}
	return s.issueSession(account, sessionType)
}

// RequestRecovery mails a recovery link. Unknown addresses succeed silently
// so the endpoint cannot be used to probe for accounts.
func (s *AuthService) RequestRecovery(ctx context.Context, email, redirectTo string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var account model.Account
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[AuthService] Recovery requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token, err := s.signToken(&account, types.PurposeRecovery, types.SessionRecovery, recoveryTokenTTL)
	if err != nil {
		return err
	}

	if s.email == nil {
		log.Printf("[AuthService] No email service configured, recovery token for %s not sent", account.ID)
		return nil
	}
	if err := s.email.SendRecoveryEmail(account.Email, recoveryLink(redirectTo, token)); err != nil {
		return fmt.Errorf("failed to send recovery email: %w", err)
	}
	return nil
}

// VerifyRecovery redeems a recovery token for a recovery session
func (s *AuthService) VerifyRecovery(ctx context.Context, token string) (*types.Session, error) {
	claims, err := s.parseToken(token, types.PurposeRecovery)
	if err != nil {
		return nil, err
	}

	account, err := s.findAccount(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.issueSession(account, types.SessionRecovery)
}

// UpdatePassword replaces the password of the account and issues a fresh
// password session, which also ends a recovery session.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, password string) (*types.Session, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	account, err := s.findAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(account).Update("password_hash", string(hashed)).Error; err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	log.Printf("[AuthService] Password updated for %s", account.ID)
	return s.issueSession(account, types.SessionPassword)
}

// GetUser returns the identity of the account
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	account, err := s.findAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := account.ToUser()
	return &user, nil
}

// ValidateToken accepts access tokens only
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	return s.parseToken(tokenString, types.PurposeAccess)
}

func (s *AuthService) findAccount(ctx context.Context, userID uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &account, nil
}

func (s *AuthService) issueSession(account *model.Account, sessionType string) (*types.Session, error) {
	access, err := s.signToken(account, types.PurposeAccess, sessionType, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(account, types.PurposeRefresh, sessionType, refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &types.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.accessTTL).UTC().Truncate(time.Second),
		TokenType:    tokenTypeBearer,
		Type:         sessionType,
		User:         account.ToUser(),
	}, nil
}

func (s *AuthService) signToken(account *model.Account, purpose, sessionType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:      account.ID,
		Email:       account.Email,
		Purpose:     purpose,
		SessionType: sessionType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(tokenString, purpose string) (*types.TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Purpose != purpose || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func recoveryLink(redirectTo, token string) string {
	if redirectTo == "" {
		return token
	}
	u, err := url.Parse(redirectTo)
	if err != nil {
		return token
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

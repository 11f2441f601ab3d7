package service

import "errors"

var (
	ErrAccountExists       = errors.New("an account with this email already exists")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrAccountNotFound     = errors.New("account not found")
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrEmptyRecipe         = errors.New("recipe markdown is required")
	ErrInvalidTheme        = errors.New("theme must be light, dark or system")
	ErrExtractionDisabled  = errors.New("recipe extraction is not configured")
	ErrEmptyExtraction     = errors.New("no recipe content returned")
	ErrNoImages            = errors.New("at least one image is required")
	ErrEmptyText           = errors.New("recipe text is required")
	ErrStorageNotAvailable = errors.New("avatar storage is not configured")
)

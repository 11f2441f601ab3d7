package types

import (
	"errors"
	"strings"
)

// Image upload policy shared by the import controller and the API
const MaxImageBytes = 10 * 1024 * 1024

// AllowedImageTypes lists the declared content types accepted for import
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

var (
	ErrUnsupportedImageType = errors.New("Please upload only supported image files (PNG, JPG, GIF)")
	ErrImageTooLarge        = errors.New("All files must be less than 10MB")
)

// CheckImage applies the upload policy to a single file
func CheckImage(contentType string, size int64) error {
	if !AllowedImageType(contentType) {
		return ErrUnsupportedImageType
	}
	if size > MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

// AllowedImageType reports whether the declared type is accepted, ignoring case and parameters
func AllowedImageType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	for _, allowed := range AllowedImageTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

// Usage is the running total of extraction calls for one user
type Usage struct {
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
	TotalTokens      int64 `json:"totalTokens"`
	TotalCalls       int64 `json:"totalCalls"`
}

// UsageResponse is the envelope of GET /usage
type UsageResponse struct {
	Envelope
	Usage Usage `json:"usage"`
}

// BetaAccessRequest is the body of POST /beta-users
type BetaAccessRequest struct {
	Email string `json:"email" binding:"required"`
}

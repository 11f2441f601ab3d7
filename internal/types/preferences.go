package types

import "time"

// Theme is the UI colour scheme preference
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is one of the known themes
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// Preferences is the per-user settings singleton
type Preferences struct {
	UserID      string     `json:"id"`
	DisplayName *string    `json:"displayName"`
	Theme       Theme      `json:"theme"`
	AvatarURL   *string    `json:"avatarUrl"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// DefaultPreferences is what a user gets before saving anything
func DefaultPreferences(userID string) Preferences {
	return Preferences{UserID: userID, Theme: ThemeSystem}
}

// UpdatePreferencesRequest is the body of PATCH /preferences; nil fields are left untouched
type UpdatePreferencesRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	Theme       *Theme  `json:"theme,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// PreferencesResponse is the envelope of GET/PATCH /preferences
type PreferencesResponse struct {
	Envelope
	Preferences *Preferences `json:"preferences"`
}

// AvatarResponse is the envelope of POST /preferences/avatar
type AvatarResponse struct {
	Envelope
	AvatarURL string `json:"avatarUrl"`
}

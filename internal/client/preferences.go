package client

import (
	"context"
	"net/http"

	"github.com/pageza/recipebox/internal/types"
)

// GetPreferences returns nil when the user never saved any
func (c *Client) GetPreferences(ctx context.Context) (*types.Preferences, error) {
	var resp types.PreferencesResponse
	if err := c.call(ctx, http.MethodGet, "/preferences", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Preferences, nil
}

func (c *Client) UpdatePreferences(ctx context.Context, update types.UpdatePreferencesRequest) (*types.Preferences, error) {
	var resp types.PreferencesResponse
	if err := c.call(ctx, http.MethodPatch, "/preferences", update, &resp); err != nil {
		return nil, err
	}
	return resp.Preferences, nil
}

// UploadAvatar replaces the user's avatar and returns its public URL
func (c *Client) UploadAvatar(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	req, err := multipartRequest("/preferences/avatar", []part{{
		field:       "file",
		filename:    filename,
		contentType: contentType,
		data:        data,
	}})
	if err != nil {
		return "", &Error{Kind: KindDecode, Message: "failed to encode upload", Err: err}
	}

	var resp types.AvatarResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.AvatarURL, nil
}

func (c *Client) GetUsage(ctx context.Context) (types.Usage, error) {
	var resp types.UsageResponse
	if err := c.call(ctx, http.MethodGet, "/usage", nil, &resp); err != nil {
		return types.Usage{}, err
	}
	return resp.Usage, nil
}

// RequestBetaAccess does not need a session
func (c *Client) RequestBetaAccess(ctx context.Context, email string) error {
	var resp types.Envelope
	return c.callPublic(ctx, http.MethodPost, "/beta-users", types.BetaAccessRequest{Email: email}, &resp)
}

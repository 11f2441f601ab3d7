package client

import (
	"context"
	"net/http"

	"github.com/pageza/recipebox/internal/types"
)

func (c *Client) sessionCall(ctx context.Context, path string, payload any) (*types.Session, error) {
	var resp types.SessionResponse
	if err := c.callPublic(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Session == nil {
		return nil, &Error{Kind: KindDecode, Message: "Session missing from response", Status: http.StatusOK}
	}
	return resp.Session, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*types.Session, error) {
	return c.sessionCall(ctx, "/auth/signup", types.Credentials{Email: email, Password: password})
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	return c.sessionCall(ctx, "/auth/token", types.Credentials{Email: email, Password: password})
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*types.Session, error) {
	return c.sessionCall(ctx, "/auth/refresh", types.RefreshRequest{RefreshToken: refreshToken})
}

// VerifyRecovery exchanges a recovery token for a recovery session
func (c *Client) VerifyRecovery(ctx context.Context, token string) (*types.Session, error) {
	return c.sessionCall(ctx, "/auth/verify", types.VerifyRequest{Token: token})
}

func (c *Client) RequestRecovery(ctx context.Context, email, redirectTo string) error {
	var resp types.Envelope
	return c.callPublic(ctx, http.MethodPost, "/auth/recover", types.RecoverRequest{Email: email, RedirectTo: redirectTo}, &resp)
}

func (c *Client) GetUser(ctx context.Context) (types.User, error) {
	var resp types.UserResponse
	if err := c.call(ctx, http.MethodGet, "/auth/user", nil, &resp); err != nil {
		return types.User{}, err
	}
	if resp.User == nil {
		return types.User{}, &Error{Kind: KindDecode, Message: "User missing from response", Status: http.StatusOK}
	}
	return *resp.User, nil
}

// UpdatePassword changes the password. The returned session replaces the
// current one and is nil when the server sent none.
func (c *Client) UpdatePassword(ctx context.Context, password string) (types.User, *types.Session, error) {
	var resp types.UserResponse
	if err := c.call(ctx, http.MethodPut, "/auth/user", types.UpdateUserRequest{Password: password}, &resp); err != nil {
		return types.User{}, nil, err
	}
	if resp.User == nil {
		return types.User{}, nil, &Error{Kind: KindDecode, Message: "User missing from response", Status: http.StatusOK}
	}
	return *resp.User, resp.Session, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	var resp types.Envelope
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, &resp)
}

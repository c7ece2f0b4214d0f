package api

import (
	"context"
	"net/url"

	"github.com/your-org/storefront/internal/domain/user"
)

func (c *Client) Register(ctx context.Context, req *user.RegisterRequest) (*user.AuthResponse, error) {
	resp := &user.AuthResponse{}
	if err := c.post(ctx, pathRegister, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	resp := &user.AuthResponse{}
	if err := c.post(ctx, pathLogin, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (*user.AuthResponse, error) {
	resp := &user.AuthResponse{}
	if err := c.get(ctx, pathVerify+url.PathEscape(token), resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetProfile fetches a profile by email or user id
func (c *Client) GetProfile(ctx context.Context, identifier string) (*user.User, error) {
	var resp user.ProfileResponse
	if err := c.get(ctx, pathProfile+url.PathEscape(identifier), &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, req *user.PasswordResetRequest) error {
	return c.post(ctx, pathResetRequest, req, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token string, req *user.NewPasswordRequest) error {
	return c.post(ctx, pathResetPassword+url.PathEscape(token), req, nil)
}

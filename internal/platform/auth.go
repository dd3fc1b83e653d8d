package platform

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/crewdeck/crewctl/internal/errors"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Email      string `json:"email"`
	TenantSlug string `json:"tenant_slug"`
}

// Validate checks the login request before it leaves the client.
func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.TenantSlug, validation.Required),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, "invalid login request", err)
	}
	return nil
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Token      string `json:"token"`
	UserID     string `json:"userId"`
	TenantID   string `json:"tenantId"`
	UserName   string `json:"userName"`
	TenantName string `json:"tenantName"`
	Role       string `json:"role"`
}

// Login authenticates with the platform. It is the one operation that does
// not carry a bearer token.
func (c *Client) Login(ctx context.Context, email, tenantSlug string) (*LoginResponse, error) {
	req := LoginRequest{
		Email:      email,
		TenantSlug: tenantSlug,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var loginResp LoginResponse
	if err := c.post(ctx, "/auth/login", req, &loginResp); err != nil {
		return nil, err
	}

	return &loginResp, nil
}

package platform

import (
	"context"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/crewdeck/crewctl/internal/errors"
)

// CredentialStatus is the lifecycle state of a stored OAuth grant. The
// authoritative source is the remote service; the client only requests
// transitions and observes results.
type CredentialStatus string

const (
	CredentialActive           CredentialStatus = "active"
	CredentialExpired          CredentialStatus = "expired"
	CredentialRevoked          CredentialStatus = "revoked"
	CredentialRefreshing       CredentialStatus = "refreshing"
	CredentialRevocationFailed CredentialStatus = "revocation_failed"
)

// ProviderInfo describes one third-party integration offered to the tenant.
type ProviderInfo struct {
	Provider           string `json:"provider"`
	DisplayName        string `json:"display_name"`
	Available          bool   `json:"available"`
	ConnectedEmployees int    `json:"connected_employees"`
}

// IntegrationCredential is a stored OAuth grant linking one worker to one
// third-party provider.
type IntegrationCredential struct {
	IntegrationID string           `json:"integration_id"`
	Provider      string           `json:"provider"`
	EmployeeID    string           `json:"employee_id"`
	Status        CredentialStatus `json:"status"`
	ConnectedAt   time.Time        `json:"connected_at"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
}

// ConnectRequest asks the server to issue an OAuth authorization grant.
type ConnectRequest struct {
	Provider      string `json:"provider"`
	EmployeeID    string `json:"employeeId"`
	RedirectAfter string `json:"redirectAfter"`
}

// Validate checks the connect request before it leaves the client.
func (r ConnectRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Provider, validation.Required),
		validation.Field(&r.EmployeeID, validation.Required),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, "invalid connect request", err)
	}
	return nil
}

// ConnectGrant is the server's answer to a connect request. The authorization
// address must pass the connect flow's guard checks before any navigation.
type ConnectGrant struct {
	AuthorizationURL string `json:"authorizationUrl"`
	State            string `json:"state"`
	Provider         string `json:"provider"`
	EmployeeID       string `json:"employeeId"`
	IntegrationID    string `json:"integrationId"`
}

// RevokeRequest identifies the employee side of a credential revocation.
type RevokeRequest struct {
	EmployeeID string `json:"employeeId"`
}

// ListProviders retrieves the provider catalog for the tenant.
func (c *Client) ListProviders(ctx context.Context) ([]ProviderInfo, error) {
	var providers []ProviderInfo
	if err := c.get(ctx, "/integrations/providers", nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// ListCredentials retrieves every stored credential for the tenant.
func (c *Client) ListCredentials(ctx context.Context) ([]IntegrationCredential, error) {
	var credentials []IntegrationCredential
	if err := c.get(ctx, "/integrations/credentials", nil, &credentials); err != nil {
		return nil, err
	}
	return credentials, nil
}

// Connect requests an OAuth authorization grant for one worker and provider.
func (c *Client) Connect(ctx context.Context, req ConnectRequest) (*ConnectGrant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var grant ConnectGrant
	if err := c.post(ctx, "/integrations/connect", req, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Revoke asks the server to revoke a stored credential. On failure the
// credential's status is whatever the server reports; the client assumes
// nothing about a revert.
func (c *Client) Revoke(ctx context.Context, integrationID, employeeID string) error {
	path := "/integrations/credentials/" + url.PathEscape(integrationID) + "/revoke"
	return c.post(ctx, path, RevokeRequest{EmployeeID: employeeID}, nil)
}

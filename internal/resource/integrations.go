package resource

import (
	"context"

	"github.com/crewdeck/crewctl/internal/cache"
	"github.com/crewdeck/crewctl/internal/platform"
)

// Integrations composes the result cache and request client for the provider
// catalog and stored credentials.
type Integrations struct {
	client *platform.Client
	cache  *cache.Cache
}

// NewIntegrations creates the integrations accessor.
func NewIntegrations(client *platform.Client, c *cache.Cache) *Integrations {
	return &Integrations{client: client, cache: c}
}

// Providers retrieves the provider catalog for the tenant.
func (i *Integrations) Providers(ctx context.Context) ([]platform.ProviderInfo, error) {
	key := cache.ListKey(ProvidersResource, nil)
	value, err := i.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return i.client.ListProviders(ctx)
	})
	if err != nil {
		return nil, err
	}
	return value.([]platform.ProviderInfo), nil
}

// Credentials retrieves every stored credential for the tenant.
func (i *Integrations) Credentials(ctx context.Context) ([]platform.IntegrationCredential, error) {
	key := cache.ListKey(CredentialsResource, nil)
	value, err := i.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return i.client.ListCredentials(ctx)
	})
	if err != nil {
		return nil, err
	}
	return value.([]platform.IntegrationCredential), nil
}

// RefreshAfterConnect invalidates the credential list and provider catalog
// after a successful authorization return, so the new credential and its
// connected-employee count show on the next read.
func (i *Integrations) RefreshAfterConnect() {
	i.cache.InvalidateList(CredentialsResource)
	i.cache.InvalidateList(ProvidersResource)
}

// Revoke asks the server to revoke a credential. On success both the
// credential list and the provider catalog are invalidated, so
// connected-employee counts reflect the change on the next read. On failure
// nothing is invalidated: the credential's status is whatever the server
// reports, possibly revocation_failed.
func (i *Integrations) Revoke(ctx context.Context, integrationID, employeeID string) error {
	if err := i.client.Revoke(ctx, integrationID, employeeID); err != nil {
		return err
	}

	i.cache.InvalidateList(CredentialsResource)
	i.cache.InvalidateList(ProvidersResource)
	return nil
}

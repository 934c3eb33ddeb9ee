package app

import (
	"context"

	"github.com/lwhx/OVH/internal/catalog"
	"github.com/lwhx/OVH/internal/inventory"
	"github.com/lwhx/OVH/internal/ovhapi"
	"github.com/lwhx/OVH/internal/purchase"
	"github.com/lwhx/OVH/types"
)

// providerSession hands out the provider client for whatever credentials are
// currently stored, so settings edits apply from the next call on.
type providerSession struct {
	pool     *ovhapi.Pool
	settings func() types.Settings
}

func newProviderSession(pool *ovhapi.Pool, settings func() types.Settings) *providerSession {
	return &providerSession{pool: pool, settings: settings}
}

func (s *providerSession) client() (*ovhapi.Client, error) {
	return s.pool.Get(s.settings())
}

func (s *providerSession) OrderAPI() (purchase.OrderAPI, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *providerSession) AvailabilityAPI() (inventory.API, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *providerSession) CatalogAPI() (catalog.API, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *providerSession) Subsidiary() string {
	return s.settings().WithDefaults().Zone
}

// VerifyAuth asks the provider who the stored credentials belong to.
func (s *providerSession) VerifyAuth(ctx context.Context) error {
	c, err := s.client()
	if err != nil {
		return err
	}
	return c.VerifyAuth(ctx)
}

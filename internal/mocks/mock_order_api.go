package mocks

import (
	"context"
	"sync"

	"github.com/lwhx/OVH/internal/catalog"
	"github.com/lwhx/OVH/internal/inventory"
	"github.com/lwhx/OVH/internal/ovhapi"
	"github.com/lwhx/OVH/internal/purchase"
)

// MockOrderAPI is a mock implementation of purchase.OrderAPI for testing.
// Unset funcs succeed with zero values.
type MockOrderAPI struct {
	GetAvailabilityFunc           func(ctx context.Context, planCode string) ([]ovhapi.PlanAvailability, error)
	CreateCartFunc                func(ctx context.Context, subsidiary string) (string, error)
	AddBaseItemFunc               func(ctx context.Context, cartID, planCode, duration string, quantity int) (int64, error)
	SetConfigurationFunc          func(ctx context.Context, cartID string, itemID int64, label, value string) error
	GetRequiredConfigurationsFunc func(ctx context.Context, cartID string, itemID int64) ([]ovhapi.RequiredConfiguration, error)
	GetCompatibleAddonsFunc       func(ctx context.Context, cartID, planCode string) ([]ovhapi.Addon, error)
	AddAddonFunc                  func(ctx context.Context, cartID string, itemID int64, addon ovhapi.Addon, quantity int) error
	AssignCartFunc                func(ctx context.Context, cartID string) error
	CheckoutFunc                  func(ctx context.Context, cartID string, autoPay, waiveRetraction bool) (ovhapi.CheckoutResult, error)
	GetCatalogFunc                func(ctx context.Context, subsidiary string) (ovhapi.Catalog, error)
	VerifyAuthFunc                func(ctx context.Context) error

	mu    sync.Mutex
	calls []string
}

func (m *MockOrderAPI) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls lists invoked method names in order.
func (m *MockOrderAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockOrderAPI) GetAvailability(ctx context.Context, planCode string) ([]ovhapi.PlanAvailability, error) {
	m.record("GetAvailability")
	if m.GetAvailabilityFunc != nil {
		return m.GetAvailabilityFunc(ctx, planCode)
	}
	return nil, nil
}

func (m *MockOrderAPI) CreateCart(ctx context.Context, subsidiary string) (string, error) {
	m.record("CreateCart")
	if m.CreateCartFunc != nil {
		return m.CreateCartFunc(ctx, subsidiary)
	}
	return "cart-1", nil
}

func (m *MockOrderAPI) AddBaseItem(ctx context.Context, cartID, planCode, duration string, quantity int) (int64, error) {
	m.record("AddBaseItem")
	if m.AddBaseItemFunc != nil {
		return m.AddBaseItemFunc(ctx, cartID, planCode, duration, quantity)
	}
	return 1, nil
}

func (m *MockOrderAPI) SetConfiguration(ctx context.Context, cartID string, itemID int64, label, value string) error {
	m.record("SetConfiguration")
	if m.SetConfigurationFunc != nil {
		return m.SetConfigurationFunc(ctx, cartID, itemID, label, value)
	}
	return nil
}

func (m *MockOrderAPI) GetRequiredConfigurations(ctx context.Context, cartID string, itemID int64) ([]ovhapi.RequiredConfiguration, error) {
	m.record("GetRequiredConfigurations")
	if m.GetRequiredConfigurationsFunc != nil {
		return m.GetRequiredConfigurationsFunc(ctx, cartID, itemID)
	}
	return nil, nil
}

func (m *MockOrderAPI) GetCompatibleAddons(ctx context.Context, cartID, planCode string) ([]ovhapi.Addon, error) {
	m.record("GetCompatibleAddons")
	if m.GetCompatibleAddonsFunc != nil {
		return m.GetCompatibleAddonsFunc(ctx, cartID, planCode)
	}
	return nil, nil
}

func (m *MockOrderAPI) AddAddon(ctx context.Context, cartID string, itemID int64, addon ovhapi.Addon, quantity int) error {
	m.record("AddAddon")
	if m.AddAddonFunc != nil {
		return m.AddAddonFunc(ctx, cartID, itemID, addon, quantity)
	}
	return nil
}

func (m *MockOrderAPI) AssignCart(ctx context.Context, cartID string) error {
	m.record("AssignCart")
	if m.AssignCartFunc != nil {
		return m.AssignCartFunc(ctx, cartID)
	}
	return nil
}

func (m *MockOrderAPI) Checkout(ctx context.Context, cartID string, autoPay, waiveRetraction bool) (ovhapi.CheckoutResult, error) {
	m.record("Checkout")
	if m.CheckoutFunc != nil {
		return m.CheckoutFunc(ctx, cartID, autoPay, waiveRetraction)
	}
	return ovhapi.CheckoutResult{}, nil
}

func (m *MockOrderAPI) GetCatalog(ctx context.Context, subsidiary string) (ovhapi.Catalog, error) {
	m.record("GetCatalog")
	if m.GetCatalogFunc != nil {
		return m.GetCatalogFunc(ctx, subsidiary)
	}
	return ovhapi.Catalog{}, nil
}

func (m *MockOrderAPI) VerifyAuth(ctx context.Context) error {
	m.record("VerifyAuth")
	if m.VerifyAuthFunc != nil {
		return m.VerifyAuthFunc(ctx)
	}
	return nil
}

// StockAt builds an availability response with a single datacenter.
func StockAt(datacenter, availability string) []ovhapi.PlanAvailability {
	return []ovhapi.PlanAvailability{{
		Datacenters: []ovhapi.DatacenterState{{Datacenter: datacenter, Availability: availability}},
	}}
}

// MockSession serves one MockOrderAPI to both the executor and the checker.
type MockSession struct {
	API     *MockOrderAPI
	Zone    string
	ErrFunc func() error
}

func (m *MockSession) OrderAPI() (purchase.OrderAPI, error) {
	if m.ErrFunc != nil {
		if err := m.ErrFunc(); err != nil {
			return nil, err
		}
	}
	return m.API, nil
}

func (m *MockSession) AvailabilityAPI() (inventory.API, error) {
	if m.ErrFunc != nil {
		if err := m.ErrFunc(); err != nil {
			return nil, err
		}
	}
	return m.API, nil
}

func (m *MockSession) CatalogAPI() (catalog.API, error) {
	if m.ErrFunc != nil {
		if err := m.ErrFunc(); err != nil {
			return nil, err
		}
	}
	return m.API, nil
}

func (m *MockSession) Subsidiary() string {
	if m.Zone == "" {
		return "IE"
	}
	return m.Zone
}

package ovhapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/lwhx/OVH/types"
	"github.com/ovh/go-ovh/ovh"
)

const (
	DefaultDuration    = "P1M"
	DefaultPricingMode = "default"
	DefaultOS          = "none_64.en"
)

var ErrMissingCredentials = errors.New("missing OVH API credentials")

// REST is the subset of *ovh.Client the order flow needs.
type REST interface {
	GetWithContext(ctx context.Context, url string, resType interface{}) error
	PostWithContext(ctx context.Context, url string, reqBody, resType interface{}) error
}

// Client speaks the order and availability endpoints of the OVH API.
type Client struct {
	rest REST
}

// New builds a signed client for the given settings.
func New(settings types.Settings) (*Client, error) {
	if !settings.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	settings = settings.WithDefaults()
	rest, err := ovh.NewClient(settings.Endpoint, settings.AppKey, settings.AppSecret, settings.ConsumerKey)
	if err != nil {
		return nil, fmt.Errorf("init ovh client: %w", err)
	}
	return NewWithREST(rest), nil
}

func NewWithREST(rest REST) *Client {
	return &Client{rest: rest}
}

// VerifyAuth performs a cheap authenticated call to prove the credentials work.
func (c *Client) VerifyAuth(ctx context.Context) error {
	var me map[string]any
	return c.rest.GetWithContext(ctx, "/me", &me)
}

func (c *Client) GetAvailability(ctx context.Context, planCode string) ([]PlanAvailability, error) {
	q := url.Values{}
	q.Set("planCode", planCode)
	var out []PlanAvailability
	if err := c.rest.GetWithContext(ctx, "/dedicated/server/datacenter/availabilities?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCatalog lists the plans sold to a subsidiary.
func (c *Client) GetCatalog(ctx context.Context, subsidiary string) (Catalog, error) {
	q := url.Values{}
	q.Set("ovhSubsidiary", subsidiary)
	var out Catalog
	if err := c.rest.GetWithContext(ctx, "/order/catalog/public/eco?"+q.Encode(), &out); err != nil {
		return Catalog{}, err
	}
	return out, nil
}

func (c *Client) CreateCart(ctx context.Context, subsidiary string) (string, error) {
	var out cartResponse
	body := map[string]any{"ovhSubsidiary": subsidiary}
	if err := c.rest.PostWithContext(ctx, "/order/cart", body, &out); err != nil {
		return "", err
	}
	if out.CartID == "" {
		return "", errors.New("provider returned no cart id")
	}
	return out.CartID, nil
}

func (c *Client) AddBaseItem(ctx context.Context, cartID, planCode, duration string, quantity int) (int64, error) {
	var out itemResponse
	body := map[string]any{
		"planCode":    planCode,
		"pricingMode": DefaultPricingMode,
		"duration":    duration,
		"quantity":    quantity,
	}
	if err := c.rest.PostWithContext(ctx, cartPath(cartID, "eco"), body, &out); err != nil {
		return 0, err
	}
	if out.ItemID == 0 {
		return 0, errors.New("provider returned no item id")
	}
	return out.ItemID, nil
}

func (c *Client) SetConfiguration(ctx context.Context, cartID string, itemID int64, label, value string) error {
	body := map[string]any{"label": label, "value": value}
	return c.rest.PostWithContext(ctx, itemPath(cartID, itemID, "configuration"), body, nil)
}

func (c *Client) GetRequiredConfigurations(ctx context.Context, cartID string, itemID int64) ([]RequiredConfiguration, error) {
	var out []RequiredConfiguration
	if err := c.rest.GetWithContext(ctx, itemPath(cartID, itemID, "requiredConfiguration"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCompatibleAddons(ctx context.Context, cartID, planCode string) ([]Addon, error) {
	q := url.Values{}
	q.Set("planCode", planCode)
	var out []Addon
	if err := c.rest.GetWithContext(ctx, cartPath(cartID, "eco/options")+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddAddon(ctx context.Context, cartID string, itemID int64, addon Addon, quantity int) error {
	body := map[string]any{
		"itemId":      itemID,
		"planCode":    addon.PlanCode,
		"duration":    addon.EffectiveDuration(),
		"pricingMode": addon.EffectivePricingMode(),
		"quantity":    quantity,
	}
	return c.rest.PostWithContext(ctx, cartPath(cartID, "eco/options"), body, nil)
}

func (c *Client) AssignCart(ctx context.Context, cartID string) error {
	return c.rest.PostWithContext(ctx, cartPath(cartID, "assign"), nil, nil)
}

func (c *Client) Checkout(ctx context.Context, cartID string, autoPay, waiveRetraction bool) (CheckoutResult, error) {
	var out checkoutResponse
	body := map[string]any{
		"autoPayWithPreferredPaymentMethod": autoPay,
		"waiveRetractationPeriod":           waiveRetraction,
	}
	if err := c.rest.PostWithContext(ctx, cartPath(cartID, "checkout"), body, &out); err != nil {
		return CheckoutResult{}, err
	}
	return CheckoutResult{OrderID: out.orderID(), URL: out.URL}, nil
}

// ErrorMessage extracts the provider's message from an API error, falling
// back to the error text for transport failures.
func ErrorMessage(err error) string {
	var apiErr *ovh.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// IsAPIError reports whether err was returned by the provider, as opposed
// to a transport or local failure.
func IsAPIError(err error) bool {
	var apiErr *ovh.APIError
	return errors.As(err, &apiErr)
}

func cartPath(cartID, suffix string) string {
	return fmt.Sprintf("/order/cart/%s/%s", url.PathEscape(cartID), suffix)
}

func itemPath(cartID string, itemID int64, suffix string) string {
	return fmt.Sprintf("/order/cart/%s/item/%d/%s", url.PathEscape(cartID), itemID, suffix)
}

// Pool hands out a client for the current settings, rebuilding it only when
// the credentials or endpoint change.
type Pool struct {
	mu      sync.Mutex
	key     string
	client  *Client
	newFunc func(types.Settings) (*Client, error)
}

func NewPool() *Pool {
	return &Pool{newFunc: New}
}

// NewPoolWith lets tests substitute the constructor.
func NewPoolWith(fn func(types.Settings) (*Client, error)) *Pool {
	return &Pool{newFunc: fn}
}

func (p *Pool) Get(settings types.Settings) (*Client, error) {
	if !settings.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	settings = settings.WithDefaults()
	key := settings.Endpoint + "\x00" + settings.AppKey + "\x00" + settings.AppSecret + "\x00" + settings.ConsumerKey

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil && p.key == key {
		return p.client, nil
	}
	client, err := p.newFunc(settings)
	if err != nil {
		return nil, err
	}
	p.key = key
	p.client = client
	return client, nil
}

package ovhapi

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Response shapes are decoded leniently: unknown fields are ignored and
// missing ones keep their zero value.

type DatacenterState struct {
	Datacenter   string `json:"datacenter"`
	Availability string `json:"availability"`
}

// PlanAvailability is one hardware variant of a plan and its per-datacenter stock.
type PlanAvailability struct {
	FQN         string            `json:"fqn"`
	PlanCode    string            `json:"planCode"`
	Memory      string            `json:"memory"`
	Storage     string            `json:"storage"`
	Datacenters []DatacenterState `json:"datacenters"`
}

type RequiredConfiguration struct {
	Label         string   `json:"label"`
	Required      bool     `json:"required"`
	Type          string   `json:"type"`
	AllowedValues []string `json:"allowedValues"`
}

// Addon is an option the provider accepts for a base product in a cart.
type Addon struct {
	PlanCode    string `json:"planCode"`
	ProductName string `json:"productName"`
	Family      string `json:"family"`
	Duration    string `json:"duration"`
	PricingMode string `json:"pricingMode"`
}

func (a Addon) EffectiveDuration() string {
	if a.Duration == "" {
		return DefaultDuration
	}
	return a.Duration
}

func (a Addon) EffectivePricingMode() string {
	if a.PricingMode == "" {
		return DefaultPricingMode
	}
	return a.PricingMode
}

type CheckoutResult struct {
	OrderID string
	URL     string
}

type checkoutResponse struct {
	OrderID json.RawMessage `json:"orderId"`
	URL     string          `json:"url"`
}

// orderID renders the order id whether the provider sent a number or a string.
func (r checkoutResponse) orderID() string {
	raw := strings.TrimSpace(string(r.OrderID))
	if raw == "" || raw == "null" {
		return ""
	}
	if s, err := strconv.Unquote(raw); err == nil {
		return s
	}
	return raw
}

type cartResponse struct {
	CartID string `json:"cartId"`
}

type itemResponse struct {
	ItemID int64 `json:"itemId"`
}

// Catalog is the public eco catalog for one subsidiary.
type Catalog struct {
	Plans []CatalogPlan `json:"plans"`
}

type CatalogPlan struct {
	PlanCode      string        `json:"planCode"`
	InvoiceName   string        `json:"invoiceName"`
	Product       string        `json:"product"`
	AddonFamilies []AddonFamily `json:"addonFamilies"`
}

type AddonFamily struct {
	Name      string   `json:"name"`
	Mandatory bool     `json:"mandatory"`
	Default   string   `json:"default"`
	Addons    []string `json:"addons"`
}

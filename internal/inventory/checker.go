package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lwhx/OVH/internal/ovhapi"
	"github.com/lwhx/OVH/types"
)

// API is the single provider call the checker needs.
type API interface {
	GetAvailability(ctx context.Context, planCode string) ([]ovhapi.PlanAvailability, error)
}

// Session resolves the provider client for the current settings.
type Session interface {
	AvailabilityAPI() (API, error)
}

// Checker answers "where is this plan in stock right now". It keeps no state
// between calls.
type Checker struct {
	session Session
}

func NewChecker(session Session) *Checker {
	return &Checker{session: session}
}

// GetAvailability fetches and normalizes per-datacenter stock for planCode.
func (c *Checker) GetAvailability(ctx context.Context, planCode string) (types.AvailabilitySnapshot, error) {
	planCode = strings.TrimSpace(planCode)
	if planCode == "" {
		return nil, fmt.Errorf("plan code is required")
	}
	api, err := c.session.AvailabilityAPI()
	if err != nil {
		return nil, err
	}
	plans, err := api.GetAvailability(ctx, planCode)
	if err != nil {
		return nil, fmt.Errorf("check availability of %s: %w", planCode, err)
	}
	return Snapshot(plans), nil
}

// Normalize maps a raw provider availability value onto the three states.
func Normalize(raw string) types.Availability {
	switch strings.TrimSpace(raw) {
	case "", string(types.Unknown):
		return types.Unknown
	case string(types.Unavailable):
		return types.Unavailable
	default:
		return types.Available
	}
}

// Snapshot flattens every hardware variant of a plan into one map. A
// datacenter is reported available if any variant has stock there.
func Snapshot(plans []ovhapi.PlanAvailability) types.AvailabilitySnapshot {
	out := make(types.AvailabilitySnapshot)
	for _, plan := range plans {
		for _, dc := range plan.Datacenters {
			name := strings.TrimSpace(dc.Datacenter)
			if name == "" {
				continue
			}
			state := Normalize(dc.Availability)
			if rank(state) > rank(out[name]) {
				out[name] = state
			}
		}
	}
	return out
}

// InStockAt reports whether datacenter has stock in any variant.
func InStockAt(plans []ovhapi.PlanAvailability, datacenter string) bool {
	return Snapshot(plans)[datacenter] == types.Available
}

func rank(a types.Availability) int {
	switch a {
	case types.Available:
		return 3
	case types.Unavailable:
		return 2
	case types.Unknown:
		return 1
	default:
		return 0
	}
}

// SortedDatacenters returns the datacenters of snap in lexical order.
func SortedDatacenters(snap types.AvailabilitySnapshot) []string {
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

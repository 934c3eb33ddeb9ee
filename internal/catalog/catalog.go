package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/internal/ovhapi"
	"github.com/lwhx/OVH/internal/registry"
	"github.com/lwhx/OVH/types"
)

type API interface {
	GetCatalog(ctx context.Context, subsidiary string) (ovhapi.Catalog, error)
}

type Session interface {
	CatalogAPI() (API, error)
	Subsidiary() string
}

// AvailabilityChecker is the inventory lookup used to refresh stock.
type AvailabilityChecker interface {
	GetAvailability(ctx context.Context, planCode string) (types.AvailabilitySnapshot, error)
}

type Metrics interface {
	RecordAvailabilityRefresh(ok bool)
}

// Service keeps the server catalog and its per-datacenter stock current.
type Service struct {
	registry *registry.Registry
	session  Session
	checker  AvailabilityChecker
	metrics  Metrics
	logger   *logging.Logger
}

func NewService(reg *registry.Registry, session Session, checker AvailabilityChecker, metrics Metrics, logger *logging.Logger) *Service {
	return &Service{registry: reg, session: session, checker: checker, metrics: metrics, logger: logger}
}

// RefreshAvailability re-checks every catalog plan. Plans that fail keep
// their previous state; the number of refreshed plans is returned.
func (s *Service) RefreshAvailability(ctx context.Context) int {
	log := s.logger.Source("catalog")
	refreshed := 0
	for _, plan := range s.registry.Plans() {
		if ctx.Err() != nil {
			break
		}
		snap, err := s.checker.GetAvailability(ctx, plan.PlanCode)
		if err == nil {
			err = s.registry.UpdatePlanAvailability(ctx, plan.PlanCode, snap)
		}
		s.metrics.RecordAvailabilityRefresh(err == nil)
		if err != nil {
			log.WithError(err).WithField("plan_code", plan.PlanCode).Warn("availability refresh failed")
			continue
		}
		refreshed++
	}
	log.Infof("refreshed availability of %d plans", refreshed)
	return refreshed
}

// Import replaces the catalog with the provider's plans for the configured
// subsidiary, then refreshes their stock.
func (s *Service) Import(ctx context.Context) (int, error) {
	api, err := s.session.CatalogAPI()
	if err != nil {
		return 0, err
	}
	cat, err := api.GetCatalog(ctx, s.session.Subsidiary())
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	plans := FromCatalog(cat)
	if err := s.registry.SetPlans(ctx, plans); err != nil {
		return 0, err
	}
	s.RefreshAvailability(ctx)
	return len(plans), nil
}

// FromCatalog maps catalog plans to server plans. Hardware details are left
// empty; addon families provide the default and available options.
func FromCatalog(cat ovhapi.Catalog) []types.ServerPlan {
	seen := make(map[string]bool)
	plans := make([]types.ServerPlan, 0, len(cat.Plans))
	for _, p := range cat.Plans {
		code := strings.TrimSpace(p.PlanCode)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		plan := types.ServerPlan{PlanCode: code, Name: p.InvoiceName, Description: p.Product}
		if plan.Name == "" {
			plan.Name = code
		}
		for _, fam := range p.AddonFamilies {
			if fam.Default != "" {
				plan.DefaultOptions = append(plan.DefaultOptions, fam.Default)
			}
			plan.AvailableOptions = append(plan.AvailableOptions, fam.Addons...)
		}
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].PlanCode < plans[j].PlanCode })
	return plans
}

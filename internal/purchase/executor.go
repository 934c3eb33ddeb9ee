package purchase

import (
	"context"
	"fmt"

	"github.com/lwhx/OVH/internal/inventory"
	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/internal/ovhapi"
	"github.com/lwhx/OVH/types"
	"github.com/sirupsen/logrus"
)

const (
	LabelDatacenter = "dedicated_datacenter"
	LabelOS         = "dedicated_os"
	LabelRegion     = "region"
)

// OrderAPI is the provider surface used by one purchase attempt.
type OrderAPI interface {
	GetAvailability(ctx context.Context, planCode string) ([]ovhapi.PlanAvailability, error)
	CreateCart(ctx context.Context, subsidiary string) (string, error)
	AddBaseItem(ctx context.Context, cartID, planCode, duration string, quantity int) (int64, error)
	SetConfiguration(ctx context.Context, cartID string, itemID int64, label, value string) error
	GetRequiredConfigurations(ctx context.Context, cartID string, itemID int64) ([]ovhapi.RequiredConfiguration, error)
	GetCompatibleAddons(ctx context.Context, cartID, planCode string) ([]ovhapi.Addon, error)
	AddAddon(ctx context.Context, cartID string, itemID int64, addon ovhapi.Addon, quantity int) error
	AssignCart(ctx context.Context, cartID string) error
	Checkout(ctx context.Context, cartID string, autoPay, waiveRetraction bool) (ovhapi.CheckoutResult, error)
}

// Session resolves the client and the subsidiary for the current settings.
type Session interface {
	OrderAPI() (OrderAPI, error)
	Subsidiary() string
}

// Executor runs the cart-to-checkout transaction for one queue item. It
// never retries; a failed step abandons the cart.
type Executor struct {
	session Session
	logger  *logging.Logger
}

func NewExecutor(session Session, logger *logging.Logger) *Executor {
	return &Executor{session: session, logger: logger}
}

// Execute performs one purchase attempt and returns its terminal outcome.
func (e *Executor) Execute(ctx context.Context, item types.QueueItem) types.PurchaseOutcome {
	result, err := e.execute(ctx, item)
	if err != nil {
		return types.PurchaseOutcome{Err: err}
	}
	return types.PurchaseOutcome{Result: result}
}

func (e *Executor) execute(ctx context.Context, item types.QueueItem) (*types.PurchaseResult, error) {
	log := e.logger.Source("purchase").WithFields(logrus.Fields{
		"task_id":    item.ID,
		"plan_code":  item.PlanCode,
		"datacenter": item.Datacenter,
	})

	api, err := e.session.OrderAPI()
	if err != nil {
		return nil, fmt.Errorf("ovh client: %w", err)
	}

	plans, err := api.GetAvailability(ctx, item.PlanCode)
	if err != nil {
		return nil, &ProviderError{Step: "check availability", Err: err}
	}
	if !inventory.InStockAt(plans, item.Datacenter) {
		log.Infof("%s is out of stock in %s", item.PlanCode, item.Datacenter)
		return nil, ErrOutOfStock
	}

	subsidiary := e.session.Subsidiary()
	log.Infof("stock found, creating cart in %s", subsidiary)
	cartID, err := api.CreateCart(ctx, subsidiary)
	if err != nil {
		return nil, &ProviderError{Step: "create cart", Err: err}
	}
	log = log.WithField("cart_id", cartID)

	itemID, err := api.AddBaseItem(ctx, cartID, item.PlanCode, ovhapi.DefaultDuration, 1)
	if err != nil {
		return nil, &ProviderError{Step: "add base item", Err: err}
	}
	log = log.WithField("item_id", itemID)

	if err := e.configure(ctx, api, log, cartID, itemID, item.Datacenter); err != nil {
		return nil, err
	}

	attached := e.attachOptions(ctx, api, log, cartID, itemID, item)

	if err := api.AssignCart(ctx, cartID); err != nil {
		return nil, &ProviderError{Step: "assign cart", Err: err}
	}

	checkout, err := api.Checkout(ctx, cartID, false, true)
	if err != nil {
		return nil, &ProviderError{Step: "checkout", Err: err}
	}
	log.WithField("order_id", checkout.OrderID).Infof("order placed: %s", checkout.URL)

	return &types.PurchaseResult{
		OrderID:  checkout.OrderID,
		OrderURL: checkout.URL,
		Options:  attached,
	}, nil
}

func (e *Executor) configure(ctx context.Context, api OrderAPI, log *logrus.Entry, cartID string, itemID int64, datacenter string) error {
	settings := []struct{ label, value string }{
		{LabelDatacenter, datacenter},
		{LabelOS, ovhapi.DefaultOS},
	}

	if region, ok := InferRegion(datacenter); ok {
		settings = append(settings, struct{ label, value string }{LabelRegion, region})
	} else {
		log.Warnf("cannot infer region for datacenter %s", datacenter)
		required, err := api.GetRequiredConfigurations(ctx, cartID, itemID)
		if err != nil {
			log.WithError(err).Warn("could not fetch required configuration, continuing")
		} else {
			for _, rc := range required {
				if rc.Label == LabelRegion && rc.Required {
					return &ConfigurationError{Datacenter: datacenter, Reason: "provider requires a region that cannot be inferred"}
				}
			}
		}
	}

	for _, s := range settings {
		if err := api.SetConfiguration(ctx, cartID, itemID, s.label, s.value); err != nil {
			return &ProviderError{Step: "configure " + s.label, Err: err}
		}
		log.Debugf("configured %s = %s", s.label, s.value)
	}
	return nil
}

// attachOptions adds the requested hardware options the provider offers for
// this plan. Nothing here fails the attempt.
func (e *Executor) attachOptions(ctx context.Context, api OrderAPI, log *logrus.Entry, cartID string, itemID int64, item types.QueueItem) []string {
	if len(item.Options) == 0 {
		return nil
	}
	wanted, dropped := FilterOptions(item.Options)
	if len(dropped) > 0 {
		log.Infof("skipping non-hardware options %v", dropped)
	}
	if len(wanted) == 0 {
		return nil
	}

	addons, err := api.GetCompatibleAddons(ctx, cartID, item.PlanCode)
	if err != nil {
		log.WithError(err).Error("could not list compatible options, ordering without them")
		return nil
	}

	var attached []string
	for _, code := range wanted {
		addon, ok := findAddon(addons, code)
		if !ok {
			log.Warnf("option %s is not offered for %s", code, item.PlanCode)
			continue
		}
		if err := api.AddAddon(ctx, cartID, itemID, addon, 1); err != nil {
			log.WithError(err).Warnf("could not add option %s", code)
			continue
		}
		attached = append(attached, code)
	}
	log.Infof("attached %d of %d options", len(attached), len(wanted))
	return attached
}

func findAddon(addons []ovhapi.Addon, code string) (ovhapi.Addon, bool) {
	for _, a := range addons {
		if a.PlanCode != "" && a.PlanCode == code {
			return a, true
		}
	}
	return ovhapi.Addon{}, false
}

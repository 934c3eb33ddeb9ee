package purchase

import (
	"errors"
	"fmt"

	"github.com/lwhx/OVH/internal/ovhapi"
)

// ErrOutOfStock marks the expected failure: the datacenter had no stock at
// the time of the re-check.
var ErrOutOfStock = errors.New("currently out of stock")

// ProviderError is a failed remote call during the order flow.
type ProviderError struct {
	Step string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, ovhapi.ErrorMessage(e.Err))
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ConfigurationError means the cart could not be configured for the target
// datacenter, e.g. the provider requires a region we cannot infer.
type ConfigurationError struct {
	Datacenter string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configure %s: %s", e.Datacenter, e.Reason)
}

// ErrorKind labels a failure for logs and metrics. It never changes how the
// failure is recorded.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindOutOfStock    ErrorKind = "out_of_stock"
	KindProvider      ErrorKind = "provider"
	KindConfiguration ErrorKind = "configuration"
	KindUnexpected    ErrorKind = "unexpected"
)

func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var provErr *ProviderError
	var confErr *ConfigurationError
	switch {
	case errors.Is(err, ErrOutOfStock):
		return KindOutOfStock
	case errors.As(err, &confErr):
		return KindConfiguration
	case errors.As(err, &provErr):
		return KindProvider
	default:
		return KindUnexpected
	}
}

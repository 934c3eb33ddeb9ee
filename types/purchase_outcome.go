package types

// PurchaseResult is what a completed checkout returns.
type PurchaseResult struct {
	OrderID  string
	OrderURL string
	// Options holds the add-on plan codes that were actually attached to the cart.
	Options []string
}

// PurchaseOutcome is the terminal result of a single attempt as the ledger sees it.
type PurchaseOutcome struct {
	Result *PurchaseResult
	Err    error
}

func (o PurchaseOutcome) Succeeded() bool {
	return o.Err == nil && o.Result != nil
}

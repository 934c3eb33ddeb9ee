package types

// Stats are summary counters derived from the queue, catalog and history.
type Stats struct {
	ActiveQueues     int `json:"activeQueues"`
	TotalServers     int `json:"totalServers"`
	AvailableServers int `json:"availableServers"`
	PurchaseSuccess  int `json:"purchaseSuccess"`
	PurchaseFailed   int `json:"purchaseFailed"`
}

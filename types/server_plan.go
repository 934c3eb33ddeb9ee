package types

// ServerPlan is a catalog entry the operator can watch.
type ServerPlan struct {
	PlanCode         string                   `json:"planCode"`
	Name             string                   `json:"name"`
	Description      string                   `json:"description"`
	CPU              string                   `json:"cpu"`
	Memory           string                   `json:"memory"`
	Storage          string                   `json:"storage"`
	Bandwidth        string                   `json:"bandwidth"`
	DefaultOptions   []string                 `json:"defaultOptions"`
	AvailableOptions []string                 `json:"availableOptions"`
	Datacenters      []DatacenterAvailability `json:"datacenters"`
}

type DatacenterAvailability struct {
	Datacenter   string `json:"datacenter"`
	Availability string `json:"availability"`
}

// HasStock reports whether at least one datacenter of the plan is in stock.
func (p ServerPlan) HasStock() bool {
	for _, dc := range p.Datacenters {
		if IsInStock(dc.Availability) {
			return true
		}
	}
	return false
}

func (p ServerPlan) Clone() ServerPlan {
	p.DefaultOptions = append([]string(nil), p.DefaultOptions...)
	p.AvailableOptions = append([]string(nil), p.AvailableOptions...)
	p.Datacenters = append([]DatacenterAvailability(nil), p.Datacenters...)
	return p
}

package types

// Availability is the normalized stock state of one datacenter.
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
	Unknown     Availability = "unknown"
)

// AvailabilitySnapshot maps datacenter codes to their normalized state.
type AvailabilitySnapshot map[string]Availability

// IsInStock reports whether the raw provider value denotes stock. Anything
// other than the two sentinels, or an empty value, counts.
func IsInStock(raw string) bool {
	return raw != "" && raw != string(Unavailable) && raw != string(Unknown)
}

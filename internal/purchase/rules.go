package purchase

import "strings"

var regionPrefixes = []struct {
	region   string
	prefixes []string
}{
	{"europe", []string{"gra", "rbx", "sbg", "eri", "lim", "waw", "par", "fra", "lon"}},
	{"canada", []string{"bhs"}},
	{"usa", []string{"vin", "hil"}},
	{"apac", []string{"syd", "sgp"}},
}

// InferRegion maps a datacenter code to the order region from its prefix.
func InferRegion(datacenter string) (string, bool) {
	dc := strings.ToLower(strings.TrimSpace(datacenter))
	for _, r := range regionPrefixes {
		for _, p := range r.prefixes {
			if strings.HasPrefix(dc, p) {
				return r.region, true
			}
		}
	}
	return "", false
}

var deniedOptionTerms = []string{
	"windows-server", "sql-server", "cpanel-license", "plesk-",
	"-license-", "control-panel", "panel", "license", "security",
}

// IsHardwareOption reports whether an option code may be attached as a
// hardware add-on. Software licenses, panels and OS codes are refused.
func IsHardwareOption(code string) bool {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" || strings.HasPrefix(c, "os-") {
		return false
	}
	for _, term := range deniedOptionTerms {
		if strings.Contains(c, term) {
			return false
		}
	}
	return true
}

// FilterOptions keeps the hardware options in their original order and
// returns the rejected ones separately for logging.
func FilterOptions(options []string) (kept, dropped []string) {
	for _, o := range options {
		if IsHardwareOption(o) {
			kept = append(kept, strings.TrimSpace(o))
		} else {
			dropped = append(dropped, o)
		}
	}
	return kept, dropped
}

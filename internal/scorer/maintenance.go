package scorer

import "strings"

// maintenanceKeywords flag routine like-for-like work that is never a
// real project lead, however confident the upstream classifier was.
var maintenanceKeywords = []string{
	"maintenance",
	"repair",
	"re-roof",
	"reroof",
	"reroofing",
	"water heater",
	"like for like",
	"like-for-like",
	"replace existing",
	"furnace swap",
	"annual inspection",
}

// IsMaintenanceLike reports whether the description or permit type reads
// like routine maintenance rather than new construction or remodel work.
func IsMaintenanceLike(description, permitType string) bool {
	combined := strings.ToLower(description + " " + permitType)
	for _, kw := range maintenanceKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

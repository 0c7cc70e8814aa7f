package directory

import "strings"

// RevenueBrackets are the revenue filters the directory site understands,
// as they appear in listing URLs.
var RevenueBrackets = []string{
	"under-1m",
	"1m-5m",
	"5m-10m",
	"10m-25m",
	"25m-50m",
	"50m-100m",
	"100m-250m",
	"250m-500m",
	"500m-1b",
	"over-1b",
}

// ValidRevenueBracket reports whether the bracket is one the site serves.
func ValidRevenueBracket(bracket string) bool {
	for _, b := range RevenueBrackets {
		if b == bracket {
			return true
		}
	}
	return false
}

// NormalizeIndustryGroup converts a free-form industry name into the slug
// form used in listing URLs.
func NormalizeIndustryGroup(industry string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(industry)), " ", "-")
}

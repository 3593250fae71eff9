package panels

import (
	"strings"

	"github.com/biter777/countries"
)

// CountryName returns the ISO 3166 name for an alpha-2 code, or the code
// itself when it is unknown.
func CountryName(alpha2 string) string {
	code := strings.ToUpper(strings.TrimSpace(alpha2))
	if len(code) != 2 {
		return alpha2
	}
	if country := countries.ByName(code); country.IsValid() {
		return country.String()
	}
	return alpha2
}

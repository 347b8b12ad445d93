package gazetteer

import (
	"strings"

	"golang.org/x/text/language"
)

// Country rendering formats.
const (
	CountryAlpha2 = "alpha2"
	CountryAlpha3 = "alpha3"
)

// CountryCode renders an ISO 3166-1 alpha-2 code in the requested format.
// Codes the region table does not know are returned unchanged.
func CountryCode(code, format string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || format != CountryAlpha3 {
		return code
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	iso3 := region.ISO3()
	if iso3 == "" || iso3 == "ZZZ" {
		return code
	}
	return iso3
}

// Label formats a place as "name, admin, country", omitting empty parts.
func Label(name, admin, country, countryFormat string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{name, admin, CountryCode(country, countryFormat)} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

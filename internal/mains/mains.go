// Package mains works out the local electrical mains frequency, so hum
// measurements look at the right part of the spectrum.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// DefaultFrequency is used when the timezone gives no usable answer.
// 50Hz is the more common standard worldwide.
const DefaultFrequency = 50

// Info describes how the mains frequency was determined.
type Info struct {
	Frequency int    // 50 or 60
	Timezone  string // IANA timezone, empty if it could not be read
	Country   string // Country resolved from the timezone, empty if unknown
}

// Detect reads the local timezone and resolves it to a mains frequency.
func Detect() Info {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return Info{Frequency: DefaultFrequency}
	}
	return lookup(timezone)
}

// Frequency returns the local mains frequency in Hz (50 or 60).
func Frequency() int {
	return Detect().Frequency
}

// FrequencyForTimezone returns the mains frequency for a given IANA timezone.
func FrequencyForTimezone(timezone string) int {
	return lookup(timezone).Frequency
}

func lookup(timezone string) Info {
	info := Info{Frequency: DefaultFrequency, Timezone: timezone}

	// UTC/GMT have no country
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return info
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return info
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return info
	}

	info.Country = country
	info.Frequency = frequencyForCountry(country)
	return info
}

// Harmonics returns the first count multiples of fundamental that lie below
// limit (normally the Nyquist frequency).
func Harmonics(fundamental, count int, limit float64) []float64 {
	var out []float64
	for k := 1; k <= count; k++ {
		hz := float64(k * fundamental)
		if hz >= limit {
			break
		}
		out = append(out, hz)
	}
	return out
}

// frequencyForCountry returns the mains frequency for a country name.
// Returns 50Hz for unknown countries (more common globally).
func frequencyForCountry(country string) int {
	// Japan special case: split 50/60Hz by region
	// Default to 50Hz (Tokyo region is most populous)
	if country == "Japan" {
		return 50
	}

	if hz60Countries[country] {
		return 60
	}
	return DefaultFrequency
}

// hz60Countries lists countries using 60Hz mains power.
// All other countries use 50Hz.
// Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var hz60Countries = map[string]bool{
	// North America
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	// Central America
	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	// Caribbean
	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// South America (partial, most use 50Hz)
	"Brazil":    true, // Note: Brazil has both 50Hz and 60Hz regions; 60Hz predominant
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	// Asia (partial)
	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	// Pacific
	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}

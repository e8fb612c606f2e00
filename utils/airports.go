// utils/airports.go
package utils

import "strings"

// NormalizeAirportCode trims whitespace and uppercases an airport code.
func NormalizeAirportCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsICAOCode reports whether code looks like a 4-letter ICAO airport
// code (e.g. "KMCO"). The OpenSky movements endpoints only accept these.
func IsICAOCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"openskyfetch/utils"
)

// ErrValidation marks malformed top-level input: bad dates, no valid
// airports, missing credentials. These fail before any network or
// storage work.
var ErrValidation = errors.New("invalid input")

// ParseAirports splits a comma-separated list of airport codes,
// normalizes each, and partitions them into valid 4-letter ICAO codes
// and rejects. Empty entries from stray commas are ignored.
func ParseAirports(s string) (valid, invalid []string) {
	for _, raw := range strings.Split(s, ",") {
		code := utils.NormalizeAirportCode(raw)
		if code == "" {
			continue
		}
		if !utils.IsICAOCode(code) {
			invalid = append(invalid, code)
			continue
		}
		valid = append(valid, code)
	}
	return valid, invalid
}

// DateArg is a parsed --start-date or --end-date value: always a
// calendar day, plus the precise instant when the input carried an
// explicit time of day.
type DateArg struct {
	Day     time.Time  // midnight UTC of the calendar day
	Instant *time.Time // non-nil only for datetime input
}

var datetimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDateArg accepts YYYY-MM-DD, "YYYY-MM-DD HH:MM:SS", or the
// ISO-8601 T form, all interpreted as UTC.
func ParseDateArg(s string) (DateArg, error) {
	if day, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return DateArg{Day: day}, nil
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return DateArg{Day: day, Instant: &t}, nil
		}
	}
	return DateArg{}, fmt.Errorf(
		"%w: invalid date/datetime %q; use YYYY-MM-DD, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DDTHH:MM:SS'",
		ErrValidation, s)
}

// ValidateRange enforces start <= end, comparing instants when both
// bounds carry one and calendar days otherwise.
func ValidateRange(start, end DateArg) error {
	if start.Instant != nil && end.Instant != nil {
		if start.Instant.After(*end.Instant) {
			return fmt.Errorf("%w: start date must be before or equal to end date", ErrValidation)
		}
		return nil
	}
	if start.Day.After(end.Day) {
		return fmt.Errorf("%w: start date must be before or equal to end date", ErrValidation)
	}
	return nil
}

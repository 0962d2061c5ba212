// Package normalizer handles regional money and date parsing.
// Converts the Brazilian-formatted values found in acquirer and clinic exports into
// exact decimal amounts and dates.
package normalizer

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidAmount = errors.New("invalid amount format")
	ErrInvalidDate   = errors.New("invalid date format")
)

// DayMonthYear is the date format shared by every source export.
const DayMonthYear = "DD/MM/YYYY"

// Day-first formats accepted when the preferred format does not match
var dateFormats = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
}

// ParseDate parses a day/month/year value.
// time.Time values are returned as-is; anything that is not a parseable string fails with ErrInvalidDate.
func ParseDate(raw any, preferredFormat string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	var s string
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s = strings.TrimSpace(v)
	default:
		return time.Time{}, ErrInvalidDate
	}

	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	// Try preferred format first
	if preferredFormat != "" {
		goFormat := convertDateFormat(preferredFormat)
		if t, err := time.ParseInLocation(goFormat, s, loc); err == nil {
			return t, nil
		}
	}

	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidDate
}

// convertDateFormat converts user-friendly format strings to Go format
// e.g., "DD/MM/YYYY" -> "02/01/2006"
func convertDateFormat(format string) string {
	// Longest tokens first so "YYYY" is not consumed as two "YY".
	replacer := strings.NewReplacer(
		"YYYY", "2006",
		"YY", "06",
		"MM", "01",
		"DD", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
	)
	return replacer.Replace(format)
}

var spacePattern = regexp.MustCompile(`\s+`)

// CleanText trims a free-text cell and collapses internal whitespace
func CleanText(raw string) string {
	return spacePattern.ReplaceAllString(strings.TrimSpace(raw), " ")
}

// Package phone provides phone number and digit utilities for Saudi numbers.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	defaultRegion = "SA"
	// CountryPrefix is the canonical prefix for stored numbers.
	CountryPrefix = "966"
)

// arabicDigits folds U+0660..U+0669 onto '0'..'9'.
var arabicDigits = runes.Map(func(r rune) rune {
	if r >= '٠' && r <= '٩' {
		return '0' + (r - '٠')
	}
	return r
})

// DigitsToASCII replaces Arabic-Indic digits with ASCII digits. All other
// characters pass through unchanged.
func DigitsToASCII(text string) string {
	out, _, err := transform.String(arabicDigits, text)
	if err != nil {
		// runes.Map never fails on valid UTF-8; keep the input on malformed text.
		return text
	}
	return out
}

// FormatNumericInput converts Arabic-Indic digits and drops every non-digit.
func FormatNumericInput(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, DigitsToASCII(raw))
}

// Normalize maps a raw Saudi phone number onto the 966XXXXXXXXX form.
// It does not check length or number type; that belongs to validation.
// Applying it to an already normalized number returns the number unchanged.
func Normalize(raw string) string {
	cleaned := clean(DigitsToASCII(raw))
	digits := strings.TrimPrefix(cleaned, "+")
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "0"):
		return CountryPrefix + digits[1:]
	case strings.HasPrefix(digits, CountryPrefix):
		return digits
	default:
		return CountryPrefix + digits
	}
}

// clean keeps ASCII digits and a single leading plus sign.
func clean(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeE164 formats a phone number to E.164 for outbound messaging.
// If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(DigitsToASCII(input))
	if trimmed == "" {
		return trimmed
	}

	candidate := trimmed
	if strings.HasPrefix(candidate, CountryPrefix) {
		candidate = "+" + candidate
	}

	number, err := phonenumbers.Parse(candidate, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

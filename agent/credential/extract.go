// Package credential pulls phone numbers and zip codes out of free-form
// user text. Every function here is pure and never fails; an absent match is
// reported through the boolean result.
package credential

import (
	"regexp"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`\b\d{10}\b`)
	zipPattern   = regexp.MustCompile(`\b\d{5}\b`)
)

// ExtractPhone returns the first run of exactly 10 digits bounded by word
// boundaries. Area codes are not checked.
func ExtractPhone(text string) (string, bool) {
	m := phonePattern.FindString(text)
	return m, m != ""
}

// ExtractZip returns the first run of exactly 5 digits bounded by word
// boundaries.
func ExtractZip(text string) (string, bool) {
	m := zipPattern.FindString(text)
	return m, m != ""
}

// Key builds the directory lookup key for a credential pair.
func Key(phone, zip string) string {
	return phone + "-" + zip
}

// ValidPhone reports whether s is a bare 10-digit phone number.
func ValidPhone(s string) bool {
	return len(s) == 10 && allDigits(s)
}

// ValidZip reports whether s is a bare 5-digit zip code.
func ValidZip(s string) bool {
	return len(s) == 5 && allDigits(s)
}

func allDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

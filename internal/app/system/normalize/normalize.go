// Package normalize canonicalizes user-supplied values before they are
// validated, compared or stored.
package normalize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Name trims, strips any markup and collapses internal whitespace. Case is
// preserved.
func Name(s string) string {
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// Mobile removes the separators people commonly type inside phone numbers.
func Mobile(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsTenDigitMobile reports whether s (already normalized) is exactly ten ASCII digits.
func IsTenDigitMobile(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Code upper-cases and trims identifiers such as EMP001 and HC12345678.
func Code(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// QueryParam trims a free-text query parameter. Case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

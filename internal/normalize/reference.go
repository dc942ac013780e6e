package normalize

import (
	"strings"
	"unicode"
)

// Reference reduces a free-text reference to its digit content with leading
// zeros stripped. An empty result becomes the sentinel "0", which never
// collides with a real reference because those keep at least one non-zero
// digit.
func Reference(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		return "0"
	}
	return digits
}

// ReferenceStripPrefix removes a known prefix token (case-insensitive)
// before digit extraction. Used as the fallback when the primary reference
// field does not reliably carry digits-only content.
func ReferenceStripPrefix(s, prefix string) string {
	s = strings.TrimSpace(s)
	if prefix != "" && len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		s = s[len(prefix):]
	}
	return Reference(s)
}

// HasDigits reports whether the string contains at least one digit.
func HasDigits(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// StartsWithAny reports whether the upper-cased, trimmed string starts with
// any of the given prefixes.
func StartsWithAny(s string, prefixes ...string) bool {
	t := strings.ToUpper(strings.TrimSpace(s))
	for _, p := range prefixes {
		if strings.HasPrefix(t, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}

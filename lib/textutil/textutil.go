package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeToken lowercases and removes all whitespace, it is used to
// compare grade tokens that the portal renders with inconsistent spacing.
func NormalizeToken(token string) string {
	token = strings.ToLower(token)
	return whitespaceRegex.ReplaceAllString(token, "")
}

// ContainsAll reports whether s contains every one of the markers.
func ContainsAll(s string, markers ...string) bool {
	for _, m := range markers {
		if !strings.Contains(s, m) {
			return false
		}
	}
	return true
}

// ContainsAny reports whether s contains at least one of the markers.
func ContainsAny(s string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Truncate shortens s to at most n runes, used for logging tokens.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

package repositorycache

import (
	"strings"
	"unicode"
)

// toSnake converts a type name to snake_case, stripping punctuation that can
// show up in reflected names (pointers, generic brackets, package paths).
// Leaving those characters in the cache namespace would produce keys some
// backends reject.
func toSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/2)

	prevLower := false
	prevUnderscore := true // suppress a leading underscore

	for i, r := range s {
		switch {
		case unicode.IsUpper(r):
			nextLower := false
			if i+1 < len(s) {
				nextLower = unicode.IsLower(rune(s[i+1]))
			}
			if (prevLower || nextLower) && !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
			prevUnderscore = false

		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevLower = true
			prevUnderscore = false

		default:
			if !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			prevLower = false
			prevUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}

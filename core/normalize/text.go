package normalize

import (
	"strings"
	"unicode"
)

// SpaceClass is a regexp character class matching the same runes as IsSpace.
const SpaceClass = `[\s\x0B\p{Z}\x{0085}\x{FEFF}]`

// IsSpace reports whether r is whitespace for collapsing purposes.
// It is unicode.IsSpace plus the byte order mark.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Collapse replaces every run of whitespace with a single space.
// It does not trim.
func Collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		b.WriteRune(r)
		inSpace = false
	}
	return b.String()
}

// Clean collapses whitespace and trims the result.
func Clean(s string) string {
	return Trim(Collapse(s))
}

// Truncate returns at most max characters of s, never splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// Len returns the length of s in characters.
func Len(s string) int {
	return len([]rune(s))
}

// Trim removes leading and trailing whitespace as defined by IsSpace.
func Trim(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

package cpe

import "strings"

const (
	uriPrefix       = "cpe:/"
	formattedPrefix = "cpe:2.3:"
)

// Normalize coerces loosely formed identifiers toward the strict grammar:
// every unescaped glob character ('*' or '?') is removed, then trailing
// empty components are stripped. Normalize(Normalize(s)) == Normalize(s)
// for every input.
func Normalize(raw string) string {
	stripped, _ := stripGlobs(raw)
	prefix, body := splitPrefix(stripped)
	return prefix + trimTrailingSeparators(body)
}

// stripGlobs removes unescaped glob characters and reports whether any were
// removed. Backslash escape pairs are copied through untouched.
func stripGlobs(s string) (string, bool) {
	if !strings.ContainsAny(s, "*?") {
		return s, false
	}
	var b strings.Builder
	b.Grow(len(s))
	removed := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
		case c == '*' || c == '?':
			removed = true
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), removed
}

func splitPrefix(s string) (string, string) {
	for _, prefix := range []string{formattedPrefix, uriPrefix} {
		if hasPrefixFold(s, prefix) {
			return s[:len(prefix)], s[len(prefix):]
		}
	}
	return "", s
}

func trimTrailingSeparators(s string) string {
	for len(s) > 0 && s[len(s)-1] == ':' && !escapedAt(s, len(s)-1) {
		s = s[:len(s)-1]
	}
	return s
}

// escapedAt reports whether the byte at i is preceded by an odd number of
// backslashes.
func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// splitUnescaped splits s on sep, ignoring separators escaped by a backslash.
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

package cpe

// Matches reports whether a and b are compatible. Fields are compared in
// canonical order; a field passes when either side is a wildcard or absent,
// otherwise kind and token must be identical. The first incompatible field
// decides the result.
//
// Token comparison is ordinal, but Parse lowercases concrete tokens because
// both CPE bindings are case-insensitive, so "Apache" and "apache" compare
// equal once parsed.
//
// The relation is reflexive and symmetric but not transitive.
func Matches(a, b Identifier) bool {
	for f := Field(0); f < fieldCount; f++ {
		if !compatible(a.fields[f], b.fields[f]) {
			return false
		}
	}
	return true
}

// Mismatch returns the first field on which a and b disagree. ok is false
// when the identifiers match.
func Mismatch(a, b Identifier) (field Field, ok bool) {
	for f := Field(0); f < fieldCount; f++ {
		if !compatible(a.fields[f], b.fields[f]) {
			return f, true
		}
	}
	return 0, false
}

func compatible(a, b Value) bool {
	if a.IsWildcard() || b.IsWildcard() {
		return true
	}
	return a.kind == b.kind && a.token == b.token
}

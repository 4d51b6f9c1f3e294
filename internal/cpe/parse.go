package cpe

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrInvalid is matched by every error returned from Parse.
var ErrInvalid = errors.New("invalid cpe")

// ParseError describes why an identifier string was rejected.
type ParseError struct {
	Input  string
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse cpe %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("parse cpe %q: %s: %s", e.Input, e.Field, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrInvalid }

var uriFields = [...]Field{
	FieldPart, FieldVendor, FieldProduct, FieldVersion,
	FieldUpdate, FieldEdition, FieldLanguage,
}

// Parse decodes a 2.2 URI or 2.3 formatted string into an Identifier.
// Normalization is applied first, so a component reduced to nothing by glob
// removal becomes an explicit wildcard while an originally empty component
// stays absent. Concrete tokens are case-folded.
func Parse(raw string) (Identifier, error) {
	s := strings.TrimSpace(raw)
	switch {
	case hasPrefixFold(s, formattedPrefix):
		return parseFormatted(raw, s[len(formattedPrefix):])
	case hasPrefixFold(s, uriPrefix):
		return parseURI(raw, s[len(uriPrefix):])
	default:
		return Identifier{}, &ParseError{Input: raw, Reason: "missing cpe:/ or cpe:2.3: prefix"}
	}
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(raw string) Identifier {
	id, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func parseURI(raw, body string) (Identifier, error) {
	components := strings.Split(body, ":")
	if n := significant(components); n > len(uriFields) {
		return Identifier{}, &ParseError{
			Input:  raw,
			Reason: fmt.Sprintf("too many components (got %d, max %d)", n, len(uriFields)),
		}
	}

	var id Identifier
	for i, component := range components {
		if i >= len(uriFields) {
			break
		}
		field := uriFields[i]
		if field == FieldEdition && strings.HasPrefix(component, "~") {
			if err := id.setPackedEdition(raw, component); err != nil {
				return Identifier{}, err
			}
			continue
		}
		value, err := uriValue(component)
		if err != nil {
			return Identifier{}, &ParseError{Input: raw, Field: field.String(), Reason: err.Error()}
		}
		id.fields[field] = value
	}
	return id, id.validate(raw)
}

func (id *Identifier) setPackedEdition(raw, component string) error {
	parts := strings.Split(component, "~")
	if len(parts) != 6 {
		return &ParseError{
			Input:  raw,
			Field:  FieldEdition.String(),
			Reason: fmt.Sprintf("packed edition needs 5 sub-components, got %d", len(parts)-1),
		}
	}
	targets := [...]Field{FieldEdition, FieldSWEdition, FieldTargetSW, FieldTargetHW, FieldOther}
	for i, field := range targets {
		value, err := uriValue(parts[i+1])
		if err != nil {
			return &ParseError{Input: raw, Field: field.String(), Reason: err.Error()}
		}
		id.fields[field] = value
	}
	return nil
}

func parseFormatted(raw, body string) (Identifier, error) {
	components := splitUnescaped(body, ':')
	if n := significant(components); n > int(fieldCount) {
		return Identifier{}, &ParseError{
			Input:  raw,
			Reason: fmt.Sprintf("too many components (got %d, max %d)", n, int(fieldCount)),
		}
	}

	var id Identifier
	for i, component := range components {
		if i >= int(fieldCount) {
			break
		}
		value, err := formattedValue(component)
		if err != nil {
			return Identifier{}, &ParseError{Input: raw, Field: Field(i).String(), Reason: err.Error()}
		}
		id.fields[i] = value
	}
	return id, id.validate(raw)
}

// significant counts components up to the last one that survives
// normalization.
func significant(components []string) int {
	for i := len(components) - 1; i >= 0; i-- {
		if token, _ := stripGlobs(components[i]); token != "" {
			return i + 1
		}
	}
	return 0
}

func uriValue(component string) (Value, error) {
	token, glob := stripGlobs(component)
	if v, ok := logicalValue(token, glob); ok {
		return v, nil
	}
	decoded, err := percentDecode(token)
	if err != nil {
		return Value{}, err
	}
	return concreteValue(decoded)
}

func formattedValue(component string) (Value, error) {
	token, glob := stripGlobs(component)
	if v, ok := logicalValue(token, glob); ok {
		return v, nil
	}
	unescaped, err := unescapeFormatted(token)
	if err != nil {
		return Value{}, err
	}
	return concreteValue(unescaped)
}

func logicalValue(token string, glob bool) (Value, bool) {
	switch {
	case token == "" && glob:
		return Value{kind: KindAny}, true
	case token == "":
		return Value{kind: KindAbsent}, true
	case token == "-":
		return Value{kind: KindNA}, true
	default:
		return Value{}, false
	}
}

func concreteValue(token string) (Value, error) {
	for i := 0; i < len(token); i++ {
		if c := token[i]; c <= ' ' || c > '~' {
			return Value{}, fmt.Errorf("invalid character %q", c)
		}
	}
	return Value{kind: KindConcrete, token: strings.ToLower(token)}, nil
}

func percentDecode(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated percent escape in %q", s)
		}
		hi, okHi := unhex(s[i+1])
		lo, okLo := unhex(s[i+2])
		if !okHi || !okLo {
			return "", fmt.Errorf("malformed percent escape in %q", s)
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func unescapeFormatted(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("dangling escape in %q", s)
		}
		b.WriteByte(s[i+1])
		i++
	}
	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func (id Identifier) validate(raw string) error {
	part := id.fields[FieldPart]
	switch part.kind {
	case KindConcrete:
		switch part.token {
		case "a", "o", "h":
		default:
			return &ParseError{Input: raw, Field: FieldPart.String(), Reason: fmt.Sprintf("unknown part %q (want a, o or h)", part.token)}
		}
	case KindNA:
		return &ParseError{Input: raw, Field: FieldPart.String(), Reason: "part cannot be not-applicable"}
	}

	if lang := id.fields[FieldLanguage]; lang.kind == KindConcrete {
		if _, err := language.Parse(lang.token); err != nil {
			return &ParseError{Input: raw, Field: FieldLanguage.String(), Reason: fmt.Sprintf("invalid language tag: %v", err)}
		}
	}
	return nil
}

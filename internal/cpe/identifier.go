package cpe

import (
	"strings"
)

// Kind describes how an identifier field was populated.
type Kind uint8

const (
	// KindAbsent marks a component that was empty or omitted in the source string.
	KindAbsent Kind = iota
	// KindAny marks an explicit wildcard (the component carried a glob character).
	KindAny
	// KindNA marks the "not applicable" logical value ("-").
	KindNA
	// KindConcrete marks a regular, non-empty token.
	KindConcrete
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindAny:
		return "any"
	case KindNA:
		return "na"
	case KindConcrete:
		return "concrete"
	default:
		return "unknown"
	}
}

// Value is a single identifier field.
type Value struct {
	kind  Kind
	token string
}

// Any returns the explicit wildcard value.
func Any() Value { return Value{kind: KindAny} }

// Concrete returns a concrete value for token. An empty token yields an
// absent value.
func Concrete(token string) Value {
	if token == "" {
		return Value{kind: KindAbsent}
	}
	return Value{kind: KindConcrete, token: token}
}

// Kind reports how the value was populated.
func (v Value) Kind() Kind { return v.kind }

// Token returns the concrete token, or "" for logical values.
func (v Value) Token() string { return v.token }

// IsWildcard reports whether the value matches any counterpart.
func (v Value) IsWildcard() bool { return v.kind == KindAny || v.kind == KindAbsent }

func (v Value) String() string {
	switch v.kind {
	case KindConcrete:
		return v.token
	case KindNA:
		return "-"
	default:
		return "*"
	}
}

// Field indexes the eleven identifier attributes in their canonical order.
type Field int

const (
	FieldPart Field = iota
	FieldVendor
	FieldProduct
	FieldVersion
	FieldUpdate
	FieldEdition
	FieldLanguage
	FieldSWEdition
	FieldTargetSW
	FieldTargetHW
	FieldOther

	fieldCount
)

var fieldNames = [fieldCount]string{
	"part", "vendor", "product", "version", "update", "edition",
	"language", "sw_edition", "target_sw", "target_hw", "other",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// Fields lists every attribute in canonical order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Identifier is a parsed CPE name. The zero value has every field absent and
// therefore matches any other identifier.
type Identifier struct {
	fields [fieldCount]Value
}

// Get returns the value stored for field f.
func (id Identifier) Get(f Field) Value {
	if f < 0 || f >= fieldCount {
		return Value{}
	}
	return id.fields[f]
}

func (id Identifier) Part() Value     { return id.fields[FieldPart] }
func (id Identifier) Vendor() Value   { return id.fields[FieldVendor] }
func (id Identifier) Product() Value  { return id.fields[FieldProduct] }
func (id Identifier) Version() Value  { return id.fields[FieldVersion] }
func (id Identifier) Language() Value { return id.fields[FieldLanguage] }

// IsFullyConcrete reports whether no field is a wildcard or absent.
func (id Identifier) IsFullyConcrete() bool {
	for _, v := range id.fields {
		if v.IsWildcard() {
			return false
		}
	}
	return true
}

// String renders the 2.2 URI binding. An explicit wildcard renders as "*",
// an absent field as an empty component, and trailing empty components are
// trimmed, so Parse(id.String()) keeps every kind. The one exception is the
// packed edition: when sw_edition, target_sw, target_hw and other are all
// wildcards it is not emitted, and those four come back absent.
func (id Identifier) String() string {
	return id.uri(func(v Value) string {
		if v.kind == KindAny {
			return "*"
		}
		return uriComponent(v)
	})
}

// Key renders the URI binding with every wildcard, explicit or absent, as an
// empty component. Identifiers with equal keys are interchangeable for
// Matches, which makes Key suitable for index lookups.
func (id Identifier) Key() string {
	return id.uri(uriComponent)
}

func (id Identifier) uri(component func(Value) string) string {
	components := make([]string, 0, 7)
	for f := FieldPart; f <= FieldLanguage; f++ {
		if f == FieldEdition {
			components = append(components, id.packedEdition(component))
			continue
		}
		components = append(components, component(id.fields[f]))
	}
	for len(components) > 0 && components[len(components)-1] == "" {
		components = components[:len(components)-1]
	}
	return uriPrefix + strings.Join(components, ":")
}

func (id Identifier) packedEdition(component func(Value) string) string {
	extended := false
	for f := FieldSWEdition; f <= FieldOther; f++ {
		if !id.fields[f].IsWildcard() {
			extended = true
			break
		}
	}
	if !extended {
		return component(id.fields[FieldEdition])
	}
	parts := []string{
		"",
		component(id.fields[FieldEdition]),
		component(id.fields[FieldSWEdition]),
		component(id.fields[FieldTargetSW]),
		component(id.fields[FieldTargetHW]),
		component(id.fields[FieldOther]),
	}
	return strings.Join(parts, "~")
}

// FormattedString renders the 2.3 formatted string binding.
func (id Identifier) FormattedString() string {
	var b strings.Builder
	b.WriteString(formattedPrefix)
	for i, v := range id.fields {
		if i > 0 {
			b.WriteByte(':')
		}
		switch v.kind {
		case KindConcrete:
			b.WriteString(escapeFormatted(v.token))
		case KindNA:
			b.WriteByte('-')
		default:
			b.WriteByte('*')
		}
	}
	return b.String()
}

func uriComponent(v Value) string {
	switch v.kind {
	case KindConcrete:
		return encodeURI(v.token)
	case KindNA:
		return "-"
	default:
		return ""
	}
}

func encodeURI(token string) string {
	if token == "-" {
		return "%2d"
	}
	var b strings.Builder
	for i := 0; i < len(token); i++ {
		c := token[i]
		if isAlnum(c) || c == '.' || c == '_' || c == '-' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

func escapeFormatted(token string) string {
	if token == "-" {
		return `\-`
	}
	var b strings.Builder
	for i := 0; i < len(token); i++ {
		c := token[i]
		if !isAlnum(c) && c != '_' && c != '.' && c != '-' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

const hexDigits = "0123456789abcdef"

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

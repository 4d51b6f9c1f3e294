// Package cpe models CPE product identifiers and the compatibility rule used
// to correlate advisory identifiers with SBOM identifiers.
//
// Two bindings are accepted: the 2.2 URI form (cpe:/a:vendor:product:...)
// with the packed edition component, and the 2.3 formatted string
// (cpe:2.3:a:vendor:product:...). Both decode into the same eleven-field
// Identifier. Each field records how it was populated: a concrete token, an
// explicit wildcard, an absent component, or the "not applicable" marker.
// Matching treats wildcards and absent components alike, but callers can
// still tell them apart through Value.Kind.
package cpe

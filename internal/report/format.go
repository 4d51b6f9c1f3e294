package report

import (
	"fmt"
	"strings"
)

// Format selects a renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatText  Format = "text"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatTable, FormatText, FormatCSV, FormatJSON, FormatYAML}
}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(value string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return FormatTable, nil
	}
	for _, f := range Formats() {
		if f == normalized {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q", value)
}

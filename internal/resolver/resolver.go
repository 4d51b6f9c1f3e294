// Package resolver correlates advisory CPE identifiers with the identifiers
// found in SBOMs and tallies hits and misses.
package resolver

import (
	"context"
	"log/slog"
	"sort"

	"sbomstat/internal/cpe"
	"sbomstat/internal/logging"
)

// Row lists the target identifiers matched by one source identifier.
type Row struct {
	Source  string   `json:"source" yaml:"source"`
	Targets []string `json:"targets" yaml:"targets"`
}

// Count returns the number of matched targets.
func (r Row) Count() int { return len(r.Targets) }

// Result is the outcome of Resolve. Rows are ordered by source.
type Result struct {
	Hits    int   `json:"hits" yaml:"hits"`
	Misses  int   `json:"misses" yaml:"misses"`
	Skipped int   `json:"skipped" yaml:"skipped"`
	Rows    []Row `json:"rows" yaml:"rows"`
}

// Resolve matches every identifier in from against every identifier in to.
// Strings that fail to parse are logged, counted in Skipped, and otherwise
// ignored. Only identical strings are collapsed; different spellings of the
// same identifier each get their own row. Rows carry the source string as
// given and targets rendered with Identifier.String.
func Resolve(ctx context.Context, logger *slog.Logger, from, to []string) Result {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "resolver"))

	var result Result
	sources, skipped := parseAll(logger, from)
	result.Skipped += skipped
	targets, skipped := parseAll(logger, to)
	result.Skipped += skipped

	for _, src := range sources {
		row := Row{Source: src.text, Targets: []string{}}
		for _, dst := range targets {
			if cpe.Matches(src.id, dst.id) {
				row.Targets = append(row.Targets, dst.id.String())
			}
		}
		if len(row.Targets) > 0 {
			result.Hits++
			logger.Debug("identifier matched",
				logging.String(logging.FieldIdentifier, src.text),
				logging.Int("targets", len(row.Targets)),
			)
		} else {
			result.Misses++
			logger.Debug("identifier unmatched", logging.String(logging.FieldIdentifier, src.text))
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}

type parsed struct {
	text string
	id   cpe.Identifier
}

// parseAll parses the distinct inputs in sorted order.
func parseAll(logger *slog.Logger, raw []string) ([]parsed, int) {
	unique := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		unique[s] = struct{}{}
	}
	inputs := make([]string, 0, len(unique))
	for s := range unique {
		inputs = append(inputs, s)
	}
	sort.Strings(inputs)

	skipped := 0
	out := make([]parsed, 0, len(inputs))
	for _, s := range inputs {
		id, err := cpe.Parse(s)
		if err != nil {
			skipped++
			logger.Warn("failed to parse cpe",
				logging.String(logging.FieldIdentifier, s),
				logging.Error(err),
			)
			continue
		}
		out = append(out, parsed{text: s, id: id})
	}
	return out, skipped
}

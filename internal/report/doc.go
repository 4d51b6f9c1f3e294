// Package report renders the results of a run and optionally persists them.
//
// Frequency holds the counted keys produced by a handler; the resolver's
// Result holds match rows. Both render as plain text (the historical
// layout), a rounded table, CSV, JSON, or YAML. Sink appends a run to a
// SQLite database guarded by an advisory file lock so concurrent invocations
// never interleave writes.
package report

// Package logging assembles structured slog loggers and formatting helpers used
// across sbomstat.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so pipeline and handler code can tag
// log lines with the run identifier without threading it by hand. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail, plus a progress sampler for log-only progress reporting when no
// terminal is attached.
package logging

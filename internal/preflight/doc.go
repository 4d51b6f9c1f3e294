// Package preflight provides readiness checks for the filesystem paths that
// sbomstat reads from and writes to.
//
// The CLI "sbomstat check" command runs RunAll and prints one line per check.
// Report commands run the same checks for the inputs they need before
// starting a pipeline, so a missing corpus fails fast with a clear message
// instead of surfacing as an empty report.
package preflight

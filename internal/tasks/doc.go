// Package tasks implements the per-document handlers behind each report.
//
// Every handler consumes documents one at a time from the pipeline's single
// consumer goroutine, so none of them lock. Finalize turns the accumulated
// state into a report.Frequency and must be called once, after the pipeline
// has finished.
package tasks

// Package pipeline runs the concurrent ingestion loop shared by every
// report: enumerate candidates once, decompress and decode them on a bounded
// worker pool, and hand each decoded document to a single consumer.
//
// The only backpressure point is the bounded channel between the workers and
// the consumer. A full channel blocks the sending worker; the pool limit then
// keeps further candidates from being opened. Documents reach the handler in
// the order workers finish them, which is not the enumeration order.
//
// Unreadable and undecodable documents are warned about and skipped unless
// Options.Strict is set, in which case either failure aborts the run. A
// handler error always aborts. Aborted runs return an error matching
// ErrAborted together with the statistics gathered so far.
package pipeline

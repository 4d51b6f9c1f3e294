// Package scanner enumerates the candidate files fed into the ingestion
// pipeline.
//
// Scan lists a single flat directory of compressed SBOM documents. Walk lists
// an advisory tree recursively with a ** glob and drops the signature,
// checksum, and index sidecars that CSAF providers publish next to each
// document. Both return the candidate set once; nothing is re-listed during a
// run.
package scanner

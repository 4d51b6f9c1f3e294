// Command sbomstat gathers statistics over a corpus of compressed SPDX SBOMs
// and a tree of CSAF advisories, and correlates the CPE identifiers found in
// both.
//
// Report commands (names, main-packages, main-cpe, advisory-cpe) run the
// ingestion pipeline with one handler and print a frequency report. resolve
// runs both corpora and prints, for every advisory CPE, the SBOM CPEs it
// matches. match compares two identifiers directly. config and check help set
// up and verify the environment.
package main

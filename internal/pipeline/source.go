package pipeline

import (
	"context"
	"io"

	"sbomstat/internal/decompress"
	"sbomstat/internal/scanner"
)

// DirSource lists a flat directory of compressed documents.
type DirSource struct {
	Dir      string
	Suffixes []string
}

// Candidates implements Source.
func (s DirSource) Candidates(context.Context) ([]scanner.Candidate, error) {
	return scanner.Scan(s.Dir, s.Suffixes)
}

// Open implements Source.
func (s DirSource) Open(_ context.Context, candidate scanner.Candidate) (io.ReadCloser, error) {
	return decompress.Open(candidate.Path)
}

// TreeSource lists a directory tree with a ** glob pattern.
type TreeSource struct {
	Root    string
	Pattern string
}

// Candidates implements Source.
func (s TreeSource) Candidates(context.Context) ([]scanner.Candidate, error) {
	return scanner.Walk(s.Root, s.Pattern)
}

// Open implements Source.
func (s TreeSource) Open(_ context.Context, candidate scanner.Candidate) (io.ReadCloser, error) {
	return decompress.Open(candidate.Path)
}

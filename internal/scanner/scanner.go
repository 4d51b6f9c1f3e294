package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
)

// Candidate is one file eligible for ingestion.
type Candidate struct {
	Path string
	Name string
	Size int64
}

// sidecarSuffixes are published next to advisories but never hold one.
var sidecarSuffixes = []string{".asc", ".sha256", ".sha512"}

// sidecarNames are provider index files found in CSAF trees.
var sidecarNames = map[string]struct{}{
	"provider-metadata.json": {},
	"index.txt":              {},
	"changes.csv":            {},
}

// Scan returns the regular files directly inside dir whose names end with one
// of suffixes. Subdirectories and non-regular entries are skipped. A failure
// to read dir is returned as is.
func Scan(dir string, suffixes []string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sbom directory: %w", err)
	}
	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		if !hasSuffix(entry.Name(), suffixes) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := regularFile(path, entry)
		if err != nil || info == nil {
			continue
		}
		candidates = append(candidates, Candidate{Path: path, Name: entry.Name(), Size: info.Size()})
	}
	return candidates, nil
}

// Walk returns every regular file under root matching pattern, which may use
// ** to cross directory levels. Advisory sidecar files are excluded and the
// result is sorted by path.
func Walk(root, pattern string) ([]Candidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat advisory root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("advisory root %s is not a directory", root)
	}
	if strings.TrimSpace(pattern) == "" {
		pattern = "**/*.json"
	}

	matches, err := zglob.Glob(filepath.Join(root, pattern))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("glob advisories: %w", err)
	}
	sort.Strings(matches)

	candidates := make([]Candidate, 0, len(matches))
	for _, match := range matches {
		name := filepath.Base(match)
		if isSidecar(name) {
			continue
		}
		info, err := os.Stat(match)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, Candidate{Path: match, Name: name, Size: info.Size()})
	}
	return candidates, nil
}

func regularFile(path string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type().IsRegular() {
		return entry.Info()
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return nil, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}
	return info, nil
}

func hasSuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func isSidecar(name string) bool {
	if _, ok := sidecarNames[name]; ok {
		return true
	}
	for _, suffix := range sidecarSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

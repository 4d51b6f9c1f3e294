package scanner_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbomstat/internal/scanner"
)

func touch(t *testing.T, path string, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func names(candidates []scanner.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Name)
	}
	sort.Strings(out)
	return out
}

func TestScanFiltersBySuffix(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.json.bz2"), "aaa")
	touch(t, filepath.Join(dir, "b.json.bz2"), "b")
	touch(t, filepath.Join(dir, "c.json"), "{}")
	touch(t, filepath.Join(dir, "nested", "d.json.bz2"), "d")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.bz2"), 0o755))

	candidates, err := scanner.Scan(dir, []string{".bz2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json.bz2", "b.json.bz2"}, names(candidates))
	for _, c := range candidates {
		if c.Name == "a.json.bz2" {
			assert.EqualValues(t, 3, c.Size)
			assert.Equal(t, filepath.Join(dir, "a.json.bz2"), c.Path)
		}
	}
}

func TestScanFollowsSymlinksToFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "real.bz2")
	touch(t, target, "x")
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.bz2")))
	require.NoError(t, os.Symlink(t.TempDir(), filepath.Join(dir, "dirlink.bz2")))

	candidates, err := scanner.Scan(dir, []string{".bz2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"link.bz2"}, names(candidates))
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := scanner.Scan(filepath.Join(t.TempDir(), "missing"), []string{".bz2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanEmptyDirectory(t *testing.T) {
	candidates, err := scanner.Scan(t.TempDir(), []string{".bz2"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestWalkSkipsSidecars(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "2024", "rhsa-2024_0001.json"), "{}")
	touch(t, filepath.Join(root, "2024", "rhsa-2024_0001.json.asc"), "sig")
	touch(t, filepath.Join(root, "2024", "rhsa-2024_0001.json.sha256"), "sum")
	touch(t, filepath.Join(root, "2023", "deep", "rhsa-2023_0009.json"), "{}")
	touch(t, filepath.Join(root, "provider-metadata.json"), "{}")
	touch(t, filepath.Join(root, "index.txt"), "")

	candidates, err := scanner.Walk(root, "**/*.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"rhsa-2023_0009.json", "rhsa-2024_0001.json"}, names(candidates))
}

func TestWalkNoMatches(t *testing.T) {
	candidates, err := scanner.Walk(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := scanner.Walk(filepath.Join(t.TempDir(), "nope"), "**/*.json")
	require.Error(t, err)
}

package testsupport

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteGzip writes data gzip-compressed to path.
func WriteGzip(t testing.TB, path string, data []byte) {
	t.Helper()
	writeCompressed(t, path, data, func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	})
}

// WriteZstd writes data zstd-compressed to path.
func WriteZstd(t testing.TB, path string, data []byte) {
	t.Helper()
	writeCompressed(t, path, data, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	})
}

// CopyFixture copies a committed testdata file (for example a .bz2 fixture,
// which the standard library cannot produce) into dir and returns its path.
func CopyFixture(t testing.TB, src, dir string) string {
	t.Helper()

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read fixture %s: %v", src, err)
	}
	dst := filepath.Join(dir, filepath.Base(src))
	WriteFile(t, dst, data)
	return dst
}

func writeCompressed(t testing.TB, path string, data []byte, newWriter func(io.Writer) (io.WriteCloser, error)) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w, err := newWriter(f)
	if err != nil {
		t.Fatalf("compressor for %s: %v", path, err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("flush %s: %v", path, err)
	}
}

package decompress_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbomstat/internal/decompress"
	"sbomstat/internal/testsupport"
)

const payload = "{\"name\":\"hello\"}\n"

func TestCodecFor(t *testing.T) {
	assert.Equal(t, decompress.CodecBzip2, decompress.CodecFor("a.json.bz2"))
	assert.Equal(t, decompress.CodecGzip, decompress.CodecFor("dict.xml.GZ"))
	assert.Equal(t, decompress.CodecZstd, decompress.CodecFor("x.zst"))
	assert.Equal(t, decompress.CodecNone, decompress.CodecFor("plain.json"))
}

func TestReadAllBzip2Fixture(t *testing.T) {
	data, err := decompress.ReadAll(filepath.Join("testdata", "hello.json.bz2"))
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

func TestReadAllGzipAndZstd(t *testing.T) {
	dir := t.TempDir()
	gz := filepath.Join(dir, "hello.json.gz")
	zst := filepath.Join(dir, "hello.json.zst")
	testsupport.WriteGzip(t, gz, []byte(payload))
	testsupport.WriteZstd(t, zst, []byte(payload))

	for _, path := range []string{gz, zst} {
		data, err := decompress.ReadAll(path)
		require.NoError(t, err, path)
		assert.Equal(t, payload, string(data), path)
	}
}

func TestReadAllPlain(t *testing.T) {
	data, err := decompress.ReadAll(filepath.Join("testdata", "hello.json"))
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

func TestCorruptBzip2FailsOnRead(t *testing.T) {
	rc, err := decompress.Open(filepath.Join("testdata", "broken.json.bz2"))
	require.NoError(t, err)
	defer rc.Close()
	_, err = io.ReadAll(rc)
	require.Error(t, err)
}

func TestCorruptGzipFailsOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.gz")
	testsupport.WriteFile(t, path, []byte("nope"))
	_, err := decompress.Open(path)
	require.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := decompress.Open(filepath.Join(t.TempDir(), "missing.bz2"))
	require.Error(t, err)
}

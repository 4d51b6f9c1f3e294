// Package decompress opens corpus files as decompressed byte streams.
//
// The codec is chosen from the file suffix (.bz2, .gz, .zst); anything else is
// read as is.
package decompress

import (
	"bufio"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec identifies a compression format.
type Codec string

const (
	CodecNone  Codec = "none"
	CodecBzip2 Codec = "bzip2"
	CodecGzip  Codec = "gzip"
	CodecZstd  Codec = "zstd"
)

// CodecFor reports the codec implied by a file name.
func CodecFor(name string) Codec {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".bz2"):
		return CodecBzip2
	case strings.HasSuffix(lower, ".gz"):
		return CodecGzip
	case strings.HasSuffix(lower, ".zst"):
		return CodecZstd
	default:
		return CodecNone
	}
}

// Open returns a reader yielding the decompressed content of path. Closing
// the reader releases both the codec and the file.
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := Wrap(file, CodecFor(path))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rc, nil
}

// Wrap layers codec over r. The returned reader closes r when closed.
func Wrap(r io.ReadCloser, codec Codec) (io.ReadCloser, error) {
	switch codec {
	case CodecBzip2:
		return &stream{Reader: bzip2.NewReader(bufio.NewReader(r)), closers: []io.Closer{r}}, nil
	case CodecGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip header: %w", err)
		}
		return &stream{Reader: gz, closers: []io.Closer{gz, r}}, nil
	case CodecZstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		return &stream{Reader: dec, closers: []io.Closer{closerFunc(func() error { dec.Close(); return nil }), r}}, nil
	default:
		return r, nil
	}
}

// ReadAll fully materializes the decompressed content of path.
func ReadAll(path string) ([]byte, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

type stream struct {
	io.Reader
	closers []io.Closer
}

func (s *stream) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

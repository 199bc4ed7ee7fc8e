// Package compression provides transparent stream compression for the
// format handlers. Tabular files frequently arrive compressed (exports,
// log shippers, archival dumps); readers decompress on the fly and
// writers can compress their output, keyed either by an explicit
// algorithm name or by the file extension.
//
// Supported algorithms:
//   - Gzip: wide compatibility, good compression
//   - Zstd: best compression ratio, good speed
//   - Snappy: best for speed, moderate compression
//   - LZ4: extremely fast, decent compression
package compression

import (
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/corvus-data/tabular/pkg/errors"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// Snappy represents snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 compression
	LZ4 Algorithm = "lz4"
)

// extensions maps file extensions to the algorithm they imply.
var extensions = map[string]Algorithm{
	".gz":     Gzip,
	".gzip":   Gzip,
	".zst":    Zstd,
	".zstd":   Zstd,
	".sz":     Snappy,
	".snappy": Snappy,
	".lz4":    LZ4,
}

// Detect sniffs the compression algorithm from a file path extension.
// Paths without a recognized extension map to None.
func Detect(path string) Algorithm {
	ext := strings.ToLower(filepath.Ext(path))
	if algo, ok := extensions[ext]; ok {
		return algo
	}
	return None
}

// Resolve maps a per-call option string to a concrete algorithm.
// The empty string and "auto" sniff the path extension; "none" disables
// compression regardless of extension; anything else must name a
// supported algorithm.
func Resolve(path, name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Detect(path), nil
	case "none":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	case "snappy", "sz":
		return Snappy, nil
	case "lz4":
		return LZ4, nil
	default:
		return None, errors.Newf(errors.ErrorTypeCapability, "unsupported compression algorithm %q", name)
	}
}

// NewReader wraps r with a decompressing reader for the given algorithm.
// Closing the returned reader releases decompressor state only; the
// underlying reader is left open for the caller to close.
func NewReader(r io.Reader, algo Algorithm) (io.ReadCloser, error) {
	switch algo {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to open gzip stream")
		}
		return gr, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to open zstd stream")
		}
		return zr.IOReadCloser(), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported compression algorithm %q", algo)
	}
}

// NewWriter wraps w with a compressing writer for the given algorithm.
// The returned writer must be closed to flush compressed trailers before
// the underlying writer is closed.
func NewWriter(w io.Writer, algo Algorithm) (io.WriteCloser, error) {
	switch algo {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create zstd writer")
		}
		return zw, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported compression algorithm %q", algo)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

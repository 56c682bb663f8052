package storage

import (
	"io"
	"strings"

	"github.com/autom8ter/flatdb/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	// ExtZstd marks a zstd compressed collection object
	ExtZstd = ".zst"
	// ExtLZ4 marks a lz4 compressed collection object
	ExtLZ4 = ".lz4"
)

// Decompress wraps r in a decompressor chosen by the object name's extension.
// Objects without a known compression extension are returned as is.
func Decompress(r io.Reader, name string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ExtZstd):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, 0, "failed to open zstd object: %s", name)
		}
		return dec.IOReadCloser(), nil
	case strings.HasSuffix(name, ExtLZ4):
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// DecodeObject decompresses (if needed) and decodes the active entries of a collection object
func DecodeObject(r io.Reader, name string) ([][]byte, error) {
	rc, err := Decompress(r, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	records, err := DecodeEntries(rc)
	if err != nil {
		return nil, errors.Wrap(err, 0, "object: %s", name)
	}
	return records, nil
}

// Package storage reads the active records of a collection from an underlying medium.
//
// Collections are stored as a sequence of entries. Each entry is a single status marker
// byte followed by a serialized json record. Only entries tagged with MarkerActive are
// returned by readers - every other marker (ex: MarkerDeleted) is resolved here and never
// reaches the query engine.
package storage

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/autom8ter/flatdb/errors"
)

const (
	// MarkerActive tags an entry whose record participates in queries
	MarkerActive byte = 'E'
	// MarkerDeleted tags a tombstoned entry
	MarkerDeleted byte = 'D'
)

// MaxEntrySize is the largest entry (marker + record) a reader will accept
const MaxEntrySize = 16 * 1024 * 1024

// Reader produces the raw json records of the active entries in a collection, in stored order.
type Reader interface {
	Read(ctx context.Context, collection string) ([][]byte, error)
}

// ReaderFunc adapts a function to the Reader interface
type ReaderFunc func(ctx context.Context, collection string) ([][]byte, error)

// Read calls fn(ctx, collection)
func (fn ReaderFunc) Read(ctx context.Context, collection string) ([][]byte, error) {
	return fn(ctx, collection)
}

// ValidateCollectionName rejects collection names that could address a file, object or key range
// outside of the collection's own
func ValidateCollectionName(collection string) error {
	if collection == "" || collection == "." || collection == ".." || strings.ContainsAny(collection, `/\`) {
		return errors.New(errors.Validation, "invalid collection name: %q", collection)
	}
	return nil
}

// ActivePayload returns the record of the entry if the entry is active
func ActivePayload(entry []byte) ([]byte, bool) {
	if len(entry) == 0 || entry[0] != MarkerActive {
		return nil, false
	}
	return entry[1:], true
}

// EncodeEntry prefixes the record with the given status marker
func EncodeEntry(marker byte, record []byte) []byte {
	entry := make([]byte, 0, len(record)+1)
	entry = append(entry, marker)
	return append(entry, record...)
}

// DecodeEntries reads newline separated entries from r and returns the records of the active ones.
// Blank lines are ignored.
func DecodeEntries(r io.Reader) ([][]byte, error) {
	var records [][]byte
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxEntrySize)
	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		payload, ok := ActivePayload(line)
		if !ok {
			continue
		}
		// the scanner reuses its buffer between lines
		records = append(records, bytes.Clone(payload))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, 0, "failed to scan entries")
	}
	return records, nil
}

// DecodeLines returns the records of the active entries in lines
func DecodeLines(lines []string) [][]byte {
	var records [][]byte
	for _, line := range lines {
		if payload, ok := ActivePayload([]byte(line)); ok {
			records = append(records, payload)
		}
	}
	return records
}

// Package memory is an in-memory storage reader. It is mostly useful for embedding and tests.
package memory

import (
	"context"
	"sync"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/storage"
	"github.com/autom8ter/flatdb/storage/registry"
	"github.com/autom8ter/flatdb/util"
)

func init() {
	registry.Register("memory", func(params map[string]any) (storage.Reader, error) {
		var cfg Config
		if err := util.Decode(params, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.Validation, "invalid memory params")
		}
		r := New()
		for collection, lines := range cfg.Collections {
			r.Load(collection, lines...)
		}
		return r, nil
	})
}

// Config holds the raw entries (marker + record) of each collection
type Config struct {
	Collections map[string][]string `json:"collections"`
}

// Reader holds collection entries in memory
type Reader struct {
	mu      sync.RWMutex
	entries map[string][]string
}

// New returns an empty in-memory reader
func New() *Reader {
	return &Reader{entries: map[string][]string{}}
}

// Load appends raw entries (marker + record) to the collection
func (r *Reader) Load(collection string, entries ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[collection] = append(r.entries[collection], entries...)
}

// Read returns the records of the active entries in the collection.
// An unknown collection fails with a read error.
func (r *Reader) Read(ctx context.Context, collection string) ([][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries, ok := r.entries[collection]
	if !ok {
		return nil, errors.New(errors.NotFound, "collection %s does not exist", collection)
	}
	return storage.DecodeLines(entries), nil
}

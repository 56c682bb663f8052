// Package badger reads collections from a badger key/value store.
// Each entry is stored as a value (marker + record) under the key "<collection>/<sequence>",
// where sequence is a big endian uint64, so key order is stored order. Only keys of exactly that
// shape belong to the collection.
package badger

import (
	"context"
	"encoding/binary"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/storage"
	"github.com/autom8ter/flatdb/storage/registry"
	"github.com/autom8ter/flatdb/util"
	"github.com/dgraph-io/badger/v3"
)

func init() {
	registry.Register("badger", func(params map[string]any) (storage.Reader, error) {
		var cfg Config
		if err := util.Decode(params, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.Validation, "invalid badger params")
		}
		return Open(cfg.StoragePath)
	})
}

// Config configures a badger reader
type Config struct {
	// StoragePath is the badger directory. An empty path opens an in-memory store.
	StoragePath string `json:"storage_path"`
}

// Reader reads collection entries from badger
type Reader struct {
	db *badger.DB
}

// Open opens the badger store at storagePath
func Open(storagePath string) (*Reader, error) {
	opts := badger.DefaultOptions(storagePath)
	if storagePath == "" {
		opts.InMemory = true
		opts.Dir = ""
		opts.ValueDir = ""
	}
	opts = opts.WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unavailable, "failed to open badger")
	}
	return New(db), nil
}

// New returns a reader over an already opened badger store
func New(db *badger.DB) *Reader {
	return &Reader{db: db}
}

// DB returns the underlying badger store
func (r *Reader) DB() *badger.DB {
	return r.db
}

// Prefix returns the key prefix of the collection's entries
func Prefix(collection string) []byte {
	return []byte(collection + "/")
}

// Key returns the key of the collection's entry at the given sequence
func Key(collection string, seq uint64) []byte {
	prefix := Prefix(collection)
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], seq)
	return key
}

// Read returns the records of the active entries in the collection, in key order
func (r *Reader) Read(ctx context.Context, collection string) ([][]byte, error) {
	if err := storage.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	var records [][]byte
	if err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = Prefix(collection)
		keyLen := len(opts.Prefix) + 8
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(it.Item().Key()) != keyLen {
				continue
			}
			entry, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			if payload, ok := storage.ActivePayload(entry); ok {
				records = append(records, payload)
			}
		}
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, 0, "failed to read collection %s from badger", collection)
	}
	return records, nil
}

// Close closes the underlying badger store
func (r *Reader) Close() error {
	return r.db.Close()
}

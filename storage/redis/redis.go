// Package redis reads collections stored as redis lists. Each list element is an entry (marker + record)
// and the list order is the stored order.
package redis

import (
	"context"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/storage"
	"github.com/autom8ter/flatdb/storage/registry"
	"github.com/autom8ter/flatdb/util"
	"github.com/go-redis/redis/v9"
)

// DefaultKeyPrefix is prepended to collection names to build list keys
const DefaultKeyPrefix = "flatdb:"

func init() {
	registry.Register("redis", func(params map[string]any) (storage.Reader, error) {
		var cfg Config
		if err := util.Decode(params, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.Validation, "invalid redis params")
		}
		if err := util.ValidateStruct(&cfg); err != nil {
			return nil, err
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		return New(client, cfg.KeyPrefix), nil
	})
}

// Config configures a redis reader
type Config struct {
	Addr      string `json:"addr" validate:"required"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
}

// Reader reads collection lists from redis
type Reader struct {
	client    redis.UniversalClient
	keyPrefix string
}

// New returns a reader over the given redis client
func New(client redis.UniversalClient, keyPrefix string) *Reader {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Reader{client: client, keyPrefix: keyPrefix}
}

// Key returns the list key of the collection
func (r *Reader) Key(collection string) string {
	return r.keyPrefix + collection
}

// Read returns the records of the active entries in the collection's list
func (r *Reader) Read(ctx context.Context, collection string) ([][]byte, error) {
	lines, err := r.client.LRange(ctx, r.Key(collection), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, 0, "failed to read collection %s from redis", collection)
	}
	return storage.DecodeLines(lines), nil
}

// Close closes the redis client
func (r *Reader) Close() error {
	return r.client.Close()
}

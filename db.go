package flatdb

import (
	"context"
	"io"
	"sort"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/storage"
	"github.com/autom8ter/flatdb/storage/registry"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// DB serves a set of collections from a single storage reader
type DB struct {
	config      Config
	reader      storage.Reader
	logger      Logger
	collections map[string]*Collection
}

// Open opens the configured storage provider and creates the database's collections.
// The provider must be registered (ex: import _ "github.com/autom8ter/flatdb/storage/file").
func Open(ctx context.Context, cfg Config, opts ...DBOpt) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reader, err := registry.Open(cfg.Provider, cfg.Params)
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg.LogLevel, map[string]any{
		"provider": cfg.Provider,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.Internal, "failed to create logger")
	}
	db, err := New(cfg, reader, append([]DBOpt{WithDBLogger(logger)}, opts...)...)
	if err != nil {
		return nil, err
	}
	db.logger.Debug(ctx, "database opened", map[string]any{
		"collections": db.Collections(),
	})
	return db, nil
}

// New creates a database from an existing storage reader. The config's provider and params are ignored.
func New(cfg Config, reader storage.Reader, opts ...DBOpt) (*DB, error) {
	if reader == nil {
		return nil, errors.New(errors.Validation, "nil storage reader")
	}
	db := &DB{
		config:      cfg,
		reader:      reader,
		logger:      NewNopLogger(),
		collections: map[string]*Collection{},
	}
	for _, o := range opts {
		o(db)
	}
	for _, cc := range cfg.Collections {
		if _, ok := db.collections[cc.Name]; ok {
			return nil, errors.New(errors.Validation, "duplicate collection: %s", cc.Name)
		}
		c, err := NewCollection(cc.Name, cc.FullTextFields, reader,
			WithLogger(db.logger),
			WithSkipMalformed(cfg.SkipMalformed),
		)
		if err != nil {
			return nil, err
		}
		db.collections[cc.Name] = c
	}
	return db, nil
}

// Collection returns the collection with the given name
func (d *DB) Collection(name string) (*Collection, error) {
	c, ok := d.collections[name]
	if !ok {
		return nil, errors.New(errors.NotFound, "collection does not exist: %s", name)
	}
	return c, nil
}

// Collections returns the sorted names of the database's collections
func (d *DB) Collections() []string {
	names := lo.Keys(d.collections)
	sort.Strings(names)
	return names
}

// ParseOpts returns the query parse options configured for the database
func (d *DB) ParseOpts() []ParseOpt {
	return []ParseOpt{WithLenientOperators(d.config.LenientOperators)}
}

// Logger returns the database logger
func (d *DB) Logger() Logger {
	return d.logger
}

// Find runs the query against the named collection
func (d *DB) Find(ctx context.Context, collection string, query Query, opts *FindOptions) (Documents, error) {
	c, err := d.Collection(collection)
	if err != nil {
		return nil, err
	}
	return c.Find(ctx, query, opts)
}

// FindMany runs the requests concurrently. Results are returned in request order.
// The first error cancels the remaining requests.
func (d *DB) FindMany(ctx context.Context, requests []FindRequest) ([]Documents, error) {
	results := make([]Documents, len(requests))
	egp, ctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		egp.Go(func() error {
			docs, err := d.Find(ctx, req.Collection, req.Query, req.Options)
			if err != nil {
				return err
			}
			results[i] = docs
			return nil
		})
	}
	if err := egp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close closes the storage reader if it holds resources
func (d *DB) Close(ctx context.Context) error {
	defer d.logger.Sync(ctx)
	if closer, ok := d.reader.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return errors.Wrap(err, errors.Internal, "failed to close storage reader")
		}
	}
	return nil
}

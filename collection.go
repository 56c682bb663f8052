package flatdb

import (
	"context"
	"time"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/storage"
	"github.com/segmentio/ksuid"
)

// FindOptions sorts and projects the records that match a query
type FindOptions struct {
	// Sort orders the matching records (optional)
	Sort SortSpec `json:"sort,omitempty"`
	// Projection selects the fields of each matching record (optional)
	Projection ProjectionSpec `json:"projection,omitempty"`
}

// Validate validates the find options and returns a validation error if one exists
func (f *FindOptions) Validate() error {
	if f == nil {
		return nil
	}
	if err := f.Sort.Validate(); err != nil {
		return err
	}
	return f.Projection.Validate()
}

// FindResult is the result of an asynchronous find
type FindResult struct {
	Documents Documents
	Err       error
}

// Collection is a named, read only set of records served by a storage reader
type Collection struct {
	name           string
	fullTextFields []string
	reader         storage.Reader
	logger         Logger
	skipMalformed  bool
}

// NewCollection creates a collection that reads its records from the given reader.
// fullTextFields are the fields searched by $text clauses.
func NewCollection(name string, fullTextFields []string, reader storage.Reader, opts ...CollectionOpt) (*Collection, error) {
	if name == "" {
		return nil, errors.New(errors.Validation, "empty collection name")
	}
	if reader == nil {
		return nil, errors.New(errors.Validation, "collection '%s': nil storage reader", name)
	}
	c := &Collection{
		name:           name,
		fullTextFields: append([]string{}, fullTextFields...),
		reader:         reader,
		logger:         NewNopLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Name returns the collection name
func (c *Collection) Name() string {
	return c.name
}

// FullTextFields returns the fields searched by $text clauses
func (c *Collection) FullTextFields() []string {
	return append([]string{}, c.fullTextFields...)
}

// Find reads the collection's active records and returns the ones that match the query, sorted and
// projected by the (optional) find options. An empty result is not an error.
func (c *Collection) Find(ctx context.Context, query Query, opts *FindOptions) (Documents, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	var (
		start = time.Now()
		id    = ksuid.New().String()
		tags  = map[string]any{
			"find.id":    id,
			"collection": c.name,
		}
	)
	entries, err := c.reader.Read(ctx, c.name)
	if err != nil {
		err = errors.Wrap(err, errors.Unavailable, "read file error")
		c.logger.Error(ctx, "failed to read collection", err, tags)
		return nil, err
	}
	matcher := Matcher{FullTextFields: c.fullTextFields}
	results := Documents{}
	for i, entry := range entries {
		doc, err := NewDocumentFromBytes(entry)
		if err != nil {
			if c.skipMalformed {
				c.logger.Warn(ctx, "skipping malformed record", map[string]any{
					"find.id":    id,
					"collection": c.name,
					"position":   i,
					"error":      err.Error(),
				})
				continue
			}
			return nil, errors.Wrap(err, errors.Malformed, "collection '%s': malformed record at position %d", c.name, i)
		}
		ok, err := matcher.Match(doc, query)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, doc)
		}
	}
	if opts != nil {
		if len(opts.Sort) > 0 {
			if results, err = SortDocs(results, opts.Sort); err != nil {
				return nil, err
			}
		}
		if len(opts.Projection) > 0 {
			if results, err = ProjectDocs(results, opts.Projection); err != nil {
				return nil, err
			}
		}
	}
	tags["scanned"] = len(entries)
	tags["matched"] = len(results)
	tags["execution_time"] = time.Since(start).String()
	c.logger.Debug(ctx, "find executed", tags)
	return results, nil
}

// FindAsync runs Find in a goroutine. The returned channel receives exactly one result and is then closed.
func (c *Collection) FindAsync(ctx context.Context, query Query, opts *FindOptions) <-chan FindResult {
	ch := make(chan FindResult, 1)
	go func() {
		defer close(ch)
		docs, err := c.Find(ctx, query, opts)
		ch <- FindResult{Documents: docs, Err: err}
	}()
	return ch
}

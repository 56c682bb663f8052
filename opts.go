package flatdb

// CollectionOpt is an option for configuring a collection
type CollectionOpt func(c *Collection)

// WithLogger sets the logger used by the collection
func WithLogger(logger Logger) CollectionOpt {
	return func(c *Collection) {
		c.logger = logger
	}
}

// WithSkipMalformed skips (and logs) stored records that are not valid json objects instead of
// failing the find
func WithSkipMalformed(skip bool) CollectionOpt {
	return func(c *Collection) {
		c.skipMalformed = skip
	}
}

// DBOpt is an option for configuring a database
type DBOpt func(d *DB)

// WithDBLogger sets the logger used by the database and its collections
func WithDBLogger(logger Logger) DBOpt {
	return func(d *DB) {
		d.logger = logger
	}
}

package flatdb

import (
	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/util"
	"github.com/ghodss/yaml"
	"github.com/samber/lo"
)

// Config configures a database instance
type Config struct {
	// Provider is the name of the storage provider (memory, file, badger, redis, s3, minio)
	Provider string `json:"provider" validate:"required"`
	// Params are the provider specific parameters (ex: root_dir for the file provider)
	Params map[string]any `json:"params"`
	// Collections are the collections served by the database
	Collections []CollectionConfig `json:"collections" validate:"required,min=1,dive"`
	// LogLevel is the log level (debug, info, warn, error). It defaults to info.
	LogLevel string `json:"log_level"`
	// SkipMalformed skips stored records that are not valid json objects instead of failing the find
	SkipMalformed bool `json:"skip_malformed"`
	// LenientOperators keeps unknown query operators as conditions that never match instead of rejecting the query
	LenientOperators bool `json:"lenient_operators"`
}

// CollectionConfig configures a single collection
type CollectionConfig struct {
	// Name is the collection name
	Name string `json:"name" validate:"required"`
	// FullTextFields are the fields searched by $text clauses
	FullTextFields []string `json:"full_text_fields"`
}

// Validate validates the config and returns a validation error if one exists
func (c Config) Validate() error {
	if err := util.ValidateStruct(c); err != nil {
		return err
	}
	names := lo.Map(c.Collections, func(c CollectionConfig, _ int) string {
		return c.Name
	})
	if len(lo.Uniq(names)) != len(names) {
		return errors.New(errors.Validation, "duplicate collection names: %v", names)
	}
	return nil
}

// ConfigFromMap decodes the config from a generic map (ex: parsed yaml or viper settings)
func ConfigFromMap(data map[string]any) (Config, error) {
	var c Config
	if err := util.Decode(data, &c); err != nil {
		return Config{}, errors.Wrap(err, errors.Validation, "failed to decode config")
	}
	return c, c.Validate()
}

// ConfigFromYAML decodes the config from yaml (or json) bytes
func ConfigFromYAML(content []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(content, &c); err != nil {
		return Config{}, errors.Wrap(err, errors.Validation, "failed to decode config")
	}
	return c, c.Validate()
}

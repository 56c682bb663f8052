package flatdb

import (
	"strings"

	"github.com/autom8ter/flatdb/errors"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// ProjectionSpec is the list of fields to include in each result. Dot notation selects nested fields.
type ProjectionSpec []string

// Validate validates the projection spec and returns a validation error if one exists
func (p ProjectionSpec) Validate() error {
	for _, field := range p {
		if field == "" {
			return errors.New(errors.Validation, "empty projection field")
		}
	}
	if len(lo.Uniq(p)) != len(p) {
		return errors.New(errors.Validation, "duplicate projection fields: %v", p)
	}
	return nil
}

// ProjectDocs returns new documents that only contain the selected fields. Selected fields that are
// missing from a document are omitted. An empty projection returns copies of the documents.
func ProjectDocs(documents Documents, spec ProjectionSpec) (Documents, error) {
	projected := make(Documents, 0, len(documents))
	for _, d := range documents {
		if len(spec) == 0 {
			projected = append(projected, d.Clone())
			continue
		}
		p, err := project(d, spec)
		if err != nil {
			return nil, err
		}
		projected = append(projected, p)
	}
	return projected, nil
}

func project(d *Document, spec ProjectionSpec) (*Document, error) {
	projected := NewDocument()
	var err error
	// top level fields keep the order of the source document
	d.result.ForEach(func(key, value gjson.Result) bool {
		if lo.Contains(spec, key.String()) {
			err = projected.setRaw(escapeKey(key.String()), value.Raw)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	for _, field := range spec {
		if !strings.Contains(field, ".") {
			continue
		}
		value := d.field(field)
		if !value.Exists() {
			continue
		}
		if err := projected.setRaw(fieldPath(field), value.Raw); err != nil {
			return nil, err
		}
	}
	return projected, nil
}

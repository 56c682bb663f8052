package flatdb

import (
	"sort"

	"github.com/autom8ter/flatdb/errors"
	"github.com/tidwall/gjson"
)

// Direction indicates whether results should be sorted in ascending or descending order
type Direction int

const (
	// Ascending sorts lesser values first
	Ascending Direction = 1
	// Descending sorts greater values first
	Descending Direction = -1
)

// SortField orders the result set by a given field in a given direction
type SortField struct {
	// Field is the field to sort on
	Field string `json:"field"`
	// Direction is the sort direction
	Direction Direction `json:"direction"`
}

// SortSpec is an ordered list of sort fields. The first field has the highest priority.
type SortSpec []SortField

// Validate validates the sort spec and returns a validation error if one exists
func (s SortSpec) Validate() error {
	for _, f := range s {
		if f.Field == "" {
			return errors.New(errors.Validation, "empty sort field")
		}
		if f.Direction != Ascending && f.Direction != Descending {
			return errors.New(errors.Validation, "sort direction of '%s' must be 1 or -1: %d", f.Field, f.Direction)
		}
	}
	return nil
}

// SortDocs sorts the documents in place by the sort spec and returns them. The sort is stable:
// documents that are equal on every sort field keep their relative order.
// Missing and null values sort before every other value.
func SortDocs(documents Documents, spec SortSpec) (Documents, error) {
	if len(spec) == 0 {
		return documents, nil
	}
	var sortErr error
	sort.SliceStable(documents, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, field := range spec {
			cmp, err := compareField(documents[i], documents[j], field.Field)
			if err != nil {
				sortErr = errors.Wrap(err, 0, "failed to sort on field '%s'", field.Field)
				return false
			}
			if cmp != 0 {
				return cmp*int(field.Direction) < 0
			}
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return documents, nil
}

func compareField(a, b *Document, field string) (int, error) {
	av, bv := a.field(field), b.field(field)
	aNull, bNull := isNull(av), isNull(bv)
	switch {
	case aNull && bNull:
		return 0, nil
	case aNull:
		return -1, nil
	case bNull:
		return 1, nil
	}
	return compareValues(jsonValue(av), jsonValue(bv))
}

func isNull(value gjson.Result) bool {
	return !value.Exists() || value.Type == gjson.Null
}

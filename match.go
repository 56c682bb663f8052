package flatdb

import (
	"strings"

	"github.com/autom8ter/flatdb/errors"
	"github.com/samber/lo"
)

// Matcher evaluates queries against documents. FullTextFields are the fields searched by $text clauses.
type Matcher struct {
	FullTextFields []string
}

// Matches returns true if the document passes every clause of the query.
// fullTextFields are the fields searched by a $text clause.
func (d *Document) Matches(query Query, fullTextFields ...string) (bool, error) {
	return Matcher{FullTextFields: fullTextFields}.Match(d, query)
}

// Match returns true if the document passes every clause of the query. An error is only returned when
// the query compares values that have no order (ex: $gt between a string and a number).
func (m Matcher) Match(d *Document, query Query) (bool, error) {
	for _, clause := range query.Clauses {
		var (
			ok  bool
			err error
		)
		switch clause := clause.(type) {
		case FieldClause:
			ok, err = matchField(d, clause.Field, clause.Criteria)
		case TextClause:
			ok = m.matchText(d, clause.Text)
		case AndClause:
			ok, err = matchAll(d, clause.Queries)
		case OrClause:
			ok, err = matchAny(d, clause.Queries)
		default:
			return false, errors.New(errors.Validation, "unsupported query clause: %T", clause)
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (m Matcher) matchText(d *Document, text string) bool {
	text = strings.TrimSpace(text)
	return lo.ContainsBy(m.FullTextFields, func(field string) bool {
		value := d.field(field)
		if !value.Exists() {
			return false
		}
		return lo.ContainsBy(strings.Fields(value.String()), func(token string) bool {
			return strings.EqualFold(token, text)
		})
	})
}

func matchAll(d *Document, queries []FieldQuery) (bool, error) {
	for _, fq := range queries {
		ok, err := matchFieldQuery(d, fq)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchAny(d *Document, queries []FieldQuery) (bool, error) {
	for _, fq := range queries {
		ok, err := matchFieldQuery(d, fq)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func matchFieldQuery(d *Document, fq FieldQuery) (bool, error) {
	for _, fc := range fq {
		ok, err := matchField(d, fc.Field, fc.Criteria)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// matchField evaluates the criteria against the document's field value. Absent criteria and missing
// (or null) field values never match.
func matchField(d *Document, field string, criteria *FindCriteria) (bool, error) {
	if criteria == nil {
		return false, nil
	}
	value := d.field(field)
	if !value.Exists() {
		return false, nil
	}
	actual := jsonValue(value)
	for _, c := range criteria.Conditions {
		ok, err := matchCondition(field, actual, c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchCondition(field string, actual any, c Condition) (bool, error) {
	switch c := c.(type) {
	case Eq:
		return strictEqual(actual, c.Value), nil
	case Gt:
		if actual == nil {
			return false, nil
		}
		cmp, err := compareValues(actual, c.Value)
		if err != nil {
			return false, errors.Wrap(err, 0, "%s.%s", field, opGt)
		}
		return cmp > 0, nil
	case Lt:
		if actual == nil {
			return false, nil
		}
		cmp, err := compareValues(actual, c.Value)
		if err != nil {
			return false, errors.Wrap(err, 0, "%s.%s", field, opLt)
		}
		return cmp < 0, nil
	case In:
		return lo.ContainsBy(c.Values, func(v any) bool {
			return strictEqual(actual, v)
		}), nil
	default:
		return false, nil
	}
}

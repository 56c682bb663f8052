package flatdb

import (
	"strings"

	"github.com/autom8ter/flatdb/errors"
)

const (
	opEq   = "$eq"
	opGt   = "$gt"
	opLt   = "$lt"
	opIn   = "$in"
	opText = "$text"
	opAnd  = "$and"
	opOr   = "$or"
)

// Condition is a single sub-condition of a field's FindCriteria. The set of conditions is closed:
// Eq, Gt, Lt and In.
type Condition interface {
	// Operator returns the query operator of the condition (ex: $eq)
	Operator() string
	isCondition()
}

// Eq matches when the field value is strictly equal to Value
type Eq struct {
	Value any `json:"$eq"`
}

// Gt matches when the field value is strictly greater than Value
type Gt struct {
	Value any `json:"$gt"`
}

// Lt matches when the field value is strictly less than Value
type Lt struct {
	Value any `json:"$lt"`
}

// In matches when the field value is strictly equal to one of Values. An empty list never matches.
type In struct {
	Values []any `json:"$in"`
}

// unknownOperator is an operator that was accepted by a lenient parse. It never matches.
type unknownOperator struct {
	op string
}

func (Eq) Operator() string                { return opEq }
func (Gt) Operator() string                { return opGt }
func (Lt) Operator() string                { return opLt }
func (In) Operator() string                { return opIn }
func (u unknownOperator) Operator() string { return u.op }

func (Eq) isCondition()              {}
func (Gt) isCondition()              {}
func (Lt) isCondition()              {}
func (In) isCondition()              {}
func (unknownOperator) isCondition() {}

// FindCriteria is the set of conditions applied to a single field. All conditions must hold.
type FindCriteria struct {
	Conditions []Condition
}

// Criteria creates FindCriteria from the given conditions
func Criteria(conditions ...Condition) *FindCriteria {
	return &FindCriteria{Conditions: conditions}
}

// FieldCriteria binds FindCriteria to a field. A nil Criteria never matches.
type FieldCriteria struct {
	Field    string
	Criteria *FindCriteria
}

// FieldQuery is a list of field constraints that must all hold
type FieldQuery []FieldCriteria

// Clause is a top level query clause. The set of clauses is closed: FieldClause, TextClause,
// AndClause and OrClause.
type Clause interface {
	isClause()
}

// FieldClause constrains a single field
type FieldClause struct {
	FieldCriteria
}

// TextClause matches a single token (case-insensitive) against the tokens of the full text fields
type TextClause struct {
	Text string
}

// AndClause matches when every FieldQuery matches
type AndClause struct {
	Queries []FieldQuery
}

// OrClause matches when at least one FieldQuery matches
type OrClause struct {
	Queries []FieldQuery
}

func (FieldClause) isClause() {}
func (TextClause) isClause()  {}
func (AndClause) isClause()   {}
func (OrClause) isClause()    {}

// Query is a list of clauses that must all hold. An empty query matches every record.
type Query struct {
	Clauses []Clause
}

// Validate validates the query and returns a validation error if one exists
func (q Query) Validate() error {
	texts := 0
	for _, clause := range q.Clauses {
		switch clause := clause.(type) {
		case FieldClause:
			if err := clause.validate(); err != nil {
				return err
			}
		case TextClause:
			texts++
			if texts > 1 {
				return errors.New(errors.Validation, "only one %s clause is allowed", opText)
			}
			if clause.Text == "" {
				return errors.New(errors.Validation, "empty %s clause", opText)
			}
			if len(strings.Fields(clause.Text)) != 1 {
				return errors.New(errors.Validation, "%s must be a single token: '%s'", opText, clause.Text)
			}
		case AndClause:
			if err := validateFieldQueries(opAnd, clause.Queries); err != nil {
				return err
			}
		case OrClause:
			if err := validateFieldQueries(opOr, clause.Queries); err != nil {
				return err
			}
		case nil:
			return errors.New(errors.Validation, "nil query clause")
		default:
			return errors.New(errors.Validation, "unsupported query clause: %T", clause)
		}
	}
	return nil
}

func validateFieldQueries(op string, queries []FieldQuery) error {
	for i, fq := range queries {
		for _, fc := range fq {
			if err := fc.validate(); err != nil {
				return errors.Wrap(err, 0, "%s[%d]", op, i)
			}
		}
	}
	return nil
}

func (f FieldCriteria) validate() error {
	if f.Field == "" {
		return errors.New(errors.Validation, "empty field name")
	}
	if strings.HasPrefix(f.Field, "$") {
		return errors.New(errors.Validation, "unsupported query operator: '%s'", f.Field)
	}
	if f.Criteria == nil {
		return nil
	}
	for _, c := range f.Criteria.Conditions {
		switch c := c.(type) {
		case Eq, In, unknownOperator:
		case Gt:
			if !ordered(kindOf(c.Value)) {
				return errors.New(errors.Validation, "%s.%s requires a number, string or boolean: %v", f.Field, opGt, c.Value)
			}
		case Lt:
			if !ordered(kindOf(c.Value)) {
				return errors.New(errors.Validation, "%s.%s requires a number, string or boolean: %v", f.Field, opLt, c.Value)
			}
		case nil:
			return errors.New(errors.Validation, "%s: nil condition", f.Field)
		default:
			return errors.New(errors.Validation, "%s: unsupported condition: %T", f.Field, c)
		}
	}
	return nil
}

// QueryBuilder is a utility for creating queries via chainable methods
type QueryBuilder struct {
	query *Query
}

// NewQueryBuilder creates a new QueryBuilder instance
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{query: &Query{}}
}

// Query returns the built query
func (q *QueryBuilder) Query() Query {
	return *q.query
}

// Where adds a field clause with the given conditions to the query
func (q *QueryBuilder) Where(field string, conditions ...Condition) *QueryBuilder {
	q.query.Clauses = append(q.query.Clauses, FieldClause{FieldCriteria{
		Field:    field,
		Criteria: Criteria(conditions...),
	}})
	return q
}

// Text adds a full text clause to the query
func (q *QueryBuilder) Text(text string) *QueryBuilder {
	q.query.Clauses = append(q.query.Clauses, TextClause{Text: text})
	return q
}

// And adds an $and clause to the query
func (q *QueryBuilder) And(queries ...FieldQuery) *QueryBuilder {
	q.query.Clauses = append(q.query.Clauses, AndClause{Queries: queries})
	return q
}

// Or adds an $or clause to the query
func (q *QueryBuilder) Or(queries ...FieldQuery) *QueryBuilder {
	q.query.Clauses = append(q.query.Clauses, OrClause{Queries: queries})
	return q
}

// Field creates a single field FieldQuery for use in And/Or clauses
func Field(field string, conditions ...Condition) FieldQuery {
	return FieldQuery{{Field: field, Criteria: Criteria(conditions...)}}
}

// And adds another field constraint to the FieldQuery
func (f FieldQuery) And(field string, conditions ...Condition) FieldQuery {
	return append(f[:len(f):len(f)], FieldCriteria{Field: field, Criteria: Criteria(conditions...)})
}

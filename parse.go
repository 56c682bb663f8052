package flatdb

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/util"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/query.json
var querySchemaContent string

var (
	querySchemaOnce sync.Once
	querySchema     *gojsonschema.Schema
	querySchemaErr  error
)

func loadQuerySchema() (*gojsonschema.Schema, error) {
	querySchemaOnce.Do(func() {
		querySchema, querySchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(querySchemaContent))
	})
	return querySchema, querySchemaErr
}

type parseConfig struct {
	lenient bool
}

// ParseOpt configures query parsing
type ParseOpt func(p *parseConfig)

// WithLenientOperators keeps unknown field operators as conditions that never match instead of
// rejecting the query
func WithLenientOperators(lenient bool) ParseOpt {
	return func(p *parseConfig) {
		p.lenient = lenient
	}
}

// ParseQuery parses a json (or yaml) query object ex: {"age": {"$gt": 21}, "$text": "tom"}.
// The key order of the object is preserved.
func ParseQuery(content []byte, opts ...ParseOpt) (Query, error) {
	cfg := &parseConfig{}
	for _, o := range opts {
		o(cfg)
	}
	raw, err := toJSON(content, "query")
	if err != nil {
		return Query{}, err
	}
	if err := validateQueryShape(raw); err != nil {
		return Query{}, err
	}
	var (
		q      Query
		result = gjson.ParseBytes(raw)
	)
	result.ForEach(func(key, value gjson.Result) bool {
		var clause Clause
		clause, err = cfg.parseClause(key.String(), value)
		if err != nil {
			return false
		}
		q.Clauses = append(q.Clauses, clause)
		return true
	})
	if err != nil {
		return Query{}, err
	}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

func (p *parseConfig) parseClause(key string, value gjson.Result) (Clause, error) {
	switch key {
	case opText:
		return TextClause{Text: value.String()}, nil
	case opAnd:
		queries, err := p.parseFieldQueries(key, value)
		if err != nil {
			return nil, err
		}
		return AndClause{Queries: queries}, nil
	case opOr:
		queries, err := p.parseFieldQueries(key, value)
		if err != nil {
			return nil, err
		}
		return OrClause{Queries: queries}, nil
	default:
		if strings.HasPrefix(key, "$") {
			return nil, errors.New(errors.Validation, "unsupported query operator: '%s'", key)
		}
		fc, err := p.parseFieldCriteria(key, value)
		if err != nil {
			return nil, err
		}
		return FieldClause{fc}, nil
	}
}

func (p *parseConfig) parseFieldQueries(op string, value gjson.Result) ([]FieldQuery, error) {
	if !value.IsArray() {
		return nil, errors.New(errors.Validation, "%s must be a list of field queries", op)
	}
	var (
		queries []FieldQuery
		err     error
	)
	value.ForEach(func(_, member gjson.Result) bool {
		if !member.IsObject() {
			err = errors.New(errors.Validation, "%s members must be objects", op)
			return false
		}
		var fq FieldQuery
		member.ForEach(func(field, criteria gjson.Result) bool {
			if strings.HasPrefix(field.String(), "$") {
				err = errors.New(errors.Validation, "%s members only support field criteria: '%s'", op, field.String())
				return false
			}
			var fc FieldCriteria
			fc, err = p.parseFieldCriteria(field.String(), criteria)
			if err != nil {
				return false
			}
			fq = append(fq, fc)
			return true
		})
		if err != nil {
			return false
		}
		queries = append(queries, fq)
		return true
	})
	if err != nil {
		return nil, err
	}
	return queries, nil
}

func (p *parseConfig) parseFieldCriteria(field string, value gjson.Result) (FieldCriteria, error) {
	fc := FieldCriteria{Field: field}
	switch {
	case value.Type == gjson.Null:
		// present without criteria - never matches
		return fc, nil
	case !value.IsObject():
		return fc, errors.New(errors.Validation, "criteria of field '%s' must be an object", field)
	}
	fc.Criteria = &FindCriteria{}
	var err error
	value.ForEach(func(key, operand gjson.Result) bool {
		var c Condition
		c, err = p.parseCondition(field, key.String(), operand)
		if err != nil {
			return false
		}
		fc.Criteria.Conditions = append(fc.Criteria.Conditions, c)
		return true
	})
	return fc, err
}

func (p *parseConfig) parseCondition(field, op string, operand gjson.Result) (Condition, error) {
	switch op {
	case opEq:
		return Eq{Value: jsonValue(operand)}, nil
	case opGt:
		return Gt{Value: jsonValue(operand)}, nil
	case opLt:
		return Lt{Value: jsonValue(operand)}, nil
	case opIn:
		if !operand.IsArray() {
			return nil, errors.New(errors.Validation, "%s.%s must be a list", field, opIn)
		}
		values := []any{}
		for _, v := range operand.Array() {
			values = append(values, jsonValue(v))
		}
		return In{Values: values}, nil
	default:
		if p.lenient {
			return unknownOperator{op: op}, nil
		}
		return nil, errors.New(errors.Validation, "unsupported operator on field '%s': '%s'", field, op)
	}
}

func validateQueryShape(raw []byte) error {
	schema, err := loadQuerySchema()
	if err != nil {
		return errors.Wrap(err, errors.Internal, "failed to load query schema")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errors.Wrap(err, errors.Validation, "failed to validate query")
	}
	if !result.Valid() {
		var messages []string
		for _, e := range result.Errors() {
			messages = append(messages, e.String())
		}
		return &errors.Error{
			Code:     errors.Validation,
			Messages: messages,
		}
	}
	return nil
}

// ParseSortSpec parses an ordered json (or yaml) sort object ex: {"age": -1, "name": 1}.
// The first key is the primary sort key. YAML mappings do not keep their key order, so a list of
// sort fields ex: [{"field": "age", "direction": -1}] is also accepted.
func ParseSortSpec(content []byte) (SortSpec, error) {
	raw, err := toJSON(content, "sort")
	if err != nil {
		return nil, err
	}
	var (
		spec   SortSpec
		result = gjson.ParseBytes(raw)
	)
	switch {
	case result.IsObject():
		result.ForEach(func(key, value gjson.Result) bool {
			var field SortField
			field, err = parseSortField(key.String(), value)
			spec = append(spec, field)
			return err == nil
		})
	case result.IsArray():
		result.ForEach(func(_, value gjson.Result) bool {
			if !value.IsObject() {
				err = errors.New(errors.Validation, "sort fields must be objects: %s", value.Raw)
				return false
			}
			var field SortField
			field, err = parseSortField(value.Get("field").String(), value.Get("direction"))
			spec = append(spec, field)
			return err == nil
		})
	default:
		return nil, errors.New(errors.Validation, "sort must be an object")
	}
	if err != nil {
		return nil, err
	}
	return spec, spec.Validate()
}

func parseSortField(field string, direction gjson.Result) (SortField, error) {
	if direction.Type != gjson.Number || (direction.Num != 1 && direction.Num != -1) {
		return SortField{}, errors.New(errors.Validation, "sort direction of '%s' must be 1 or -1: %s", field, direction.Raw)
	}
	return SortField{Field: field, Direction: Direction(direction.Int())}, nil
}

// ParseProjectionSpec parses a json (or yaml) projection object ex: {"id": 1, "name": 1}.
// Only inclusion markers (1 or true) are supported.
func ParseProjectionSpec(content []byte) (ProjectionSpec, error) {
	raw, err := toJSON(content, "projection")
	if err != nil {
		return nil, err
	}
	result := gjson.ParseBytes(raw)
	if !result.IsObject() {
		return nil, errors.New(errors.Validation, "projection must be an object")
	}
	var spec ProjectionSpec
	result.ForEach(func(key, value gjson.Result) bool {
		included := value.Type == gjson.True || (value.Type == gjson.Number && value.Num == 1)
		if !included {
			err = errors.New(errors.Validation, "projection of '%s' must be 1 or true: %s", key.String(), value.Raw)
			return false
		}
		spec = append(spec, key.String())
		return true
	})
	if err != nil {
		return nil, err
	}
	return spec, spec.Validate()
}

// FindRequest is a query against a collection with its find options
type FindRequest struct {
	// Collection is the collection to query
	Collection string
	// Query filters the collection's records
	Query Query
	// Options sorts and projects the matching records (optional)
	Options *FindOptions
}

// ParseFindRequest parses a json (or yaml) request ex: {"query": {...}, "sort": {...}, "projection": {...}}.
// The collection is not part of the body.
func ParseFindRequest(content []byte, opts ...ParseOpt) (FindRequest, error) {
	raw, err := toJSON(content, "request")
	if err != nil {
		return FindRequest{}, err
	}
	result := gjson.ParseBytes(raw)
	if !result.IsObject() {
		return FindRequest{}, errors.New(errors.Validation, "request must be an object")
	}
	var req FindRequest
	if q := result.Get("query"); q.Exists() {
		req.Query, err = ParseQuery([]byte(q.Raw), opts...)
		if err != nil {
			return FindRequest{}, err
		}
	}
	if s := result.Get("sort"); s.Exists() && s.Type != gjson.Null {
		sort, err := ParseSortSpec([]byte(s.Raw))
		if err != nil {
			return FindRequest{}, err
		}
		req.options().Sort = sort
	}
	if p := result.Get("projection"); p.Exists() && p.Type != gjson.Null {
		projection, err := ParseProjectionSpec([]byte(p.Raw))
		if err != nil {
			return FindRequest{}, err
		}
		req.options().Projection = projection
	}
	return req, nil
}

func (f *FindRequest) options() *FindOptions {
	if f.Options == nil {
		f.Options = &FindOptions{}
	}
	return f.Options
}

func toJSON(content []byte, what string) ([]byte, error) {
	raw, err := util.YAMLToJSON(content)
	if err != nil {
		return nil, errors.Wrap(err, errors.Validation, "failed to decode %s", what)
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New(errors.Validation, "invalid %s json: %s", what, string(content))
	}
	return raw, nil
}

package flatdb

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/autom8ter/flatdb/errors"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// valueKind is the json kind of a value. Values of different kinds are never equal and never ordered.
type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindNumber
	kindString
	kindComposite
)

func (k valueKind) String() string {
	switch k {
	case kindNull:
		return "null"
	case kindBool:
		return "boolean"
	case kindNumber:
		return "number"
	case kindString:
		return "string"
	default:
		return "composite"
	}
}

func kindOf(v any) valueKind {
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case string:
		return kindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return kindNumber
	default:
		return kindComposite
	}
}

func ordered(k valueKind) bool {
	return k == kindBool || k == kindNumber || k == kindString
}

// canonical converts composite values (slices, maps, structs) into their decoded json form
func canonical(v any) any {
	bits, err := json.Marshal(v)
	if err != nil {
		return v
	}
	return gjson.ParseBytes(bits).Value()
}

// jsonValue returns the decoded value of a json result. Integral numbers that fit in an int64 decode
// to int64 so that they compare exactly; every other value decodes the way gjson does.
func jsonValue(r gjson.Result) any {
	if r.Type == gjson.Number && !strings.ContainsAny(r.Raw, ".eE") {
		if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return i
		}
	}
	return r.Value()
}

// asInt64 returns the number as an int64 if it is integral and in range
func asInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), uint64(v) <= math.MaxInt64
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), v <= math.MaxInt64
	case float32:
		return asInt64(float64(v))
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// compareNumbers compares two numbers exactly when both are integral and as float64 otherwise
func compareNumbers(a, b any) int {
	ai, aok := asInt64(a)
	bi, bok := asInt64(b)
	if aok && bok {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	af, bf := cast.ToFloat64(a), cast.ToFloat64(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

// strictEqual reports whether a and b are the same json value. Numbers compare numerically,
// composites compare structurally and values of different kinds are never equal.
func strictEqual(a, b any) bool {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case kindNull:
		return true
	case kindNumber:
		return compareNumbers(a, b) == 0
	case kindComposite:
		return reflect.DeepEqual(canonical(a), canonical(b))
	default:
		return a == b
	}
}

// compareValues returns -1, 0 or 1 when a is less than, equal to or greater than b.
// Only booleans (false < true), numbers and strings are ordered and both values must share a kind.
func compareValues(a, b any) (int, error) {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return 0, errors.New(errors.Validation, "cannot compare %s with %s", ka, kb)
	}
	if !ordered(ka) {
		return 0, errors.New(errors.Validation, "%s values are not ordered", ka)
	}
	switch ka {
	case kindBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0, nil
		case !ab:
			return -1, nil
		default:
			return 1, nil
		}
	case kindNumber:
		return compareNumbers(a, b), nil
	default:
		return strings.Compare(a.(string), b.(string)), nil
	}
}

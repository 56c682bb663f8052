package flatdb

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/util"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Document is a concurrency safe JSON document (a single record in a collection)
type Document struct {
	result gjson.Result
}

// UnmarshalJSON satisfies the json Unmarshaler interface
func (d *Document) UnmarshalJSON(bytes []byte) error {
	doc, err := NewDocumentFromBytes(bytes)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// MarshalJSON satisfies the json Marshaler interface
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.Bytes(), nil
}

// NewDocument creates a new json document
func NewDocument() *Document {
	parsed := gjson.Parse("{}")
	return &Document{
		result: parsed,
	}
}

// NewDocumentFromBytes creates a new document from the given json bytes. The json must be an object.
func NewDocumentFromBytes(json []byte) (*Document, error) {
	if !gjson.ValidBytes(json) {
		return nil, errors.New(errors.Malformed, "invalid json: %s", string(json))
	}
	d := &Document{
		result: gjson.ParseBytes(json),
	}
	if !d.result.IsObject() {
		return nil, errors.New(errors.Malformed, "invalid document: expected a json object")
	}
	return d, nil
}

// NewDocumentFrom creates a new document from the given value - the value must be json compatible
func NewDocumentFrom(value any) (*Document, error) {
	bits, err := json.Marshal(value)
	if err != nil {
		return nil, errors.New(errors.Validation, "failed to json encode value: %#v", value)
	}
	return NewDocumentFromBytes(bits)
}

// String returns the document as a json string
func (d *Document) String() string {
	return d.result.Raw
}

// Bytes returns the document as json bytes
func (d *Document) Bytes() []byte {
	return []byte(d.result.Raw)
}

// Value returns the document as a map
func (d *Document) Value() map[string]any {
	return cast.ToStringMap(d.result.Value())
}

// Clone allocates a new document with identical values
func (d *Document) Clone() *Document {
	raw := d.result.Raw
	return &Document{result: gjson.Parse(raw)}
}

// Get gets a field on the document. Get has GJSON syntax support and supports dot notation
func (d *Document) Get(field string) any {
	return d.result.Get(field).Value()
}

// Exists returns true if the field is present on the document (even if its value is null)
func (d *Document) Exists(field string) bool {
	return d.result.Get(field).Exists()
}

// GetString gets a string field value on the document. Numbers and booleans are stringified.
func (d *Document) GetString(field string) string {
	return d.result.Get(field).String()
}

// GetFloat gets a float field value on the document.
func (d *Document) GetFloat(field string) float64 {
	return cast.ToFloat64(d.Get(field))
}

// Fields returns the top level field names of the document in the order they are stored
func (d *Document) Fields() []string {
	var fields []string
	d.result.ForEach(func(key, _ gjson.Result) bool {
		fields = append(fields, key.String())
		return true
	})
	return fields
}

// field returns the value at a dot notation field. Each segment addresses an object key (or an array
// index) literally: wildcards, modifiers and pipes are not interpreted.
func (d *Document) field(field string) gjson.Result {
	return d.result.Get(fieldPath(field))
}

func fieldPath(field string) string {
	segments := strings.Split(field, ".")
	for i, s := range segments {
		segments[i] = escapeKey(s)
	}
	return strings.Join(segments, ".")
}

// escapeKey escapes every character of the key that gjson or sjson would interpret as path syntax
func escapeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		if !literalKeyChar(key[i]) {
			b.WriteByte('\\')
		}
		b.WriteByte(key[i])
	}
	return b.String()
}

func literalKeyChar(c byte) bool {
	return c <= ' ' || c > '~' || c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// setRaw sets the raw json value at the given sjson path
func (d *Document) setRaw(path string, raw string) error {
	result, err := sjson.SetRaw(d.result.Raw, path, raw)
	if err != nil {
		return errors.Wrap(err, errors.Internal, "failed to set field: %s", path)
	}
	d.result = gjson.Parse(result)
	return nil
}

// Scan scans the json document into the value
func (d *Document) Scan(value any) error {
	return util.Decode(d.Value(), value)
}

// Encode encodes the json document to the io writer
func (d *Document) Encode(w io.Writer) error {
	_, err := w.Write(d.Bytes())
	if err != nil {
		return errors.Wrap(err, 0, "failed to encode document")
	}
	return nil
}

// Documents is an array of documents
type Documents []*Document

// Filter applies the filter function against the documents
func (documents Documents) Filter(predicate func(document *Document, i int) bool) Documents {
	return lo.Filter[*Document](documents, predicate)
}

// ForEach applies the function to each document in the documents
func (documents Documents) ForEach(fn func(next *Document, i int)) {
	lo.ForEach[*Document](documents, fn)
}

// Values returns the documents as maps
func (documents Documents) Values() []map[string]any {
	return lo.Map[*Document, map[string]any](documents, func(d *Document, _ int) map[string]any {
		return d.Value()
	})
}

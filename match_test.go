package flatdb_test

import (
	"testing"

	"github.com/autom8ter/flatdb"
	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/testutil"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, raw string) *flatdb.Document {
	doc, err := flatdb.NewDocumentFromBytes([]byte(raw))
	require.NoError(t, err)
	return doc
}

func mustQuery(t *testing.T, raw string, opts ...flatdb.ParseOpt) flatdb.Query {
	q, err := flatdb.ParseQuery([]byte(raw), opts...)
	require.NoError(t, err)
	return q
}

func TestMatch(t *testing.T) {
	tom := mustDoc(t, `{"id":1,"name":"Tom","age":30}`)
	jon := mustDoc(t, `{"id":2,"name":"Jon","age":20}`)

	t.Run("empty query matches everything", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			ok, err := testutil.NewUserDoc().Matches(flatdb.Query{})
			assert.NoError(t, err)
			assert.True(t, ok)
		}
	})
	t.Run("$eq", func(t *testing.T) {
		usr := testutil.NewUserDoc()
		ok, err := usr.Matches(flatdb.NewQueryBuilder().Where("name", flatdb.Eq{Value: usr.GetString("name")}).Query())
		assert.NoError(t, err)
		assert.True(t, ok)
		ok, err = usr.Matches(flatdb.NewQueryBuilder().Where("name", flatdb.Eq{Value: gofakeit.UUID()}).Query())
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("$eq is type sensitive", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"age": {"$eq": "30"}}`))
		assert.NoError(t, err)
		assert.False(t, ok)
		ok, err = tom.Matches(mustQuery(t, `{"age": {"$eq": 30}}`))
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("$gt is strict", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"age": {"$gt": 30}}`))
		assert.NoError(t, err)
		assert.False(t, ok)
		ok, err = tom.Matches(mustQuery(t, `{"age": {"$gt": 29}}`))
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("$lt is strict", func(t *testing.T) {
		ok, err := jon.Matches(mustQuery(t, `{"age": {"$lt": 20}}`))
		assert.NoError(t, err)
		assert.False(t, ok)
		ok, err = jon.Matches(mustQuery(t, `{"age": {"$lt": 21}}`))
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("$gt and $lt are conjunctive", func(t *testing.T) {
		q := mustQuery(t, `{"age": {"$gt": 25, "$lt": 35}}`)
		ok, err := tom.Matches(q)
		assert.NoError(t, err)
		assert.True(t, ok)
		ok, err = jon.Matches(q)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("$gt on mixed kinds is a type error", func(t *testing.T) {
		_, err := tom.Matches(mustQuery(t, `{"name": {"$gt": 10}}`))
		assert.True(t, errors.Is(err, errors.Validation))
	})
	t.Run("$in", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"name": {"$in": ["Jon", "Tom"]}}`))
		assert.NoError(t, err)
		assert.True(t, ok)
		ok, err = tom.Matches(mustQuery(t, `{"age": {"$in": ["30"]}}`))
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("empty $in never matches", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			ok, err := testutil.NewUserDoc().Matches(flatdb.NewQueryBuilder().Where("name", flatdb.In{}).Query())
			assert.NoError(t, err)
			assert.False(t, ok)
		}
	})
	t.Run("missing field never matches", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"email": {"$eq": "tom@example.com"}}`))
		assert.NoError(t, err)
		assert.False(t, ok)
		ok, err = tom.Matches(mustQuery(t, `{"email": {"$gt": "a"}}`))
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("null value only equals null", func(t *testing.T) {
		doc := mustDoc(t, `{"id":4,"name":null}`)
		ok, err := doc.Matches(mustQuery(t, `{"name": {"$eq": null}}`))
		assert.NoError(t, err)
		assert.True(t, ok)
		ok, err = doc.Matches(mustQuery(t, `{"name": {"$gt": "a"}}`))
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("absent criteria fails closed", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"name": null}`))
		assert.NoError(t, err)
		assert.False(t, ok)
		ok, err = tom.Matches(flatdb.Query{Clauses: []flatdb.Clause{
			flatdb.FieldClause{FieldCriteria: flatdb.FieldCriteria{Field: "name"}},
		}})
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("empty criteria is vacuously true", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"name": {}}`))
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("unknown operator never matches when lenient", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"name": {"$regex": "T.*"}}`, flatdb.WithLenientOperators(true)))
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("nested fields", func(t *testing.T) {
		usr := testutil.NewUserDoc()
		ok, err := usr.Matches(flatdb.NewQueryBuilder().Where("contact.email", flatdb.Eq{Value: usr.GetString("contact.email")}).Query())
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("fields are literal keys", func(t *testing.T) {
		doc := mustDoc(t, `{"name":"Tom","a|b":5,"@x":6,"#":7}`)
		for raw, want := range map[string]bool{
			`{"na*": {"$eq": "Tom"}}`:            false,
			`{"nam?": {"$eq": "Tom"}}`:           false,
			`{"@this": {"$eq": 6}}`:              false,
			`{"a|b": {"$eq": 5}}`:                true,
			`{"@x": {"$eq": 6}}`:                 true,
			`{"#": {"$in": [7]}}`:                true,
			`{"$or": [{"na*": {"$eq": "Tom"}}]}`: false,
		} {
			t.Run(raw, func(t *testing.T) {
				ok, err := doc.Matches(mustQuery(t, raw))
				assert.NoError(t, err)
				assert.Equal(t, want, ok)
			})
		}
	})
	t.Run("large integers are exact", func(t *testing.T) {
		doc := mustDoc(t, `{"id":9007199254740993}`)
		ok, err := doc.Matches(mustQuery(t, `{"id": {"$eq": 9007199254740992}}`))
		assert.NoError(t, err)
		assert.False(t, ok)
		ok, err = doc.Matches(mustQuery(t, `{"id": {"$gt": 9007199254740992, "$in": [9007199254740993]}}`))
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("composite values", func(t *testing.T) {
		doc := mustDoc(t, `{"tags":["a","b"]}`)
		ok, err := doc.Matches(mustQuery(t, `{"tags": {"$eq": ["a","b"]}}`))
		assert.NoError(t, err)
		assert.True(t, ok)
		ok, err = doc.Matches(mustQuery(t, `{"tags": {"$eq": ["b","a"]}}`))
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMatchText(t *testing.T) {
	tom := mustDoc(t, `{"id":1,"name":"Tom","age":30,"bio":"likes  hiking and\tchess"}`)
	t.Run("case insensitive", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"$text": "tom"}`), "name")
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("whole tokens only", func(t *testing.T) {
		doc := mustDoc(t, `{"name":"Tomas"}`)
		ok, err := doc.Matches(mustQuery(t, `{"$text": "Tom"}`), "name")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("any full text field", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"$text": "CHESS"}`), "name", "bio")
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("no full text fields", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"$text": "tom"}`))
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("missing full text field", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"$text": "tom"}`), "nickname")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("numbers are stringified", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"$text": "30"}`), "age")
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("full text fields are literal keys", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"$text": "tom"}`), "na*")
		assert.NoError(t, err)
		assert.False(t, ok)
		doc := mustDoc(t, `{"a|b":"Tom"}`)
		ok, err = doc.Matches(mustQuery(t, `{"$text": "tom"}`), "a|b")
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("combined with field clauses", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"$text": "tom", "age": {"$lt": 30}}`), "name")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMatchLogical(t *testing.T) {
	tom := mustDoc(t, `{"id":1,"name":"Tom","age":30}`)
	jon := mustDoc(t, `{"id":2,"name":"Jon","age":20}`)
	ann := mustDoc(t, `{"id":3,"name":"Ann","age":10}`)
	a := flatdb.Field("age", flatdb.Gt{Value: 25})
	b := flatdb.Field("name", flatdb.Eq{Value: "Jon"})

	t.Run("$and requires every member", func(t *testing.T) {
		q := flatdb.NewQueryBuilder().And(a, b).Query()
		for _, doc := range []*flatdb.Document{tom, jon, ann} {
			ok, err := doc.Matches(q)
			assert.NoError(t, err)
			assert.False(t, ok, doc.String())
		}
		ok, err := jon.Matches(mustQuery(t, `{"$and": [{"age": {"$gt": 18}}, {"name": {"$eq": "Jon"}}]}`))
		assert.NoError(t, err)
		assert.True(t, ok)
	})
	t.Run("$or requires any member", func(t *testing.T) {
		q := flatdb.NewQueryBuilder().Or(a, b).Query()
		ok, err := tom.Matches(q)
		assert.NoError(t, err)
		assert.True(t, ok)
		ok, err = jon.Matches(q)
		assert.NoError(t, err)
		assert.True(t, ok)
		ok, err = ann.Matches(q)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("$or members are conjunctive", func(t *testing.T) {
		q := flatdb.NewQueryBuilder().Or(
			flatdb.Field("name", flatdb.Eq{Value: "Tom"}).And("age", flatdb.Lt{Value: 30}),
		).Query()
		ok, err := tom.Matches(q)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("empty $or matches nothing", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"$or": []}`))
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("empty $and matches everything", func(t *testing.T) {
		ok, err := tom.Matches(mustQuery(t, `{"$and": []}`))
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

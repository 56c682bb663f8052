package flatdb_test

import (
	"testing"

	"github.com/autom8ter/flatdb"
	"github.com/autom8ter/flatdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(docs flatdb.Documents) []int {
	var out []int
	docs.ForEach(func(d *flatdb.Document, _ int) {
		out = append(out, int(d.GetFloat("id")))
	})
	return out
}

func TestSortDocs(t *testing.T) {
	newDocs := func(t *testing.T) flatdb.Documents {
		return flatdb.Documents{
			mustDoc(t, `{"id":1,"name":"Tom","age":30}`),
			mustDoc(t, `{"id":2,"name":"Jon","age":20}`),
			mustDoc(t, `{"id":3,"name":"Ann","age":30}`),
			mustDoc(t, `{"id":4,"name":"Bob","age":20}`),
		}
	}
	t.Run("descending", func(t *testing.T) {
		docs, err := flatdb.SortDocs(newDocs(t), flatdb.SortSpec{{Field: "age", Direction: flatdb.Descending}})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 2, 4}, ids(docs))
	})
	t.Run("ascending is stable", func(t *testing.T) {
		docs, err := flatdb.SortDocs(newDocs(t), flatdb.SortSpec{{Field: "age", Direction: flatdb.Ascending}})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4, 1, 3}, ids(docs))
	})
	t.Run("secondary field breaks ties", func(t *testing.T) {
		docs, err := flatdb.SortDocs(newDocs(t), flatdb.SortSpec{
			{Field: "age", Direction: flatdb.Descending},
			{Field: "name", Direction: flatdb.Ascending},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 4, 2}, ids(docs))
	})
	t.Run("empty spec keeps order", func(t *testing.T) {
		docs, err := flatdb.SortDocs(newDocs(t), nil)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4}, ids(docs))
	})
	t.Run("missing values first", func(t *testing.T) {
		docs := append(newDocs(t), mustDoc(t, `{"id":5,"name":"Eve"}`), mustDoc(t, `{"id":6,"age":null}`))
		docs, err := flatdb.SortDocs(docs, flatdb.SortSpec{{Field: "age", Direction: flatdb.Ascending}})
		require.NoError(t, err)
		assert.Equal(t, []int{5, 6, 2, 4, 1, 3}, ids(docs))
	})
	t.Run("fields are literal keys", func(t *testing.T) {
		docs := flatdb.Documents{
			mustDoc(t, `{"id":1,"a|b":2,"age":1}`),
			mustDoc(t, `{"id":2,"a|b":1,"age":2}`),
		}
		docs, err := flatdb.SortDocs(docs, flatdb.SortSpec{{Field: "a|b", Direction: flatdb.Ascending}})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, ids(docs))
		docs, err = flatdb.SortDocs(docs, flatdb.SortSpec{{Field: "ag?", Direction: flatdb.Descending}})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, ids(docs))
	})
	t.Run("large integers", func(t *testing.T) {
		docs := flatdb.Documents{
			mustDoc(t, `{"id":1,"n":9007199254740993}`),
			mustDoc(t, `{"id":2,"n":9007199254740992}`),
		}
		docs, err := flatdb.SortDocs(docs, flatdb.SortSpec{{Field: "n", Direction: flatdb.Ascending}})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, ids(docs))
	})
	t.Run("mixed kinds", func(t *testing.T) {
		docs := append(newDocs(t), mustDoc(t, `{"id":5,"age":"old"}`))
		_, err := flatdb.SortDocs(docs, flatdb.SortSpec{{Field: "age", Direction: flatdb.Ascending}})
		assert.True(t, errors.Is(err, errors.Validation))
	})
	t.Run("invalid spec", func(t *testing.T) {
		assert.Error(t, flatdb.SortSpec{{Field: "age", Direction: 2}}.Validate())
		assert.Error(t, flatdb.SortSpec{{Direction: flatdb.Ascending}}.Validate())
	})
}

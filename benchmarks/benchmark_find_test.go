package benchmarks

import (
	"context"
	"testing"

	"github.com/autom8ter/flatdb"
	"github.com/autom8ter/flatdb/testutil"
	"github.com/stretchr/testify/assert"
)

func BenchmarkFind(b *testing.B) {
	b.ReportAllocs()
	assert.Nil(b, testutil.TestDB(func(ctx context.Context, db *flatdb.DB) {
		q := flatdb.NewQueryBuilder().Where("age", flatdb.Gt{Value: 50}).Query()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, err := db.Find(ctx, testutil.UserCollection, q, nil)
			assert.NoError(b, err)
		}
	}, seedEntries(1000)...))
}

func BenchmarkFindText(b *testing.B) {
	b.ReportAllocs()
	assert.Nil(b, testutil.TestDB(func(ctx context.Context, db *flatdb.DB) {
		q := flatdb.NewQueryBuilder().Text("lorem").Query()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, err := db.Find(ctx, testutil.UserCollection, q, nil)
			assert.NoError(b, err)
		}
	}, seedEntries(1000)...))
}

func BenchmarkFindSortProject(b *testing.B) {
	b.ReportAllocs()
	assert.Nil(b, testutil.TestDB(func(ctx context.Context, db *flatdb.DB) {
		opts := &flatdb.FindOptions{
			Sort: flatdb.SortSpec{
				{Field: "age", Direction: flatdb.Descending},
				{Field: "name", Direction: flatdb.Ascending},
			},
			Projection: flatdb.ProjectionSpec{"id", "name", "contact.email"},
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, err := db.Find(ctx, testutil.UserCollection, flatdb.Query{}, opts)
			assert.NoError(b, err)
		}
	}, seedEntries(1000)...))
}

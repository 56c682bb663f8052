package benchmarks

import (
	"github.com/autom8ter/flatdb/storage"
	"github.com/autom8ter/flatdb/testutil"
	"github.com/brianvoe/gofakeit/v6"
)

// seedEntries returns count random user entries, roughly one in ten of them deleted
func seedEntries(count int) []string {
	entries := make([]string, 0, count)
	for i := 0; i < count; i++ {
		marker := storage.MarkerActive
		if gofakeit.IntRange(0, 9) == 0 {
			marker = storage.MarkerDeleted
		}
		entries = append(entries, testutil.Entry(marker, testutil.NewUser()))
	}
	return entries
}

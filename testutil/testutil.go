package testutil

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/autom8ter/flatdb"
	"github.com/autom8ter/flatdb/storage"
	"github.com/autom8ter/flatdb/storage/memory"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/afero"
)

const (
	// UserCollection is the name of the user fixture collection
	UserCollection = "user"
)

// SampleEntries are two active users (Tom 30, Jon 20) and a deleted user (id 3)
var SampleEntries = []string{
	`E{"id":1,"name":"Tom","age":30}`,
	`E{"id":2,"name":"Jon","age":20}`,
	`D{"id":3,"name":"Ann","age":40}`,
}

// NewUserDoc returns a random user document
func NewUserDoc() *flatdb.Document {
	doc, err := flatdb.NewDocumentFrom(NewUser())
	if err != nil {
		panic(err)
	}
	return doc
}

// NewUser returns a random user record
func NewUser() map[string]any {
	return map[string]any{
		"id":   gofakeit.UUID(),
		"name": gofakeit.Name(),
		"contact": map[string]any{
			"email": gofakeit.Email(),
		},
		"account_id":     gofakeit.IntRange(0, 100),
		"language":       gofakeit.Language(),
		"birthday_month": gofakeit.Month(),
		"gender":         gofakeit.Gender(),
		"age":            gofakeit.IntRange(0, 100),
		"bio":            gofakeit.LoremIpsumSentence(8),
		"timestamp":      gofakeit.DateRange(time.Now().Truncate(7200*time.Hour), time.Now()),
	}
}

// Entry encodes the record as a stored entry with the given marker
func Entry(marker byte, record any) string {
	bits, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}
	return string(storage.EncodeEntry(marker, bits))
}

// NewUserEntries returns count active entries of random users
func NewUserEntries(count int) []string {
	var entries []string
	for i := 0; i < count; i++ {
		entries = append(entries, Entry(storage.MarkerActive, NewUser()))
	}
	return entries
}

// NewMemoryReader returns a memory reader holding the entries in the given collection
func NewMemoryReader(collection string, entries ...string) *memory.Reader {
	r := memory.New()
	r.Load(collection, entries...)
	return r
}

// WriteCollection writes the entries as a collection file on the filesystem
func WriteCollection(fs afero.Fs, path string, entries ...string) error {
	return afero.WriteFile(fs, path, []byte(strings.Join(entries, "\n")+"\n"), 0644)
}

// TestDB runs fn against a database serving the entries as the user collection (with name as a
// full text field)
func TestDB(fn func(ctx context.Context, db *flatdb.DB), entries ...string) error {
	if len(entries) == 0 {
		entries = SampleEntries
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := flatdb.New(flatdb.Config{
		Provider: "memory",
		Collections: []flatdb.CollectionConfig{
			{
				Name:           UserCollection,
				FullTextFields: []string{"name"},
			},
		},
	}, NewMemoryReader(UserCollection, entries...))
	if err != nil {
		return err
	}
	defer db.Close(ctx)
	fn(ctx, db)
	return nil
}

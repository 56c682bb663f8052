package minio_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/autom8ter/flatdb/errors"
	flatminio "github.com/autom8ter/flatdb/storage/minio"
	"github.com/autom8ter/flatdb/storage/registry"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const users = "E{\"id\":1}\nD{\"id\":2}\nE{\"id\":3}\n"

func newServer(t *testing.T) *httptest.Server {
	lastModified := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/collections/users.db" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(users)))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Last-Modified", lastModified)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(users))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func Test(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Secure: false,
		Region: "us-east-1",
	})
	require.NoError(t, err)
	r := flatminio.New(client, "data", "collections", "")

	t.Run("key", func(t *testing.T) {
		assert.Equal(t, "collections/users.db", r.Key("users"))
	})
	t.Run("read", func(t *testing.T) {
		records, err := r.Read(ctx, "users")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, `{"id":1}`, string(records[0]))
		assert.Equal(t, `{"id":3}`, string(records[1]))
	})
	t.Run("missing object", func(t *testing.T) {
		_, err := r.Read(ctx, "tasks")
		require.Error(t, err)
		assert.Equal(t, errors.NotFound, errors.Extract(err).Code)
	})
	t.Run("collection name cannot leave the prefix", func(t *testing.T) {
		for _, name := range []string{"../users", "..", "a/b", ""} {
			_, err := r.Read(ctx, name)
			assert.Equal(t, errors.Validation, errors.Extract(err).Code, name)
		}
	})
	t.Run("registry requires endpoint and bucket", func(t *testing.T) {
		_, err := registry.Open("minio", map[string]any{"bucket": "data"})
		assert.Error(t, err)
		_, err = registry.Open("minio", map[string]any{
			"endpoint": strings.TrimPrefix(srv.URL, "http://"),
			"bucket":   "data",
		})
		assert.NoError(t, err)
	})
}

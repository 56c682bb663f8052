package memory_test

import (
	"context"
	"testing"

	"github.com/autom8ter/flatdb/storage/memory"
	"github.com/autom8ter/flatdb/storage/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test(t *testing.T) {
	ctx := context.Background()
	t.Run("load and read", func(t *testing.T) {
		r := memory.New()
		r.Load("users", `E{"id":1}`, `D{"id":2}`, `E{"id":3}`)
		records, err := r.Read(ctx, "users")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, `{"id":1}`, string(records[0]))
		assert.Equal(t, `{"id":3}`, string(records[1]))
	})
	t.Run("unknown collection", func(t *testing.T) {
		_, err := memory.New().Read(ctx, "users")
		assert.Error(t, err)
	})
	t.Run("registry", func(t *testing.T) {
		r, err := registry.Open("memory", map[string]any{
			"collections": map[string]any{
				"users": []string{`E{"id":1}`},
			},
		})
		require.NoError(t, err)
		records, err := r.Read(ctx, "users")
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Contains(t, registry.Providers(), "memory")
	})
}

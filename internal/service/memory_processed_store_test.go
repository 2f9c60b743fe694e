package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProcessedEventsStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryProcessedEventsStore()

	t.Run("unknown event is not processed", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "evt-unknown")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("marked event is processed", func(t *testing.T) {
		require.NoError(t, store.MarkProcessed(ctx, "evt-1", time.Hour))

		processed, err := store.IsProcessed(ctx, "evt-1")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("mark is idempotent", func(t *testing.T) {
		require.NoError(t, store.MarkProcessed(ctx, "evt-2", time.Hour))
		require.NoError(t, store.MarkProcessed(ctx, "evt-2", time.Hour))

		processed, err := store.IsProcessed(ctx, "evt-2")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired event is not processed", func(t *testing.T) {
		require.NoError(t, store.MarkProcessed(ctx, "evt-ttl", time.Millisecond))

		time.Sleep(5 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "evt-ttl")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/booking-conversion-relay/internal/models"
	"github.com/PratikDhanave/booking-conversion-relay/internal/store"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	_, ok := s.Get(ctx, "A1")
	assert.False(t, ok, "empty store must report absent")

	want := models.MappingEntry{EventID: "E1", ClientID: "C1", ReceivedAt: time.Now()}
	require.NoError(t, s.Put(ctx, "A1", want))

	got, ok := s.Get(ctx, "A1")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, s.Len())

	s.Delete(ctx, "A1")
	_, ok = s.Get(ctx, "A1")
	assert.False(t, ok, "entry must be gone after delete")

	// Deleting again is a no-op.
	s.Delete(ctx, "A1")
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, s.Put(ctx, "A1", models.MappingEntry{EventID: "E1", ClientID: "C1"}))
	require.NoError(t, s.Put(ctx, "A1", models.MappingEntry{EventID: "E2"}))

	got, ok := s.Get(ctx, "A1")
	require.True(t, ok)
	assert.Equal(t, "E2", got.EventID)
	assert.Empty(t, got.ClientID, "overwrite must not merge with the previous entry")
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Put(ctx, "shared", models.MappingEntry{EventID: "E"})
			s.Get(ctx, "shared")
			s.Delete(ctx, "other")
		}()
	}
	wg.Wait()

	_, ok := s.Get(ctx, "shared")
	assert.True(t, ok)
}

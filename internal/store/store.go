package store

import (
	"context"

	"github.com/PratikDhanave/booking-conversion-relay/internal/models"
)

// MappingStore holds attribution entries keyed by appointment id.
//
// Handlers depend only on this interface so a TTL-capable external store can
// replace MemoryStore without changing them.
type MappingStore interface {
	// Put stores entry under key, replacing any previous entry.
	Put(ctx context.Context, key string, entry models.MappingEntry) error
	// Get returns the entry for key and whether it was present.
	Get(ctx context.Context, key string) (models.MappingEntry, bool)
	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string)
}

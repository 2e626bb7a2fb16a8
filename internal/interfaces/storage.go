package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/merx/internal/models"
)

// ErrKeyNotFound is returned when a cache key does not exist in storage.
var ErrKeyNotFound = errors.New("key not found")

// CacheStorage is the durable key-value tier behind the task cache.
// Entries carry their own timestamps; expiry is the cache service's
// concern, not storage's.
type CacheStorage interface {
	// Get retrieves an entry by fingerprint key. Returns ErrKeyNotFound
	// when the key does not exist.
	Get(ctx context.Context, key string) (*models.CacheEntry, error)

	// Set inserts or replaces an entry (last write wins).
	Set(ctx context.Context, entry *models.CacheEntry) error

	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

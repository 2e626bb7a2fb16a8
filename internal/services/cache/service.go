// Package cache provides the two-tier task result cache: a process-local
// in-memory map in front of a durable key-value store, keyed by a
// content fingerprint and lazily expired on read.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/interfaces"
	"github.com/ternarybob/merx/internal/models"
)

// Service implements the two-tier task cache. The in-memory tier is
// scoped to the process lifetime; the durable tier survives restarts.
// Get/Set are concurrent-safe with last-write-wins semantics, which is
// acceptable because values stored under the same key are expected to
// be equivalent.
type Service struct {
	mu      sync.RWMutex
	mem     map[string]*models.CacheEntry
	durable interfaces.CacheStorage
	ttls    map[models.TaskKind]time.Duration
	logger  arbor.ILogger

	// now is swappable for TTL tests.
	now func() time.Time
}

// NewService creates a cache service. The durable tier may be nil, in
// which case only the in-memory tier is used.
func NewService(durable interfaces.CacheStorage, ttls map[models.TaskKind]time.Duration, logger arbor.ILogger) *Service {
	if ttls == nil {
		ttls = models.DefaultTTLs()
	}
	return &Service{
		mem:     make(map[string]*models.CacheEntry),
		durable: durable,
		ttls:    ttls,
		logger:  logger,
		now:     time.Now,
	}
}

// Fingerprint derives the cache key from the task kind, normalized
// input, and page context.
func Fingerprint(kind models.TaskKind, input, pageContext string) string {
	h := sha256.New()
	h.Write([]byte(string(kind)))
	h.Write([]byte{0})
	h.Write([]byte(input))
	h.Write([]byte{0})
	h.Write([]byte(pageContext))
	return hex.EncodeToString(h.Sum(nil))
}

// Get checks the in-memory tier first, then the durable tier. A fresh
// durable hit is promoted into the in-memory tier. Expired entries are
// evicted on read; there is no background sweep.
func (s *Service) Get(ctx context.Context, kind models.TaskKind, input, pageContext string) ([]byte, bool) {
	key := Fingerprint(kind, input, pageContext)
	ttl := s.ttl(kind)
	now := s.now()

	s.mu.RLock()
	entry, ok := s.mem[key]
	s.mu.RUnlock()

	if ok {
		if !entry.Expired(ttl, now) {
			return entry.Value, true
		}
		s.mu.Lock()
		delete(s.mem, key)
		s.mu.Unlock()
	}

	if s.durable == nil {
		return nil, false
	}

	entry, err := s.durable.Get(ctx, key)
	if err != nil {
		if err != interfaces.ErrKeyNotFound {
			s.logger.Warn().Err(err).Str("key", key).Msg("Durable cache read failed")
		}
		return nil, false
	}

	if entry.Expired(ttl, now) {
		// Lazy expiry: evict best-effort and report a miss.
		common.SafeGo(s.logger, "cache-evict", func() {
			if err := s.durable.Delete(context.Background(), key); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("Failed to evict expired cache entry")
			}
		})
		return nil, false
	}

	s.mu.Lock()
	s.mem[key] = entry
	s.mu.Unlock()

	return entry.Value, true
}

// Set writes to the in-memory tier synchronously and to the durable
// tier as a best-effort side effect that never blocks the caller.
// Durable write failures are surfaced to telemetry, not to the caller.
func (s *Service) Set(ctx context.Context, kind models.TaskKind, input, pageContext string, value []byte) {
	key := Fingerprint(kind, input, pageContext)
	entry := &models.CacheEntry{
		Key:      key,
		Kind:     kind,
		Value:    value,
		StoredAt: s.now(),
	}

	s.mu.Lock()
	s.mem[key] = entry
	s.mu.Unlock()

	if s.durable == nil {
		return
	}
	common.SafeGo(s.logger, "cache-write", func() {
		if err := s.durable.Set(context.Background(), entry); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Str("kind", string(kind)).Msg("Durable cache write failed")
		}
	})
}

func (s *Service) ttl(kind models.TaskKind) time.Duration {
	if ttl, ok := s.ttls[kind]; ok && ttl > 0 {
		return ttl
	}
	return models.DefaultLongTailTTL
}

// SetClock overrides the time source. Test hook only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

var _ interfaces.TaskCache = (*Service)(nil)

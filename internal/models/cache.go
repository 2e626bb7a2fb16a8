package models

import (
	"time"
)

// CacheEntry is one stored task result, keyed by a content fingerprint
// and lazily expired on read once its TTL has elapsed.
type CacheEntry struct {
	Key      string    `json:"key" badgerhold:"key"`
	Kind     TaskKind  `json:"kind"`
	Value    []byte    `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// Expired reports whether the entry is older than the given TTL.
func (e *CacheEntry) Expired(ttl time.Duration, now time.Time) bool {
	if e == nil {
		return true
	}
	return now.Sub(e.StoredAt) > ttl
}

// Default per-task TTLs. Long-tail phrases stay useful for a day, meta
// text tracks page churn more closely, and gap detection only changes
// when the specification table changes.
const (
	DefaultLongTailTTL = 24 * time.Hour
	DefaultMetaTTL     = 6 * time.Hour
	DefaultBulletsTTL  = 12 * time.Hour
	DefaultGapsTTL     = 7 * 24 * time.Hour
)

// DefaultTTLs returns the per-task TTL matrix.
func DefaultTTLs() map[TaskKind]time.Duration {
	return map[TaskKind]time.Duration{
		TaskLongTail: DefaultLongTailTTL,
		TaskMeta:     DefaultMetaTTL,
		TaskBullets:  DefaultBulletsTTL,
		TaskGaps:     DefaultGapsTTL,
	}
}

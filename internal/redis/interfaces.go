package redis

import (
	"context"
	"time"

	"freight/internal/domain"
)

// TripLockStoreInterface defines the interface for per-trip write locking.
type TripLockStoreInterface interface {
	AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleaseTripLock(ctx context.Context, tripID string) error
}

// CacheStoreInterface defines the interface for trip/ledger snapshot caching.
// Get returns nil on a miss; Set fills the snapshot after a repository read.
type CacheStoreInterface interface {
	GetTrip(ctx context.Context, tripID string) (*domain.Trip, error)
	SetTrip(ctx context.Context, trip *domain.Trip) error
	InvalidateTrip(ctx context.Context, tripID string) error
	GetLedger(ctx context.Context, tripID string) (*domain.Ledger, error)
	SetLedger(ctx context.Context, ledger *domain.Ledger) error
	InvalidateLedger(ctx context.Context, tripID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ TripLockStoreInterface = (*TripLockStore)(nil)
	_ CacheStoreInterface    = (*CacheStore)(nil)
)

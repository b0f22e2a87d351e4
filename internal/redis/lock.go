package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TripLockStore serializes writers per trip via Redis. Every mutating
// operation on a trip (transition, payment, milestone append, rating)
// must hold the trip's lock, so driver and business actions never
// interleave into an inconsistent status/ledger pair.
type TripLockStore struct {
	client *redis.Client
}

// NewTripLockStore creates a new TripLockStore.
func NewTripLockStore(client *redis.Client) *TripLockStore {
	return &TripLockStore{client: client}
}

// AcquireTripLock attempts to acquire the write lock for the given trip.
// Returns true if the lock was acquired, false if another writer holds it.
func (s *TripLockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:trip:%s", tripID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseTripLock releases the write lock for the given trip.
func (s *TripLockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	key := fmt.Sprintf("lock:trip:%s", tripID)

	return s.client.Del(ctx, key).Err()
}

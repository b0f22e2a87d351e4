package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"freight/internal/domain"
)

// CacheStore keeps short-lived JSON snapshots of trips and ledgers.
// Reads consult the snapshot first and fill it on a miss; writers
// invalidate after commit, so a dirty half-applied transition is never
// cached.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	TripCacheTTL   = 30 * time.Second // status moves as drivers act
	LedgerCacheTTL = 60 * time.Second // payments are less frequent
)

// Key prefixes
const (
	tripCachePrefix   = "cache:trip:"
	ledgerCachePrefix = "cache:ledger:"
)

// GetTrip retrieves a trip snapshot from cache. Returns nil on a miss.
func (s *CacheStore) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	key := tripCachePrefix + tripID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var trip domain.Trip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// SetTrip stores a trip snapshot in cache.
func (s *CacheStore) SetTrip(ctx context.Context, trip *domain.Trip) error {
	key := tripCachePrefix + trip.ID
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, TripCacheTTL).Err()
}

// InvalidateTrip removes a trip snapshot from cache.
func (s *CacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	key := tripCachePrefix + tripID
	return s.client.Del(ctx, key).Err()
}

// GetLedger retrieves a ledger snapshot from cache. Returns nil on a miss.
func (s *CacheStore) GetLedger(ctx context.Context, tripID string) (*domain.Ledger, error) {
	key := ledgerCachePrefix + tripID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var ledger domain.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

// SetLedger stores a ledger snapshot in cache.
func (s *CacheStore) SetLedger(ctx context.Context, ledger *domain.Ledger) error {
	key := ledgerCachePrefix + ledger.TripID
	data, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, LedgerCacheTTL).Err()
}

// InvalidateLedger removes a ledger snapshot from cache.
func (s *CacheStore) InvalidateLedger(ctx context.Context, tripID string) error {
	key := ledgerCachePrefix + tripID
	return s.client.Del(ctx, key).Err()
}

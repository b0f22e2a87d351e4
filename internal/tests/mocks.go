package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"freight/internal/domain"
	"freight/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount  int32
	GetByIDCallCount int32
	UpdateCallCount  int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) List(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		if filter.OwnerID != "" && t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.DriverID != "" && t.DriverID != filter.DriverID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.DriverID != driverID {
			continue
		}
		switch t.Status {
		case domain.TripStatusDelivered, domain.TripStatusRated, domain.TripStatusCancelled:
			continue
		}
		copy := *t
		return &copy, nil
	}
	return nil, nil
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// ──────────────────────────────────────────────
// MOCK MILESTONE REPOSITORY
// ──────────────────────────────────────────────

// MockMilestoneRepository is a mock implementation of MilestoneRepository.
type MockMilestoneRepository struct {
	mu         sync.RWMutex
	milestones map[string][]*domain.Milestone

	// Counters for verification
	AppendCallCount int32

	// Error injection
	AppendError error
}

// NewMockMilestoneRepository creates a new mock milestone repository.
func NewMockMilestoneRepository() *MockMilestoneRepository {
	return &MockMilestoneRepository{
		milestones: make(map[string][]*domain.Milestone),
	}
}

func (m *MockMilestoneRepository) Append(ctx context.Context, milestone *domain.Milestone) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *milestone
	m.milestones[milestone.TripID] = append(m.milestones[milestone.TripID], &copy)
	return nil
}

func (m *MockMilestoneRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.Milestone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.milestones[tripID]
	result := make([]*domain.Milestone, 0, len(list))
	for _, ms := range list {
		copy := *ms
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockMilestoneRepository) Latest(ctx context.Context, tripID string) (*domain.Milestone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.milestones[tripID]
	if len(list) == 0 {
		return nil, nil
	}
	copy := *list[len(list)-1]
	return &copy, nil
}

// Labels returns the appended labels in order, for test assertions.
func (m *MockMilestoneRepository) Labels(tripID string) []domain.MilestoneLabel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	labels := make([]domain.MilestoneLabel, 0, len(m.milestones[tripID]))
	for _, ms := range m.milestones[tripID] {
		labels = append(labels, ms.Label)
	}
	return labels
}

// ──────────────────────────────────────────────
// MOCK LEDGER REPOSITORY
// ──────────────────────────────────────────────

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	ledgers map[string]*domain.Ledger

	// Counters for verification
	CreateCallCount        int32
	UpdateChargesCallCount int32
	AddPaymentCallCount    int32

	// Error injection
	CreateError        error
	UpdateChargesError error
	AddPaymentError    error
}

// NewMockLedgerRepository creates a new mock ledger repository.
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		ledgers: make(map[string]*domain.Ledger),
	}
}

// AddLedger adds a ledger to the mock repository.
func (m *MockLedgerRepository) AddLedger(ledger *domain.Ledger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[ledger.TripID] = ledger
}

func (m *MockLedgerRepository) Create(ctx context.Context, ledger *domain.Ledger) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ledger
	copy.Payments = append([]domain.Payment(nil), ledger.Payments...)
	m.ledgers[ledger.TripID] = &copy
	return nil
}

func (m *MockLedgerRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ledger, ok := m.ledgers[tripID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *ledger
	copy.Payments = append([]domain.Payment(nil), ledger.Payments...)
	return &copy, nil
}

func (m *MockLedgerRepository) UpdateCharges(ctx context.Context, ledger *domain.Ledger) error {
	atomic.AddInt32(&m.UpdateChargesCallCount, 1)
	if m.UpdateChargesError != nil {
		return m.UpdateChargesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.ledgers[ledger.TripID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.BaseFare = ledger.BaseFare
	stored.GST = ledger.GST
	stored.TollCharge = ledger.TollCharge
	stored.LoadingCharge = ledger.LoadingCharge
	stored.UnloadingCharge = ledger.UnloadingCharge
	return nil
}

func (m *MockLedgerRepository) AddPayment(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.AddPaymentCallCount, 1)
	if m.AddPaymentError != nil {
		return m.AddPaymentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[payment.TripID]
	if !ok {
		return repository.ErrNotFound
	}
	ledger.Payments = append(ledger.Payments, *payment)
	return nil
}

// GetLedger returns the stored ledger for test assertions.
func (m *MockLedgerRepository) GetLedger(tripID string) *domain.Ledger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ledgers[tripID]
}

// ──────────────────────────────────────────────
// MOCK RATING REPOSITORY
// ──────────────────────────────────────────────

// MockRatingRepository is a mock implementation of RatingRepository.
type MockRatingRepository struct {
	mu      sync.RWMutex
	ratings map[string]*domain.Rating

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockRatingRepository creates a new mock rating repository.
func NewMockRatingRepository() *MockRatingRepository {
	return &MockRatingRepository{
		ratings: make(map[string]*domain.Rating),
	}
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *rating
	m.ratings[rating.TripID] = &copy
	return nil
}

func (m *MockRatingRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rating, ok := m.ratings[tripID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *rating
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK TRACKING SEQUENCE
// ──────────────────────────────────────────────

// MockTrackingSequence is a mock implementation of TrackingSequence.
type MockTrackingSequence struct {
	mu   sync.Mutex
	last map[int]int

	// Error injection
	NextError error
}

// NewMockTrackingSequence creates a new mock tracking sequence.
func NewMockTrackingSequence() *MockTrackingSequence {
	return &MockTrackingSequence{last: make(map[int]int)}
}

func (m *MockTrackingSequence) Next(ctx context.Context, year int) (int, error) {
	if m.NextError != nil {
		return 0, m.NextError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[year]++
	return m.last[year], nil
}

// ──────────────────────────────────────────────
// MOCK UNIT OF WORK
// ──────────────────────────────────────────────

// MockUnitOfWork runs the transactional function directly against the
// bound mock repositories. Rollback semantics are not simulated; tests
// assert on returned errors instead.
type MockUnitOfWork struct {
	Repos repository.Repositories

	// Counters for verification
	WithinTxCallCount int32

	// Error injection
	BeginError error
}

// NewMockUnitOfWork creates a unit of work over the given mocks.
func NewMockUnitOfWork(
	trips *MockTripRepository,
	milestones *MockMilestoneRepository,
	ledgers *MockLedgerRepository,
	ratings *MockRatingRepository,
	sequences *MockTrackingSequence,
) *MockUnitOfWork {
	return &MockUnitOfWork{
		Repos: repository.Repositories{
			Trips:      trips,
			Milestones: milestones,
			Ledgers:    ledgers,
			Ratings:    ratings,
			Sequences:  sequences,
		},
	}
}

func (m *MockUnitOfWork) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	atomic.AddInt32(&m.WithinTxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(m.Repos)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockTripLockStore is a mock implementation of TripLockStoreInterface.
type MockTripLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockTripLockStore creates a new mock lock store.
func NewMockTripLockStore() *MockTripLockStore {
	return &MockTripLockStore{locks: make(map[string]bool)}
}

func (m *MockTripLockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[tripID] {
		return false, nil
	}
	m.locks[tripID] = true
	return true, nil
}

func (m *MockTripLockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, tripID)
	return nil
}

// HoldLock marks a trip as locked by someone else.
func (m *MockTripLockStore) HoldLock(tripID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[tripID] = true
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of CacheStoreInterface. Reads
// return copies, matching the fresh unmarshal a redis read produces.
type MockCacheStore struct {
	mu      sync.RWMutex
	trips   map[string]*domain.Trip
	ledgers map[string]*domain.Ledger

	// Counters for verification
	SetTripCallCount          int32
	SetLedgerCallCount        int32
	InvalidateTripCallCount   int32
	InvalidateLedgerCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		trips:   make(map[string]*domain.Trip),
		ledgers: make(map[string]*domain.Ledger),
	}
}

func (m *MockCacheStore) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return nil, nil
	}
	copy := *trip
	return &copy, nil
}

func (m *MockCacheStore) SetTrip(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.SetTripCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.InvalidateTripCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trips, tripID)
	return nil
}

func (m *MockCacheStore) GetLedger(ctx context.Context, tripID string) (*domain.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ledger, ok := m.ledgers[tripID]
	if !ok {
		return nil, nil
	}
	copy := *ledger
	copy.Payments = append([]domain.Payment(nil), ledger.Payments...)
	return &copy, nil
}

func (m *MockCacheStore) SetLedger(ctx context.Context, ledger *domain.Ledger) error {
	atomic.AddInt32(&m.SetLedgerCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ledger
	copy.Payments = append([]domain.Payment(nil), ledger.Payments...)
	m.ledgers[ledger.TripID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateLedger(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.InvalidateLedgerCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ledgers, tripID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published notification events.
type MockPublisher struct {
	mu        sync.Mutex
	published []PublishedEvent

	// Error injection
	PublishError error
}

// PublishedEvent is one captured broker publish.
type PublishedEvent struct {
	RoutingKey string
	Body       []byte
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, PublishedEvent{RoutingKey: routingKey, Body: body})
	return nil
}

// Published returns the captured events.
func (m *MockPublisher) Published() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedEvent(nil), m.published...)
}

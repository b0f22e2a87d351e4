package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"freight/internal/domain"
	"freight/internal/redis"
	"freight/internal/repository"
)

// tripLockTTL bounds how long a single mutating operation may hold the
// per-trip write lock.
const tripLockTTL = 10 * time.Second

// nextStatus is the authoritative transition table. From any status the
// only legal forward target is its entry here; DELIVERED and the states
// outside the sequence have none.
var nextStatus = map[domain.TripStatus]domain.TripStatus{
	domain.TripStatusCreated:        domain.TripStatusDriverAssigned,
	domain.TripStatusDriverAssigned: domain.TripStatusGoingToPickup,
	domain.TripStatusGoingToPickup:  domain.TripStatusAtPickup,
	domain.TripStatusAtPickup:       domain.TripStatusLoaded,
	domain.TripStatusLoaded:         domain.TripStatusInTransit,
	domain.TripStatusInTransit:      domain.TripStatusAtDestination,
	domain.TripStatusAtDestination:  domain.TripStatusDelivered,
}

// statusProgress fixes the progress percentage reached at each status.
// IN_TRANSIT holds the entry value and interpolates up to 95 over the
// estimated transit duration.
var statusProgress = map[domain.TripStatus]int{
	domain.TripStatusCreated:        0,
	domain.TripStatusDriverAssigned: 10,
	domain.TripStatusGoingToPickup:  20,
	domain.TripStatusAtPickup:       35,
	domain.TripStatusLoaded:         45,
	domain.TripStatusInTransit:      45,
	domain.TripStatusAtDestination:  95,
	domain.TripStatusDelivered:      100,
	domain.TripStatusRated:          100,
}

// LifecycleService owns a trip's status and enforces legal transitions
// from creation through delivery.
type LifecycleService struct {
	uow           repository.UnitOfWork
	tripRepo      repository.TripRepository
	ledgerService *LedgerService
	locks         redis.TripLockStoreInterface
	cache         redis.CacheStoreInterface
	notifier      *NotificationService
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	uow repository.UnitOfWork,
	tripRepo repository.TripRepository,
	ledgerService *LedgerService,
	locks redis.TripLockStoreInterface,
	cache redis.CacheStoreInterface,
	notifier *NotificationService,
) *LifecycleService {
	return &LifecycleService{
		uow:           uow,
		tripRepo:      tripRepo,
		ledgerService: ledgerService,
		locks:         locks,
		cache:         cache,
		notifier:      notifier,
	}
}

// TransitionRequest contains the parameters for a lifecycle transition.
type TransitionRequest struct {
	TripID string
	Target domain.TripStatus
	Actor  domain.Actor

	// DriverID names the driver being assigned; used only for the
	// DRIVER_ASSIGNED target. Defaults to the acting driver.
	DriverID string

	// ConfirmationToken carries the delivery confirmation (OTP or
	// signature reference). Required for the DELIVERED target.
	ConfirmationToken string

	// Location is optional free text recorded on the milestone.
	Location string
}

// Transition advances a trip to the target status. Re-requesting the
// current status is a successful no-op; anything other than the next
// status in sequence (or CANCELLED, which routes to Cancel) is rejected
// without mutating state.
func (s *LifecycleService) Transition(ctx context.Context, req TransitionRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	if req.Target == domain.TripStatusCancelled {
		return s.Cancel(ctx, req.TripID, req.Actor, "")
	}

	if req.Target.Rank() < 0 {
		return nil, ErrIllegalTransition
	}

	acquired, err := s.locks.AcquireTripLock(ctx, req.TripID, tripLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrTripBusy
	}
	defer func() { _ = s.locks.ReleaseTripLock(ctx, req.TripID) }()

	var trip *domain.Trip
	var changed bool
	err = s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		trip, err = r.Trips.GetByID(ctx, req.TripID)
		if err != nil {
			return err
		}

		// Idempotent retry: the trip is already where the caller wants it.
		if trip.Status == req.Target {
			return nil
		}

		if next, ok := nextStatus[trip.Status]; !ok || next != req.Target {
			return ErrIllegalTransition
		}

		if err := s.checkCapability(ctx, r, trip, req); err != nil {
			return err
		}

		now := time.Now()

		switch req.Target {
		case domain.TripStatusDriverAssigned:
			driverID := req.DriverID
			if driverID == "" {
				driverID = req.Actor.ID
			}
			trip.DriverID = driverID
		case domain.TripStatusInTransit:
			trip.TransitStartedAt = now
		case domain.TripStatusDelivered:
			if req.ConfirmationToken == "" {
				return ErrConfirmationRequired
			}
			ledger, err := r.Ledgers.GetByTripID(ctx, trip.ID)
			if err != nil {
				return err
			}
			if err := s.ledgerService.CheckDeliveryPolicy(ledger); err != nil {
				return err
			}
			trip.DeliveredAt = now
		}

		trip.Status = req.Target
		if p := statusProgress[req.Target]; p > trip.ProgressPct {
			trip.ProgressPct = p
		}

		if err := r.Trips.Update(ctx, trip); err != nil {
			return err
		}

		if label, ok := domain.MilestoneForStatus(req.Target); ok {
			milestone := &domain.Milestone{
				ID:        uuid.New().String(),
				TripID:    trip.ID,
				Label:     label,
				Timestamp: now,
				Location:  req.Location,
			}
			if err := r.Milestones.Append(ctx, milestone); err != nil {
				return err
			}
		}

		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterCommit(ctx, trip)
	}

	return trip, nil
}

// Cancel cancels a trip. Legal from any state strictly before LOADED;
// only the business owner or an admin may cancel. Cancelling an already
// cancelled trip is a no-op.
func (s *LifecycleService) Cancel(ctx context.Context, tripID string, actor domain.Actor, reason string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	acquired, err := s.locks.AcquireTripLock(ctx, tripID, tripLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrTripBusy
	}
	defer func() { _ = s.locks.ReleaseTripLock(ctx, tripID) }()

	var trip *domain.Trip
	var changed bool
	err = s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		trip, err = r.Trips.GetByID(ctx, tripID)
		if err != nil {
			return err
		}

		// Capability first: a stranger never learns the trip state, not
		// even when the cancel would be a no-op.
		if actor.Role != domain.RoleAdmin &&
			!(actor.Role == domain.RoleBusiness && actor.ID == trip.OwnerID) {
			return ErrActorNotAllowed
		}

		if trip.Status == domain.TripStatusCancelled {
			return nil
		}

		if trip.Status.Terminal() || trip.Status.Rank() >= domain.TripStatusLoaded.Rank() {
			return ErrCancellationWindowClosed
		}

		trip.Status = domain.TripStatusCancelled
		trip.CancelledAt = time.Now()
		trip.CancelReason = reason

		if err := r.Trips.Update(ctx, trip); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		if s.cache != nil {
			_ = s.cache.InvalidateTrip(ctx, trip.ID)
		}
		if s.notifier != nil {
			_ = s.notifier.NotifyTripCancelled(ctx, trip)
		}
	}

	return trip, nil
}

// GetTrip retrieves a trip with its live progress. Reads consult the
// snapshot cache first and fill it on a miss; a redis failure degrades
// to a repository read. While IN_TRANSIT the stored progress is the
// transition-time value; reads interpolate from elapsed transit time.
func (s *LifecycleService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	var trip *domain.Trip
	if s.cache != nil {
		if cached, err := s.cache.GetTrip(ctx, tripID); err == nil && cached != nil {
			trip = cached
		}
	}
	if trip == nil {
		var err error
		trip, err = s.tripRepo.GetByID(ctx, tripID)
		if err != nil {
			return nil, err
		}
		// Snapshot the committed state before read-time interpolation.
		if s.cache != nil {
			_ = s.cache.SetTrip(ctx, trip)
		}
	}

	if trip.Status == domain.TripStatusInTransit {
		if p := transitProgress(trip, time.Now()); p > trip.ProgressPct {
			trip.ProgressPct = p
		}
	}

	return trip, nil
}

// ListTrips retrieves trips matching the filter, newest first.
func (s *LifecycleService) ListTrips(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	return s.tripRepo.List(ctx, filter)
}

// checkCapability enforces who may drive which transition: the assigned
// driver owns everything from departure through delivery, and assignment
// itself is done by a driver accepting the request (or an admin).
func (s *LifecycleService) checkCapability(ctx context.Context, r repository.Repositories, trip *domain.Trip, req TransitionRequest) error {
	switch req.Target {
	case domain.TripStatusDriverAssigned:
		if req.Actor.Role != domain.RoleDriver && req.Actor.Role != domain.RoleAdmin {
			return ErrActorNotAllowed
		}
		driverID := req.DriverID
		if driverID == "" {
			driverID = req.Actor.ID
		}
		active, err := r.Trips.GetActiveByDriverID(ctx, driverID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrDriverHasActiveTrip
		}
	default:
		if req.Actor.Role != domain.RoleDriver || req.Actor.ID != trip.DriverID {
			return ErrActorNotAllowed
		}
	}
	return nil
}

// transitProgress interpolates 45-95 from the elapsed fraction of the
// estimated transit duration, clamped at both ends.
func transitProgress(trip *domain.Trip, now time.Time) int {
	if trip.TransitStartedAt.IsZero() || trip.EstimatedTransit <= 0 {
		return statusProgress[domain.TripStatusInTransit]
	}

	frac := float64(now.Sub(trip.TransitStartedAt)) / float64(trip.EstimatedTransit)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	return 45 + int(frac*50)
}

func (s *LifecycleService) afterCommit(ctx context.Context, trip *domain.Trip) {
	// Best effort only. The transition has committed; cache and
	// notification failures must never roll it back.
	if s.cache != nil {
		_ = s.cache.InvalidateTrip(ctx, trip.ID)
	}
	if s.notifier != nil {
		_ = s.notifier.NotifyStatusChanged(ctx, trip)
	}
}

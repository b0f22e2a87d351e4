package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"freight/internal/domain"
	"freight/internal/redis"
	"freight/internal/repository"
)

// RatingService handles the terminal feedback step. Submission is gated on
// delivery and moves the trip into read-only history.
type RatingService struct {
	uow        repository.UnitOfWork
	ratingRepo repository.RatingRepository
	locks      redis.TripLockStoreInterface
	cache      redis.CacheStoreInterface
	notifier   *NotificationService
}

// NewRatingService creates a new RatingService.
func NewRatingService(
	uow repository.UnitOfWork,
	ratingRepo repository.RatingRepository,
	locks redis.TripLockStoreInterface,
	cache redis.CacheStoreInterface,
	notifier *NotificationService,
) *RatingService {
	return &RatingService{
		uow:        uow,
		ratingRepo: ratingRepo,
		locks:      locks,
		cache:      cache,
		notifier:   notifier,
	}
}

// SubmitRatingRequest contains the parameters for submitting feedback.
type SubmitRatingRequest struct {
	TripID        string
	Actor         domain.Actor
	DriverRating  int
	ServiceRating int
	Tags          []string
	Comment       string
	TipAmount     float64
	TipMethod     domain.PaymentMethod
}

// Submit records delivery feedback. Both star ratings must be 1-5, tags
// must come from the fixed category set, and an optional tip is recorded
// on the ledger without counting toward the due. On success the trip is
// marked RATED.
func (s *RatingService) Submit(ctx context.Context, req SubmitRatingRequest) (*domain.Rating, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.DriverRating < 1 || req.DriverRating > 5 || req.ServiceRating < 1 || req.ServiceRating > 5 {
		return nil, ErrInvalidRating
	}
	if req.TipAmount < 0 {
		return nil, ErrInvalidPaymentAmount
	}

	tags := make([]domain.FeedbackTag, 0, len(req.Tags))
	for _, t := range req.Tags {
		tag := domain.FeedbackTag(t)
		if !domain.ValidFeedbackTag(tag) {
			return nil, ErrInvalidFeedbackTag
		}
		tags = append(tags, tag)
	}

	acquired, err := s.locks.AcquireTripLock(ctx, req.TripID, tripLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrTripBusy
	}
	defer func() { _ = s.locks.ReleaseTripLock(ctx, req.TripID) }()

	var rating *domain.Rating
	err = s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		trip, err := r.Trips.GetByID(ctx, req.TripID)
		if err != nil {
			return err
		}

		if trip.Status == domain.TripStatusRated {
			return ErrAlreadyRated
		}
		if trip.Status != domain.TripStatusDelivered {
			return ErrDeliveryNotComplete
		}
		if req.Actor.Role != domain.RoleAdmin && req.Actor.ID != trip.OwnerID {
			return ErrActorNotAllowed
		}

		now := time.Now()
		rating = &domain.Rating{
			ID:            uuid.New().String(),
			TripID:        trip.ID,
			DriverID:      trip.DriverID,
			DriverRating:  req.DriverRating,
			ServiceRating: req.ServiceRating,
			Tags:          tags,
			Comment:       req.Comment,
			TipAmount:     req.TipAmount,
			CreatedAt:     now,
		}

		if err := r.Ratings.Create(ctx, rating); err != nil {
			return err
		}

		if req.TipAmount > 0 {
			method := req.TipMethod
			if _, ok := domain.ParsePaymentMethod(string(method)); !ok {
				method = domain.PaymentMethodCash
			}
			tip := &domain.Payment{
				ID:        uuid.New().String(),
				TripID:    trip.ID,
				Amount:    req.TipAmount,
				Method:    method,
				Type:      domain.PaymentTypeTip,
				Timestamp: now,
			}
			if err := r.Ledgers.AddPayment(ctx, tip); err != nil {
				return err
			}
		}

		trip.Status = domain.TripStatusRated
		return r.Trips.Update(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateTrip(ctx, req.TripID)
		_ = s.cache.InvalidateLedger(ctx, req.TripID)
	}
	if s.notifier != nil {
		_ = s.notifier.NotifyRatingSubmitted(ctx, rating)
	}

	return rating, nil
}

// GetRating retrieves the submitted feedback for a trip.
func (s *RatingService) GetRating(ctx context.Context, tripID string) (*domain.Rating, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.ratingRepo.GetByTripID(ctx, tripID)
}

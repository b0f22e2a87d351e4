package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"freight/internal/domain"
	"freight/internal/repository"
)

// BookingService validates booking drafts and converts confirmed drafts
// into trips.
type BookingService struct {
	uow              repository.UnitOfWork
	pricing          *PricingService
	notifier         *NotificationService
	estimatedTransit time.Duration
}

// NewBookingService creates a new BookingService. estimatedTransit is the
// default transit duration used for progress interpolation when a booking
// carries no better estimate.
func NewBookingService(
	uow repository.UnitOfWork,
	pricing *PricingService,
	notifier *NotificationService,
	estimatedTransit time.Duration,
) *BookingService {
	return &BookingService{
		uow:              uow,
		pricing:          pricing,
		notifier:         notifier,
		estimatedTransit: estimatedTransit,
	}
}

// Validate checks a booking draft field by field. It returns nil when the
// draft is submittable, otherwise a map of field name to reason.
func (s *BookingService) Validate(draft *domain.BookingDraft) map[string]string {
	errs := make(map[string]string)

	if draft.Pickup.Address == "" || draft.Pickup.City == "" {
		errs["pickup"] = "pickup location is required"
	}
	if draft.Drop.Address == "" || draft.Drop.City == "" {
		errs["drop"] = "drop location is required"
	}
	if draft.SecondDrop != nil && (draft.SecondDrop.Address == "" || draft.SecondDrop.City == "") {
		errs["second_drop"] = "second drop location is incomplete"
	}
	if draft.Material == "" {
		errs["material"] = "material type is required"
	}

	if draft.Weight == "" {
		errs["weight"] = "weight is required"
	} else if w, err := strconv.ParseFloat(draft.Weight, 64); err != nil || w <= 0 {
		errs["weight"] = "weight must be a positive number"
	}

	if draft.TruckType == "" {
		errs["truck_type"] = "truck type is required"
	} else if _, ok := domain.ParseTruckType(draft.TruckType); !ok {
		errs["truck_type"] = "unknown truck type"
	}

	if _, ok := domain.ParseUrgency(draft.Urgency); !ok {
		errs["urgency"] = "unknown urgency tier"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ConfirmResult contains the trip and its initial ledger estimate.
type ConfirmResult struct {
	Trip   *domain.Trip
	Ledger *domain.Ledger
}

// Confirm consumes a valid draft: it allocates a tracking ID, creates the
// trip in CREATED, appends the Booking Confirmed milestone, and prices the
// initial ledger. All three writes commit in one transaction.
func (s *BookingService) Confirm(ctx context.Context, draft *domain.BookingDraft, owner domain.Actor) (*ConfirmResult, error) {
	if owner.Role != domain.RoleBusiness && owner.Role != domain.RoleAdmin {
		return nil, ErrActorNotAllowed
	}

	if errs := s.Validate(draft); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	weightKg, _ := strconv.ParseFloat(draft.Weight, 64)
	truckType, _ := domain.ParseTruckType(draft.TruckType)
	urgency, _ := domain.ParseUrgency(draft.Urgency)

	now := time.Now()
	pickupStart := draft.PickupAt
	if pickupStart.IsZero() {
		pickupStart = now
	}

	var result ConfirmResult
	err := s.uow.WithinTx(ctx, func(r repository.Repositories) error {
		seq, err := r.Sequences.Next(ctx, now.Year())
		if err != nil {
			return err
		}

		trip := &domain.Trip{
			ID:                fmt.Sprintf("TRK%d%03d", now.Year(), seq),
			OwnerID:           owner.ID,
			Status:            domain.TripStatusCreated,
			Origin:            draft.Pickup,
			Destination:       draft.Drop,
			SecondDrop:        draft.SecondDrop,
			Material:          draft.Material,
			WeightKg:          weightKg,
			TruckType:         truckType,
			Urgency:           urgency,
			Notes:             draft.Notes,
			ProgressPct:       0,
			PickupWindowStart: pickupStart,
			PickupWindowEnd:   pickupStart.Add(2 * time.Hour),
			EstimatedTransit:  s.estimatedTransit,
			CreatedAt:         now,
		}

		if err := r.Trips.Create(ctx, trip); err != nil {
			return err
		}

		milestone := &domain.Milestone{
			ID:        uuid.New().String(),
			TripID:    trip.ID,
			Label:     domain.MilestoneBookingConfirmed,
			Timestamp: now,
			Location:  trip.Origin.City,
		}
		if err := r.Milestones.Append(ctx, milestone); err != nil {
			return err
		}

		ledger := s.pricing.Estimate(trip.ID, truckType, urgency, weightKg)
		if err := r.Ledgers.Create(ctx, ledger); err != nil {
			return err
		}

		result.Trip = trip
		result.Ledger = ledger
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyTripBooked(ctx, result.Trip)
	}

	return &result, nil
}

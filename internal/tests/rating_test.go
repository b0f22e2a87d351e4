package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"freight/internal/domain"
	"freight/internal/repository"
	"freight/internal/service"
)

// ──────────────────────────────────────────────
// 5. RATING INTAKE
// ──────────────────────────────────────────────

type ratingFixture struct {
	trips   *MockTripRepository
	ledgers *MockLedgerRepository
	ratings *MockRatingRepository
	svc     *service.RatingService
}

func newRatingFixture(status domain.TripStatus) *ratingFixture {
	f := &ratingFixture{
		trips:   NewMockTripRepository(),
		ledgers: NewMockLedgerRepository(),
		ratings: NewMockRatingRepository(),
	}
	uow := NewMockUnitOfWork(f.trips, NewMockMilestoneRepository(), f.ledgers, f.ratings, NewMockTrackingSequence())
	notifier := service.NewNotificationService(nil)
	f.svc = service.NewRatingService(uow, f.ratings, NewMockTripLockStore(), NewMockCacheStore(), notifier)

	f.trips.AddTrip(&domain.Trip{
		ID:          "TRK2026001",
		OwnerID:     "biz-1",
		DriverID:    "drv-1",
		Status:      status,
		DeliveredAt: time.Now(),
	})
	f.ledgers.AddLedger(&domain.Ledger{
		TripID:   "TRK2026001",
		BaseFare: 1200,
		GST:      216,
		Payments: []domain.Payment{
			{ID: "pay-1", TripID: "TRK2026001", Amount: 1416, Method: domain.PaymentMethodUPI, Type: "Advance Payment (100%)"},
		},
	})
	return f
}

func ratingRequest() service.SubmitRatingRequest {
	return service.SubmitRatingRequest{
		TripID:        "TRK2026001",
		Actor:         domain.Actor{ID: "biz-1", Role: domain.RoleBusiness},
		DriverRating:  5,
		ServiceRating: 4,
		Tags:          []string{"ON_TIME", "PROFESSIONAL"},
		Comment:       "smooth delivery",
	}
}

func TestRating_RejectedBeforeDelivery(t *testing.T) {
	t.Parallel()

	f := newRatingFixture(domain.TripStatusInTransit)

	_, err := f.svc.Submit(context.Background(), ratingRequest())
	if !errors.Is(err, service.ErrDeliveryNotComplete) {
		t.Fatalf("expected ErrDeliveryNotComplete, got %v", err)
	}
	if f.ratings.CreateCallCount != 0 {
		t.Error("rejected rating must not be stored")
	}
}

func TestRating_SubmitMarksTripRated(t *testing.T) {
	t.Parallel()

	f := newRatingFixture(domain.TripStatusDelivered)

	rating, err := f.svc.Submit(context.Background(), ratingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rating.DriverRating != 5 || rating.ServiceRating != 4 {
		t.Errorf("stars not recorded: %d/%d", rating.DriverRating, rating.ServiceRating)
	}
	if rating.DriverID != "drv-1" {
		t.Errorf("expected rating bound to assigned driver, got %q", rating.DriverID)
	}

	stored := f.trips.GetTrip("TRK2026001")
	if stored.Status != domain.TripStatusRated {
		t.Errorf("expected trip RATED, got %s", stored.Status)
	}

	// A second submission is rejected.
	_, err = f.svc.Submit(context.Background(), ratingRequest())
	if !errors.Is(err, service.ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}
}

func TestRating_InvalidStars(t *testing.T) {
	t.Parallel()

	f := newRatingFixture(domain.TripStatusDelivered)

	for _, stars := range []int{0, 6, -1} {
		req := ratingRequest()
		req.DriverRating = stars
		if _, err := f.svc.Submit(context.Background(), req); !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("driver stars %d: expected ErrInvalidRating, got %v", stars, err)
		}

		req = ratingRequest()
		req.ServiceRating = stars
		if _, err := f.svc.Submit(context.Background(), req); !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("service stars %d: expected ErrInvalidRating, got %v", stars, err)
		}
	}
}

func TestRating_InvalidFeedbackTag(t *testing.T) {
	t.Parallel()

	f := newRatingFixture(domain.TripStatusDelivered)

	req := ratingRequest()
	req.Tags = []string{"ON_TIME", "TELEPATHIC"}
	if _, err := f.svc.Submit(context.Background(), req); !errors.Is(err, service.ErrInvalidFeedbackTag) {
		t.Errorf("expected ErrInvalidFeedbackTag, got %v", err)
	}
}

func TestRating_TipRecordedOnLedger(t *testing.T) {
	t.Parallel()

	f := newRatingFixture(domain.TripStatusDelivered)

	req := ratingRequest()
	req.TipAmount = 150
	req.TipMethod = domain.PaymentMethodUPI

	if _, err := f.svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ledger := f.ledgers.GetLedger("TRK2026001")
	if len(ledger.Payments) != 2 {
		t.Fatalf("expected tip payment appended, got %d payments", len(ledger.Payments))
	}
	tip := ledger.Payments[1]
	if tip.Type != domain.PaymentTypeTip || tip.Amount != 150 {
		t.Errorf("expected 150 tip, got %q %.2f", tip.Type, tip.Amount)
	}

	// The tip never reduces what was owed.
	if ledger.Due() != 0 || ledger.Paid() != 1416 {
		t.Errorf("tip leaked into the invoice: paid %.2f due %.2f", ledger.Paid(), ledger.Due())
	}
}

func TestGetRating_ReturnsSubmittedFeedback(t *testing.T) {
	t.Parallel()

	f := newRatingFixture(domain.TripStatusDelivered)
	ctx := context.Background()

	// Nothing submitted yet.
	if _, err := f.svc.GetRating(ctx, "TRK2026001"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before submission, got %v", err)
	}

	submitted, err := f.svc.Submit(ctx, ratingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := f.svc.GetRating(ctx, "TRK2026001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != submitted.ID || got.DriverRating != 5 || got.ServiceRating != 4 {
		t.Errorf("stored feedback mismatch: %+v", got)
	}
}

func TestRating_OnlyOwnerOrAdmin(t *testing.T) {
	t.Parallel()

	f := newRatingFixture(domain.TripStatusDelivered)

	req := ratingRequest()
	req.Actor = domain.Actor{ID: "drv-1", Role: domain.RoleDriver}
	if _, err := f.svc.Submit(context.Background(), req); !errors.Is(err, service.ErrActorNotAllowed) {
		t.Errorf("driver self-rating: expected ErrActorNotAllowed, got %v", err)
	}

	req = ratingRequest()
	req.Actor = domain.Actor{ID: "ops-1", Role: domain.RoleAdmin}
	if _, err := f.svc.Submit(context.Background(), req); err != nil {
		t.Errorf("admin rating: unexpected error: %v", err)
	}
}

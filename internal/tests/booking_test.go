package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"freight/internal/domain"
	"freight/internal/service"
)

// ──────────────────────────────────────────────
// 1. BOOKING DRAFT VALIDATION AND CONFIRMATION
// ──────────────────────────────────────────────

func validDraft() *domain.BookingDraft {
	return &domain.BookingDraft{
		Pickup: domain.Stop{
			Address:      "Plot 14, Industrial Area",
			City:         "Pune",
			ContactName:  "Ramesh",
			ContactPhone: "9876543210",
		},
		Drop: domain.Stop{
			Address:      "Warehouse 3, MIDC",
			City:         "Nagpur",
			ContactName:  "Suresh",
			ContactPhone: "9123456780",
		},
		Material:  "Steel Coils",
		Weight:    "1200",
		TruckType: "CONTAINER",
		Urgency:   "STANDARD",
	}
}

func newBookingService(
	trips *MockTripRepository,
	milestones *MockMilestoneRepository,
	ledgers *MockLedgerRepository,
	publisher *MockPublisher,
) *service.BookingService {
	uow := NewMockUnitOfWork(trips, milestones, ledgers, NewMockRatingRepository(), NewMockTrackingSequence())
	notifier := service.NewNotificationService(publisher)
	return service.NewBookingService(uow, service.NewPricingService(), notifier, 4*time.Hour)
}

func TestBookingValidate_EmptyDraft(t *testing.T) {
	t.Parallel()

	svc := newBookingService(NewMockTripRepository(), NewMockMilestoneRepository(), NewMockLedgerRepository(), NewMockPublisher())

	errs := svc.Validate(&domain.BookingDraft{})
	if errs == nil {
		t.Fatal("expected validation errors for empty draft")
	}

	for _, field := range []string{"pickup", "drop", "material", "weight", "truck_type"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error for field %q", field)
		}
	}

	// Empty urgency defaults to STANDARD and is not an error.
	if _, ok := errs["urgency"]; ok {
		t.Error("empty urgency should default, not fail validation")
	}
}

func TestBookingValidate_BadWeight(t *testing.T) {
	t.Parallel()

	svc := newBookingService(NewMockTripRepository(), NewMockMilestoneRepository(), NewMockLedgerRepository(), NewMockPublisher())

	for _, weight := range []string{"abc", "-5", "0"} {
		draft := validDraft()
		draft.Weight = weight
		errs := svc.Validate(draft)
		if errs == nil || errs["weight"] == "" {
			t.Errorf("weight %q: expected weight error, got %v", weight, errs)
		}
	}
}

func TestBookingValidate_TruckTypeAliases(t *testing.T) {
	t.Parallel()

	svc := newBookingService(NewMockTripRepository(), NewMockMilestoneRepository(), NewMockLedgerRepository(), NewMockPublisher())

	// Legacy size names map onto the canonical truck types.
	for _, truckType := range []string{"SMALL", "MEDIUM", "LARGE", "OPEN", "CONTAINER", "TRAILER"} {
		draft := validDraft()
		draft.TruckType = truckType
		if errs := svc.Validate(draft); errs != nil {
			t.Errorf("truck type %q: expected valid, got %v", truckType, errs)
		}
	}

	draft := validDraft()
	draft.TruckType = "HOVERCRAFT"
	if errs := svc.Validate(draft); errs == nil || errs["truck_type"] == "" {
		t.Error("expected truck_type error for unknown type")
	}
}

func TestBookingValidate_IncompleteSecondDrop(t *testing.T) {
	t.Parallel()

	svc := newBookingService(NewMockTripRepository(), NewMockMilestoneRepository(), NewMockLedgerRepository(), NewMockPublisher())

	draft := validDraft()
	draft.SecondDrop = &domain.Stop{City: "Indore"}
	errs := svc.Validate(draft)
	if errs == nil || errs["second_drop"] == "" {
		t.Errorf("expected second_drop error, got %v", errs)
	}
}

func TestBookingConfirm_CreatesTripLedgerAndMilestone(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	milestones := NewMockMilestoneRepository()
	ledgers := NewMockLedgerRepository()
	publisher := NewMockPublisher()
	svc := newBookingService(trips, milestones, ledgers, publisher)

	owner := domain.Actor{ID: "biz-1", Role: domain.RoleBusiness}
	result, err := svc.Confirm(context.Background(), validDraft(), owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Tracking ID: TRK + year + zero-padded sequence.
	wantID := fmt.Sprintf("TRK%d001", time.Now().Year())
	if result.Trip.ID != wantID {
		t.Errorf("expected trip ID %s, got %s", wantID, result.Trip.ID)
	}
	if result.Trip.Status != domain.TripStatusCreated {
		t.Errorf("expected status CREATED, got %s", result.Trip.Status)
	}
	if result.Trip.OwnerID != "biz-1" {
		t.Errorf("expected owner biz-1, got %s", result.Trip.OwnerID)
	}

	// 1200 kg in a container at standard urgency: base 1200, GST 216.
	if result.Ledger.BaseFare != 1200 {
		t.Errorf("expected base fare 1200, got %.2f", result.Ledger.BaseFare)
	}
	if result.Ledger.GST != 216 {
		t.Errorf("expected GST 216, got %.2f", result.Ledger.GST)
	}
	if result.Ledger.Total() != 1416 {
		t.Errorf("expected total 1416, got %.2f", result.Ledger.Total())
	}

	labels := milestones.Labels(result.Trip.ID)
	if len(labels) != 1 || labels[0] != domain.MilestoneBookingConfirmed {
		t.Errorf("expected single Booking Confirmed milestone, got %v", labels)
	}

	events := publisher.Published()
	if len(events) != 1 || events[0].RoutingKey != "trip.notify.trip_booked" {
		t.Errorf("expected trip_booked event, got %v", events)
	}
}

func TestBookingConfirm_SequentialTrackingIDs(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	svc := newBookingService(trips, NewMockMilestoneRepository(), NewMockLedgerRepository(), NewMockPublisher())

	owner := domain.Actor{ID: "biz-1", Role: domain.RoleBusiness}
	for i := 1; i <= 3; i++ {
		result, err := svc.Confirm(context.Background(), validDraft(), owner)
		if err != nil {
			t.Fatalf("confirm %d: unexpected error: %v", i, err)
		}
		wantID := fmt.Sprintf("TRK%d%03d", time.Now().Year(), i)
		if result.Trip.ID != wantID {
			t.Errorf("confirm %d: expected ID %s, got %s", i, wantID, result.Trip.ID)
		}
	}
}

func TestBookingConfirm_RejectsDriverActor(t *testing.T) {
	t.Parallel()

	svc := newBookingService(NewMockTripRepository(), NewMockMilestoneRepository(), NewMockLedgerRepository(), NewMockPublisher())

	_, err := svc.Confirm(context.Background(), validDraft(), domain.Actor{ID: "drv-1", Role: domain.RoleDriver})
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Errorf("expected ErrActorNotAllowed, got %v", err)
	}
}

func TestBookingConfirm_InvalidDraftNothingPersisted(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	ledgers := NewMockLedgerRepository()
	svc := newBookingService(trips, NewMockMilestoneRepository(), ledgers, NewMockPublisher())

	draft := validDraft()
	draft.Weight = "not-a-number"

	_, err := svc.Confirm(context.Background(), draft, domain.Actor{ID: "biz-1", Role: domain.RoleBusiness})

	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Fields["weight"] == "" {
		t.Errorf("expected weight field error, got %v", validationErr.Fields)
	}

	if trips.CreateCallCount != 0 || ledgers.CreateCallCount != 0 {
		t.Error("invalid draft must not persist anything")
	}
}

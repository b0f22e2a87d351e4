package tests

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"freight/internal/domain"
	"freight/internal/service"
)

// ──────────────────────────────────────────────
// 4. MILESTONE TIMELINE
// ──────────────────────────────────────────────

func newTimelineFixture() (*MockTripRepository, *MockMilestoneRepository, *service.TimelineService) {
	trips := NewMockTripRepository()
	milestones := NewMockMilestoneRepository()
	svc := service.NewTimelineService(trips, milestones, NewMockTripLockStore())

	trips.AddTrip(&domain.Trip{
		ID:      "TRK2026001",
		OwnerID: "biz-1",
		Status:  domain.TripStatusCreated,
	})
	return trips, milestones, svc
}

func TestTimelineAppend_FirstMustBeBookingConfirmed(t *testing.T) {
	t.Parallel()

	_, _, svc := newTimelineFixture()
	ctx := context.Background()

	_, err := svc.Append(ctx, "TRK2026001", domain.MilestoneDriverAssigned, time.Now(), "")
	if !errors.Is(err, service.ErrOutOfOrder) {
		t.Errorf("expected ErrOutOfOrder for non-initial first label, got %v", err)
	}

	if _, err := svc.Append(ctx, "TRK2026001", domain.MilestoneBookingConfirmed, time.Now(), "Pune"); err != nil {
		t.Errorf("unexpected error appending first milestone: %v", err)
	}
}

func TestTimelineAppend_RejectsEarlierTimestamp(t *testing.T) {
	t.Parallel()

	_, _, svc := newTimelineFixture()
	ctx := context.Background()
	now := time.Now()

	if _, err := svc.Append(ctx, "TRK2026001", domain.MilestoneBookingConfirmed, now, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Append(ctx, "TRK2026001", domain.MilestoneDriverAssigned, now.Add(-time.Minute), "")
	if !errors.Is(err, service.ErrOutOfOrder) {
		t.Errorf("expected ErrOutOfOrder for earlier timestamp, got %v", err)
	}
}

func TestTimelineAppend_RejectsGapsAndDuplicates(t *testing.T) {
	t.Parallel()

	_, milestones, svc := newTimelineFixture()
	ctx := context.Background()
	now := time.Now()

	if _, err := svc.Append(ctx, "TRK2026001", domain.MilestoneBookingConfirmed, now, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Skipping Driver Assigned.
	_, err := svc.Append(ctx, "TRK2026001", domain.MilestoneReachedPickup, now.Add(time.Minute), "")
	if !errors.Is(err, service.ErrOutOfOrder) {
		t.Errorf("expected ErrOutOfOrder for skipped label, got %v", err)
	}

	// Repeating the latest label.
	_, err = svc.Append(ctx, "TRK2026001", domain.MilestoneBookingConfirmed, now.Add(time.Minute), "")
	if !errors.Is(err, service.ErrOutOfOrder) {
		t.Errorf("expected ErrOutOfOrder for duplicate label, got %v", err)
	}

	if got := len(milestones.Labels("TRK2026001")); got != 1 {
		t.Errorf("rejected appends must not be stored, got %d milestones", got)
	}
}

func TestTimelineAppend_UnknownLabel(t *testing.T) {
	t.Parallel()

	_, _, svc := newTimelineFixture()

	_, err := svc.Append(context.Background(), "TRK2026001", "Crossed The Alps", time.Now(), "")
	if !errors.Is(err, service.ErrUnknownMilestoneLabel) {
		t.Errorf("expected ErrUnknownMilestoneLabel, got %v", err)
	}
}

func TestTimelineRender_PartitionsStates(t *testing.T) {
	t.Parallel()

	_, _, svc := newTimelineFixture()
	ctx := context.Background()
	now := time.Now()

	appended := []domain.MilestoneLabel{
		domain.MilestoneBookingConfirmed,
		domain.MilestoneDriverAssigned,
		domain.MilestoneReachedPickup,
	}
	for i, label := range appended {
		if _, err := svc.Append(ctx, "TRK2026001", label, now.Add(time.Duration(i)*time.Minute), ""); err != nil {
			t.Fatalf("append %s: unexpected error: %v", label, err)
		}
	}

	entries, err := svc.Render(ctx, "TRK2026001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != len(domain.MilestoneOrder) {
		t.Fatalf("expected %d entries, got %d", len(domain.MilestoneOrder), len(entries))
	}

	for i, entry := range entries {
		var want domain.TimelineState
		switch {
		case i < len(appended)-1:
			want = domain.TimelineCompleted
		case i == len(appended)-1:
			want = domain.TimelineCurrent
		default:
			want = domain.TimelinePending
		}
		if entry.State != want {
			t.Errorf("entry %d (%s): expected %s, got %s", i, entry.Label, want, entry.State)
		}
		if want == domain.TimelinePending && !entry.Timestamp.IsZero() {
			t.Errorf("entry %d (%s): pending entry must have no timestamp", i, entry.Label)
		}
	}

	// Rendering is a pure read: repeating it yields the same projection.
	again, err := svc.Render(ctx, "TRK2026001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(entries, again) {
		t.Error("repeated render produced a different timeline")
	}
}

func TestTimelineRender_EmptyLogIsAllPending(t *testing.T) {
	t.Parallel()

	_, _, svc := newTimelineFixture()

	entries, err := svc.Render(context.Background(), "TRK2026001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, entry := range entries {
		if entry.State != domain.TimelinePending {
			t.Errorf("%s: expected pending, got %s", entry.Label, entry.State)
		}
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"freight/internal/domain"
	"freight/internal/redis"
	"freight/internal/repository"
)

// TimelineService maintains the append-only milestone log and renders the
// user-facing timeline. The log is the audit trail for disputes: the
// rendered view is always rebuilt purely from appended facts.
type TimelineService struct {
	tripRepo      repository.TripRepository
	milestoneRepo repository.MilestoneRepository
	locks         redis.TripLockStoreInterface
}

// NewTimelineService creates a new TimelineService.
func NewTimelineService(
	tripRepo repository.TripRepository,
	milestoneRepo repository.MilestoneRepository,
	locks redis.TripLockStoreInterface,
) *TimelineService {
	return &TimelineService{
		tripRepo:      tripRepo,
		milestoneRepo: milestoneRepo,
		locks:         locks,
	}
}

// Append records a milestone for a trip. It rejects appends that would
// break the timeline's ordering: the timestamp may not precede the latest
// milestone, and the label must be the next one in the canonical order.
func (s *TimelineService) Append(ctx context.Context, tripID string, label domain.MilestoneLabel, ts time.Time, location string) (*domain.Milestone, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if label.Rank() < 0 {
		return nil, ErrUnknownMilestoneLabel
	}

	acquired, err := s.locks.AcquireTripLock(ctx, tripID, tripLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrTripBusy
	}
	defer func() { _ = s.locks.ReleaseTripLock(ctx, tripID) }()

	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}

	latest, err := s.milestoneRepo.Latest(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if latest == nil {
		if label != domain.MilestoneBookingConfirmed {
			return nil, ErrOutOfOrder
		}
	} else {
		if ts.Before(latest.Timestamp) {
			return nil, ErrOutOfOrder
		}
		// No duplicates, no gaps.
		if label.Rank() != latest.Label.Rank()+1 {
			return nil, ErrOutOfOrder
		}
	}

	milestone := &domain.Milestone{
		ID:        uuid.New().String(),
		TripID:    tripID,
		Label:     label,
		Timestamp: ts,
		Location:  location,
	}

	if err := s.milestoneRepo.Append(ctx, milestone); err != nil {
		return nil, err
	}

	return milestone, nil
}

// Render projects the milestone log onto the fixed label order: appended
// labels are completed, the most recent one is current, and labels not
// yet reached are pending. Rendering is a pure read and may repeat.
func (s *TimelineService) Render(ctx context.Context, tripID string) ([]domain.TimelineEntry, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}

	milestones, err := s.milestoneRepo.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	byLabel := make(map[domain.MilestoneLabel]*domain.Milestone, len(milestones))
	for _, m := range milestones {
		byLabel[m.Label] = m
	}

	reached := len(milestones)
	entries := make([]domain.TimelineEntry, 0, len(domain.MilestoneOrder))
	for i, label := range domain.MilestoneOrder {
		entry := domain.TimelineEntry{Label: label, State: domain.TimelinePending}

		if m, ok := byLabel[label]; ok {
			entry.Timestamp = m.Timestamp
			entry.Location = m.Location
			if i == reached-1 {
				entry.State = domain.TimelineCurrent
			} else {
				entry.State = domain.TimelineCompleted
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

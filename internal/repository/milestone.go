package repository

import (
	"context"

	"freight/internal/domain"
)

// MilestoneRepository defines the persistence operations for the
// append-only milestone log. Milestones are never updated or deleted.
type MilestoneRepository interface {
	// Append persists a new milestone.
	Append(ctx context.Context, m *domain.Milestone) error

	// ListByTripID retrieves all milestones for a trip, oldest first.
	ListByTripID(ctx context.Context, tripID string) ([]*domain.Milestone, error)

	// Latest retrieves the most recent milestone for a trip.
	// Returns nil if the trip has no milestones yet.
	Latest(ctx context.Context, tripID string) (*domain.Milestone, error)
}

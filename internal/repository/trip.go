package repository

import (
	"context"

	"freight/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by tracking ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// List retrieves trips matching the filter, newest first.
	List(ctx context.Context, filter TripFilter) ([]*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// GetActiveByDriverID retrieves the non-terminal trip assigned to a
	// driver. Returns nil if the driver has no active trip.
	GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error)
}

// TripFilter narrows a trip listing. Zero values mean "any".
type TripFilter struct {
	OwnerID  string
	DriverID string
	Status   domain.TripStatus
	Limit    int
}

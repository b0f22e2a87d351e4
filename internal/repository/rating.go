package repository

import (
	"context"

	"freight/internal/domain"
)

// RatingRepository defines the persistence operations for delivery ratings.
type RatingRepository interface {
	// Create persists a new rating.
	Create(ctx context.Context, rating *domain.Rating) error

	// GetByTripID retrieves the rating for a trip.
	GetByTripID(ctx context.Context, tripID string) (*domain.Rating, error)
}

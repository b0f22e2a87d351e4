package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"freight/internal/domain"
	"freight/internal/repository"
)

// RatingRepository is a PostgreSQL implementation of repository.RatingRepository.
type RatingRepository struct {
	q Querier
}

// NewRatingRepository creates a new PostgreSQL rating repository.
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{q: db}
}

// NewRatingRepositoryWithTx creates a rating repository using a transaction.
func NewRatingRepositoryWithTx(tx *sql.Tx) *RatingRepository {
	return &RatingRepository{q: tx}
}

// Create persists a new rating.
func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	query := `
		INSERT INTO ratings (id, trip_id, driver_id, driver_rating, service_rating, tags, comment, tip_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	tags := make([]string, 0, len(rating.Tags))
	for _, t := range rating.Tags {
		tags = append(tags, string(t))
	}

	_, err := r.q.ExecContext(ctx, query,
		rating.ID,
		rating.TripID,
		nullString(rating.DriverID),
		rating.DriverRating,
		rating.ServiceRating,
		pq.Array(tags),
		nullString(rating.Comment),
		rating.TipAmount,
		rating.CreatedAt,
	)

	return err
}

// GetByTripID retrieves the rating for a trip.
func (r *RatingRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Rating, error) {
	query := `
		SELECT id, trip_id, driver_id, driver_rating, service_rating, tags, comment, tip_amount, created_at
		FROM ratings WHERE trip_id = $1
	`

	var rating domain.Rating
	var driverID, comment sql.NullString
	var tags []string

	err := r.q.QueryRowContext(ctx, query, tripID).Scan(
		&rating.ID,
		&rating.TripID,
		&driverID,
		&rating.DriverRating,
		&rating.ServiceRating,
		pq.Array(&tags),
		&comment,
		&rating.TipAmount,
		&rating.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	rating.DriverID = driverID.String
	rating.Comment = comment.String
	for _, t := range tags {
		rating.Tags = append(rating.Tags, domain.FeedbackTag(t))
	}

	return &rating, nil
}

// Ensure RatingRepository implements repository.RatingRepository.
var _ repository.RatingRepository = (*RatingRepository)(nil)

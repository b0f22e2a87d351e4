package postgres

import (
	"context"
	"database/sql"

	"freight/internal/repository"
)

// TrackingSequenceRepository allocates per-year tracking sequence numbers
// from a single-row-per-year counter table.
type TrackingSequenceRepository struct {
	q Querier
}

// NewTrackingSequenceRepository creates a new PostgreSQL sequence repository.
func NewTrackingSequenceRepository(db *sql.DB) *TrackingSequenceRepository {
	return &TrackingSequenceRepository{q: db}
}

// NewTrackingSequenceRepositoryWithTx creates a sequence repository using a transaction.
func NewTrackingSequenceRepositoryWithTx(tx *sql.Tx) *TrackingSequenceRepository {
	return &TrackingSequenceRepository{q: tx}
}

// Next returns the next sequence number for the given year. The upsert
// takes a row lock, so concurrent bookings never receive the same number.
func (r *TrackingSequenceRepository) Next(ctx context.Context, year int) (int, error) {
	query := `
		INSERT INTO tracking_sequences (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = tracking_sequences.last_value + 1
		RETURNING last_value
	`

	var n int
	if err := r.q.QueryRowContext(ctx, query, year).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

// Ensure TrackingSequenceRepository implements repository.TrackingSequence.
var _ repository.TrackingSequence = (*TrackingSequenceRepository)(nil)

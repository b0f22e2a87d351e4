package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/domain"
	"freight/internal/repository"
)

// MilestoneRepository is a PostgreSQL implementation of
// repository.MilestoneRepository.
type MilestoneRepository struct {
	q Querier
}

// NewMilestoneRepository creates a new PostgreSQL milestone repository.
func NewMilestoneRepository(db *sql.DB) *MilestoneRepository {
	return &MilestoneRepository{q: db}
}

// NewMilestoneRepositoryWithTx creates a milestone repository using a transaction.
func NewMilestoneRepositoryWithTx(tx *sql.Tx) *MilestoneRepository {
	return &MilestoneRepository{q: tx}
}

// Append persists a new milestone. There is no update or delete path.
func (r *MilestoneRepository) Append(ctx context.Context, m *domain.Milestone) error {
	query := `
		INSERT INTO milestones (id, trip_id, label, ts, location)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		m.ID,
		m.TripID,
		m.Label,
		m.Timestamp,
		nullString(m.Location),
	)

	return err
}

// ListByTripID retrieves all milestones for a trip, oldest first.
func (r *MilestoneRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.Milestone, error) {
	query := `
		SELECT id, trip_id, label, ts, location
		FROM milestones WHERE trip_id = $1 ORDER BY ts ASC
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []*domain.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}

	return milestones, rows.Err()
}

// Latest retrieves the most recent milestone for a trip.
// Returns nil if the trip has no milestones yet.
func (r *MilestoneRepository) Latest(ctx context.Context, tripID string) (*domain.Milestone, error) {
	query := `
		SELECT id, trip_id, label, ts, location
		FROM milestones WHERE trip_id = $1 ORDER BY ts DESC LIMIT 1
	`

	m, err := scanMilestone(r.q.QueryRowContext(ctx, query, tripID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return m, nil
}

func scanMilestone(row rowScanner) (*domain.Milestone, error) {
	var m domain.Milestone
	var location sql.NullString

	if err := row.Scan(&m.ID, &m.TripID, &m.Label, &m.Timestamp, &location); err != nil {
		return nil, err
	}

	m.Location = location.String
	return &m, nil
}

// Ensure MilestoneRepository implements repository.MilestoneRepository.
var _ repository.MilestoneRepository = (*MilestoneRepository)(nil)

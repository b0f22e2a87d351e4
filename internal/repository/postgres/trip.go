package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"freight/internal/domain"
	"freight/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	id, owner_id, driver_id, status,
	origin_address, origin_city, origin_contact_name, origin_contact_phone,
	dest_address, dest_city, dest_contact_name, dest_contact_phone,
	second_drop_address, second_drop_city, second_drop_contact_name, second_drop_contact_phone,
	material, weight_kg, truck_type, urgency, notes, progress_pct,
	pickup_window_start, pickup_window_end,
	transit_started_at, estimated_transit_seconds,
	created_at, delivered_at, cancelled_at, cancel_reason
`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)
	`

	args := tripArgs(trip)
	_, err := r.q.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a trip by tracking ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// List retrieves trips matching the filter, newest first.
func (r *TripRepository) List(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE 1=1`
	var args []any

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	if filter.DriverID != "" {
		args = append(args, filter.DriverID)
		query += fmt.Sprintf(" AND driver_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips SET
			owner_id = $2, driver_id = $3, status = $4,
			origin_address = $5, origin_city = $6, origin_contact_name = $7, origin_contact_phone = $8,
			dest_address = $9, dest_city = $10, dest_contact_name = $11, dest_contact_phone = $12,
			second_drop_address = $13, second_drop_city = $14, second_drop_contact_name = $15, second_drop_contact_phone = $16,
			material = $17, weight_kg = $18, truck_type = $19, urgency = $20, notes = $21, progress_pct = $22,
			pickup_window_start = $23, pickup_window_end = $24,
			transit_started_at = $25, estimated_transit_seconds = $26,
			created_at = $27, delivered_at = $28, cancelled_at = $29, cancel_reason = $30
		WHERE id = $1
	`

	args := tripArgs(trip)
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetActiveByDriverID retrieves the non-terminal trip assigned to a driver.
// Returns nil if the driver has no active trip.
func (r *TripRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE driver_id = $1 AND status NOT IN ($2, $3, $4)
		LIMIT 1
	`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, driverID,
		domain.TripStatusDelivered, domain.TripStatusRated, domain.TripStatusCancelled))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return trip, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID, notes, cancelReason sql.NullString
	var secondAddr, secondCity, secondName, secondPhone sql.NullString
	var pickupStart, pickupEnd, transitStartedAt, deliveredAt, cancelledAt sql.NullTime
	var estimatedTransitSeconds int64

	err := row.Scan(
		&trip.ID,
		&trip.OwnerID,
		&driverID,
		&trip.Status,
		&trip.Origin.Address,
		&trip.Origin.City,
		&trip.Origin.ContactName,
		&trip.Origin.ContactPhone,
		&trip.Destination.Address,
		&trip.Destination.City,
		&trip.Destination.ContactName,
		&trip.Destination.ContactPhone,
		&secondAddr,
		&secondCity,
		&secondName,
		&secondPhone,
		&trip.Material,
		&trip.WeightKg,
		&trip.TruckType,
		&trip.Urgency,
		&notes,
		&trip.ProgressPct,
		&pickupStart,
		&pickupEnd,
		&transitStartedAt,
		&estimatedTransitSeconds,
		&trip.CreatedAt,
		&deliveredAt,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	trip.DriverID = driverID.String
	trip.Notes = notes.String
	trip.CancelReason = cancelReason.String

	if secondAddr.Valid {
		trip.SecondDrop = &domain.Stop{
			Address:      secondAddr.String,
			City:         secondCity.String,
			ContactName:  secondName.String,
			ContactPhone: secondPhone.String,
		}
	}

	if pickupStart.Valid {
		trip.PickupWindowStart = pickupStart.Time
	}
	if pickupEnd.Valid {
		trip.PickupWindowEnd = pickupEnd.Time
	}
	if transitStartedAt.Valid {
		trip.TransitStartedAt = transitStartedAt.Time
	}
	if deliveredAt.Valid {
		trip.DeliveredAt = deliveredAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}
	trip.EstimatedTransit = time.Duration(estimatedTransitSeconds) * time.Second

	return &trip, nil
}

func tripArgs(trip *domain.Trip) []any {
	var secondAddr, secondCity, secondName, secondPhone sql.NullString
	if trip.SecondDrop != nil {
		secondAddr = sql.NullString{String: trip.SecondDrop.Address, Valid: true}
		secondCity = sql.NullString{String: trip.SecondDrop.City, Valid: true}
		secondName = sql.NullString{String: trip.SecondDrop.ContactName, Valid: true}
		secondPhone = sql.NullString{String: trip.SecondDrop.ContactPhone, Valid: true}
	}

	return []any{
		trip.ID,
		trip.OwnerID,
		nullString(trip.DriverID),
		trip.Status,
		trip.Origin.Address,
		trip.Origin.City,
		trip.Origin.ContactName,
		trip.Origin.ContactPhone,
		trip.Destination.Address,
		trip.Destination.City,
		trip.Destination.ContactName,
		trip.Destination.ContactPhone,
		secondAddr,
		secondCity,
		secondName,
		secondPhone,
		trip.Material,
		trip.WeightKg,
		trip.TruckType,
		trip.Urgency,
		nullString(trip.Notes),
		trip.ProgressPct,
		nullTime(trip.PickupWindowStart),
		nullTime(trip.PickupWindowEnd),
		nullTime(trip.TransitStartedAt),
		int64(trip.EstimatedTransit.Seconds()),
		trip.CreatedAt,
		nullTime(trip.DeliveredAt),
		nullTime(trip.CancelledAt),
		nullString(trip.CancelReason),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)

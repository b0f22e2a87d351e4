package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/domain"
	"freight/internal/repository"
)

// LedgerRepository is a PostgreSQL implementation of
// repository.LedgerRepository. Ledgers live in two tables: one row of
// itemized charges per trip, plus an append-only payments table.
type LedgerRepository struct {
	q Querier
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{q: db}
}

// NewLedgerRepositoryWithTx creates a ledger repository using a transaction.
func NewLedgerRepositoryWithTx(tx *sql.Tx) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Create persists a new ledger.
func (r *LedgerRepository) Create(ctx context.Context, ledger *domain.Ledger) error {
	query := `
		INSERT INTO ledgers (trip_id, base_fare, gst, toll_charge, loading_charge, unloading_charge)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		ledger.TripID,
		ledger.BaseFare,
		ledger.GST,
		ledger.TollCharge,
		ledger.LoadingCharge,
		ledger.UnloadingCharge,
	)

	return err
}

// GetByTripID retrieves a ledger, including its payments, by trip ID.
func (r *LedgerRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Ledger, error) {
	query := `
		SELECT trip_id, base_fare, gst, toll_charge, loading_charge, unloading_charge
		FROM ledgers WHERE trip_id = $1
	`

	var ledger domain.Ledger
	err := r.q.QueryRowContext(ctx, query, tripID).Scan(
		&ledger.TripID,
		&ledger.BaseFare,
		&ledger.GST,
		&ledger.TollCharge,
		&ledger.LoadingCharge,
		&ledger.UnloadingCharge,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	payments, err := r.listPayments(ctx, tripID)
	if err != nil {
		return nil, err
	}
	ledger.Payments = payments

	return &ledger, nil
}

// UpdateCharges updates the itemized charge fields of a ledger.
func (r *LedgerRepository) UpdateCharges(ctx context.Context, ledger *domain.Ledger) error {
	query := `
		UPDATE ledgers
		SET base_fare = $2, gst = $3, toll_charge = $4, loading_charge = $5, unloading_charge = $6
		WHERE trip_id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		ledger.TripID,
		ledger.BaseFare,
		ledger.GST,
		ledger.TollCharge,
		ledger.LoadingCharge,
		ledger.UnloadingCharge,
	)
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

// AddPayment appends an immutable payment record.
func (r *LedgerRepository) AddPayment(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, trip_id, amount, method, type, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.TripID,
		payment.Amount,
		payment.Method,
		payment.Type,
		payment.Timestamp,
	)

	return err
}

func (r *LedgerRepository) listPayments(ctx context.Context, tripID string) ([]domain.Payment, error) {
	query := `
		SELECT id, trip_id, amount, method, type, ts
		FROM payments WHERE trip_id = $1 ORDER BY ts ASC
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.TripID, &p.Amount, &p.Method, &p.Type, &p.Timestamp); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

// Ensure LedgerRepository implements repository.LedgerRepository.
var _ repository.LedgerRepository = (*LedgerRepository)(nil)

package postgres

import (
	"context"
	"database/sql"

	"freight/internal/repository"
)

// UnitOfWork is a PostgreSQL implementation of repository.UnitOfWork built
// on database/sql transactions and transaction-scoped repositories.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTx begins a transaction, invokes fn with repositories bound to it,
// and commits. Any error from fn rolls everything back.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.Repositories{
		Trips:      NewTripRepositoryWithTx(tx),
		Milestones: NewMilestoneRepositoryWithTx(tx),
		Ledgers:    NewLedgerRepositoryWithTx(tx),
		Ratings:    NewRatingRepositoryWithTx(tx),
		Sequences:  NewTrackingSequenceRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Ensure UnitOfWork implements repository.UnitOfWork.
var _ repository.UnitOfWork = (*UnitOfWork)(nil)

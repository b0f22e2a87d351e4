package repository

import (
	"context"

	"freight/internal/domain"
)

// LedgerRepository defines the persistence operations for trip ledgers and
// their payment records. Payments are append-only.
type LedgerRepository interface {
	// Create persists a new ledger (the booking-time estimate).
	Create(ctx context.Context, ledger *domain.Ledger) error

	// GetByTripID retrieves a ledger, including its payments, by trip ID.
	GetByTripID(ctx context.Context, tripID string) (*domain.Ledger, error)

	// UpdateCharges updates the itemized charge fields of a ledger.
	// Payments are untouched.
	UpdateCharges(ctx context.Context, ledger *domain.Ledger) error

	// AddPayment appends an immutable payment record.
	AddPayment(ctx context.Context, payment *domain.Payment) error
}

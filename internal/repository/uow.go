package repository

import "context"

// Repositories bundles the per-entity repositories participating in a
// single transaction.
type Repositories struct {
	Trips      TripRepository
	Milestones MilestoneRepository
	Ledgers    LedgerRepository
	Ratings    RatingRepository
	Sequences  TrackingSequence
}

// UnitOfWork runs a function against transaction-scoped repositories so a
// mutating operation commits trip, milestone, and ledger changes atomically
// or not at all.
type UnitOfWork interface {
	// WithinTx begins a transaction, invokes fn with repositories bound to
	// it, and commits. Any error from fn rolls everything back.
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}

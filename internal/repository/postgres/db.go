package postgres

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql the trip, milestone, ledger and
// rating repositories run against. Both *sql.DB and *sql.Tx satisfy it,
// so the same repository code serves plain reads and unit-of-work
// transactions.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

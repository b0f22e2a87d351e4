package repository

import "context"

// TrackingSequence allocates the per-year sequence numbers used to build
// tracking IDs (TRK + year + zero-padded sequence).
type TrackingSequence interface {
	// Next returns the next sequence number for the given year.
	Next(ctx context.Context, year int) (int, error)
}

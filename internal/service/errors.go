package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidTripID is returned when a trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrIllegalTransition is returned when a transition targets anything
	// other than the next status in the forward sequence.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrCancellationWindowClosed is returned when cancelling a trip that
	// has already been loaded.
	ErrCancellationWindowClosed = errors.New("cancellation window closed")

	// ErrConfirmationRequired is returned when the DELIVERED transition is
	// attempted without a delivery confirmation token.
	ErrConfirmationRequired = errors.New("delivery confirmation required")

	// ErrActorNotAllowed is returned when the actor lacks the capability
	// for the requested operation.
	ErrActorNotAllowed = errors.New("actor not allowed to perform this action")

	// ErrDriverHasActiveTrip is returned when assigning a driver who
	// already has a trip in progress.
	ErrDriverHasActiveTrip = errors.New("driver already has an active trip")

	// ErrTripBusy is returned when another writer holds the trip lock.
	// Callers may retry.
	ErrTripBusy = errors.New("trip is busy, retry")

	// ErrOverpayment is returned when a payment exceeds the amount due.
	ErrOverpayment = errors.New("payment exceeds amount due")

	// ErrInvalidPaymentAmount is returned when a payment amount is not positive.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidPaymentMethod is returned when a payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidCharge is returned when an itemized charge is negative.
	ErrInvalidCharge = errors.New("invalid charge amount")

	// ErrChargesBelowPaid is returned when a charge update would drop the
	// invoice total below the amount already paid.
	ErrChargesBelowPaid = errors.New("charges cannot drop the total below the amount paid")

	// ErrDeliveryPaymentDue is returned when the DELIVERED transition is
	// attempted while the outstanding due exceeds the delivery policy.
	ErrDeliveryPaymentDue = errors.New("amount due exceeds delivery payment policy")

	// ErrOutOfOrder is returned when a milestone append would violate the
	// timeline's time or label ordering.
	ErrOutOfOrder = errors.New("milestone out of order")

	// ErrUnknownMilestoneLabel is returned for labels outside the fixed set.
	ErrUnknownMilestoneLabel = errors.New("unknown milestone label")

	// ErrDeliveryNotComplete is returned when a rating is submitted before
	// the trip is delivered.
	ErrDeliveryNotComplete = errors.New("delivery not complete")

	// ErrAlreadyRated is returned when a delivered trip already has feedback.
	ErrAlreadyRated = errors.New("trip already rated")

	// ErrInvalidRating is returned when a star rating is outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidFeedbackTag is returned for tags outside the fixed category set.
	ErrInvalidFeedbackTag = errors.New("invalid feedback tag")
)

// ValidationError reports booking draft problems field by field. It is
// surfaced to the caller for correction and never persisted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid booking draft: " + strings.Join(parts, "; ")
}

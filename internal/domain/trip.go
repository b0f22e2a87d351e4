package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusCreated        TripStatus = "CREATED"
	TripStatusDriverAssigned TripStatus = "DRIVER_ASSIGNED"
	TripStatusGoingToPickup  TripStatus = "GOING_TO_PICKUP"
	TripStatusAtPickup       TripStatus = "AT_PICKUP"
	TripStatusLoaded         TripStatus = "LOADED"
	TripStatusInTransit      TripStatus = "IN_TRANSIT"
	TripStatusAtDestination  TripStatus = "AT_DESTINATION"
	TripStatusDelivered      TripStatus = "DELIVERED"
	TripStatusRated          TripStatus = "RATED"
	TripStatusCancelled      TripStatus = "CANCELLED"
)

// TripStatusOrder is the forward sequence of active statuses. Transitions
// may only move to the next entry; CANCELLED and RATED sit outside the
// sequence.
var TripStatusOrder = []TripStatus{
	TripStatusCreated,
	TripStatusDriverAssigned,
	TripStatusGoingToPickup,
	TripStatusAtPickup,
	TripStatusLoaded,
	TripStatusInTransit,
	TripStatusAtDestination,
	TripStatusDelivered,
}

var tripStatusRank = func() map[TripStatus]int {
	m := make(map[TripStatus]int, len(TripStatusOrder))
	for i, s := range TripStatusOrder {
		m[s] = i
	}
	return m
}()

// Rank returns the position of the status in the forward sequence,
// or -1 for CANCELLED / RATED / unknown statuses.
func (s TripStatus) Rank() int {
	if r, ok := tripStatusRank[s]; ok {
		return r
	}
	return -1
}

// Terminal reports whether no further lifecycle transitions are possible.
func (s TripStatus) Terminal() bool {
	return s == TripStatusRated || s == TripStatusCancelled
}

// Stop is one end of a trip: a pickup or drop point with a contact.
type Stop struct {
	Address      string
	City         string
	ContactName  string
	ContactPhone string
}

// Trip is the durable unit of work: one shipment from booking to delivery.
type Trip struct {
	ID          string // tracking ID, e.g. TRK2024001
	OwnerID     string // business user that booked the trip
	DriverID    string // empty until a driver is assigned
	Status      TripStatus
	Origin      Stop
	Destination Stop
	SecondDrop  *Stop // optional second drop point
	Material    string
	WeightKg    float64
	TruckType   TruckType
	Urgency     Urgency
	Notes       string
	ProgressPct int

	PickupWindowStart time.Time
	PickupWindowEnd   time.Time

	// TransitStartedAt is set when the trip enters IN_TRANSIT and anchors
	// the elapsed-time progress interpolation.
	TransitStartedAt time.Time
	EstimatedTransit time.Duration

	CreatedAt    time.Time
	DeliveredAt  time.Time
	CancelledAt  time.Time
	CancelReason string
}

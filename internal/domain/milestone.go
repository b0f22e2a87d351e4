package domain

import "time"

// MilestoneLabel is one of the fixed, ordered lifecycle event labels.
type MilestoneLabel string

const (
	MilestoneBookingConfirmed   MilestoneLabel = "Booking Confirmed"
	MilestoneDriverAssigned     MilestoneLabel = "Driver Assigned"
	MilestoneReachedPickup      MilestoneLabel = "Reached Pickup"
	MilestoneLoadedStarted      MilestoneLabel = "Loaded & Started"
	MilestoneInTransit          MilestoneLabel = "In Transit"
	MilestoneReachedDestination MilestoneLabel = "Reached Destination"
	MilestoneDelivered          MilestoneLabel = "Delivered"
)

// MilestoneOrder is the canonical label sequence. A trip's milestone log is
// always a strict prefix of this sequence.
var MilestoneOrder = []MilestoneLabel{
	MilestoneBookingConfirmed,
	MilestoneDriverAssigned,
	MilestoneReachedPickup,
	MilestoneLoadedStarted,
	MilestoneInTransit,
	MilestoneReachedDestination,
	MilestoneDelivered,
}

var milestoneRank = func() map[MilestoneLabel]int {
	m := make(map[MilestoneLabel]int, len(MilestoneOrder))
	for i, l := range MilestoneOrder {
		m[l] = i
	}
	return m
}()

// Rank returns the position of the label in the canonical order, or -1.
func (l MilestoneLabel) Rank() int {
	if r, ok := milestoneRank[l]; ok {
		return r
	}
	return -1
}

// statusMilestones maps each status to its milestone label. GOING_TO_PICKUP
// has no entry: the fixed label set carries no event between assignment and
// arrival at pickup, so that transition appends nothing.
var statusMilestones = map[TripStatus]MilestoneLabel{
	TripStatusCreated:        MilestoneBookingConfirmed,
	TripStatusDriverAssigned: MilestoneDriverAssigned,
	TripStatusAtPickup:       MilestoneReachedPickup,
	TripStatusLoaded:         MilestoneLoadedStarted,
	TripStatusInTransit:      MilestoneInTransit,
	TripStatusAtDestination:  MilestoneReachedDestination,
	TripStatusDelivered:      MilestoneDelivered,
}

// MilestoneForStatus returns the milestone label recorded when a trip
// reaches the given status, if the status has one.
func MilestoneForStatus(s TripStatus) (MilestoneLabel, bool) {
	l, ok := statusMilestones[s]
	return l, ok
}

// Milestone is an immutable, timestamped lifecycle event attached to a trip.
type Milestone struct {
	ID        string
	TripID    string
	Label     MilestoneLabel
	Timestamp time.Time
	Location  string // optional free text
}

// TimelineState classifies an entry in the rendered timeline.
type TimelineState string

const (
	TimelineCompleted TimelineState = "completed"
	TimelineCurrent   TimelineState = "current"
	TimelinePending   TimelineState = "pending"
)

// TimelineEntry is one row of the rendered, user-facing timeline.
type TimelineEntry struct {
	Label     MilestoneLabel
	State     TimelineState
	Timestamp time.Time // zero for pending entries
	Location  string
}

package domain

import (
	"strings"
	"time"
)

// TruckType is the canonical truck taxonomy used by the engine. The web
// booking form historically used small/medium/large; ParseTruckType maps
// those aliases in so only canonical values are ever stored.
type TruckType string

const (
	TruckTypeOpen      TruckType = "OPEN"
	TruckTypeContainer TruckType = "CONTAINER"
	TruckTypeTrailer   TruckType = "TRAILER"
)

// ParseTruckType normalizes a client-supplied truck type. It accepts the
// canonical names plus the legacy web aliases (small, medium, large).
func ParseTruckType(s string) (TruckType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN", "SMALL", "MEDIUM":
		return TruckTypeOpen, true
	case "CONTAINER", "LARGE":
		return TruckTypeContainer, true
	case "TRAILER":
		return TruckTypeTrailer, true
	}
	return "", false
}

// Urgency is the booking-time price multiplier tier.
type Urgency string

const (
	UrgencyStandard Urgency = "STANDARD"
	UrgencyUrgent   Urgency = "URGENT"
	UrgencyExpress  Urgency = "EXPRESS"
)

// ParseUrgency normalizes a client-supplied urgency tier. An empty value
// defaults to STANDARD.
func ParseUrgency(s string) (Urgency, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "STANDARD":
		return UrgencyStandard, true
	case "URGENT":
		return UrgencyUrgent, true
	case "EXPRESS":
		return UrgencyExpress, true
	}
	return "", false
}

// BookingDraft is the in-progress, not-yet-committed booking form. Weight
// and truck type arrive as raw form strings and are validated on submit.
type BookingDraft struct {
	Pickup     Stop
	Drop       Stop
	SecondDrop *Stop
	Material   string
	Weight     string // must parse as a positive decimal (kg)
	TruckType  string
	Urgency    string
	PickupAt   time.Time
	Notes      string
}

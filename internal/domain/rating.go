package domain

import "time"

// FeedbackTag is one of the fixed feedback categories a rater may select.
type FeedbackTag string

const (
	FeedbackOnTime            FeedbackTag = "ON_TIME"
	FeedbackProfessional      FeedbackTag = "PROFESSIONAL"
	FeedbackSafeDriving       FeedbackTag = "SAFE_DRIVING"
	FeedbackCarefulHandling   FeedbackTag = "CAREFUL_HANDLING"
	FeedbackGoodCommunication FeedbackTag = "GOOD_COMMUNICATION"
	FeedbackCleanVehicle      FeedbackTag = "CLEAN_VEHICLE"
)

var feedbackTags = map[FeedbackTag]struct{}{
	FeedbackOnTime:            {},
	FeedbackProfessional:      {},
	FeedbackSafeDriving:       {},
	FeedbackCarefulHandling:   {},
	FeedbackGoodCommunication: {},
	FeedbackCleanVehicle:      {},
}

// ValidFeedbackTag reports whether the tag belongs to the fixed category set.
func ValidFeedbackTag(t FeedbackTag) bool {
	_, ok := feedbackTags[t]
	return ok
}

// Rating is the delivery feedback for a trip. Created only once the trip
// is DELIVERED; submission moves the trip to RATED.
type Rating struct {
	ID            string
	TripID        string
	DriverID      string
	DriverRating  int // 1-5
	ServiceRating int // 1-5
	Tags          []FeedbackTag
	Comment       string
	TipAmount     float64
	CreatedAt     time.Time
}

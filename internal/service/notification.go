package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"freight/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationTripBooked      NotificationType = "TRIP_BOOKED"
	NotificationStatusChanged   NotificationType = "STATUS_CHANGED"
	NotificationPaymentRecorded NotificationType = "PAYMENT_RECORDED"
	NotificationTripCancelled   NotificationType = "TRIP_CANCELLED"
	NotificationRatingSubmitted NotificationType = "RATING_SUBMITTED"
)

// Notification represents a notification to be dispatched.
type Notification struct {
	Type        NotificationType       `json:"type"`
	RecipientID string                 `json:"recipient_id"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Data        map[string]interface{} `json:"data,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Publisher delivers serialized notifications to a broker. Delivery is
// best-effort; the engine never rolls back state over a publish failure.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// NotificationService dispatches notifications after successful
// transitions and payments. With no publisher configured it only logs.
type NotificationService struct {
	publisher Publisher
}

// NewNotificationService creates a new NotificationService. publisher may
// be nil.
func NewNotificationService(publisher Publisher) *NotificationService {
	return &NotificationService{publisher: publisher}
}

// NotifyTripBooked notifies the business owner that the booking is confirmed.
func (s *NotificationService) NotifyTripBooked(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripBooked,
		RecipientID: trip.OwnerID,
		Title:       "Booking Confirmed",
		Message:     fmt.Sprintf("Trip %s booked: %s to %s", trip.ID, trip.Origin.City, trip.Destination.City),
		Data: map[string]interface{}{
			"trip_id":    trip.ID,
			"truck_type": trip.TruckType,
			"weight_kg":  trip.WeightKg,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyStatusChanged notifies the owner about a lifecycle transition.
func (s *NotificationService) NotifyStatusChanged(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationStatusChanged,
		RecipientID: trip.OwnerID,
		Title:       "Trip Update",
		Message:     fmt.Sprintf("Trip %s is now %s", trip.ID, trip.Status),
		Data: map[string]interface{}{
			"trip_id":      trip.ID,
			"status":       trip.Status,
			"progress_pct": trip.ProgressPct,
			"driver_id":    trip.DriverID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentRecorded notifies about a payment applied to a trip ledger.
func (s *NotificationService) NotifyPaymentRecorded(ctx context.Context, payment *domain.Payment) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentRecorded,
		RecipientID: payment.TripID,
		Title:       "Payment Received",
		Message:     fmt.Sprintf("%s of %.2f received for trip %s", payment.Type, payment.Amount, payment.TripID),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"trip_id":    payment.TripID,
			"amount":     payment.Amount,
			"method":     payment.Method,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripCancelled notifies both parties about a cancellation.
func (s *NotificationService) NotifyTripCancelled(ctx context.Context, trip *domain.Trip) error {
	recipient := trip.DriverID
	if recipient == "" {
		recipient = trip.OwnerID
	}

	return s.send(ctx, Notification{
		Type:        NotificationTripCancelled,
		RecipientID: recipient,
		Title:       "Trip Cancelled",
		Message:     fmt.Sprintf("Trip %s has been cancelled", trip.ID),
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"reason":  trip.CancelReason,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRatingSubmitted notifies the driver about received feedback.
func (s *NotificationService) NotifyRatingSubmitted(ctx context.Context, rating *domain.Rating) error {
	return s.send(ctx, Notification{
		Type:        NotificationRatingSubmitted,
		RecipientID: rating.DriverID,
		Title:       "New Rating",
		Message:     fmt.Sprintf("Trip %s rated %d stars", rating.TripID, rating.DriverRating),
		Data: map[string]interface{}{
			"trip_id":        rating.TripID,
			"driver_rating":  rating.DriverRating,
			"service_rating": rating.ServiceRating,
			"tip_amount":     rating.TipAmount,
		},
		CreatedAt: time.Now(),
	})
}

// send dispatches a notification: always logged, published to the broker
// when one is configured. Publish failures are logged and swallowed.
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	if s.publisher == nil {
		return nil
	}

	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	routingKey := "trip.notify." + strings.ToLower(string(notification.Type))
	if err := s.publisher.Publish(ctx, routingKey, body); err != nil {
		log.Printf("notification publish failed: %v", err)
	}

	return nil
}

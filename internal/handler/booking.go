package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freight/internal/domain"
	"freight/internal/service"
)

// BookingHandler handles booking draft validation and confirmation.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// StopRequest is one pickup or drop point in a booking draft.
type StopRequest struct {
	Address      string `json:"address"`
	City         string `json:"city"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

// BookingDraftRequest is the request body for validating or confirming a
// booking draft. Weight arrives as entered on the form, so it stays a
// string until validation.
type BookingDraftRequest struct {
	Pickup     StopRequest  `json:"pickup"`
	Drop       StopRequest  `json:"drop"`
	SecondDrop *StopRequest `json:"second_drop,omitempty"`
	Material   string       `json:"material"`
	Weight     string       `json:"weight"`
	TruckType  string       `json:"truck_type"`
	Urgency    string       `json:"urgency"`
	PickupAt   string       `json:"pickup_at,omitempty"`
	Notes      string       `json:"notes,omitempty"`
}

// ValidateDraftResponse is the response body for draft validation.
type ValidateDraftResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// ValidateDraft handles POST /v1/bookings/validate
func (h *BookingHandler) ValidateDraft(c *gin.Context) {
	var req BookingDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	errs := h.bookingService.Validate(req.toDraft())
	respondJSON(c, http.StatusOK, ValidateDraftResponse{
		Valid:  errs == nil,
		Errors: errs,
	})
}

// ConfirmBooking handles POST /v1/bookings
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	var req BookingDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.bookingService.Confirm(c.Request.Context(), req.toDraft(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, gin.H{
		"trip":   toTripResponse(result.Trip),
		"ledger": toLedgerResponse(result.Ledger),
	})
}

func (r *BookingDraftRequest) toDraft() *domain.BookingDraft {
	draft := &domain.BookingDraft{
		Pickup:    r.Pickup.toStop(),
		Drop:      r.Drop.toStop(),
		Material:  r.Material,
		Weight:    r.Weight,
		TruckType: r.TruckType,
		Urgency:   r.Urgency,
		Notes:     r.Notes,
	}
	if r.SecondDrop != nil {
		stop := r.SecondDrop.toStop()
		draft.SecondDrop = &stop
	}
	if r.PickupAt != "" {
		if t, err := time.Parse(time.RFC3339, r.PickupAt); err == nil {
			draft.PickupAt = t
		}
	}
	return draft
}

func (r StopRequest) toStop() domain.Stop {
	return domain.Stop{
		Address:      r.Address,
		City:         r.City,
		ContactName:  r.ContactName,
		ContactPhone: r.ContactPhone,
	}
}

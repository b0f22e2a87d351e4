package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"freight/internal/domain"
	"freight/internal/repository"
	"freight/internal/service"
)

// TripHandler handles trip reads, lifecycle transitions, the timeline and
// the invoice download.
type TripHandler struct {
	lifecycleService *service.LifecycleService
	timelineService  *service.TimelineService
	invoiceService   *service.InvoiceService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(
	lifecycleService *service.LifecycleService,
	timelineService *service.TimelineService,
	invoiceService *service.InvoiceService,
) *TripHandler {
	return &TripHandler{
		lifecycleService: lifecycleService,
		timelineService:  timelineService,
		invoiceService:   invoiceService,
	}
}

// StopResponse is one pickup or drop point on a trip.
type StopResponse struct {
	Address      string `json:"address"`
	City         string `json:"city"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// TripResponse is the external representation of a trip.
type TripResponse struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	DriverID    string        `json:"driver_id,omitempty"`
	Status      string        `json:"status"`
	Origin      StopResponse  `json:"origin"`
	Destination StopResponse  `json:"destination"`
	SecondDrop  *StopResponse `json:"second_drop,omitempty"`
	Material    string        `json:"material"`
	WeightKg    float64       `json:"weight_kg"`
	TruckType   string        `json:"truck_type"`
	Urgency     string        `json:"urgency"`
	Notes       string        `json:"notes,omitempty"`
	ProgressPct int           `json:"progress_pct"`

	PickupWindowStart string `json:"pickup_window_start,omitempty"`
	PickupWindowEnd   string `json:"pickup_window_end,omitempty"`
	CreatedAt         string `json:"created_at"`
	DeliveredAt       string `json:"delivered_at,omitempty"`
	CancelledAt       string `json:"cancelled_at,omitempty"`
	CancelReason      string `json:"cancel_reason,omitempty"`
}

// TransitionRequest is the request body for a lifecycle transition.
type TransitionRequest struct {
	Target            string `json:"target" binding:"required"`
	DriverID          string `json:"driver_id,omitempty"`
	ConfirmationToken string `json:"confirmation_token,omitempty"`
	Location          string `json:"location,omitempty"`
}

// CancelRequest is the request body for cancelling a trip.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// AppendMilestoneRequest is the request body for a manual milestone append.
type AppendMilestoneRequest struct {
	Label     string `json:"label" binding:"required"`
	Timestamp string `json:"timestamp,omitempty"`
	Location  string `json:"location,omitempty"`
}

// TimelineEntryResponse is one row of the rendered timeline.
type TimelineEntryResponse struct {
	Label     string `json:"label"`
	State     string `json:"state"`
	Timestamp string `json:"timestamp,omitempty"`
	Location  string `json:"location,omitempty"`
}

// ListTrips handles GET /v1/trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	filter := repository.TripFilter{
		OwnerID:  c.Query("owner_id"),
		DriverID: c.Query("driver_id"),
		Status:   domain.TripStatus(c.Query("status")),
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	// Non-admin callers only see their own trips.
	actor := actorFrom(c)
	switch actor.Role {
	case domain.RoleBusiness:
		filter.OwnerID = actor.ID
	case domain.RoleDriver:
		filter.DriverID = actor.ID
	}

	trips, err := h.lifecycleService.ListTrips(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		out = append(out, toTripResponse(trip))
	}
	respondJSON(c, http.StatusOK, gin.H{"trips": out, "count": len(out)})
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.lifecycleService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// Transition handles POST /v1/trips/:id/transition
func (h *TripHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.lifecycleService.Transition(c.Request.Context(), service.TransitionRequest{
		TripID:            c.Param("id"),
		Target:            domain.TripStatus(req.Target),
		Actor:             actorFrom(c),
		DriverID:          req.DriverID,
		ConfirmationToken: req.ConfirmationToken,
		Location:          req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// Cancel handles POST /v1/trips/:id/cancel
func (h *TripHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.lifecycleService.Cancel(c.Request.Context(), c.Param("id"), actorFrom(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// AppendMilestone handles POST /v1/trips/:id/milestones
//
// Transitions append milestones themselves; this is the backfill path for
// operations staff, so it is admin-only.
func (h *TripHandler) AppendMilestone(c *gin.Context) {
	if actorFrom(c).Role != domain.RoleAdmin {
		respondError(c, service.ErrActorNotAllowed)
		return
	}

	var req AppendMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	ts := time.Now()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid timestamp: " + err.Error()})
			return
		}
		ts = parsed
	}

	milestone, err := h.timelineService.Append(c.Request.Context(), c.Param("id"), domain.MilestoneLabel(req.Label), ts, req.Location)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, TimelineEntryResponse{
		Label:     string(milestone.Label),
		State:     string(domain.TimelineCurrent),
		Timestamp: milestone.Timestamp.Format(time.RFC3339),
		Location:  milestone.Location,
	})
}

// GetTimeline handles GET /v1/trips/:id/timeline
func (h *TripHandler) GetTimeline(c *gin.Context) {
	entries, err := h.timelineService.Render(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]TimelineEntryResponse, 0, len(entries))
	for _, e := range entries {
		entry := TimelineEntryResponse{
			Label:    string(e.Label),
			State:    string(e.State),
			Location: e.Location,
		}
		if !e.Timestamp.IsZero() {
			entry.Timestamp = e.Timestamp.Format(time.RFC3339)
		}
		out = append(out, entry)
	}
	respondJSON(c, http.StatusOK, gin.H{"timeline": out})
}

// GetInvoice handles GET /v1/trips/:id/invoice
func (h *TripHandler) GetInvoice(c *gin.Context) {
	data, filename, err := h.invoiceService.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func toTripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		ID:          trip.ID,
		OwnerID:     trip.OwnerID,
		DriverID:    trip.DriverID,
		Status:      string(trip.Status),
		Origin:      toStopResponse(trip.Origin),
		Destination: toStopResponse(trip.Destination),
		Material:    trip.Material,
		WeightKg:    trip.WeightKg,
		TruckType:   string(trip.TruckType),
		Urgency:     string(trip.Urgency),
		Notes:       trip.Notes,
		ProgressPct: trip.ProgressPct,
		CreatedAt:   trip.CreatedAt.Format(time.RFC3339),
	}
	if trip.SecondDrop != nil {
		stop := toStopResponse(*trip.SecondDrop)
		resp.SecondDrop = &stop
	}
	if !trip.PickupWindowStart.IsZero() {
		resp.PickupWindowStart = trip.PickupWindowStart.Format(time.RFC3339)
	}
	if !trip.PickupWindowEnd.IsZero() {
		resp.PickupWindowEnd = trip.PickupWindowEnd.Format(time.RFC3339)
	}
	if !trip.DeliveredAt.IsZero() {
		resp.DeliveredAt = trip.DeliveredAt.Format(time.RFC3339)
	}
	if !trip.CancelledAt.IsZero() {
		resp.CancelledAt = trip.CancelledAt.Format(time.RFC3339)
	}
	resp.CancelReason = trip.CancelReason
	return resp
}

func toStopResponse(s domain.Stop) StopResponse {
	return StopResponse{
		Address:      s.Address,
		City:         s.City,
		ContactName:  s.ContactName,
		ContactPhone: s.ContactPhone,
	}
}

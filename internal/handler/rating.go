package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freight/internal/domain"
	"freight/internal/service"
)

// RatingHandler handles delivery feedback submission.
type RatingHandler struct {
	ratingService *service.RatingService
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(ratingService *service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// SubmitRatingRequest is the request body for submitting feedback.
type SubmitRatingRequest struct {
	DriverRating  int      `json:"driver_rating" binding:"required"`
	ServiceRating int      `json:"service_rating" binding:"required"`
	Tags          []string `json:"tags,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	TipAmount     float64  `json:"tip_amount,omitempty"`
	TipMethod     string   `json:"tip_method,omitempty"`
}

// RatingResponse is the external representation of submitted feedback.
type RatingResponse struct {
	ID            string   `json:"id"`
	TripID        string   `json:"trip_id"`
	DriverID      string   `json:"driver_id"`
	DriverRating  int      `json:"driver_rating"`
	ServiceRating int      `json:"service_rating"`
	Tags          []string `json:"tags,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	TipAmount     float64  `json:"tip_amount,omitempty"`
	CreatedAt     string   `json:"created_at"`
}

// GetRating handles GET /v1/trips/:id/rating
func (h *RatingHandler) GetRating(c *gin.Context) {
	rating, err := h.ratingService.GetRating(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRatingResponse(rating))
}

// SubmitRating handles POST /v1/trips/:id/rating
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	rating, err := h.ratingService.Submit(c.Request.Context(), service.SubmitRatingRequest{
		TripID:        c.Param("id"),
		Actor:         actorFrom(c),
		DriverRating:  req.DriverRating,
		ServiceRating: req.ServiceRating,
		Tags:          req.Tags,
		Comment:       req.Comment,
		TipAmount:     req.TipAmount,
		TipMethod:     domain.PaymentMethod(req.TipMethod),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRatingResponse(rating))
}

func toRatingResponse(rating *domain.Rating) RatingResponse {
	tags := make([]string, 0, len(rating.Tags))
	for _, t := range rating.Tags {
		tags = append(tags, string(t))
	}

	return RatingResponse{
		ID:            rating.ID,
		TripID:        rating.TripID,
		DriverID:      rating.DriverID,
		DriverRating:  rating.DriverRating,
		ServiceRating: rating.ServiceRating,
		Tags:          tags,
		Comment:       rating.Comment,
		TipAmount:     rating.TipAmount,
		CreatedAt:     rating.CreatedAt.Format(time.RFC3339),
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freight/internal/domain"
	"freight/internal/repository"
	"freight/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "invalid booking draft",
			Fields: validationErr.Fields,
		})
		return
	}

	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
// Business-rule rejections surface as 4xx; anything unrecognized is an
// infrastructure failure and stays a 500 so clients know it is retryable.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Bad input - locally correctable
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidFeedbackTag),
		errors.Is(err, service.ErrUnknownMilestoneLabel),
		errors.Is(err, service.ErrInvalidCharge),
		errors.Is(err, service.ErrConfirmationRequired):
		return http.StatusBadRequest

	// Capability violations
	case errors.Is(err, service.ErrActorNotAllowed):
		return http.StatusForbidden

	// Business-rule conflicts - rejected, no retry, no partial mutation
	case errors.Is(err, service.ErrIllegalTransition),
		errors.Is(err, service.ErrCancellationWindowClosed),
		errors.Is(err, service.ErrOverpayment),
		errors.Is(err, service.ErrChargesBelowPaid),
		errors.Is(err, service.ErrDeliveryPaymentDue),
		errors.Is(err, service.ErrOutOfOrder),
		errors.Is(err, service.ErrDeliveryNotComplete),
		errors.Is(err, service.ErrAlreadyRated),
		errors.Is(err, service.ErrDriverHasActiveTrip),
		errors.Is(err, service.ErrTripBusy):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// actorFrom extracts the authenticated actor placed by the auth middleware.
func actorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get("actor"); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}

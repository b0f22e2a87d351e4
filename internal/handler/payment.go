package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freight/internal/domain"
	"freight/internal/service"
)

// PaymentHandler handles the payment ledger surface.
type PaymentHandler struct {
	ledgerService *service.LedgerService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ledgerService *service.LedgerService) *PaymentHandler {
	return &PaymentHandler{ledgerService: ledgerService}
}

// RecordPaymentRequest is the request body for recording a payment.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Method string  `json:"method" binding:"required"`
	Type   string  `json:"type,omitempty"`
}

// PaymentResponse is the external representation of a recorded payment.
type PaymentResponse struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
}

// LedgerResponse is the external representation of a trip's ledger.
type LedgerResponse struct {
	TripID          string            `json:"trip_id"`
	BaseFare        float64           `json:"base_fare"`
	GST             float64           `json:"gst"`
	TollCharge      float64           `json:"toll_charge,omitempty"`
	LoadingCharge   float64           `json:"loading_charge,omitempty"`
	UnloadingCharge float64           `json:"unloading_charge,omitempty"`
	Total           float64           `json:"total"`
	Paid            float64           `json:"paid"`
	Due             float64           `json:"due"`
	Payments        []PaymentResponse `json:"payments"`
}

// GetLedger handles GET /v1/trips/:id/ledger
func (h *PaymentHandler) GetLedger(c *gin.Context) {
	ledger, err := h.ledgerService.GetLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toLedgerResponse(ledger))
}

// UpdateChargesRequest is the request body for repricing the itemized
// extras on a ledger. Omitted fields reset to zero.
type UpdateChargesRequest struct {
	TollCharge      float64 `json:"toll_charge"`
	LoadingCharge   float64 `json:"loading_charge"`
	UnloadingCharge float64 `json:"unloading_charge"`
}

// UpdateCharges handles PUT /v1/trips/:id/charges
func (h *PaymentHandler) UpdateCharges(c *gin.Context) {
	var req UpdateChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	ledger, err := h.ledgerService.UpdateCharges(c.Request.Context(), service.UpdateChargesRequest{
		TripID:          c.Param("id"),
		Actor:           actorFrom(c),
		TollCharge:      req.TollCharge,
		LoadingCharge:   req.LoadingCharge,
		UnloadingCharge: req.UnloadingCharge,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toLedgerResponse(ledger))
}

// RecordPayment handles POST /v1/trips/:id/payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	ledger, err := h.ledgerService.RecordPayment(c.Request.Context(), service.RecordPaymentRequest{
		TripID: c.Param("id"),
		Amount: req.Amount,
		Method: domain.PaymentMethod(req.Method),
		Type:   req.Type,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toLedgerResponse(ledger))
}

func toLedgerResponse(ledger *domain.Ledger) LedgerResponse {
	payments := make([]PaymentResponse, 0, len(ledger.Payments))
	for _, p := range ledger.Payments {
		payments = append(payments, PaymentResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			Method:    string(p.Method),
			Type:      p.Type,
			Timestamp: p.Timestamp.Format(time.RFC3339),
		})
	}

	return LedgerResponse{
		TripID:          ledger.TripID,
		BaseFare:        ledger.BaseFare,
		GST:             ledger.GST,
		TollCharge:      ledger.TollCharge,
		LoadingCharge:   ledger.LoadingCharge,
		UnloadingCharge: ledger.UnloadingCharge,
		Total:           ledger.Total(),
		Paid:            ledger.Paid(),
		Due:             ledger.Due(),
		Payments:        payments,
	}
}

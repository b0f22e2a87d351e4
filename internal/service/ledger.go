package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"freight/internal/domain"
	"freight/internal/redis"
	"freight/internal/repository"
)

// LedgerService tracks invoice totals and payments against a trip and
// enforces the due-on-delivery policy.
type LedgerService struct {
	ledgerRepo repository.LedgerRepository
	locks      redis.TripLockStoreInterface
	cache      redis.CacheStoreInterface
	notifier   *NotificationService

	// maxDueAtDeliveryRatio is the fraction of the invoice total that may
	// remain unpaid when the trip is delivered. The historical convention
	// is a 50% advance, so the default is 0.5.
	maxDueAtDeliveryRatio float64
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	locks redis.TripLockStoreInterface,
	cache redis.CacheStoreInterface,
	notifier *NotificationService,
	maxDueAtDeliveryRatio float64,
) *LedgerService {
	if maxDueAtDeliveryRatio <= 0 || maxDueAtDeliveryRatio > 1 {
		maxDueAtDeliveryRatio = 0.5
	}
	return &LedgerService{
		ledgerRepo:            ledgerRepo,
		locks:                 locks,
		cache:                 cache,
		notifier:              notifier,
		maxDueAtDeliveryRatio: maxDueAtDeliveryRatio,
	}
}

// RecordPaymentRequest contains the parameters for recording a payment.
type RecordPaymentRequest struct {
	TripID string
	Amount float64
	Method domain.PaymentMethod

	// Type is the payment's display label. Left empty, it is derived from
	// the ledger state ("Advance Payment (N%)" for the first payment,
	// "Balance Payment" afterwards).
	Type string
}

// RecordPayment appends an immutable payment to a trip's ledger. A payment
// exceeding the amount due is rejected and the ledger is unchanged.
func (s *LedgerService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*domain.Ledger, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}
	if _, ok := domain.ParsePaymentMethod(string(req.Method)); !ok {
		return nil, ErrInvalidPaymentMethod
	}

	acquired, err := s.locks.AcquireTripLock(ctx, req.TripID, tripLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrTripBusy
	}
	defer func() { _ = s.locks.ReleaseTripLock(ctx, req.TripID) }()

	ledger, err := s.ledgerRepo.GetByTripID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if req.Type != domain.PaymentTypeTip && req.Amount > ledger.Due() {
		return nil, ErrOverpayment
	}

	payment := domain.Payment{
		ID:        uuid.New().String(),
		TripID:    req.TripID,
		Amount:    req.Amount,
		Method:    req.Method,
		Type:      req.Type,
		Timestamp: time.Now(),
	}
	if payment.Type == "" {
		payment.Type = paymentLabel(ledger, req.Amount)
	}

	if err := s.ledgerRepo.AddPayment(ctx, &payment); err != nil {
		return nil, err
	}
	ledger.Payments = append(ledger.Payments, payment)

	if s.cache != nil {
		_ = s.cache.InvalidateLedger(ctx, req.TripID)
	}
	if s.notifier != nil {
		_ = s.notifier.NotifyPaymentRecorded(ctx, &payment)
	}

	return ledger, nil
}

// UpdateChargesRequest contains the parameters for repricing the
// itemized extras on a ledger.
type UpdateChargesRequest struct {
	TripID string
	Actor  domain.Actor

	TollCharge      float64
	LoadingCharge   float64
	UnloadingCharge float64
}

// UpdateCharges sets the itemized extras (toll, loading, unloading) on a
// trip's ledger. Base fare and GST are fixed at booking and never change
// here. Admin only; the new total may not drop below what has already
// been paid.
func (s *LedgerService) UpdateCharges(ctx context.Context, req UpdateChargesRequest) (*domain.Ledger, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.Actor.Role != domain.RoleAdmin {
		return nil, ErrActorNotAllowed
	}
	if req.TollCharge < 0 || req.LoadingCharge < 0 || req.UnloadingCharge < 0 {
		return nil, ErrInvalidCharge
	}

	acquired, err := s.locks.AcquireTripLock(ctx, req.TripID, tripLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrTripBusy
	}
	defer func() { _ = s.locks.ReleaseTripLock(ctx, req.TripID) }()

	ledger, err := s.ledgerRepo.GetByTripID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	ledger.TollCharge = req.TollCharge
	ledger.LoadingCharge = req.LoadingCharge
	ledger.UnloadingCharge = req.UnloadingCharge

	if ledger.Total() < ledger.Paid() {
		return nil, ErrChargesBelowPaid
	}

	if err := s.ledgerRepo.UpdateCharges(ctx, ledger); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateLedger(ctx, req.TripID)
	}

	return ledger, nil
}

// CheckDeliveryPolicy enforces the due-on-delivery rule: the trip may not
// be delivered while more than the configured fraction of the total
// remains unpaid.
func (s *LedgerService) CheckDeliveryPolicy(ledger *domain.Ledger) error {
	if ledger.Due() > s.maxDueAtDeliveryRatio*ledger.Total() {
		return ErrDeliveryPaymentDue
	}
	return nil
}

// GetLedger retrieves a trip's ledger with its payments. Reads consult
// the snapshot cache first and fill it on a miss; a redis failure
// degrades to a repository read.
func (s *LedgerService) GetLedger(ctx context.Context, tripID string) (*domain.Ledger, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if s.cache != nil {
		if cached, err := s.cache.GetLedger(ctx, tripID); err == nil && cached != nil {
			return cached, nil
		}
	}

	ledger, err := s.ledgerRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetLedger(ctx, ledger)
	}

	return ledger, nil
}

// paymentLabel derives the display label used by the payment screens.
func paymentLabel(ledger *domain.Ledger, amount float64) string {
	if ledger.Paid() == 0 && ledger.Total() > 0 {
		pct := int(math.Round(amount / ledger.Total() * 100))
		return fmt.Sprintf("Advance Payment (%d%%)", pct)
	}
	return "Balance Payment"
}

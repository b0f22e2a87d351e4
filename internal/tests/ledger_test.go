package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"freight/internal/domain"
	"freight/internal/service"
)

// ──────────────────────────────────────────────
// 3. PAYMENT LEDGER
// ──────────────────────────────────────────────

func newLedgerFixture() (*MockLedgerRepository, *service.LedgerService) {
	ledgers := NewMockLedgerRepository()
	notifier := service.NewNotificationService(nil)
	svc := service.NewLedgerService(ledgers, NewMockTripLockStore(), NewMockCacheStore(), notifier, 0.5)
	return ledgers, svc
}

func seedLedger(ledgers *MockLedgerRepository) *domain.Ledger {
	ledger := &domain.Ledger{
		TripID:   "TRK2026001",
		BaseFare: 1200,
		GST:      216,
	}
	ledgers.AddLedger(ledger)
	return ledger
}

func TestRecordPayment_AdvanceThenOverpaymentThenSettle(t *testing.T) {
	t.Parallel()

	ledgers, svc := newLedgerFixture()
	seedLedger(ledgers)
	ctx := context.Background()

	// 50% advance on a 1416 total.
	ledger, err := svc.RecordPayment(ctx, service.RecordPaymentRequest{
		TripID: "TRK2026001",
		Amount: 708,
		Method: domain.PaymentMethodUPI,
	})
	if err != nil {
		t.Fatalf("advance: unexpected error: %v", err)
	}
	if ledger.Due() != 708 {
		t.Errorf("expected due 708 after advance, got %.2f", ledger.Due())
	}
	if ledger.Payments[0].Type != "Advance Payment (50%)" {
		t.Errorf("expected derived advance label, got %q", ledger.Payments[0].Type)
	}

	// Paying more than the remaining due is rejected outright.
	_, err = svc.RecordPayment(ctx, service.RecordPaymentRequest{
		TripID: "TRK2026001",
		Amount: 800,
		Method: domain.PaymentMethodCard,
	})
	if !errors.Is(err, service.ErrOverpayment) {
		t.Fatalf("expected ErrOverpayment, got %v", err)
	}
	if stored := ledgers.GetLedger("TRK2026001"); len(stored.Payments) != 1 {
		t.Errorf("rejected payment must not be recorded, got %d payments", len(stored.Payments))
	}

	// The exact balance settles the ledger.
	ledger, err = svc.RecordPayment(ctx, service.RecordPaymentRequest{
		TripID: "TRK2026001",
		Amount: 708,
		Method: domain.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("balance: unexpected error: %v", err)
	}
	if ledger.Due() != 0 {
		t.Errorf("expected due 0 after settlement, got %.2f", ledger.Due())
	}
	if ledger.Payments[1].Type != "Balance Payment" {
		t.Errorf("expected balance label, got %q", ledger.Payments[1].Type)
	}

	// Paid plus due always reconstructs the total.
	if ledger.Paid()+ledger.Due() != ledger.Total() {
		t.Errorf("paid %.2f + due %.2f != total %.2f", ledger.Paid(), ledger.Due(), ledger.Total())
	}
}

func TestRecordPayment_InvalidInput(t *testing.T) {
	t.Parallel()

	ledgers, svc := newLedgerFixture()
	seedLedger(ledgers)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, service.RecordPaymentRequest{
		TripID: "TRK2026001",
		Amount: 0,
		Method: domain.PaymentMethodUPI,
	})
	if !errors.Is(err, service.ErrInvalidPaymentAmount) {
		t.Errorf("zero amount: expected ErrInvalidPaymentAmount, got %v", err)
	}

	_, err = svc.RecordPayment(ctx, service.RecordPaymentRequest{
		TripID: "TRK2026001",
		Amount: -50,
		Method: domain.PaymentMethodUPI,
	})
	if !errors.Is(err, service.ErrInvalidPaymentAmount) {
		t.Errorf("negative amount: expected ErrInvalidPaymentAmount, got %v", err)
	}

	_, err = svc.RecordPayment(ctx, service.RecordPaymentRequest{
		TripID: "TRK2026001",
		Amount: 100,
		Method: "BARTER",
	})
	if !errors.Is(err, service.ErrInvalidPaymentMethod) {
		t.Errorf("unknown method: expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestGetLedger_SnapshotFilledAndInvalidated(t *testing.T) {
	t.Parallel()

	ledgers := NewMockLedgerRepository()
	cache := NewMockCacheStore()
	notifier := service.NewNotificationService(nil)
	svc := service.NewLedgerService(ledgers, NewMockTripLockStore(), cache, notifier, 0.5)
	seedLedger(ledgers)
	ctx := context.Background()

	// First read misses and fills the snapshot.
	if _, err := svc.GetLedger(ctx, "TRK2026001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.SetLedgerCallCount != 1 {
		t.Errorf("expected snapshot filled on miss, SetLedger called %d times", cache.SetLedgerCallCount)
	}

	// Recording a payment drops the snapshot; the next read sees the
	// payment, not the stale snapshot.
	if _, err := svc.RecordPayment(ctx, service.RecordPaymentRequest{
		TripID: "TRK2026001",
		Amount: 708,
		Method: domain.PaymentMethodUPI,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.InvalidateLedgerCallCount == 0 {
		t.Error("payment must invalidate the ledger snapshot")
	}

	ledger, err := svc.GetLedger(ctx, "TRK2026001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.Due() != 708 || len(ledger.Payments) != 1 {
		t.Errorf("read after payment: due %.2f, %d payments", ledger.Due(), len(ledger.Payments))
	}
}

func TestUpdateCharges_RepricesExtras(t *testing.T) {
	t.Parallel()

	ledgers, svc := newLedgerFixture()
	seedLedger(ledgers)

	admin := domain.Actor{ID: "ops-1", Role: domain.RoleAdmin}
	ledger, err := svc.UpdateCharges(context.Background(), service.UpdateChargesRequest{
		TripID:          "TRK2026001",
		Actor:           admin,
		TollCharge:      200,
		LoadingCharge:   150,
		UnloadingCharge: 150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1200 + 216 + 500 of extras.
	if ledger.Total() != 1916 {
		t.Errorf("expected total 1916, got %.2f", ledger.Total())
	}

	stored := ledgers.GetLedger("TRK2026001")
	if stored.TollCharge != 200 || stored.LoadingCharge != 150 || stored.UnloadingCharge != 150 {
		t.Errorf("extras not persisted: %+v", stored)
	}
	// Base fare and GST stay as priced at booking.
	if stored.BaseFare != 1200 || stored.GST != 216 {
		t.Errorf("booking-time pricing changed: base %.2f gst %.2f", stored.BaseFare, stored.GST)
	}
}

func TestUpdateCharges_Rejections(t *testing.T) {
	t.Parallel()

	ledgers, svc := newLedgerFixture()
	seedLedger(ledgers)
	ctx := context.Background()
	admin := domain.Actor{ID: "ops-1", Role: domain.RoleAdmin}

	// Only admins reprice.
	_, err := svc.UpdateCharges(ctx, service.UpdateChargesRequest{
		TripID:     "TRK2026001",
		Actor:      domain.Actor{ID: "biz-1", Role: domain.RoleBusiness},
		TollCharge: 200,
	})
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Errorf("owner repricing: expected ErrActorNotAllowed, got %v", err)
	}

	// Negative charges are invalid input.
	_, err = svc.UpdateCharges(ctx, service.UpdateChargesRequest{
		TripID:     "TRK2026001",
		Actor:      admin,
		TollCharge: -10,
	})
	if !errors.Is(err, service.ErrInvalidCharge) {
		t.Errorf("negative charge: expected ErrInvalidCharge, got %v", err)
	}

	if ledgers.UpdateChargesCallCount != 0 {
		t.Error("rejected repricing must not write")
	}
}

func TestUpdateCharges_CannotDropTotalBelowPaid(t *testing.T) {
	t.Parallel()

	ledgers, svc := newLedgerFixture()
	ledgers.AddLedger(&domain.Ledger{
		TripID:     "TRK2026001",
		BaseFare:   1200,
		GST:        216,
		TollCharge: 200,
		Payments: []domain.Payment{
			{ID: "pay-1", TripID: "TRK2026001", Amount: 1616, Method: domain.PaymentMethodUPI, Type: "Advance Payment (100%)", Timestamp: time.Now()},
		},
	})

	admin := domain.Actor{ID: "ops-1", Role: domain.RoleAdmin}
	_, err := svc.UpdateCharges(context.Background(), service.UpdateChargesRequest{
		TripID:     "TRK2026001",
		Actor:      admin,
		TollCharge: 0,
	})
	if !errors.Is(err, service.ErrChargesBelowPaid) {
		t.Fatalf("expected ErrChargesBelowPaid, got %v", err)
	}

	stored := ledgers.GetLedger("TRK2026001")
	if stored.TollCharge != 200 {
		t.Errorf("rejected repricing mutated the ledger: toll %.2f", stored.TollCharge)
	}
}

func TestLedger_TipExcludedFromDue(t *testing.T) {
	t.Parallel()

	ledger := &domain.Ledger{
		TripID:   "TRK2026001",
		BaseFare: 1200,
		GST:      216,
		Payments: []domain.Payment{
			{ID: "pay-1", Amount: 1416, Method: domain.PaymentMethodUPI, Type: "Advance Payment (100%)", Timestamp: time.Now()},
			{ID: "pay-2", Amount: 100, Method: domain.PaymentMethodCash, Type: domain.PaymentTypeTip, Timestamp: time.Now()},
		},
	}

	if ledger.Paid() != 1416 {
		t.Errorf("tip must not count as paid: got %.2f", ledger.Paid())
	}
	if ledger.Due() != 0 {
		t.Errorf("expected due 0, got %.2f", ledger.Due())
	}
}

func TestCheckDeliveryPolicy(t *testing.T) {
	t.Parallel()

	_, svc := newLedgerFixture()

	halfPaid := &domain.Ledger{
		TripID:   "TRK2026001",
		BaseFare: 1200,
		GST:      216,
		Payments: []domain.Payment{
			{ID: "pay-1", Amount: 708, Method: domain.PaymentMethodUPI, Type: "Advance Payment (50%)"},
		},
	}
	if err := svc.CheckDeliveryPolicy(halfPaid); err != nil {
		t.Errorf("50%% paid should pass the delivery policy: %v", err)
	}

	quarterPaid := &domain.Ledger{
		TripID:   "TRK2026001",
		BaseFare: 1200,
		GST:      216,
		Payments: []domain.Payment{
			{ID: "pay-1", Amount: 354, Method: domain.PaymentMethodUPI, Type: "Advance Payment (25%)"},
		},
	}
	if err := svc.CheckDeliveryPolicy(quarterPaid); !errors.Is(err, service.ErrDeliveryPaymentDue) {
		t.Errorf("25%% paid: expected ErrDeliveryPaymentDue, got %v", err)
	}
}

// ──────────────────────────────────────────────
// PRICING
// ──────────────────────────────────────────────

func TestPricing_Estimate(t *testing.T) {
	t.Parallel()

	pricing := service.NewPricingService()

	tests := []struct {
		name      string
		truckType domain.TruckType
		urgency   domain.Urgency
		weightKg  float64
		wantBase  float64
		wantGST   float64
	}{
		{
			name:      "container standard",
			truckType: domain.TruckTypeContainer,
			urgency:   domain.UrgencyStandard,
			weightKg:  1200,
			wantBase:  1200,
			wantGST:   216,
		},
		{
			name:      "open rounds base and gst",
			truckType: domain.TruckTypeOpen,
			urgency:   domain.UrgencyStandard,
			weightKg:  1001,
			wantBase:  801, // 800.8 rounds up
			wantGST:   144, // 144.18 rounds down
		},
		{
			name:      "minimum fare floor",
			truckType: domain.TruckTypeOpen,
			urgency:   domain.UrgencyStandard,
			weightKg:  100,
			wantBase:  500,
			wantGST:   90,
		},
		{
			name:      "trailer express",
			truckType: domain.TruckTypeTrailer,
			urgency:   domain.UrgencyExpress,
			weightKg:  2000,
			wantBase:  6000, // 2000 * 1.5 * 2.0
			wantGST:   1080,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ledger := pricing.Estimate("TRK2026001", tt.truckType, tt.urgency, tt.weightKg)
			if ledger.BaseFare != tt.wantBase {
				t.Errorf("base fare: expected %.2f, got %.2f", tt.wantBase, ledger.BaseFare)
			}
			if ledger.GST != tt.wantGST {
				t.Errorf("GST: expected %.2f, got %.2f", tt.wantGST, ledger.GST)
			}
		})
	}
}

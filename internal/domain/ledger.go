package domain

import "time"

// PaymentMethod represents how a payment was made.
type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodCard       PaymentMethod = "CARD"
	PaymentMethodWallet     PaymentMethod = "WALLET"
	PaymentMethodNetBanking PaymentMethod = "NETBANKING"
	PaymentMethodCash       PaymentMethod = "CASH"
)

// ParsePaymentMethod normalizes a client-supplied payment method.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodWallet,
		PaymentMethodNetBanking, PaymentMethodCash:
		return PaymentMethod(s), true
	}
	return "", false
}

// PaymentTypeTip marks a gratuity payment. Tips are recorded on the ledger
// but never count toward the invoice due.
const PaymentTypeTip = "Tip"

// Payment is an immutable record of money received against a trip.
type Payment struct {
	ID        string
	TripID    string
	Amount    float64
	Method    PaymentMethod
	Type      string // free-text label, e.g. "Advance Payment (50%)" or "Tip"
	Timestamp time.Time
}

// Ledger is the financial record for one trip: itemized charges plus the
// append-only list of payments received.
type Ledger struct {
	TripID          string
	BaseFare        float64
	GST             float64 // 18% of base fare, rounded to whole units
	TollCharge      float64
	LoadingCharge   float64
	UnloadingCharge float64
	Payments        []Payment
}

// Total is the invoice total: base fare + GST + itemized extras.
func (l *Ledger) Total() float64 {
	return l.BaseFare + l.GST + l.TollCharge + l.LoadingCharge + l.UnloadingCharge
}

// Paid sums all payments applied against the invoice. Tips are excluded.
func (l *Ledger) Paid() float64 {
	var sum float64
	for _, p := range l.Payments {
		if p.Type == PaymentTypeTip {
			continue
		}
		sum += p.Amount
	}
	return sum
}

// Due is the remaining unpaid balance. Overpayment is rejected at record
// time, so Due never goes negative.
func (l *Ledger) Due() float64 {
	due := l.Total() - l.Paid()
	if due < 0 {
		return 0
	}
	return due
}

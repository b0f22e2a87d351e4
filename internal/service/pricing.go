package service

import (
	"math"

	"freight/internal/domain"
)

// PricingConfig contains the booking-time fare table.
type PricingConfig struct {
	PerKgRate         map[domain.TruckType]float64
	UrgencyMultiplier map[domain.Urgency]float64
	MinimumFare       float64
	GSTRate           float64
}

// DefaultPricingConfig returns the default fare table.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		PerKgRate: map[domain.TruckType]float64{
			domain.TruckTypeOpen:      0.8,
			domain.TruckTypeContainer: 1.0,
			domain.TruckTypeTrailer:   1.5,
		},
		UrgencyMultiplier: map[domain.Urgency]float64{
			domain.UrgencyStandard: 1.0,
			domain.UrgencyUrgent:   1.5,
			domain.UrgencyExpress:  2.0,
		},
		MinimumFare: 500,
		GSTRate:     0.18, // fixed GST slab
	}
}

// PricingService computes booking-time ledger estimates from the
// (truck type, urgency) fare table.
type PricingService struct {
	config PricingConfig
}

// NewPricingService creates a new PricingService with the default table.
func NewPricingService() *PricingService {
	return &PricingService{config: DefaultPricingConfig()}
}

// Estimate builds the initial ledger for a trip. Base fare is weight times
// the truck-type rate times the urgency multiplier, floored at the minimum
// fare. GST is always the fixed rate on base fare, rounded to the nearest
// whole currency unit. Extras default to zero until itemized.
func (s *PricingService) Estimate(tripID string, truckType domain.TruckType, urgency domain.Urgency, weightKg float64) *domain.Ledger {
	rate := s.config.PerKgRate[truckType]
	multiplier := s.config.UrgencyMultiplier[urgency]
	if multiplier == 0 {
		multiplier = 1.0
	}

	base := math.Round(weightKg * rate * multiplier)
	if base < s.config.MinimumFare {
		base = s.config.MinimumFare
	}

	return &domain.Ledger{
		TripID:   tripID,
		BaseFare: base,
		GST:      math.Round(base * s.config.GSTRate),
	}
}

package booking

import "fmt"

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the total price for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	NightlyRate int64
	Nights      int
}

// NightlyPricingStrategy charges the room's nightly rate for every night.
// Check-in and check-out times never change the multiplier.
type NightlyPricingStrategy struct{}

// NewNightlyPricingStrategy creates a new NightlyPricingStrategy.
func NewNightlyPricingStrategy() *NightlyPricingStrategy {
	return &NightlyPricingStrategy{}
}

// Calculate computes rate × nights.
func (s *NightlyPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.NightlyRate < 0 {
		return 0, fmt.Errorf("nightly rate cannot be negative")
	}
	if params.Nights < 1 {
		return 0, fmt.Errorf("stay must be at least one night, got %d", params.Nights)
	}
	return params.NightlyRate * int64(params.Nights), nil
}

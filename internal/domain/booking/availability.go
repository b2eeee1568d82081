package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hanok-stay/service-booking/internal/domain/room"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

// Rejection reasons reported by the evaluator.
const (
	ReasonRoomUnavailable  = "room_unavailable"
	ReasonGuestsOutOfRange = "guests_out_of_range"
	ReasonInvalidDateRange = "invalid_date_range"
	ReasonCheckInInPast    = "check_in_in_past"
	ReasonStayTooLong      = "stay_too_long"
	ReasonLeadTimeExceeded = "lead_time_exceeded"
	ReasonNoCapacity       = "no_capacity"
)

const (
	DefaultMaxStayNights = 30
	DefaultMaxLeadDays   = 365
)

// Policy holds the configurable admission limits.
type Policy struct {
	MaxStayNights int
	MaxLeadDays   int
	// Location is the timezone that room check-in/out times and "today"
	// are interpreted in.
	Location *time.Location
}

// DefaultPolicy returns the standard limits in loc.
func DefaultPolicy(loc *time.Location) Policy {
	if loc == nil {
		loc = time.UTC
	}
	return Policy{
		MaxStayNights: DefaultMaxStayNights,
		MaxLeadDays:   DefaultMaxLeadDays,
		Location:      loc,
	}
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.T }

// StayRequest is what a guest asks for.
type StayRequest struct {
	Dates       StayDates
	GuestsCount int
}

// Quote is the priced, time-resolved form of an acceptable stay.
type Quote struct {
	Nights      int
	NightlyRate int64
	TotalPrice  int64
	Window      Interval
}

// Evaluation is the evaluator's verdict. Reason is set when Accepted is false.
type Evaluation struct {
	Accepted bool
	Quote    Quote
	Reason   error
}

// OverlapCounter counts bookings of a room that hold inventory during window.
type OverlapCounter interface {
	CountOverlapping(ctx context.Context, roomID uuid.UUID, window Interval) (int64, error)
}

// AvailabilityEvaluator decides whether a stay can be admitted and prices it.
// It never logs; every rejection is returned as a *domain.DomainError.
type AvailabilityEvaluator struct {
	policy   Policy
	clock    Clock
	pricing  PricingStrategy
	overlaps OverlapCounter
}

// NewAvailabilityEvaluator creates an evaluator.
func NewAvailabilityEvaluator(policy Policy, clock Clock, pricing PricingStrategy, overlaps OverlapCounter) *AvailabilityEvaluator {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if pricing == nil {
		pricing = NewNightlyPricingStrategy()
	}
	return &AvailabilityEvaluator{policy: policy, clock: clock, pricing: pricing, overlaps: overlaps}
}

// Policy returns the evaluator's limits.
func (e *AvailabilityEvaluator) Policy() Policy { return e.policy }

// Today is the current calendar date in the policy location.
func (e *AvailabilityEvaluator) Today() time.Time {
	return CalendarDate(e.clock.Now().In(e.policy.Location))
}

// CheckRules applies every rule except capacity, in order, and prices the
// stay. The first failing rule wins.
func (e *AvailabilityEvaluator) CheckRules(rm room.Room, req StayRequest) (Quote, error) {
	if !rm.IsAvailable {
		return Quote{}, domain.NewRejection(ReasonRoomUnavailable, "room is not available for booking")
	}
	if req.GuestsCount < rm.Capacity || req.GuestsCount > rm.MaxCapacity {
		return Quote{}, domain.NewRejection(ReasonGuestsOutOfRange,
			fmt.Sprintf("guests count must be between %d and %d", rm.Capacity, rm.MaxCapacity))
	}

	nights := req.Dates.Nights()
	if nights < 1 {
		return Quote{}, domain.NewRejection(ReasonInvalidDateRange, "check-out date must be after check-in date")
	}

	today := e.Today()
	checkIn := CalendarDate(req.Dates.CheckIn)
	if checkIn.Before(today) {
		return Quote{}, domain.NewRejection(ReasonCheckInInPast, "check-in date cannot be in the past")
	}
	if nights > e.policy.MaxStayNights {
		return Quote{}, domain.NewRejection(ReasonStayTooLong,
			fmt.Sprintf("stay cannot exceed %d nights", e.policy.MaxStayNights))
	}
	if daysBetween(today, checkIn) > e.policy.MaxLeadDays {
		return Quote{}, domain.NewRejection(ReasonLeadTimeExceeded,
			fmt.Sprintf("check-in date cannot be more than %d days ahead", e.policy.MaxLeadDays))
	}

	total, err := e.pricing.Calculate(PricingParams{NightlyRate: rm.PricePerNight, Nights: nights})
	if err != nil {
		return Quote{}, domain.NewValidationError(err.Error())
	}

	return Quote{
		Nights:      nights,
		NightlyRate: rm.PricePerNight,
		TotalPrice:  total,
		Window:      StayWindow(rm, req.Dates, e.policy.Location),
	}, nil
}

// CheckCapacity admits one more booking when overlapping+1 <= totalUnits.
func (e *AvailabilityEvaluator) CheckCapacity(totalUnits int, overlapping int64) error {
	if overlapping+1 > int64(totalUnits) {
		return domain.NewCapacityExceededError(
			fmt.Sprintf("no units left: %d of %d already booked for these dates", overlapping, totalUnits))
	}
	return nil
}

// Evaluate runs all rules including capacity against the current overlap
// count. Rejections are reported in the Evaluation; the error is reserved
// for failures to read the overlap count.
func (e *AvailabilityEvaluator) Evaluate(ctx context.Context, rm room.Room, req StayRequest) (Evaluation, error) {
	quote, err := e.CheckRules(rm, req)
	if err != nil {
		return rejected(err)
	}

	overlapping, err := e.overlaps.CountOverlapping(ctx, rm.ID, quote.Window)
	if err != nil {
		return Evaluation{}, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	if err := e.CheckCapacity(rm.TotalUnitCount, overlapping); err != nil {
		return Evaluation{Quote: quote, Reason: err}, nil
	}
	return Evaluation{Accepted: true, Quote: quote}, nil
}

func rejected(reason error) (Evaluation, error) {
	var de *domain.DomainError
	if !errors.As(reason, &de) {
		return Evaluation{}, reason
	}
	return Evaluation{Reason: reason}, nil
}

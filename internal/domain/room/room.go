package room

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hanok-stay/service-booking/pkg/domain"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Valid reports whether t is a real time of day.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Hour*60+t.Minute < o.Hour*60+o.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Room is the inventory descriptor of a sellable room type, as published by
// the accommodation catalog. It is read once per request and never mutated
// by the booking core.
type Room struct {
	ID              uuid.UUID
	AccommodationID uuid.UUID
	HostID          uuid.UUID
	Name            string

	// Capacity is the minimum guest count, MaxCapacity the maximum.
	Capacity    int
	MaxCapacity int

	PricePerNight int64
	IsAvailable   bool

	CheckInTime  TimeOfDay
	CheckOutTime TimeOfDay

	// TotalUnitCount is how many physical units of this type can be sold
	// for the same night.
	TotalUnitCount int
}

// Validate checks the descriptor's own invariants.
func (r Room) Validate() error {
	if r.ID == uuid.Nil {
		return domain.NewValidationError("room ID is required")
	}
	if r.Capacity < 1 {
		return domain.NewValidationError("room capacity must be at least 1")
	}
	if r.Capacity > r.MaxCapacity {
		return domain.NewValidationError(fmt.Sprintf("room capacity %d exceeds max capacity %d", r.Capacity, r.MaxCapacity))
	}
	if r.TotalUnitCount < 0 {
		return domain.NewValidationError("room total unit count cannot be negative")
	}
	if r.PricePerNight < 0 {
		return domain.NewValidationError("room price cannot be negative")
	}
	if !r.CheckInTime.Valid() || !r.CheckOutTime.Valid() {
		return domain.NewValidationError("room check-in/check-out time is invalid")
	}
	// A stay ending on D must not overlap one starting on D.
	if r.CheckInTime.Before(r.CheckOutTime) {
		return domain.NewValidationError(fmt.Sprintf("room check-in time %s is earlier than check-out time %s", r.CheckInTime, r.CheckOutTime))
	}
	return nil
}

// OwnedBy reports whether hostID owns the accommodation this room belongs to.
func (r Room) OwnedBy(hostID uuid.UUID) bool {
	return hostID != uuid.Nil && r.HostID == hostID
}

// Catalog looks up room descriptors.
type Catalog interface {
	// FindByID returns the room or a NOT_FOUND error.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)
}

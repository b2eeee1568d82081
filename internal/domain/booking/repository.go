package booking

import (
	"context"

	"github.com/google/uuid"
)

// AdmitFunc decides, inside the write transaction, whether one more booking
// fits. totalUnits is the room's unit count as locked by the transaction.
type AdmitFunc func(totalUnits int, overlapping int64) error

// MutateFunc applies one aggregate command to a freshly locked booking.
type MutateFunc func(b *Booking) error

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	OverlapCounter

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByGuestID retrieves bookings made by a guest with pagination, newest first.
	FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByRoomInWindow retrieves bookings of a room that hold inventory during window.
	FindByRoomInWindow(ctx context.Context, roomID uuid.UUID, window Interval) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// SaveAdmitted inserts b in one atomic unit with a fresh overlap count for
	// its room and window. The room is locked for the duration, admit is
	// called with the locked counts, and nothing is written if it fails.
	SaveAdmitted(ctx context.Context, b *Booking, admit AdmitFunc) error

	// Transition loads the booking under a row lock, applies fn and persists
	// the new status. It returns the updated booking.
	Transition(ctx context.Context, id uuid.UUID, fn MutateFunc) (*Booking, error)
}

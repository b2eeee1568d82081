package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hanok-stay/service-booking/internal/domain/room"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// maxRequestNoteLength bounds the guest's free-text note.
const maxRequestNoteLength = 500

// Booking is the aggregate root for a room reservation.
type Booking struct {
	id              uuid.UUID
	bookingNumber   string
	roomID          uuid.UUID
	accommodationID uuid.UUID
	guestID         uuid.UUID
	booker          Booker

	dates       StayDates
	window      Interval
	guestsCount int

	totalPrice int64
	currency   string

	status      BookingStatus
	requestNote string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "HB-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "HB-" + string(result), nil
}

// NewBooking creates a Booking for an admitted stay. It always starts pending.
func NewBooking(
	rm room.Room,
	guestID uuid.UUID,
	booker Booker,
	dates StayDates,
	quote Quote,
	guestsCount int,
	requestNote string,
) (*Booking, error) {
	if guestID == uuid.Nil {
		return nil, domain.NewValidationError("guest ID is required")
	}
	if rm.ID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	if booker.Name == "" || booker.PhoneNumber == "" {
		return nil, domain.NewValidationError("booker name and phone number are required")
	}
	if !quote.Window.Valid() {
		return nil, domain.NewRejection(ReasonInvalidDateRange, "check-in must be before check-out")
	}
	if guestsCount < 1 {
		return nil, domain.NewRejection(ReasonGuestsOutOfRange, "guests count must be positive")
	}
	if quote.TotalPrice < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}
	requestNote = strings.TrimSpace(requestNote)
	if len([]rune(requestNote)) > maxRequestNoteLength {
		return nil, domain.NewValidationError(fmt.Sprintf("request note must be at most %d characters", maxRequestNoteLength))
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		roomID:          rm.ID,
		accommodationID: rm.AccommodationID,
		guestID:         guestID,
		booker:          booker,
		dates:           dates,
		window:          quote.Window,
		guestsCount:     guestsCount,
		totalPrice:      quote.TotalPrice,
		currency:        domain.CurrencyKRW,
		status:          StatusPending,
		requestNote:     requestNote,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	roomID uuid.UUID,
	accommodationID uuid.UUID,
	guestID uuid.UUID,
	booker Booker,
	dates StayDates,
	window Interval,
	guestsCount int,
	totalPrice int64,
	currency string,
	status BookingStatus,
	requestNote string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bookingNumber:   bookingNumber,
		roomID:          roomID,
		accommodationID: accommodationID,
		guestID:         guestID,
		booker:          booker,
		dates:           dates,
		window:          window,
		guestsCount:     guestsCount,
		totalPrice:      totalPrice,
		currency:        currency,
		status:          status,
		requestNote:     requestNote,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// RoomID returns the booked room.
func (b *Booking) RoomID() uuid.UUID { return b.roomID }

// AccommodationID returns the accommodation the room belongs to.
func (b *Booking) AccommodationID() uuid.UUID { return b.accommodationID }

// GuestID returns the user who made the booking.
func (b *Booking) GuestID() uuid.UUID { return b.guestID }

// Booker returns the name and phone snapshot taken at booking time.
func (b *Booking) Booker() Booker { return b.booker }

// Dates returns the check-in and check-out calendar dates.
func (b *Booking) Dates() StayDates { return b.dates }

// Window returns the occupied interval.
func (b *Booking) Window() Interval { return b.window }

// Nights returns the number of nights booked.
func (b *Booking) Nights() int { return b.dates.Nights() }

// GuestsCount returns the number of guests.
func (b *Booking) GuestsCount() int { return b.guestsCount }

// TotalPrice returns the price for the whole stay.
func (b *Booking) TotalPrice() int64 { return b.totalPrice }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// RequestNote returns the guest's note to the host.
func (b *Booking) RequestNote() string { return b.requestNote }

// Version returns the persistence version.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// BelongsTo reports whether guestID made this booking.
func (b *Booking) BelongsTo(guestID uuid.UUID) bool {
	return guestID != uuid.Nil && b.guestID == guestID
}

// HoldsInventory reports whether the booking currently occupies a unit.
func (b *Booking) HoldsInventory() bool { return b.status.HoldsInventory() }

// --- Behavior ---

// CancelByGuest moves a pending or confirmed booking to cancelled_by_guest.
func (b *Booking) CancelByGuest() error {
	return b.transitionTo(StatusCancelledByGuest)
}

// HostAccept confirms a pending booking.
func (b *Booking) HostAccept() error {
	if b.status != StatusPending {
		return domain.NewNotPendingError(string(b.status))
	}
	return b.transitionTo(StatusConfirmed)
}

// HostReject refuses a pending booking.
func (b *Booking) HostReject() error {
	if b.status != StatusPending {
		return domain.NewNotPendingError(string(b.status))
	}
	return b.transitionTo(StatusCancelledByHost)
}

// MarkPartiallyPaid records a partial payment on a confirmed booking.
func (b *Booking) MarkPartiallyPaid() error {
	return b.transitionTo(StatusPartiallyPaid)
}

// MarkPaid records full payment.
func (b *Booking) MarkPaid() error {
	return b.transitionTo(StatusPaid)
}

// CheckIn records the guest's arrival.
func (b *Booking) CheckIn() error {
	return b.transitionTo(StatusCheckIn)
}

// CheckOut records the guest's departure.
func (b *Booking) CheckOut() error {
	return b.transitionTo(StatusCheckOut)
}

// Complete closes a checked-out stay.
func (b *Booking) Complete() error {
	return b.transitionTo(StatusCompleted)
}

// MarkNoShow records that the guest never arrived for a confirmed booking.
func (b *Booking) MarkNoShow() error {
	return b.transitionTo(StatusNoShow)
}

// Refund closes a cancelled or no-show booking after the money was returned.
func (b *Booking) Refund() error {
	return b.transitionTo(StatusRefunded)
}

// IncrementVersion bumps the persistence version.
func (b *Booking) IncrementVersion() {
	b.version++
}

func (b *Booking) transitionTo(target BookingStatus) error {
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

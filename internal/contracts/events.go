// Package contracts holds the Kafka topics, event type names and payloads
// the booking service produces and consumes.
package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// EventSource identifies this service on published CloudEvents.
const EventSource = "service-booking"

// Booking event types.
const (
	BookingRequested     = "booking.requested"
	BookingConfirmed     = "booking.confirmed"
	BookingRejected      = "booking.rejected"
	BookingCancelled     = "booking.cancelled"
	BookingStatusChanged = "booking.status_changed"
)

// Payment event types.
const (
	PaymentCaptured          = "payment.captured"
	PaymentPartiallyCaptured = "payment.partially_captured"
	PaymentRefunded          = "payment.refunded"
)

// BookingRequestedEvent is published when a booking is admitted.
type BookingRequestedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	BookingNumber   string    `json:"booking_number"`
	RoomID          uuid.UUID `json:"room_id"`
	AccommodationID uuid.UUID `json:"accommodation_id"`
	GuestID         uuid.UUID `json:"guest_id"`
	CheckInDate     string    `json:"check_in_date"`
	CheckOutDate    string    `json:"check_out_date"`
	CheckInAt       time.Time `json:"check_in_at"`
	CheckOutAt      time.Time `json:"check_out_at"`
	GuestsCount     int       `json:"guests_count"`
	TotalPrice      int64     `json:"total_price"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingStatusEvent is published for every status change after creation.
type BookingStatusEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	RoomID         uuid.UUID `json:"room_id"`
	GuestID        uuid.UUID `json:"guest_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	ChangedBy      uuid.UUID `json:"changed_by,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PaymentEvent is the payload of every payment.* event.
type PaymentEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

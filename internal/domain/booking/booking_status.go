package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending          BookingStatus = "pending"
	StatusConfirmed        BookingStatus = "confirmed"
	StatusPartiallyPaid    BookingStatus = "partially_paid"
	StatusPaid             BookingStatus = "paid"
	StatusCheckIn          BookingStatus = "check_in"
	StatusCheckOut         BookingStatus = "check_out"
	StatusCompleted        BookingStatus = "completed"
	StatusCancelledByGuest BookingStatus = "cancelled_by_guest"
	StatusCancelledByHost  BookingStatus = "cancelled_by_host"
	StatusNoShow           BookingStatus = "no_show"
	StatusRefunded         BookingStatus = "refunded"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:          {StatusConfirmed, StatusCancelledByGuest, StatusCancelledByHost},
	StatusConfirmed:        {StatusPaid, StatusPartiallyPaid, StatusCancelledByGuest, StatusNoShow},
	StatusPartiallyPaid:    {StatusPaid, StatusCheckIn},
	StatusPaid:             {StatusCheckIn},
	StatusCheckIn:          {StatusCheckOut},
	StatusCheckOut:         {StatusCompleted},
	StatusCompleted:        {},
	StatusCancelledByGuest: {StatusRefunded},
	StatusCancelledByHost:  {StatusRefunded},
	StatusNoShow:           {StatusRefunded},
	StatusRefunded:         {},
}

// releasingStatuses free their unit immediately: bookings in these states are
// ignored by the overlap count.
var releasingStatuses = []BookingStatus{
	StatusCancelledByGuest,
	StatusCancelledByHost,
	StatusRefunded,
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// HoldsInventory reports whether a booking in this status occupies a unit
// for its stay window.
func (s BookingStatus) HoldsInventory() bool {
	for _, r := range releasingStatuses {
		if s == r {
			return false
		}
	}
	return true
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ReleasingStatuses returns the statuses excluded from overlap counts.
func ReleasingStatuses() []string {
	out := make([]string, len(releasingStatuses))
	for i, s := range releasingStatuses {
		out[i] = string(s)
	}
	return out
}

// AllStatuses returns every recognized status.
func AllStatuses() []BookingStatus {
	return []BookingStatus{
		StatusPending, StatusConfirmed, StatusPartiallyPaid, StatusPaid,
		StatusCheckIn, StatusCheckOut, StatusCompleted,
		StatusCancelledByGuest, StatusCancelledByHost, StatusNoShow, StatusRefunded,
	}
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

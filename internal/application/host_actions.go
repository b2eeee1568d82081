package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hanok-stay/service-booking/internal/contracts"
	bookingDomain "github.com/hanok-stay/service-booking/internal/domain/booking"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

// HostAction is a host's answer to a pending booking.
type HostAction string

const (
	HostActionAccept HostAction = "accept"
	HostActionReject HostAction = "cancelled"
)

// ParseHostAction accepts exactly "accept", "cancelled" and its alias "reject".
func ParseHostAction(s string) (HostAction, error) {
	switch s {
	case "accept":
		return HostActionAccept, nil
	case "cancelled", "reject":
		return HostActionReject, nil
	default:
		return "", domain.NewInvalidArgumentError(fmt.Sprintf("unknown host action %q: expected accept or cancelled", s))
	}
}

// StayAction is a host command that records stay progress.
type StayAction string

const (
	StayActionCheckIn  StayAction = "check_in"
	StayActionCheckOut StayAction = "check_out"
	StayActionComplete StayAction = "complete"
	StayActionNoShow   StayAction = "no_show"
)

// ParseStayAction validates a stay progress command. Hyphenated forms are accepted.
func ParseStayAction(s string) (StayAction, error) {
	a := StayAction(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch a {
	case StayActionCheckIn, StayActionCheckOut, StayActionComplete, StayActionNoShow:
		return a, nil
	default:
		return "", domain.NewInvalidArgumentError(fmt.Sprintf("unknown stay action %q", s))
	}
}

// HostRespondRequest is the body of a host response.
type HostRespondRequest struct {
	Action string `json:"action" binding:"required"`
}

// HostBookingsQuery selects a host-owned room and a calendar date.
type HostBookingsQuery struct {
	RoomID string `form:"room_id" binding:"required,uuid"`
	Date   string `form:"date" binding:"required,isodate"`
}

// HostRespondToBooking accepts or rejects a pending booking for a room the
// host owns.
func (s *BookingService) HostRespondToBooking(ctx context.Context, bookingID, hostID uuid.UUID, action string) (*BookingStatusDTO, error) {
	act, err := ParseHostAction(action)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeHost(ctx, bookingID, hostID); err != nil {
		return nil, err
	}

	var previous bookingDomain.BookingStatus
	bk, err := s.repo.Transition(ctx, bookingID, func(b *bookingDomain.Booking) error {
		previous = b.Status()
		if act == HostActionAccept {
			return b.HostAccept()
		}
		return b.HostReject()
	})
	if err != nil {
		return nil, err
	}

	eventType := contracts.BookingConfirmed
	if act == HostActionReject {
		eventType = contracts.BookingRejected
	}
	s.publishStatusChange(ctx, eventType, bk, previous, hostID)

	return &BookingStatusDTO{ID: bk.ID(), Status: bk.Status().String()}, nil
}

// HostAdvanceBooking records check-in, check-out, completion or a no-show.
func (s *BookingService) HostAdvanceBooking(ctx context.Context, bookingID, hostID uuid.UUID, action string) (*BookingStatusDTO, error) {
	act, err := ParseStayAction(action)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeHost(ctx, bookingID, hostID); err != nil {
		return nil, err
	}

	var previous bookingDomain.BookingStatus
	bk, err := s.repo.Transition(ctx, bookingID, func(b *bookingDomain.Booking) error {
		previous = b.Status()
		switch act {
		case StayActionCheckIn:
			return b.CheckIn()
		case StayActionCheckOut:
			return b.CheckOut()
		case StayActionComplete:
			return b.Complete()
		default:
			return b.MarkNoShow()
		}
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, contracts.BookingStatusChanged, bk, previous, hostID)

	return &BookingStatusDTO{ID: bk.ID(), Status: bk.Status().String()}, nil
}

// GetHostBookingsOnDate lists bookings of a host-owned room whose stay
// covers date. The date must fall between today and the lead-time limit.
func (s *BookingService) GetHostBookingsOnDate(ctx context.Context, hostID, roomID uuid.UUID, date string) ([]BookingDTO, error) {
	day, err := bookingDomain.ParseDate(date)
	if err != nil {
		return nil, err
	}

	policy := s.evaluator.Policy()
	today := s.evaluator.Today()
	if day.Before(today) || day.After(today.AddDate(0, 0, policy.MaxLeadDays)) {
		return nil, domain.NewRejection("date_out_of_range",
			fmt.Sprintf("date must be between today and %d days ahead", policy.MaxLeadDays))
	}

	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !rm.OwnedBy(hostID) {
		return nil, domain.NewForbiddenError("room does not belong to this host")
	}

	bookings, err := s.repo.FindByRoomInWindow(ctx, rm.ID, bookingDomain.DayWindow(day, policy.Location))
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// authorizeHost checks that hostID owns the accommodation behind the
// booking's room. Ownership does not change with status, so it is checked
// before the transition.
func (s *BookingService) authorizeHost(ctx context.Context, bookingID, hostID uuid.UUID) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	rm, err := s.rooms.FindByID(ctx, bk.RoomID())
	if err != nil {
		return err
	}
	if !rm.OwnedBy(hostID) {
		return domain.NewForbiddenError("booking is for a room this host does not own")
	}
	return nil
}

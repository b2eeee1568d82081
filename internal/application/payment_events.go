package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanok-stay/service-booking/internal/contracts"
	bookingDomain "github.com/hanok-stay/service-booking/internal/domain/booking"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

// errAlreadyApplied aborts a transition whose target status is already set.
var errAlreadyApplied = errors.New("payment event already applied")

// ApplyPaymentEvent moves a booking along after the payment service captured
// or refunded money. Redelivered events are no-ops; unknown types are ignored.
func (s *BookingService) ApplyPaymentEvent(ctx context.Context, eventType string, evt contracts.PaymentEvent) error {
	var (
		target bookingDomain.BookingStatus
		apply  func(b *bookingDomain.Booking) error
	)
	switch eventType {
	case contracts.PaymentCaptured:
		target, apply = bookingDomain.StatusPaid, (*bookingDomain.Booking).MarkPaid
	case contracts.PaymentPartiallyCaptured:
		target, apply = bookingDomain.StatusPartiallyPaid, (*bookingDomain.Booking).MarkPartiallyPaid
	case contracts.PaymentRefunded:
		target, apply = bookingDomain.StatusRefunded, (*bookingDomain.Booking).Refund
	default:
		return nil
	}

	if evt.BookingID == uuid.Nil {
		return domain.NewValidationError("payment event has no booking ID")
	}

	var previous bookingDomain.BookingStatus
	bk, err := s.repo.Transition(ctx, evt.BookingID, func(b *bookingDomain.Booking) error {
		previous = b.Status()
		if previous == target {
			return errAlreadyApplied
		}
		return apply(b)
	})
	if errors.Is(err, errAlreadyApplied) {
		s.logger.Info("payment event already applied",
			zap.String("booking_id", evt.BookingID.String()),
			zap.String("event_type", eventType),
		)
		return nil
	}
	if err != nil {
		return err
	}

	s.publishStatusChange(ctx, contracts.BookingStatusChanged, bk, previous, uuid.Nil)
	return nil
}

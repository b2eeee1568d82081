//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hanok-stay/service-booking/internal/application"
	"github.com/hanok-stay/service-booking/internal/contracts"
	"github.com/hanok-stay/service-booking/internal/repository"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

// TestConcurrentReplicas_NeverOverbook runs several service replicas, each
// with its own in-process locker, so only the room row lock serializes them.
func TestConcurrentReplicas_NeverOverbook(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	const units, replicas = 2, 8
	rm := seedRoom(t, db, units)
	in, out := stayDates(10, 2)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		rejected int
	)
	for i := 0; i < replicas; i++ {
		svc := newBookingService(db, nil, zap.NewNop())
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(context.Background(), rm.AccommodationID, rm.ID, uuid.New(), application.CreateBookingRequest{
				CheckInDate:       in,
				CheckOutDate:      out,
				GuestsCount:       2,
				BookerName:        "Choi Yuna",
				BookerPhoneNumber: "010-1111-2222",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case domain.CodeOf(err) == domain.CodeCapacityExceeded:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, units, admitted)
	assert.Equal(t, replicas-units, rejected)

	var held int64
	require.NoError(t, db.Model(&repository.BookingModel{}).
		Where("room_id = ? AND status = ?", rm.ID, "pending").
		Count(&held).Error)
	assert.Equal(t, int64(units), held)
}

func TestBookingLifecycle_AgainstPostgres(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	rm := seedRoom(t, db, 1)
	guestID := seedGuest(t, db)
	svc := newBookingService(db, nil, zap.NewNop())
	ctx := context.Background()
	in, out := stayDates(20, 3)

	// Booker contact falls back to the users row.
	bk, err := svc.CreateBooking(ctx, rm.AccommodationID, rm.ID, guestID, application.CreateBookingRequest{
		CheckInDate:  in,
		CheckOutDate: out,
		GuestsCount:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Kim Haneul", bk.BookerName)
	assert.Equal(t, "010-5555-6666", bk.BookerPhoneNumber)
	assert.Equal(t, int64(360000), bk.TotalPrice)

	_, err = svc.CreateBooking(ctx, rm.AccommodationID, rm.ID, guestID, application.CreateBookingRequest{
		CheckInDate: in, CheckOutDate: out, GuestsCount: 2,
	})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	// Back-to-back stays share the turnover day.
	_, next := stayDates(23, 1)
	_, err = svc.CreateBooking(ctx, rm.AccommodationID, rm.ID, guestID, application.CreateBookingRequest{
		CheckInDate: out, CheckOutDate: next, GuestsCount: 2,
	})
	require.NoError(t, err)

	status, err := svc.HostRespondToBooking(ctx, bk.ID, rm.HostID, "accept")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", status.Status)

	_, err = svc.HostRespondToBooking(ctx, bk.ID, rm.HostID, "cancelled")
	assert.ErrorIs(t, err, domain.ErrNotPending)

	status, err = svc.CancelBooking(ctx, bk.ID, guestID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled_by_guest", status.Status)

	model := waitForBookingStatus(t, db, bk.ID, "cancelled_by_guest", time.Second)
	assert.Equal(t, int64(3), model.Version)

	// The cancelled stay released its unit.
	_, err = svc.CreateBooking(ctx, rm.AccommodationID, rm.ID, guestID, application.CreateBookingRequest{
		CheckInDate: in, CheckOutDate: out, GuestsCount: 2,
	})
	require.NoError(t, err)

	onDate, err := svc.GetHostBookingsOnDate(ctx, rm.HostID, rm.ID, in)
	require.NoError(t, err)
	require.Len(t, onDate, 1, "cancelled bookings are not listed")
	assert.NotEqual(t, bk.ID, onDate[0].ID)
}

func TestConcurrentTransitions_ExactlyOneWins(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	rm := seedRoom(t, db, 1)
	guestID := uuid.New()
	svc := newBookingService(db, nil, zap.NewNop())
	ctx := context.Background()
	in, out := stayDates(5, 1)

	bk, err := svc.CreateBooking(ctx, rm.AccommodationID, rm.ID, guestID, application.CreateBookingRequest{
		CheckInDate: in, CheckOutDate: out, GuestsCount: 2,
		BookerName: "Jung Hoseok", BookerPhoneNumber: "010-7777-8888",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.CancelBooking(ctx, bk.ID, guestID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.HostRespondToBooking(ctx, bk.ID, rm.HostID, "cancelled")
	}()
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "errors: %v", errs)

	var model repository.BookingModel
	require.NoError(t, db.Where("id = ?", bk.ID).First(&model).Error)
	assert.Contains(t, []string{"cancelled_by_guest", "cancelled_by_host"}, model.Status)
	assert.Equal(t, int64(2), model.Version)
}

// TestPaymentCaptured_MarksBookingPaid verifies that a payment.captured event
// on payment.events moves a confirmed booking to paid and that the change is
// announced on booking.events.
func TestPaymentCaptured_MarksBookingPaid(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	rm := seedRoom(t, infra.DB, 1)
	guestID := uuid.New()
	in, out := stayDates(7, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bk, err := stack.Service.CreateBooking(ctx, rm.AccommodationID, rm.ID, guestID, application.CreateBookingRequest{
		CheckInDate: in, CheckOutDate: out, GuestsCount: 2,
		BookerName: "Lim Sora", BookerPhoneNumber: "010-4444-5555",
	})
	require.NoError(t, err)
	_, err = stack.Service.HostRespondToBooking(ctx, bk.ID, rm.HostID, "accept")
	require.NoError(t, err)

	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := contracts.PaymentEvent{
		PaymentID:  uuid.New(),
		BookingID:  bk.ID,
		Amount:     bk.TotalPrice,
		Currency:   "KRW",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, contracts.TopicPaymentEvents,
		"service-payment", contracts.PaymentCaptured, evt)

	waitForBookingStatus(t, infra.DB, bk.ID, "paid", 15*time.Second)

	requested := consumeOneEvent(t, infra.KafkaBrokers, contracts.TopicBookingEvents,
		contracts.BookingRequested, 15*time.Second)
	var req contracts.BookingRequestedEvent
	require.NoError(t, requested.ParseData(&req))
	assert.Equal(t, bk.ID, req.BookingID)

	ce := consumeOneEvent(t, infra.KafkaBrokers, contracts.TopicBookingEvents,
		contracts.BookingStatusChanged, 15*time.Second)
	var changed contracts.BookingStatusEvent
	require.NoError(t, ce.ParseData(&changed))
	assert.Equal(t, bk.ID, changed.BookingID)
	assert.Equal(t, "paid", changed.Status)
}

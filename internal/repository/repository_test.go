package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	bookingDomain "github.com/hanok-stay/service-booking/internal/domain/booking"
	"github.com/hanok-stay/service-booking/internal/domain/room"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

func TestBookingModelConversion(t *testing.T) {
	rm := room.Room{ID: uuid.New(), AccommodationID: uuid.New(), CheckInTime: room.TimeOfDay{Hour: 15}, CheckOutTime: room.TimeOfDay{Hour: 11}}
	dates, err := bookingDomain.ParseStayDates("2024-12-01", "2024-12-03")
	require.NoError(t, err)
	quote := bookingDomain.Quote{Nights: 2, TotalPrice: 200000, Window: bookingDomain.StayWindow(rm, dates, time.UTC)}

	bk, err := bookingDomain.NewBooking(rm, uuid.New(), bookingDomain.Booker{Name: "Kim", PhoneNumber: "010-1111-2222"}, dates, quote, 2, "")
	require.NoError(t, err)

	got := toDomainBooking(toBookingModel(bk))

	assert.Equal(t, bk.ID(), got.ID())
	assert.Equal(t, bk.BookingNumber(), got.BookingNumber())
	assert.Equal(t, bk.Booker(), got.Booker())
	assert.Equal(t, bk.Dates(), got.Dates())
	assert.Equal(t, bk.Window(), got.Window())
	assert.Equal(t, bk.Status(), got.Status())
	assert.Equal(t, bk.TotalPrice(), got.TotalPrice())
}

func TestRoomModelConversion(t *testing.T) {
	hostID := uuid.New()
	rm := room.Room{
		ID:              uuid.New(),
		AccommodationID: uuid.New(),
		Name:            "Hanok",
		Capacity:        2,
		MaxCapacity:     4,
		PricePerNight:   120000,
		IsAvailable:     true,
		CheckInTime:     room.TimeOfDay{Hour: 15, Minute: 30},
		CheckOutTime:    room.TimeOfDay{Hour: 11},
		TotalUnitCount:  3,
	}

	model := ToRoomModel(rm)
	model.Accommodation = AccommodationModel{ID: rm.AccommodationID, HostID: hostID}

	got := toRoomDomain(model)
	rm.HostID = hostID
	assert.Equal(t, rm, *got)
}

func TestToTimeOfDay(t *testing.T) {
	assert.Equal(t, room.TimeOfDay{Hour: 23, Minute: 59}, toTimeOfDay(datatypes.NewTime(23, 59, 30, 0)))
}

func TestMapLockError(t *testing.T) {
	err := mapLockError(&pgconn.PgError{Code: "55P03"})
	assert.ErrorIs(t, err, domain.ErrBusy)

	other := &pgconn.PgError{Code: "23505"}
	assert.Same(t, other, mapLockError(other))

	assert.NoError(t, mapLockError(nil))
}

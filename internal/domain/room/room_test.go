package room

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hanok-stay/service-booking/pkg/domain"
)

func validRoom() Room {
	return Room{
		ID:             uuid.New(),
		HostID:         uuid.New(),
		Capacity:       2,
		MaxCapacity:    4,
		PricePerNight:  100000,
		IsAvailable:    true,
		CheckInTime:    TimeOfDay{Hour: 15},
		CheckOutTime:   TimeOfDay{Hour: 11},
		TotalUnitCount: 1,
	}
}

func TestRoom_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Room)
		ok     bool
	}{
		{"valid", func(*Room) {}, true},
		{"zero units is allowed", func(r *Room) { r.TotalUnitCount = 0 }, true},
		{"capacity above max", func(r *Room) { r.Capacity = 5 }, false},
		{"zero capacity", func(r *Room) { r.Capacity = 0 }, false},
		{"negative units", func(r *Room) { r.TotalUnitCount = -1 }, false},
		{"bad check-in time", func(r *Room) { r.CheckInTime = TimeOfDay{Hour: 24} }, false},
		{"check-in before check-out", func(r *Room) {
			r.CheckInTime = TimeOfDay{Hour: 10}
			r.CheckOutTime = TimeOfDay{Hour: 12}
		}, false},
		{"check-in one minute before check-out", func(r *Room) {
			r.CheckInTime = TimeOfDay{Hour: 11, Minute: 59}
			r.CheckOutTime = TimeOfDay{Hour: 12}
		}, false},
		{"same check-in and check-out time", func(r *Room) {
			r.CheckInTime = TimeOfDay{Hour: 12}
			r.CheckOutTime = TimeOfDay{Hour: 12}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRoom()
			tt.mutate(&r)
			err := r.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, domain.ErrValidation))
			}
		})
	}
}

func TestRoom_OwnedBy(t *testing.T) {
	r := validRoom()
	assert.True(t, r.OwnedBy(r.HostID))
	assert.False(t, r.OwnedBy(uuid.New()))
	assert.False(t, r.OwnedBy(uuid.Nil))
}

func TestTimeOfDay_String(t *testing.T) {
	assert.Equal(t, "09:05", TimeOfDay{Hour: 9, Minute: 5}.String())
}

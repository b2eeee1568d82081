package booking

import (
	"time"

	"github.com/hanok-stay/service-booking/internal/domain/room"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Interval is a half-open span of time [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether i and o share at least one instant. Touching
// intervals (i.End == o.Start) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Valid reports whether the interval is non-empty.
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// StayDates are the calendar dates of a stay. Both values are midnight UTC
// and carry no time-of-day meaning.
type StayDates struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Nights is the number of whole days between check-in and check-out.
func (d StayDates) Nights() int {
	return daysBetween(d.CheckIn, d.CheckOut)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewRejection("invalid_date", "dates must use the YYYY-MM-DD format")
	}
	return t, nil
}

// ParseStayDates parses check-in and check-out calendar dates.
func ParseStayDates(checkIn, checkOut string) (StayDates, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return StayDates{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return StayDates{}, err
	}
	return StayDates{CheckIn: in, CheckOut: out}, nil
}

// CalendarDate returns the calendar date of t in its own location, as
// midnight UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StayWindow turns calendar dates into the instants the room is occupied:
// check-in date at the room's check-in time until check-out date at the
// room's check-out time, both in loc.
func StayWindow(rm room.Room, dates StayDates, loc *time.Location) Interval {
	if loc == nil {
		loc = time.UTC
	}
	return Interval{
		Start: atTimeOfDay(dates.CheckIn, rm.CheckInTime, loc),
		End:   atTimeOfDay(dates.CheckOut, rm.CheckOutTime, loc),
	}
}

// DayWindow is the whole calendar day of date in loc.
func DayWindow(date time.Time, loc *time.Location) Interval {
	if loc == nil {
		loc = time.UTC
	}
	start := atTimeOfDay(date, room.TimeOfDay{}, loc)
	y, m, d := date.Date()
	return Interval{
		Start: start,
		End:   time.Date(y, m, d+1, 0, 0, 0, 0, loc),
	}
}

func atTimeOfDay(date time.Time, tod room.TimeOfDay, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, loc)
}

// daysBetween counts calendar days from a to b using their UTC dates, so
// daylight-saving shifts never produce fractional days.
func daysBetween(a, b time.Time) int {
	return int(CalendarDate(b).Sub(CalendarDate(a)).Hours() / 24)
}

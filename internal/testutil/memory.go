// Package testutil provides in-memory adapters for unit tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	bookingDomain "github.com/hanok-stay/service-booking/internal/domain/booking"
	"github.com/hanok-stay/service-booking/internal/domain/room"
	"github.com/hanok-stay/service-booking/pkg/domain"
	"github.com/hanok-stay/service-booking/pkg/kafka"
)

// BookingRepository is an in-memory bookingDomain.BookingRepository. One
// mutex stands in for the database's room and row locks.
type BookingRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	order    []uuid.UUID
	rooms    *RoomCatalog
}

// NewBookingRepository creates a repository that reads unit counts from rooms.
func NewBookingRepository(rooms *RoomCatalog) *BookingRepository {
	return &BookingRepository{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		rooms:    rooms,
	}
}

func (r *BookingRepository) CountOverlapping(_ context.Context, roomID uuid.UUID, window bookingDomain.Interval) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countOverlapping(roomID, window), nil
}

func (r *BookingRepository) countOverlapping(roomID uuid.UUID, window bookingDomain.Interval) int64 {
	var n int64
	for _, b := range r.bookings {
		if b.RoomID() == roomID && b.HoldsInventory() && b.Window().Overlaps(window) {
			n++
		}
	}
	return n
}

func (r *BookingRepository) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return clone(b), nil
}

func (r *BookingRepository) FindByGuestID(_ context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*bookingDomain.Booking
	for i := len(r.order) - 1; i >= 0; i-- {
		if b := r.bookings[r.order[i]]; b.GuestID() == guestID {
			all = append(all, clone(b))
		}
	}
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *BookingRepository) FindByRoomInWindow(_ context.Context, roomID uuid.UUID, window bookingDomain.Interval) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, id := range r.order {
		b := r.bookings[id]
		if b.RoomID() == roomID && b.HoldsInventory() && b.Window().Overlaps(window) {
			out = append(out, clone(b))
		}
	}
	return out, nil
}

func (r *BookingRepository) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*bookingDomain.Booking, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		all = append(all, clone(r.bookings[r.order[i]]))
	}
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *BookingRepository) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (r *BookingRepository) SaveAdmitted(ctx context.Context, b *bookingDomain.Booking, admit bookingDomain.AdmitFunc) error {
	rm, err := r.rooms.FindByID(ctx, b.RoomID())
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := admit(rm.TotalUnitCount, r.countOverlapping(b.RoomID(), b.Window())); err != nil {
		return err
	}
	r.bookings[b.ID()] = clone(b)
	r.order = append(r.order, b.ID())
	return nil
}

func (r *BookingRepository) Transition(_ context.Context, id uuid.UUID, fn bookingDomain.MutateFunc) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	b := clone(stored)
	if err := fn(b); err != nil {
		return nil, err
	}
	b.IncrementVersion()
	r.bookings[id] = clone(b)
	return b, nil
}

// Put stores b as-is, bypassing admission.
func (r *BookingRepository) Put(b *bookingDomain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID()]; !ok {
		r.order = append(r.order, b.ID())
	}
	r.bookings[b.ID()] = clone(b)
}

// Len returns the number of stored bookings.
func (r *BookingRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func clone(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		b.ID(), b.BookingNumber(), b.RoomID(), b.AccommodationID(), b.GuestID(), b.Booker(),
		b.Dates(), b.Window(), b.GuestsCount(), b.TotalPrice(), b.Currency(), b.Status(),
		b.RequestNote(), b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func paginate(all []*bookingDomain.Booking, page, limit int) []*bookingDomain.Booking {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return all
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// RoomCatalog is an in-memory room.Catalog.
type RoomCatalog struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]room.Room
}

// NewRoomCatalog creates a catalog holding rooms.
func NewRoomCatalog(rooms ...room.Room) *RoomCatalog {
	c := &RoomCatalog{rooms: make(map[uuid.UUID]room.Room)}
	for _, rm := range rooms {
		c.Put(rm)
	}
	return c
}

// Put adds or replaces a room.
func (c *RoomCatalog) Put(rm room.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[rm.ID] = rm
}

func (c *RoomCatalog) FindByID(_ context.Context, id uuid.UUID) (*room.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rm, ok := c.rooms[id]
	if !ok {
		return nil, domain.NewNotFoundError("room", id.String())
	}
	if err := rm.Validate(); err != nil {
		return nil, err
	}
	return &rm, nil
}

// GuestDirectory is an in-memory bookingDomain.GuestDirectory.
type GuestDirectory struct {
	mu     sync.RWMutex
	guests map[uuid.UUID]bookingDomain.GuestProfile
}

// NewGuestDirectory creates a directory holding profiles.
func NewGuestDirectory(profiles ...bookingDomain.GuestProfile) *GuestDirectory {
	d := &GuestDirectory{guests: make(map[uuid.UUID]bookingDomain.GuestProfile)}
	for _, p := range profiles {
		d.Put(p)
	}
	return d
}

// Put adds or replaces a profile.
func (d *GuestDirectory) Put(p bookingDomain.GuestProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.guests[p.ID] = p
}

func (d *GuestDirectory) FindGuest(_ context.Context, id uuid.UUID) (*bookingDomain.GuestProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.guests[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id.String())
	}
	return &p, nil
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// PublishedEvent is one recorded publication.
type PublishedEvent struct {
	Topic string
	Event kafka.CloudEvent
}

func (p *RecordingPublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

// Types returns the recorded event types in publication order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Event.Type
	}
	return out
}

// Events returns a copy of the recorded events.
func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// SortedStatuses returns the statuses of the stored bookings, sorted.
func (r *BookingRepository) SortedStatuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b.Status().String())
	}
	sort.Strings(out)
	return out
}

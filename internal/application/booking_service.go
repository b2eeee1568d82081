package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanok-stay/service-booking/internal/contracts"
	bookingDomain "github.com/hanok-stay/service-booking/internal/domain/booking"
	"github.com/hanok-stay/service-booking/internal/domain/room"
	"github.com/hanok-stay/service-booking/internal/lock"
	"github.com/hanok-stay/service-booking/pkg/auth"
	"github.com/hanok-stay/service-booking/pkg/domain"
	"github.com/hanok-stay/service-booking/pkg/kafka"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CheckInDate       string `json:"check_in_date" binding:"required,isodate"`
	CheckOutDate      string `json:"check_out_date" binding:"required,isodate"`
	GuestsCount       int    `json:"guests_count" binding:"required,min=1"`
	BookerName        string `json:"booker_name" binding:"omitempty,max=50"`
	BookerPhoneNumber string `json:"booker_phone_number" binding:"omitempty,max=20"`
	RequestNote       string `json:"request_note" binding:"omitempty,max=500"`
}

// QuoteRequest holds the stay a guest wants priced.
type QuoteRequest struct {
	CheckInDate  string `form:"check_in_date" binding:"required,isodate"`
	CheckOutDate string `form:"check_out_date" binding:"required,isodate"`
	GuestsCount  int    `form:"guests_count" binding:"required,min=1"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                uuid.UUID `json:"id"`
	BookingNumber     string    `json:"booking_number"`
	RoomID            uuid.UUID `json:"room_id"`
	AccommodationID   uuid.UUID `json:"accommodation_id"`
	GuestID           uuid.UUID `json:"guest_id"`
	BookerName        string    `json:"booker_name"`
	BookerPhoneNumber string    `json:"booker_phone_number"`
	CheckInDate       string    `json:"check_in_date"`
	CheckOutDate      string    `json:"check_out_date"`
	CheckInAt         time.Time `json:"check_in_at"`
	CheckOutAt        time.Time `json:"check_out_at"`
	Nights            int       `json:"nights"`
	GuestsCount       int       `json:"guests_count"`
	TotalPrice        int64     `json:"total_price"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	RequestNote       string    `json:"request_note,omitempty"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BookingStatusDTO is the short answer to a status transition.
type BookingStatusDTO struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// QuoteDTO previews a stay without reserving it.
type QuoteDTO struct {
	RoomID      uuid.UUID `json:"room_id"`
	Available   bool      `json:"available"`
	Reason      string    `json:"reason,omitempty"`
	Nights      int       `json:"nights"`
	NightlyRate int64     `json:"nightly_rate"`
	TotalPrice  int64     `json:"total_price"`
	Currency    string    `json:"currency"`
	CheckInAt   time.Time `json:"check_in_at"`
	CheckOutAt  time.Time `json:"check_out_at"`
}

// EventPublisher publishes CloudEvents. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	rooms     room.Catalog
	guests    bookingDomain.GuestDirectory
	evaluator *bookingDomain.AvailabilityEvaluator
	locker    lock.RoomLocker
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. publisher may be nil.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	rooms room.Catalog,
	guests bookingDomain.GuestDirectory,
	evaluator *bookingDomain.AvailabilityEvaluator,
	locker lock.RoomLocker,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		rooms:     rooms,
		guests:    guests,
		evaluator: evaluator,
		locker:    locker,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking admits and persists a new pending booking for guestID.
func (s *BookingService) CreateBooking(ctx context.Context, accommodationID, roomID, guestID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	booker, err := s.resolveBooker(ctx, guestID, req.BookerName, req.BookerPhoneNumber)
	if err != nil {
		return nil, err
	}

	dates, err := bookingDomain.ParseStayDates(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	rm, err := s.loadRoom(ctx, accommodationID, roomID)
	if err != nil {
		return nil, err
	}

	quote, err := s.evaluator.CheckRules(*rm, bookingDomain.StayRequest{Dates: dates, GuestsCount: req.GuestsCount})
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(*rm, guestID, booker, dates, quote, req.GuestsCount, req.RequestNote)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, rm.ID)
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			s.logger.Warn("room lock contention",
				zap.String("room_id", rm.ID.String()),
				zap.String("guest_id", guestID.String()),
			)
		}
		return nil, err
	}
	defer unlock()

	if err := s.repo.SaveAdmitted(ctx, bk, s.evaluator.CheckCapacity); err != nil {
		return nil, err
	}

	s.publishBookingRequested(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// QuoteBooking prices a stay and reports whether a unit is currently free.
// Nothing is reserved.
func (s *BookingService) QuoteBooking(ctx context.Context, accommodationID, roomID uuid.UUID, req QuoteRequest) (*QuoteDTO, error) {
	dates, err := bookingDomain.ParseStayDates(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	rm, err := s.loadRoom(ctx, accommodationID, roomID)
	if err != nil {
		return nil, err
	}

	ev, err := s.evaluator.Evaluate(ctx, *rm, bookingDomain.StayRequest{Dates: dates, GuestsCount: req.GuestsCount})
	if err != nil {
		return nil, err
	}
	if ev.Reason != nil && !errors.Is(ev.Reason, domain.ErrCapacityExceeded) {
		return nil, ev.Reason
	}

	result := &QuoteDTO{
		RoomID:      rm.ID,
		Available:   ev.Accepted,
		Nights:      ev.Quote.Nights,
		NightlyRate: ev.Quote.NightlyRate,
		TotalPrice:  ev.Quote.TotalPrice,
		Currency:    domain.CurrencyKRW,
		CheckInAt:   ev.Quote.Window.Start,
		CheckOutAt:  ev.Quote.Window.End,
	}
	if !ev.Accepted {
		result.Reason = bookingDomain.ReasonNoCapacity
	}
	return result, nil
}

// CancelBooking cancels a pending or confirmed booking on behalf of its guest.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, guestID uuid.UUID) (*BookingStatusDTO, error) {
	var previous bookingDomain.BookingStatus
	bk, err := s.repo.Transition(ctx, bookingID, func(b *bookingDomain.Booking) error {
		if !b.BelongsTo(guestID) {
			return domain.NewForbiddenError("booking does not belong to this user")
		}
		previous = b.Status()
		return b.CancelByGuest()
	})
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, contracts.BookingCancelled, bk, previous, guestID)

	return &BookingStatusDTO{ID: bk.ID(), Status: bk.Status().String()}, nil
}

// GetBooking returns a booking to its guest, the owning host or an admin.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID uuid.UUID, role string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch {
	case role == auth.RoleAdmin:
	case bk.BelongsTo(userID):
	default:
		rm, err := s.rooms.FindByID(ctx, bk.RoomID())
		if err != nil {
			return nil, err
		}
		if !rm.OwnedBy(userID) {
			return nil, domain.NewForbiddenError("booking is not visible to this user")
		}
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetGuestBookings retrieves paginated bookings made by a guest.
func (s *BookingService) GetGuestBookings(ctx context.Context, guestID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, err
	}

	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	byStatus := make(map[string]int64, len(counts))
	for _, st := range bookingDomain.AllStatuses() {
		byStatus[st.String()] = 0
	}
	var total int64
	for st, c := range counts {
		byStatus[st] = c
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      byStatus,
	}, nil
}

// --- Helpers ---

// resolveBooker only consults the guest directory when the request does not
// carry a complete booker contact.
func (s *BookingService) resolveBooker(ctx context.Context, guestID uuid.UUID, name, phone string) (bookingDomain.Booker, error) {
	if guestID == uuid.Nil {
		return bookingDomain.Booker{}, domain.NewUnauthorizedError("guest identity is required")
	}

	var profile bookingDomain.GuestProfile
	if strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" {
		p, err := s.guests.FindGuest(ctx, guestID)
		if err != nil {
			return bookingDomain.Booker{}, err
		}
		profile = *p
	}
	return bookingDomain.ResolveBooker(name, phone, profile)
}

// loadRoom fetches the room and checks it belongs to accommodationID.
func (s *BookingService) loadRoom(ctx context.Context, accommodationID, roomID uuid.UUID) (*room.Room, error) {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if rm.AccommodationID != accommodationID {
		return nil, domain.NewNotFoundError("room", roomID.String())
	}
	return rm, nil
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	dates := bk.Dates()
	window := bk.Window()
	return BookingDTO{
		ID:                bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		RoomID:            bk.RoomID(),
		AccommodationID:   bk.AccommodationID(),
		GuestID:           bk.GuestID(),
		BookerName:        bk.Booker().Name,
		BookerPhoneNumber: bk.Booker().PhoneNumber,
		CheckInDate:       dates.CheckIn.Format(bookingDomain.DateLayout),
		CheckOutDate:      dates.CheckOut.Format(bookingDomain.DateLayout),
		CheckInAt:         window.Start,
		CheckOutAt:        window.End,
		Nights:            bk.Nights(),
		GuestsCount:       bk.GuestsCount(),
		TotalPrice:        bk.TotalPrice(),
		Currency:          bk.Currency(),
		Status:            bk.Status().String(),
		RequestNote:       bk.RequestNote(),
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt(),
		UpdatedAt:         bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishBookingRequested(ctx context.Context, bk *bookingDomain.Booking) {
	evt := contracts.BookingRequestedEvent{
		BookingID:       bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		RoomID:          bk.RoomID(),
		AccommodationID: bk.AccommodationID(),
		GuestID:         bk.GuestID(),
		CheckInDate:     bk.Dates().CheckIn.Format(bookingDomain.DateLayout),
		CheckOutDate:    bk.Dates().CheckOut.Format(bookingDomain.DateLayout),
		CheckInAt:       bk.Window().Start,
		CheckOutAt:      bk.Window().End,
		GuestsCount:     bk.GuestsCount(),
		TotalPrice:      bk.TotalPrice(),
		Currency:        bk.Currency(),
		OccurredAt:      time.Now().UTC(),
	}
	s.publishEvent(ctx, contracts.TopicBookingEvents, contracts.BookingRequested, bk.ID().String(), evt)
}

func (s *BookingService) publishStatusChange(ctx context.Context, eventType string, bk *bookingDomain.Booking, previous bookingDomain.BookingStatus, changedBy uuid.UUID) {
	evt := contracts.BookingStatusEvent{
		BookingID:      bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		RoomID:         bk.RoomID(),
		GuestID:        bk.GuestID(),
		PreviousStatus: previous.String(),
		Status:         bk.Status().String(),
		ChangedBy:      changedBy,
		OccurredAt:     time.Now().UTC(),
	}
	s.publishEvent(ctx, contracts.TopicBookingEvents, eventType, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if s.publisher == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(contracts.EventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = key

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/hanok-stay/service-booking/internal/domain/booking"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

// Postgres SQLSTATEs that mean "someone else holds the lock".
const (
	sqlStateLockNotAvailable = "55P03"
	sqlStateQueryCanceled    = "57014"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey"`
	BookingNumber     string         `gorm:"uniqueIndex;not null;size:20"`
	RoomID            uuid.UUID      `gorm:"type:uuid;not null;index:idx_bookings_room_window,priority:1"`
	AccommodationID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	GuestID           uuid.UUID      `gorm:"type:uuid;not null;index"`
	BookerName        string         `gorm:"not null;size:50"`
	BookerPhoneNumber string         `gorm:"not null;size:20"`
	CheckInDate       datatypes.Date `gorm:"not null"`
	CheckOutDate      datatypes.Date `gorm:"not null"`
	CheckInAt         time.Time      `gorm:"type:timestamptz;not null;index:idx_bookings_room_window,priority:2"`
	CheckOutAt        time.Time      `gorm:"type:timestamptz;not null;index:idx_bookings_room_window,priority:3"`
	GuestsCount       int            `gorm:"not null"`
	TotalPrice        int64          `gorm:"not null"`
	Currency          string         `gorm:"not null;size:3;default:'KRW'"`
	Status            string         `gorm:"not null;size:30;index"`
	RequestNote       string         `gorm:"size:500"`
	Version           int64          `gorm:"not null;default:1"`
	CreatedAt         time.Time      `gorm:"not null"`
	UpdatedAt         time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormBookingRepository creates a new GormBookingRepository. Row locks
// taken by writes give up after lockTimeout.
func NewGormBookingRepository(db *gorm.DB, lockTimeout time.Duration) *GormBookingRepository {
	return &GormBookingRepository{db: db, lockTimeout: lockTimeout}
}

// CountOverlapping counts inventory-holding bookings of the room whose stay
// intersects window.
func (r *GormBookingRepository) CountOverlapping(ctx context.Context, roomID uuid.UUID, window bookingDomain.Interval) (int64, error) {
	var n int64
	if err := overlapping(r.db.WithContext(ctx), roomID, window).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return n, nil
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByGuestID retrieves bookings for a specific guest with pagination.
func (r *GormBookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("guest_id = ?", guestID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count guest bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find guest bookings: %w", err)
	}

	return toDomainBookings(models), total, nil
}

// FindByRoomInWindow retrieves inventory-holding bookings of a room that
// intersect window, ordered by check-in.
func (r *GormBookingRepository) FindByRoomInWindow(ctx context.Context, roomID uuid.UUID, window bookingDomain.Interval) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := overlapping(r.db.WithContext(ctx), roomID, window).
		Order("check_in_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find room bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models), total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}

	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// SaveAdmitted locks the room row, re-counts overlaps, asks admit and
// inserts, all in one transaction. Concurrent admissions for the same room
// queue on the row lock; other rooms are unaffected.
func (r *GormBookingRepository) SaveAdmitted(ctx context.Context, bk *bookingDomain.Booking, admit bookingDomain.AdmitFunc) error {
	model := toBookingModel(bk)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.setLockTimeout(tx); err != nil {
			return err
		}

		var rm RoomModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "total_unit_count").
			Where("id = ?", bk.RoomID()).
			Take(&rm).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("room", bk.RoomID().String())
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}

		var n int64
		if err := overlapping(tx, bk.RoomID(), bk.Window()).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count overlapping bookings: %w", err)
		}

		if err := admit(rm.TotalUnitCount, n); err != nil {
			return err
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
	return mapLockError(err)
}

// Transition locks the booking row, applies fn and writes the new status.
func (r *GormBookingRepository) Transition(ctx context.Context, id uuid.UUID, fn bookingDomain.MutateFunc) (*bookingDomain.Booking, error) {
	var out *bookingDomain.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.setLockTimeout(tx); err != nil {
			return err
		}

		var model BookingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("booking", id.String())
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		bk := toDomainBooking(&model)
		if err := fn(bk); err != nil {
			return err
		}
		bk.IncrementVersion()

		result := tx.Model(&BookingModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(map[string]interface{}{
				"status":     bk.Status().String(),
				"version":    bk.Version(),
				"updated_at": bk.UpdatedAt(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewConflictError("booking was modified by another transaction")
		}

		out = bk
		return nil
	})
	if err != nil {
		return nil, mapLockError(err)
	}
	return out, nil
}

func (r *GormBookingRepository) setLockTimeout(tx *gorm.DB) error {
	if r.lockTimeout <= 0 {
		return nil
	}
	// SET does not take bind parameters.
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}
	return nil
}

// overlapping selects bookings of roomID that hold inventory and intersect
// window under half-open semantics.
func overlapping(db *gorm.DB, roomID uuid.UUID, window bookingDomain.Interval) *gorm.DB {
	return db.Model(&BookingModel{}).
		Where("room_id = ?", roomID).
		Where("status NOT IN ?", bookingDomain.ReleasingStatuses()).
		Where("check_in_at < ? AND check_out_at > ?", window.End, window.Start)
}

// mapLockError turns lock contention into a retryable BUSY error.
func mapLockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateLockNotAvailable, sqlStateQueryCanceled:
			return domain.NewBusyError("booking data is locked by another request, please retry")
		}
	}
	return err
}

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	dates := bk.Dates()
	window := bk.Window()
	return &BookingModel{
		ID:                bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		RoomID:            bk.RoomID(),
		AccommodationID:   bk.AccommodationID(),
		GuestID:           bk.GuestID(),
		BookerName:        bk.Booker().Name,
		BookerPhoneNumber: bk.Booker().PhoneNumber,
		CheckInDate:       datatypes.Date(dates.CheckIn),
		CheckOutDate:      datatypes.Date(dates.CheckOut),
		CheckInAt:         window.Start,
		CheckOutAt:        window.End,
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

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.RoomID,
		m.AccommodationID,
		m.GuestID,
		bookingDomain.Booker{Name: m.BookerName, PhoneNumber: m.BookerPhoneNumber},
		bookingDomain.StayDates{
			CheckIn:  bookingDomain.CalendarDate(time.Time(m.CheckInDate)),
			CheckOut: bookingDomain.CalendarDate(time.Time(m.CheckOutDate)),
		},
		bookingDomain.Interval{Start: m.CheckInAt, End: m.CheckOutAt},
		m.GuestsCount,
		m.TotalPrice,
		m.Currency,
		bookingDomain.BookingStatus(m.Status),
		m.RequestNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hanok-stay/service-booking/internal/domain/room"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

// AccommodationModel is the GORM model for the accommodations table. The
// catalog service owns it; the booking service only reads the host.
type AccommodationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	HostID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (AccommodationModel) TableName() string { return "accommodations" }

// RoomModel is the GORM model for the rooms table, also owned by the catalog.
type RoomModel struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey"`
	AccommodationID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Accommodation   AccommodationModel `gorm:"foreignKey:AccommodationID"`
	Name            string             `gorm:"type:varchar(100);not null"`
	Capacity        int                `gorm:"not null;default:1"`
	MaxCapacity     int                `gorm:"not null;default:1"`
	Price           int64              `gorm:"not null;default:0"`
	IsAvailable     bool               `gorm:"not null;default:true"`
	CheckInTime     datatypes.Time     `gorm:"not null"`
	CheckOutTime    datatypes.Time     `gorm:"not null"`
	TotalUnitCount  int                `gorm:"not null;default:1"`
	CreatedAt       time.Time          `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time          `gorm:"type:timestamptz;not null;default:now()"`
}

func (RoomModel) TableName() string { return "rooms" }

// GormRoomCatalog implements room.Catalog using GORM.
type GormRoomCatalog struct {
	db *gorm.DB
}

func NewGormRoomCatalog(db *gorm.DB) *GormRoomCatalog {
	return &GormRoomCatalog{db: db}
}

// FindByID loads the room with its accommodation's host. A row that breaks
// the descriptor invariants is reported as an error rather than returned.
func (c *GormRoomCatalog) FindByID(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	var model RoomModel
	if err := c.db.WithContext(ctx).
		Preload("Accommodation").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("room", id.String())
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	rm := toRoomDomain(&model)
	if err := rm.Validate(); err != nil {
		return nil, fmt.Errorf("room %s has an invalid descriptor: %w", id, err)
	}
	return rm, nil
}

// --- Conversions ---

func toRoomDomain(m *RoomModel) *room.Room {
	return &room.Room{
		ID:              m.ID,
		AccommodationID: m.AccommodationID,
		HostID:          m.Accommodation.HostID,
		Name:            m.Name,
		Capacity:        m.Capacity,
		MaxCapacity:     m.MaxCapacity,
		PricePerNight:   m.Price,
		IsAvailable:     m.IsAvailable,
		CheckInTime:     toTimeOfDay(m.CheckInTime),
		CheckOutTime:    toTimeOfDay(m.CheckOutTime),
		TotalUnitCount:  m.TotalUnitCount,
	}
}

// ToRoomModel converts a descriptor into its row. Used for seeding.
func ToRoomModel(rm room.Room) *RoomModel {
	return &RoomModel{
		ID:              rm.ID,
		AccommodationID: rm.AccommodationID,
		Name:            rm.Name,
		Capacity:        rm.Capacity,
		MaxCapacity:     rm.MaxCapacity,
		Price:           rm.PricePerNight,
		IsAvailable:     rm.IsAvailable,
		CheckInTime:     datatypes.NewTime(rm.CheckInTime.Hour, rm.CheckInTime.Minute, 0, 0),
		CheckOutTime:    datatypes.NewTime(rm.CheckOutTime.Hour, rm.CheckOutTime.Minute, 0, 0),
		TotalUnitCount:  rm.TotalUnitCount,
	}
}

func toTimeOfDay(t datatypes.Time) room.TimeOfDay {
	d := time.Duration(t)
	return room.TimeOfDay{
		Hour:   int(d / time.Hour),
		Minute: int(d % time.Hour / time.Minute),
	}
}

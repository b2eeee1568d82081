package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/hanok-stay/service-booking/internal/domain/booking"
	"github.com/hanok-stay/service-booking/pkg/domain"
)

// UserModel is the slice of the user service's users table the booking
// service reads.
type UserModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(50);not null"`
	PhoneNumber string    `gorm:"type:varchar(20)"`
}

func (UserModel) TableName() string { return "users" }

// GormGuestDirectory implements booking.GuestDirectory using GORM.
type GormGuestDirectory struct {
	db *gorm.DB
}

func NewGormGuestDirectory(db *gorm.DB) *GormGuestDirectory {
	return &GormGuestDirectory{db: db}
}

func (d *GormGuestDirectory) FindGuest(ctx context.Context, id uuid.UUID) (*bookingDomain.GuestProfile, error) {
	var model UserModel
	if err := d.db.WithContext(ctx).
		Select("id", "name", "phone_number").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("user", id.String())
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &bookingDomain.GuestProfile{
		ID:          model.ID,
		Name:        model.Name,
		PhoneNumber: model.PhoneNumber,
	}, nil
}

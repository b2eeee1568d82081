package booking

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/hanok-stay/service-booking/pkg/domain"
)

// bookerPhonePattern is a Korean mobile number: carrier prefix 010 and two
// groups of four digits.
var bookerPhonePattern = regexp.MustCompile(`^010-\d{4}-\d{4}$`)

// Booker is the name and phone recorded on a booking when it is made. It is
// a copy, not a reference: later profile edits never reach it.
type Booker struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// GuestProfile is the authenticated user's profile as known to the user service.
type GuestProfile struct {
	ID          uuid.UUID
	Name        string
	PhoneNumber string
}

// GuestDirectory looks up guest profiles in the user service's data.
type GuestDirectory interface {
	// FindGuest returns the profile or a NOT_FOUND error.
	FindGuest(ctx context.Context, id uuid.UUID) (*GuestProfile, error)
}

// ValidBookerPhone reports whether phone matches the booker phone format.
func ValidBookerPhone(phone string) bool {
	return bookerPhonePattern.MatchString(phone)
}

// ResolveBooker picks the booker snapshot for a new booking. A supplied name
// and phone are used together or not at all; otherwise the profile is used.
func ResolveBooker(suppliedName, suppliedPhone string, profile GuestProfile) (Booker, error) {
	name := strings.TrimSpace(suppliedName)
	phone := strings.TrimSpace(suppliedPhone)

	if name != "" && phone != "" {
		if !ValidBookerPhone(phone) {
			return Booker{}, domain.NewRejection("invalid_booker_phone", "booker phone number must match 010-XXXX-XXXX")
		}
		return Booker{Name: name, PhoneNumber: phone}, nil
	}

	b := Booker{
		Name:        strings.TrimSpace(profile.Name),
		PhoneNumber: strings.TrimSpace(profile.PhoneNumber),
	}
	if b.Name == "" || b.PhoneNumber == "" {
		return Booker{}, domain.NewRejection("missing_booker_contact", "booker name and phone number are required")
	}
	return b, nil
}

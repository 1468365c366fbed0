package customer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// Customer is a hotel guest as the reservation core sees them. Identity
// management lives elsewhere; this profile only carries what bookings and
// the room-change cascade need.
type Customer struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	RoomNumber string    `json:"room_number"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCustomer validates and creates a guest profile.
func NewCustomer(fullName, roomNumber, phone, email string) (*Customer, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, domain.NewValidationError("customer name is required")
	}
	now := time.Now().UTC()
	return &Customer{
		ID:         uuid.New(),
		FullName:   fullName,
		RoomNumber: strings.TrimSpace(roomNumber),
		Phone:      phone,
		Email:      email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Repository defines the persistence contract for guest profiles.
type Repository interface {
	// FindByID retrieves one customer.
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByNameAndRoom finds the customer matching both the guest name and
	// the room number, as reported by the property-management system.
	FindByNameAndRoom(ctx context.Context, fullName, roomNumber string) (*Customer, error)

	// Save inserts a customer.
	Save(ctx context.Context, c *Customer) error

	// UpdateRoom sets a customer's room number. Returns true when a row
	// changed.
	UpdateRoom(ctx context.Context, id uuid.UUID, newRoom string) (bool, error)
}

package application

import (
	"context"

	"github.com/google/uuid"

	customerDomain "github.com/lidosuite/service-reservation/internal/domain/customer"
)

// CreateCustomerRequest registers a guest profile.
type CreateCustomerRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	RoomNumber string `json:"room_number"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// CustomerService manages guest profiles.
type CustomerService struct {
	repo customerDomain.Repository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(repo customerDomain.Repository) *CustomerService {
	return &CustomerService{repo: repo}
}

// CreateCustomer registers a guest profile.
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*customerDomain.Customer, error) {
	c, err := customerDomain.NewCustomer(req.FullName, req.RoomNumber, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCustomer returns one guest profile.
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customerDomain "github.com/lidosuite/service-reservation/internal/domain/customer"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName   string    `gorm:"not null;size:200;index"`
	RoomNumber string    `gorm:"size:20;index"`
	Phone      string    `gorm:"size:40"`
	Email      string    `gorm:"size:200"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CustomerModel) TableName() string {
	return "customers"
}

// GormCustomerRepository is the GORM-based implementation of
// customer.Repository.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID retrieves one customer.
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", id.String())
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return toDomainCustomer(&model), nil
}

// FindByNameAndRoom finds the customer matching guest name and room number.
func (r *GormCustomerRepository) FindByNameAndRoom(ctx context.Context, fullName, roomNumber string) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := dbFrom(ctx, r.db).
		Where("full_name = ? AND room_number = ?", fullName, roomNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", fullName+"/"+roomNumber)
		}
		return nil, fmt.Errorf("failed to find customer by name and room: %w", err)
	}
	return toDomainCustomer(&model), nil
}

// Save inserts a customer.
func (r *GormCustomerRepository) Save(ctx context.Context, c *customerDomain.Customer) error {
	model := toCustomerModel(c)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

// UpdateRoom sets a customer's room number.
func (r *GormCustomerRepository) UpdateRoom(ctx context.Context, id uuid.UUID, newRoom string) (bool, error) {
	result := dbFrom(ctx, r.db).Model(&CustomerModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"room_number": newRoom, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update customer room: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func toCustomerModel(c *customerDomain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:         c.ID,
		FullName:   c.FullName,
		RoomNumber: c.RoomNumber,
		Phone:      c.Phone,
		Email:      c.Email,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toDomainCustomer(m *CustomerModel) *customerDomain.Customer {
	return &customerDomain.Customer{
		ID:         m.ID,
		FullName:   m.FullName,
		RoomNumber: m.RoomNumber,
		Phone:      m.Phone,
		Email:      m.Email,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	waitlistDomain "github.com/lidosuite/service-reservation/internal/domain/waitlist"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// WaitlistModel is the GORM model for the waitlist_entries table.
type WaitlistModel struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID             *uuid.UUID `gorm:"type:uuid;index"`
	ExternalName           string     `gorm:"size:200"`
	ExternalPhone          string     `gorm:"size:40"`
	RequestedDate          time.Time  `gorm:"type:date;not null;index"`
	NumPeople              int        `gorm:"not null"`
	Preferences            string     `gorm:"size:500"`
	Status                 string     `gorm:"not null;size:20;index"`
	ConvertedReservationID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt              time.Time  `gorm:"not null"`
	UpdatedAt              time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (WaitlistModel) TableName() string {
	return "waitlist_entries"
}

// GormWaitlistRepository is the GORM-based implementation of
// waitlist.Repository.
type GormWaitlistRepository struct {
	db *gorm.DB
}

// NewGormWaitlistRepository creates a new GormWaitlistRepository.
func NewGormWaitlistRepository(db *gorm.DB) *GormWaitlistRepository {
	return &GormWaitlistRepository{db: db}
}

// FindByID retrieves one entry.
func (r *GormWaitlistRepository) FindByID(ctx context.Context, id uuid.UUID) (*waitlistDomain.Entry, error) {
	var model WaitlistModel
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("WaitlistEntry", id.String())
		}
		return nil, fmt.Errorf("failed to find waitlist entry: %w", err)
	}
	return toDomainEntry(&model), nil
}

// ListWaitingBefore returns waiting entries requested before asOf.
func (r *GormWaitlistRepository) ListWaitingBefore(ctx context.Context, asOf time.Time) ([]*waitlistDomain.Entry, error) {
	var models []WaitlistModel
	if err := dbFrom(ctx, r.db).
		Where("status = ? AND requested_date < ?", string(waitlistDomain.StatusWaiting), resourceDomain.DateOnly(asOf)).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list stale waitlist entries: %w", err)
	}
	return toDomainEntries(models), nil
}

// ListByDate returns entries for one requested date, any status.
func (r *GormWaitlistRepository) ListByDate(ctx context.Context, date time.Time) ([]*waitlistDomain.Entry, error) {
	var models []WaitlistModel
	if err := dbFrom(ctx, r.db).
		Where("requested_date = ?", resourceDomain.DateOnly(date)).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	return toDomainEntries(models), nil
}

// Save inserts a new entry.
func (r *GormWaitlistRepository) Save(ctx context.Context, e *waitlistDomain.Entry) error {
	model := toWaitlistModel(e)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save waitlist entry: %w", err)
	}
	return nil
}

// Update persists changes to an existing entry. The status predicate makes
// terminating transitions race-safe: losing a convert race surfaces as zero
// rows affected.
func (r *GormWaitlistRepository) Update(ctx context.Context, e *waitlistDomain.Entry) error {
	model := toWaitlistModel(e)
	result := dbFrom(ctx, r.db).Model(&WaitlistModel{}).
		Where("id = ? AND status NOT IN ?", model.ID, []string{
			string(waitlistDomain.StatusConverted),
			string(waitlistDomain.StatusExpired),
			string(waitlistDomain.StatusDeclined),
		}).
		Updates(map[string]interface{}{
			"status":                   model.Status,
			"converted_reservation_id": model.ConvertedReservationID,
			"updated_at":               model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update waitlist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("waitlist entry was terminated by another transaction")
	}
	return nil
}

// --- Conversion helpers ---

func toWaitlistModel(e *waitlistDomain.Entry) *WaitlistModel {
	return &WaitlistModel{
		ID:                     e.ID(),
		CustomerID:             e.CustomerID(),
		ExternalName:           e.ExternalName(),
		ExternalPhone:          e.ExternalPhone(),
		RequestedDate:          e.RequestedDate(),
		NumPeople:              e.NumPeople(),
		Preferences:            e.Preferences(),
		Status:                 string(e.Status()),
		ConvertedReservationID: e.ConvertedReservationID(),
		CreatedAt:              e.CreatedAt(),
		UpdatedAt:              e.UpdatedAt(),
	}
}

func toDomainEntry(m *WaitlistModel) *waitlistDomain.Entry {
	return waitlistDomain.Reconstruct(
		m.ID,
		m.CustomerID,
		m.ExternalName,
		m.ExternalPhone,
		resourceDomain.DateOnly(m.RequestedDate),
		m.NumPeople,
		m.Preferences,
		waitlistDomain.Status(m.Status),
		m.ConvertedReservationID,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainEntries(models []WaitlistModel) []*waitlistDomain.Entry {
	entries := make([]*waitlistDomain.Entry, len(models))
	for i, m := range models {
		entries[i] = toDomainEntry(&m)
	}
	return entries
}

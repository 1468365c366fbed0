package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	stateDomain "github.com/lidosuite/service-reservation/internal/domain/state"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// StateModel is the GORM model for the reservation_states config table.
type StateModel struct {
	Code            string `gorm:"primaryKey;size:40"`
	DisplayPriority int    `gorm:"not null;default:0"`
	Releasing       bool   `gorm:"column:is_availability_releasing;not null;default:false"`
	CreatesIncident bool   `gorm:"not null;default:false"`
	System          bool   `gorm:"column:is_system;not null;default:false"`
	Default         bool   `gorm:"column:is_default;not null;default:false"`
}

// TableName returns the table name for the GORM model.
func (StateModel) TableName() string {
	return "reservation_states"
}

// GormStateRepository is the GORM-based implementation of state.Repository.
type GormStateRepository struct {
	db *gorm.DB
}

// NewGormStateRepository creates a new GormStateRepository.
func NewGormStateRepository(db *gorm.DB) *GormStateRepository {
	return &GormStateRepository{db: db}
}

// ListAll returns every configured state ordered by display priority.
func (r *GormStateRepository) ListAll(ctx context.Context) ([]stateDomain.State, error) {
	var models []StateModel
	if err := dbFrom(ctx, r.db).Order("display_priority ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	states := make([]stateDomain.State, len(models))
	for i, m := range models {
		states[i] = toDomainState(m)
	}
	return states, nil
}

// Registry loads all states into a lookup registry.
func (r *GormStateRepository) Registry(ctx context.Context) (*stateDomain.Registry, error) {
	states, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return stateDomain.NewRegistry(states), nil
}

// Save inserts or updates a configured state.
func (r *GormStateRepository) Save(ctx context.Context, s stateDomain.State) error {
	model := toStateModel(s)
	if err := dbFrom(ctx, r.db).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to save state %s: %w", s.Code, err)
	}
	return nil
}

// Delete removes a non-system state by code.
func (r *GormStateRepository) Delete(ctx context.Context, code string) error {
	var model StateModel
	db := dbFrom(ctx, r.db)
	if err := db.Where("code = ?", code).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.NewNotFoundError("ReservationState", code)
		}
		return fmt.Errorf("failed to load state %s: %w", code, err)
	}
	if model.System {
		return domain.NewForbiddenError("system states cannot be deleted")
	}
	return db.Delete(&model).Error
}

// EnsureSeeded inserts the canonical states if the table is empty.
func (r *GormStateRepository) EnsureSeeded(ctx context.Context) error {
	db := dbFrom(ctx, r.db)
	var count int64
	if err := db.Model(&StateModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count states: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, s := range stateDomain.Seed() {
		model := toStateModel(s)
		if err := db.Create(&model).Error; err != nil {
			return fmt.Errorf("failed to seed state %s: %w", s.Code, err)
		}
	}
	return nil
}

func toStateModel(s stateDomain.State) StateModel {
	return StateModel{
		Code:            s.Code,
		DisplayPriority: s.DisplayPriority,
		Releasing:       s.Releasing,
		CreatesIncident: s.CreatesIncident,
		System:          s.System,
		Default:         s.Default,
	}
}

func toDomainState(m StateModel) stateDomain.State {
	return stateDomain.State{
		Code:            m.Code,
		DisplayPriority: m.DisplayPriority,
		Releasing:       m.Releasing,
		CreatesIncident: m.CreatesIncident,
		System:          m.System,
		Default:         m.Default,
	}
}

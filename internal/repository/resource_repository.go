package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// ResourceModel is the GORM model for the furniture table.
type ResourceModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number    string     `gorm:"not null;size:20;index:idx_furniture_zone_number"`
	ZoneID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_furniture_zone_number"`
	TypeCode  string     `gorm:"not null;size:20"`
	Capacity  int        `gorm:"not null;default:0"`
	Active    bool       `gorm:"not null;default:true"`
	Row       int        `gorm:"column:layout_row;not null;default:0"`
	Col       int        `gorm:"column:layout_col;not null;default:0"`
	Temporary bool       `gorm:"column:is_temporary;not null;default:false"`
	ValidFrom *time.Time `gorm:"type:date"`
	ValidTo   *time.Time `gorm:"type:date"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ResourceModel) TableName() string {
	return "furniture"
}

// ZoneModel is the GORM model for the zones table.
type ZoneModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"not null;size:100;uniqueIndex"`
}

// TableName returns the table name for the GORM model.
func (ZoneModel) TableName() string {
	return "zones"
}

// BlockModel is the GORM model for the furniture_blocks table.
type BlockModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ResourceID uuid.UUID `gorm:"type:uuid;not null;index"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	BlockType  string    `gorm:"not null;size:20"`
	Reason     string    `gorm:"size:500"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BlockModel) TableName() string {
	return "furniture_blocks"
}

// PositionOverrideModel is the GORM model for per-date map positions.
type PositionOverrideModel struct {
	ResourceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date       time.Time `gorm:"type:date;primaryKey"`
	X          float64   `gorm:"not null"`
	Y          float64   `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PositionOverrideModel) TableName() string {
	return "furniture_position_overrides"
}

// GormResourceRepository is the GORM-based implementation of the furniture
// registry's resource.Repository.
type GormResourceRepository struct {
	db *gorm.DB
}

// NewGormResourceRepository creates a new GormResourceRepository.
func NewGormResourceRepository(db *gorm.DB) *GormResourceRepository {
	return &GormResourceRepository{db: db}
}

// FindByID retrieves one furniture item.
func (r *GormResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*resourceDomain.Resource, error) {
	var model ResourceModel
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Furniture", id.String())
		}
		return nil, fmt.Errorf("failed to find furniture by ID: %w", err)
	}
	return toDomainResource(&model), nil
}

// FindByIDs retrieves several furniture items at once.
func (r *GormResourceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*resourceDomain.Resource, error) {
	var models []ResourceModel
	if err := dbFrom(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find furniture by IDs: %w", err)
	}
	found := make(map[uuid.UUID]bool, len(models))
	resources := make([]*resourceDomain.Resource, len(models))
	for i, m := range models {
		resources[i] = toDomainResource(&m)
		found[m.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, domain.NewNotFoundError("Furniture", id.String())
		}
	}
	return resources, nil
}

// ListByZone retrieves every furniture item in a zone.
func (r *GormResourceRepository) ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*resourceDomain.Resource, error) {
	var models []ResourceModel
	if err := dbFrom(ctx, r.db).
		Where("zone_id = ?", zoneID).
		Order("layout_row ASC, layout_col ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list zone furniture: %w", err)
	}
	resources := make([]*resourceDomain.Resource, len(models))
	for i, m := range models {
		resources[i] = toDomainResource(&m)
	}
	return resources, nil
}

// Save inserts a new furniture item.
func (r *GormResourceRepository) Save(ctx context.Context, res *resourceDomain.Resource) error {
	model := toResourceModel(res)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save furniture: %w", err)
	}
	return nil
}

// Update persists changes to a furniture item.
func (r *GormResourceRepository) Update(ctx context.Context, res *resourceDomain.Resource) error {
	model := toResourceModel(res)
	result := dbFrom(ctx, r.db).Model(&ResourceModel{}).Where("id = ?", model.ID).Updates(map[string]interface{}{
		"number":       model.Number,
		"zone_id":      model.ZoneID,
		"type_code":    model.TypeCode,
		"capacity":     model.Capacity,
		"active":       model.Active,
		"layout_row":   model.Row,
		"layout_col":   model.Col,
		"is_temporary": model.Temporary,
		"valid_from":   model.ValidFrom,
		"valid_to":     model.ValidTo,
		"updated_at":   model.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update furniture: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Furniture", model.ID.String())
	}
	return nil
}

// Deactivate marks furniture inactive and removes its position overrides.
func (r *GormResourceRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&ResourceModel{}).Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate furniture: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Furniture", id.String())
	}
	if err := db.Where("resource_id = ?", id).Delete(&PositionOverrideModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete position overrides: %w", err)
	}
	return nil
}

// SaveZone inserts a zone.
func (r *GormResourceRepository) SaveZone(ctx context.Context, z *resourceDomain.Zone) error {
	model := ZoneModel{ID: z.ID, Name: z.Name}
	if err := dbFrom(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save zone: %w", err)
	}
	return nil
}

// ListZones retrieves all zones.
func (r *GormResourceRepository) ListZones(ctx context.Context) ([]*resourceDomain.Zone, error) {
	var models []ZoneModel
	if err := dbFrom(ctx, r.db).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	zones := make([]*resourceDomain.Zone, len(models))
	for i, m := range models {
		zones[i] = &resourceDomain.Zone{ID: m.ID, Name: m.Name}
	}
	return zones, nil
}

// SaveBlock inserts a furniture block.
func (r *GormResourceRepository) SaveBlock(ctx context.Context, b *resourceDomain.Block) error {
	model := toBlockModel(b)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

// FindBlock retrieves one block.
func (r *GormResourceRepository) FindBlock(ctx context.Context, id uuid.UUID) (*resourceDomain.Block, error) {
	var model BlockModel
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("FurnitureBlock", id.String())
		}
		return nil, fmt.Errorf("failed to find block: %w", err)
	}
	return toDomainBlock(&model), nil
}

// BlocksCovering returns blocks touching any of the given dates for the
// given resources.
func (r *GormResourceRepository) BlocksCovering(ctx context.Context, resourceIDs []uuid.UUID, dates []time.Time) ([]*resourceDomain.Block, error) {
	if len(resourceIDs) == 0 || len(dates) == 0 {
		return nil, nil
	}
	min, max := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}

	var models []BlockModel
	if err := dbFrom(ctx, r.db).
		Where("resource_id IN ? AND start_date <= ? AND end_date >= ?", resourceIDs, max, min).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find covering blocks: %w", err)
	}
	blocks := make([]*resourceDomain.Block, len(models))
	for i, m := range models {
		blocks[i] = toDomainBlock(&m)
	}
	return blocks, nil
}

// ReplaceBlock atomically deletes a block and inserts its replacements.
func (r *GormResourceRepository) ReplaceBlock(ctx context.Context, deleteID uuid.UUID, replacements []*resourceDomain.Block) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", deleteID).Delete(&BlockModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete block: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("FurnitureBlock", deleteID.String())
		}
		for _, b := range replacements {
			if err := tx.Create(toBlockModel(b)).Error; err != nil {
				return fmt.Errorf("failed to insert replacement block: %w", err)
			}
		}
		return nil
	})
}

// UpsertPositionOverride sets the per-date position of one item.
func (r *GormResourceRepository) UpsertPositionOverride(ctx context.Context, o *resourceDomain.PositionOverride) error {
	model := PositionOverrideModel{
		ResourceID: o.ResourceID,
		Date:       resourceDomain.DateOnly(o.Date),
		X:          o.X,
		Y:          o.Y,
	}
	if err := dbFrom(ctx, r.db).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to upsert position override: %w", err)
	}
	return nil
}

// DeletePositionOverrides removes overrides for a resource. When a keep
// window is given, only overrides outside it are removed.
func (r *GormResourceRepository) DeletePositionOverrides(ctx context.Context, resourceID uuid.UUID, keepFrom, keepTo *time.Time) error {
	db := dbFrom(ctx, r.db).Where("resource_id = ?", resourceID)
	if keepFrom != nil && keepTo != nil {
		db = db.Where("date < ? OR date > ?", *keepFrom, *keepTo)
	}
	if err := db.Delete(&PositionOverrideModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete position overrides: %w", err)
	}
	return nil
}

// PositionOverridesOn returns all overrides for one date.
func (r *GormResourceRepository) PositionOverridesOn(ctx context.Context, date time.Time) ([]*resourceDomain.PositionOverride, error) {
	var models []PositionOverrideModel
	if err := dbFrom(ctx, r.db).Where("date = ?", resourceDomain.DateOnly(date)).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list position overrides: %w", err)
	}
	overrides := make([]*resourceDomain.PositionOverride, len(models))
	for i, m := range models {
		overrides[i] = &resourceDomain.PositionOverride{
			ResourceID: m.ResourceID,
			Date:       m.Date,
			X:          m.X,
			Y:          m.Y,
		}
	}
	return overrides, nil
}

// --- Conversion helpers ---

func toResourceModel(res *resourceDomain.Resource) *ResourceModel {
	return &ResourceModel{
		ID:        res.ID,
		Number:    res.Number,
		ZoneID:    res.ZoneID,
		TypeCode:  string(res.TypeCode),
		Capacity:  res.Capacity,
		Active:    res.Active,
		Row:       res.Row,
		Col:       res.Col,
		Temporary: res.Temporary,
		ValidFrom: res.ValidFrom,
		ValidTo:   res.ValidTo,
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}

func toDomainResource(m *ResourceModel) *resourceDomain.Resource {
	return &resourceDomain.Resource{
		ID:        m.ID,
		Number:    m.Number,
		ZoneID:    m.ZoneID,
		TypeCode:  resourceDomain.TypeCode(m.TypeCode),
		Capacity:  m.Capacity,
		Active:    m.Active,
		Row:       m.Row,
		Col:       m.Col,
		Temporary: m.Temporary,
		ValidFrom: m.ValidFrom,
		ValidTo:   m.ValidTo,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toBlockModel(b *resourceDomain.Block) *BlockModel {
	return &BlockModel{
		ID:         b.ID,
		ResourceID: b.ResourceID,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		BlockType:  string(b.Type),
		Reason:     b.Reason,
		CreatedAt:  b.CreatedAt,
	}
}

func toDomainBlock(m *BlockModel) *resourceDomain.Block {
	return &resourceDomain.Block{
		ID:         m.ID,
		ResourceID: m.ResourceID,
		StartDate:  resourceDomain.DateOnly(m.StartDate),
		EndDate:    resourceDomain.DateOnly(m.EndDate),
		Type:       resourceDomain.BlockType(m.BlockType),
		Reason:     m.Reason,
		CreatedAt:  m.CreatedAt,
	}
}

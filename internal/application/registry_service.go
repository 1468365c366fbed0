package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	reservationDomain "github.com/lidosuite/service-reservation/internal/domain/reservation"
	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	stateDomain "github.com/lidosuite/service-reservation/internal/domain/state"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// CreateResourceRequest registers one furniture item.
type CreateResourceRequest struct {
	Number    string     `json:"number" binding:"required"`
	ZoneID    uuid.UUID  `json:"zone_id" binding:"required"`
	TypeCode  string     `json:"type_code" binding:"required"`
	Capacity  int        `json:"capacity"`
	Row       int        `json:"row"`
	Col       int        `json:"col"`
	ValidFrom *time.Time `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to"`
}

// UpdateResourceRequest changes mutable furniture attributes. Nil fields
// are left untouched.
type UpdateResourceRequest struct {
	Number    *string    `json:"number"`
	Capacity  *int       `json:"capacity"`
	Row       *int       `json:"row"`
	Col       *int       `json:"col"`
	Active    *bool      `json:"active"`
	ValidFrom *time.Time `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to"`
}

// CreateBlockRequest takes furniture out of the pool for a date range.
type CreateBlockRequest struct {
	ResourceID uuid.UUID `json:"resource_id" binding:"required"`
	StartDate  time.Time `json:"start_date" binding:"required"`
	EndDate    time.Time `json:"end_date" binding:"required"`
	Type       string    `json:"block_type" binding:"required"`
	Reason     string    `json:"reason"`
}

// MapItem is one furniture item on the rendered beach map, with any
// per-date position override already applied.
type MapItem struct {
	Resource *resourceDomain.Resource `json:"resource"`
	X        float64                  `json:"x"`
	Y        float64                  `json:"y"`
	Override bool                     `json:"override"`
}

// RegistryService administers the furniture registry: zones, items,
// blocks, and per-date map positions.
type RegistryService struct {
	repo            resourceDomain.Repository
	reservationRepo reservationDomain.Repository
	stateRepo       stateDomain.Repository
	logger          *zap.Logger
}

// NewRegistryService creates a new RegistryService.
func NewRegistryService(
	repo resourceDomain.Repository,
	reservationRepo reservationDomain.Repository,
	stateRepo stateDomain.Repository,
	logger *zap.Logger,
) *RegistryService {
	return &RegistryService{
		repo:            repo,
		reservationRepo: reservationRepo,
		stateRepo:       stateRepo,
		logger:          logger,
	}
}

// CreateZone adds a named beach zone.
func (s *RegistryService) CreateZone(ctx context.Context, name string) (*resourceDomain.Zone, error) {
	if name == "" {
		return nil, domain.NewValidationError("zone name is required")
	}
	z := &resourceDomain.Zone{ID: uuid.New(), Name: name}
	if err := s.repo.SaveZone(ctx, z); err != nil {
		return nil, err
	}
	return z, nil
}

// ListZones returns every zone.
func (s *RegistryService) ListZones(ctx context.Context) ([]*resourceDomain.Zone, error) {
	return s.repo.ListZones(ctx)
}

// CreateResource registers one furniture item. A validity window makes the
// item temporary, present only between the two dates.
func (s *RegistryService) CreateResource(ctx context.Context, req CreateResourceRequest) (*resourceDomain.Resource, error) {
	r, err := resourceDomain.NewResource(req.Number, req.ZoneID, resourceDomain.TypeCode(req.TypeCode), req.Capacity, req.Row, req.Col)
	if err != nil {
		return nil, err
	}
	if req.ValidFrom != nil && req.ValidTo != nil {
		if err := r.SetTemporaryWindow(*req.ValidFrom, *req.ValidTo); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetResource returns one furniture item.
func (s *RegistryService) GetResource(ctx context.Context, id uuid.UUID) (*resourceDomain.Resource, error) {
	return s.repo.FindByID(ctx, id)
}

// ListByZone returns the furniture of one zone.
func (s *RegistryService) ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*resourceDomain.Resource, error) {
	return s.repo.ListByZone(ctx, zoneID)
}

// UpdateResource applies partial changes to a furniture item. Shrinking a
// temporary item's validity window drops position overrides that fall
// outside the new window.
func (s *RegistryService) UpdateResource(ctx context.Context, id uuid.UUID, req UpdateResourceRequest) (*resourceDomain.Resource, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Number != nil {
		if *req.Number == "" {
			return nil, domain.NewValidationError("furniture number is required")
		}
		r.Number = *req.Number
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return nil, domain.NewValidationError("capacity must not be negative")
		}
		r.Capacity = *req.Capacity
	}
	if req.Row != nil {
		r.Row = *req.Row
	}
	if req.Col != nil {
		r.Col = *req.Col
	}
	if req.Active != nil {
		r.Active = *req.Active
	}
	windowChanged := false
	if req.ValidFrom != nil && req.ValidTo != nil {
		if err := r.SetTemporaryWindow(*req.ValidFrom, *req.ValidTo); err != nil {
			return nil, err
		}
		windowChanged = true
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	if windowChanged {
		if err := s.repo.DeletePositionOverrides(ctx, r.ID, r.ValidFrom, r.ValidTo); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DeactivateResource retires a furniture item. Historical assignments
// survive; future holding assignments are only warned about, front-desk
// staff relocates those guests by hand.
func (s *RegistryService) DeactivateResource(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	today := resourceDomain.DateOnly(time.Now().UTC())
	holders, err := s.reservationRepo.HoldersFor(ctx, []uuid.UUID{id}, nil)
	if err != nil {
		return err
	}
	registry, err := s.stateRepo.Registry(ctx)
	if err != nil {
		return err
	}
	for _, h := range holders {
		if !h.Date.Before(today) && registry.Holds(h.States) {
			s.logger.Warn("deactivating furniture with future assignments",
				zap.String("resource_id", id.String()),
				zap.Time("date", h.Date),
				zap.String("reservation_id", h.ReservationID.String()),
			)
			break
		}
	}
	return s.repo.Deactivate(ctx, id)
}

// CreateBlock takes furniture out of the pool for an inclusive date range.
func (s *RegistryService) CreateBlock(ctx context.Context, req CreateBlockRequest) (*resourceDomain.Block, error) {
	if _, err := s.repo.FindByID(ctx, req.ResourceID); err != nil {
		return nil, err
	}
	b, err := resourceDomain.NewBlock(req.ResourceID, req.StartDate, req.EndDate, resourceDomain.BlockType(req.Type), req.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveBlock(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Unblock removes [from, to] from an existing block. The block is deleted
// and replaced by zero, one, or two narrower blocks depending on where the
// range falls, all in one step.
func (s *RegistryService) Unblock(ctx context.Context, blockID uuid.UUID, from, to time.Time) ([]*resourceDomain.Block, error) {
	b, err := s.repo.FindBlock(ctx, blockID)
	if err != nil {
		return nil, err
	}
	replacements, err := b.Unblock(from, to)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceBlock(ctx, b.ID, replacements); err != nil {
		return nil, err
	}
	return replacements, nil
}

// SetPositionOverride moves one furniture item on the map for a single
// date.
func (s *RegistryService) SetPositionOverride(ctx context.Context, resourceID uuid.UUID, date time.Time, x, y float64) error {
	if _, err := s.repo.FindByID(ctx, resourceID); err != nil {
		return err
	}
	return s.repo.UpsertPositionOverride(ctx, &resourceDomain.PositionOverride{
		ResourceID: resourceID,
		Date:       resourceDomain.DateOnly(date),
		X:          x,
		Y:          y,
	})
}

// ZoneMapOn renders one zone's furniture for a date: only items
// allocatable (or at least present) that day, at their effective position
// with any override applied.
func (s *RegistryService) ZoneMapOn(ctx context.Context, zoneID uuid.UUID, date time.Time) ([]MapItem, error) {
	day := resourceDomain.DateOnly(date)
	items, err := s.repo.ListByZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	overrides, err := s.repo.PositionOverridesOn(ctx, day)
	if err != nil {
		return nil, err
	}
	byResource := make(map[uuid.UUID]*resourceDomain.PositionOverride, len(overrides))
	for _, o := range overrides {
		byResource[o.ResourceID] = o
	}

	out := make([]MapItem, 0, len(items))
	for _, r := range items {
		if r.Temporary && !r.AllocatableOn(day) && r.Capacity > 0 {
			continue
		}
		item := MapItem{Resource: r, X: float64(r.Col), Y: float64(r.Row)}
		if o, ok := byResource[r.ID]; ok {
			item.X, item.Y, item.Override = o.X, o.Y, true
		}
		out = append(out, item)
	}
	return out, nil
}

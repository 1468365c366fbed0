package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	reservationDomain "github.com/lidosuite/service-reservation/internal/domain/reservation"
	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	stateDomain "github.com/lidosuite/service-reservation/internal/domain/state"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// Unavailability describes one (resource, date) pair that cannot be booked
// and why.
type Unavailability struct {
	ResourceID               uuid.UUID  `json:"resource_id"`
	Date                     time.Time  `json:"date"`
	ConflictingReservationID *uuid.UUID `json:"conflicting_reservation_id,omitempty"`
	ConflictingCustomerName  string     `json:"conflicting_customer_name,omitempty"`
	Blocked                  bool       `json:"blocked"`
}

// AvailabilityResult is the outcome of a bulk availability check.
type AvailabilityResult struct {
	AllAvailable bool             `json:"all_available"`
	Unavailable  []Unavailability `json:"unavailable,omitempty"`
}

// ConflictPairs converts the unavailable pairs into the structured error
// payload.
func (r *AvailabilityResult) ConflictPairs() []domain.ConflictPair {
	pairs := make([]domain.ConflictPair, len(r.Unavailable))
	for i, u := range r.Unavailable {
		p := domain.ConflictPair{
			ResourceID:   u.ResourceID.String(),
			Date:         u.Date,
			CustomerName: u.ConflictingCustomerName,
			Blocked:      u.Blocked,
		}
		if u.ConflictingReservationID != nil {
			p.ReservationID = u.ConflictingReservationID.String()
		}
		pairs[i] = p
	}
	return pairs
}

// Occupant is one entry of the per-date occupancy map.
type Occupant struct {
	ResourceID    uuid.UUID `json:"resource_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	States        []string  `json:"states"`
}

// AvailabilityService is the single authority on whether furniture is free.
// It never caches: every answer is computed fresh against current
// assignments, blocks, and state configuration, because staleness here is a
// double booking.
type AvailabilityService struct {
	resourceRepo    resourceDomain.Repository
	reservationRepo reservationDomain.Repository
	stateRepo       stateDomain.Repository
	logger          *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	resourceRepo resourceDomain.Repository,
	reservationRepo reservationDomain.Repository,
	stateRepo stateDomain.Repository,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		resourceRepo:    resourceRepo,
		reservationRepo: reservationRepo,
		stateRepo:       stateRepo,
		logger:          logger,
	}
}

// CheckAvailability reports, for every (resource, date) pair, whether the
// furniture can take a new assignment. A pair is unavailable when a block
// covers the date, the resource itself is not allocatable that day, or a
// reservation other than excludeReservationID holds an assignment there
// with at least one non-releasing state. Pure read, no side effects.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, resourceIDs []uuid.UUID, dates []time.Time, excludeReservationID *uuid.UUID) (*AvailabilityResult, error) {
	if len(resourceIDs) == 0 {
		return nil, domain.NewValidationError("at least one resource is required")
	}
	if len(dates) == 0 {
		return nil, domain.NewValidationError("at least one date is required")
	}

	resources, err := s.resourceRepo.FindByIDs(ctx, resourceIDs)
	if err != nil {
		return nil, err
	}

	days := make([]time.Time, len(dates))
	for i, d := range dates {
		days[i] = resourceDomain.DateOnly(d)
	}

	blocks, err := s.resourceRepo.BlocksCovering(ctx, resourceIDs, days)
	if err != nil {
		return nil, err
	}
	holders, err := s.reservationRepo.HoldersFor(ctx, resourceIDs, days)
	if err != nil {
		return nil, err
	}
	registry, err := s.stateRepo.Registry(ctx)
	if err != nil {
		return nil, err
	}

	type pair struct {
		resource uuid.UUID
		date     time.Time
	}

	unavailable := make(map[pair]Unavailability)

	for _, res := range resources {
		for _, day := range days {
			if !res.AllocatableOn(day) {
				unavailable[pair{res.ID, day}] = Unavailability{ResourceID: res.ID, Date: day, Blocked: true}
			}
		}
	}

	for _, b := range blocks {
		for _, day := range days {
			if b.Covers(day) {
				unavailable[pair{b.ResourceID, day}] = Unavailability{ResourceID: b.ResourceID, Date: day, Blocked: true}
			}
		}
	}

	for _, h := range holders {
		if excludeReservationID != nil && h.ReservationID == *excludeReservationID {
			continue
		}
		if !registry.Holds(h.States) {
			continue
		}
		key := pair{h.ResourceID, h.Date}
		existing, exists := unavailable[key]
		if exists && existing.ConflictingReservationID != nil {
			continue
		}
		rid := h.ReservationID
		unavailable[key] = Unavailability{
			ResourceID:               h.ResourceID,
			Date:                     h.Date,
			ConflictingReservationID: &rid,
			ConflictingCustomerName:  h.CustomerName,
			// A date can be blocked and assigned at once; keep both facts.
			Blocked: exists && existing.Blocked,
		}
	}

	result := &AvailabilityResult{AllAvailable: len(unavailable) == 0}
	for _, res := range resources {
		for _, day := range days {
			if u, ok := unavailable[pair{res.ID, day}]; ok {
				result.Unavailable = append(result.Unavailable, u)
			}
		}
	}
	return result, nil
}

// OccupancyOn builds the resource → holding-reservation map for one date.
// Releasing-only reservations do not appear; their furniture is free.
func (s *AvailabilityService) OccupancyOn(ctx context.Context, date time.Time) (map[uuid.UUID]Occupant, error) {
	holders, err := s.reservationRepo.HoldersFor(ctx, nil, []time.Time{resourceDomain.DateOnly(date)})
	if err != nil {
		return nil, err
	}
	registry, err := s.stateRepo.Registry(ctx)
	if err != nil {
		return nil, err
	}

	occupancy := make(map[uuid.UUID]Occupant)
	for _, h := range holders {
		if !registry.Holds(h.States) {
			continue
		}
		occupancy[h.ResourceID] = Occupant{
			ResourceID:    h.ResourceID,
			ReservationID: h.ReservationID,
			CustomerID:    h.CustomerID,
			CustomerName:  h.CustomerName,
			States:        h.States.Codes(),
		}
	}
	return occupancy, nil
}

// ValidateContiguous rejects multi-furniture selections that do not form
// one connected cluster on the layout grid. Single items are trivially
// contiguous.
func (s *AvailabilityService) ValidateContiguous(resources []*resourceDomain.Resource) error {
	if len(resources) <= 1 {
		return nil
	}

	visited := make(map[uuid.UUID]bool, len(resources))
	queue := []*resourceDomain.Resource{resources[0]}
	visited[resources[0].ID] = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, other := range resources {
			if visited[other.ID] || !current.AdjacentTo(other) {
				continue
			}
			visited[other.ID] = true
			queue = append(queue, other)
		}
	}

	if len(visited) != len(resources) {
		var outliers []string
		for _, r := range resources {
			if !visited[r.ID] {
				outliers = append(outliers, r.Number)
			}
		}
		return domain.NewValidationError(fmt.Sprintf("selected furniture is not contiguous: %v is detached from the cluster", outliers))
	}
	return nil
}

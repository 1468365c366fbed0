package application

import (
	"context"

	stateDomain "github.com/lidosuite/service-reservation/internal/domain/state"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// ConfigureStateRequest inserts or updates one configured state.
type ConfigureStateRequest struct {
	Code            string `json:"code" binding:"required"`
	DisplayPriority int    `json:"display_priority"`
	Releasing       bool   `json:"is_availability_releasing"`
	CreatesIncident bool   `json:"creates_incident"`
	Default         bool   `json:"is_default"`
}

// StateService administers the configurable reservation states. The five
// system states are fixed; installations add their own on top (in_venue,
// day_pass, whatever the property needs).
type StateService struct {
	repo stateDomain.Repository
}

// NewStateService creates a new StateService.
func NewStateService(repo stateDomain.Repository) *StateService {
	return &StateService{repo: repo}
}

// ListStates returns every configured state ordered by display priority.
func (s *StateService) ListStates(ctx context.Context) ([]stateDomain.State, error) {
	return s.repo.ListAll(ctx)
}

// ConfigureState inserts or updates a state. System states keep their
// flags; only display priority may change on them.
func (s *StateService) ConfigureState(ctx context.Context, req ConfigureStateRequest) (*stateDomain.State, error) {
	if req.Code == "" {
		return nil, domain.NewValidationError("state code is required")
	}
	registry, err := s.repo.Registry(ctx)
	if err != nil {
		return nil, err
	}

	st := stateDomain.State{
		Code:            req.Code,
		DisplayPriority: req.DisplayPriority,
		Releasing:       req.Releasing,
		CreatesIncident: req.CreatesIncident,
		Default:         req.Default,
	}
	if existing, ok := registry.Lookup(req.Code); ok && existing.System {
		st.Releasing = existing.Releasing
		st.CreatesIncident = existing.CreatesIncident
		st.System = true
		st.Default = existing.Default
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	return &st, nil
}

// DeleteState removes a non-system state. Reservations still carrying the
// code keep holding their furniture; unknown codes never release.
func (s *StateService) DeleteState(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, code)
}

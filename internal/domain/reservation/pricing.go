package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/domain/resource"
)

// Quote is the opaque pricing result. This core stores the numbers and
// never recomputes them.
type Quote struct {
	PriceCents              int64 `json:"price_cents"`
	IsPackage               bool  `json:"is_package"`
	MinimumConsumptionCents int64 `json:"minimum_consumption_cents"`
}

// PricingService is the external pricing collaborator.
type PricingService interface {
	// ComputePrice quotes the selected furniture for one day.
	ComputePrice(ctx context.Context, customerID uuid.UUID, resources []*resource.Resource, date time.Time, numPeople int, packageID *uuid.UUID) (Quote, error)
}

// StandardPricingService is the built-in day-rate table used when no
// external pricing service is wired.
type StandardPricingService struct{}

// NewStandardPricingService creates the built-in pricing service.
func NewStandardPricingService() *StandardPricingService {
	return &StandardPricingService{}
}

// ComputePrice sums flat per-type day rates. Cabanas carry a minimum
// consumption.
func (s *StandardPricingService) ComputePrice(ctx context.Context, customerID uuid.UUID, resources []*resource.Resource, date time.Time, numPeople int, packageID *uuid.UUID) (Quote, error) {
	var q Quote
	for _, r := range resources {
		switch r.TypeCode {
		case resource.TypeCabana:
			q.PriceCents += 15000
			q.MinimumConsumptionCents += 10000
		case resource.TypeLounger:
			q.PriceCents += 2500
		case resource.TypeParasol:
			q.PriceCents += 1000
		}
	}
	q.IsPackage = packageID != nil
	return q, nil
}

package resource

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for the furniture registry.
type Repository interface {
	// FindByID retrieves one furniture item.
	FindByID(ctx context.Context, id uuid.UUID) (*Resource, error)

	// FindByIDs retrieves several furniture items at once. Missing IDs are
	// reported as a NotFound error.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Resource, error)

	// ListByZone retrieves every furniture item in a zone.
	ListByZone(ctx context.Context, zoneID uuid.UUID) ([]*Resource, error)

	// Save inserts a new furniture item.
	Save(ctx context.Context, r *Resource) error

	// Update persists changes to a furniture item.
	Update(ctx context.Context, r *Resource) error

	// Deactivate marks furniture inactive and removes its position
	// overrides; historical assignments are untouched.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// SaveZone inserts a zone.
	SaveZone(ctx context.Context, z *Zone) error

	// ListZones retrieves all zones.
	ListZones(ctx context.Context) ([]*Zone, error)

	// SaveBlock inserts a furniture block.
	SaveBlock(ctx context.Context, b *Block) error

	// FindBlock retrieves one block.
	FindBlock(ctx context.Context, id uuid.UUID) (*Block, error)

	// BlocksCovering returns blocks touching any of the given dates for the
	// given resources.
	BlocksCovering(ctx context.Context, resourceIDs []uuid.UUID, dates []time.Time) ([]*Block, error)

	// ReplaceBlock atomically deletes a block and inserts its replacements
	// from a partial unblock.
	ReplaceBlock(ctx context.Context, deleteID uuid.UUID, replacements []*Block) error

	// UpsertPositionOverride sets the per-date position of one item.
	UpsertPositionOverride(ctx context.Context, o *PositionOverride) error

	// DeletePositionOverrides removes overrides for a resource, optionally
	// restricted to dates outside [from, to] when a validity window shrinks.
	DeletePositionOverrides(ctx context.Context, resourceID uuid.UUID, keepFrom, keepTo *time.Time) error

	// PositionOverridesOn returns all overrides for one date.
	PositionOverridesOn(ctx context.Context, date time.Time) ([]*PositionOverride, error)
}

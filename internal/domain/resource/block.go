package resource

import (
	"time"

	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// BlockType classifies why furniture is held out of the pool.
type BlockType string

const (
	BlockMaintenance BlockType = "maintenance"
	BlockVIPHold     BlockType = "vip_hold"
	BlockEvent       BlockType = "event"
	BlockOther       BlockType = "other"
)

// IsValid returns true if the block type is recognized.
func (b BlockType) IsValid() bool {
	switch b {
	case BlockMaintenance, BlockVIPHold, BlockEvent, BlockOther:
		return true
	}
	return false
}

// Block takes a resource out of the pool for an inclusive date range,
// regardless of reservation state.
type Block struct {
	ID         uuid.UUID `json:"id"`
	ResourceID uuid.UUID `json:"resource_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Type       BlockType `json:"block_type"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewBlock validates and creates a furniture block.
func NewBlock(resourceID uuid.UUID, start, end time.Time, blockType BlockType, reason string) (*Block, error) {
	if resourceID == uuid.Nil {
		return nil, domain.NewValidationError("resource ID is required")
	}
	start, end = DateOnly(start), DateOnly(end)
	if end.Before(start) {
		return nil, domain.NewValidationError("block end date precedes start date")
	}
	if !blockType.IsValid() {
		return nil, domain.NewValidationError("unknown block type: " + string(blockType))
	}
	return &Block{
		ID:         uuid.New(),
		ResourceID: resourceID,
		StartDate:  start,
		EndDate:    end,
		Type:       blockType,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Covers reports whether the block makes the resource unavailable on date.
func (b *Block) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(b.StartDate) && !d.After(b.EndDate)
}

// Unblock removes [from, to] from the block. The result is zero, one, or
// two replacement blocks: zero when the whole range is unblocked, one when
// the range clips an edge, two when it is strictly internal and splits the
// block. Ranges outside the block are a validation error.
func (b *Block) Unblock(from, to time.Time) ([]*Block, error) {
	from, to = DateOnly(from), DateOnly(to)
	if to.Before(from) {
		return nil, domain.NewValidationError("unblock end date precedes start date")
	}
	if to.Before(b.StartDate) || from.After(b.EndDate) {
		return nil, domain.NewValidationError("unblock range does not overlap block")
	}

	var out []*Block
	if from.After(b.StartDate) {
		left := *b
		left.ID = uuid.New()
		left.EndDate = from.AddDate(0, 0, -1)
		out = append(out, &left)
	}
	if to.Before(b.EndDate) {
		right := *b
		right.ID = uuid.New()
		right.StartDate = to.AddDate(0, 0, 1)
		out = append(out, &right)
	}
	return out, nil
}

// PositionOverride repositions one furniture item on the map for a single
// date. Cosmetic only; deleted whenever the resource is removed.
type PositionOverride struct {
	ResourceID uuid.UUID `json:"resource_id"`
	Date       time.Time `json:"date"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
}

package resource

import (
	"time"

	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// TypeCode identifies a furniture type.
type TypeCode string

const (
	TypeLounger TypeCode = "lounger"
	TypeCabana  TypeCode = "cabana"
	TypeParasol TypeCode = "parasol"
	TypeDeco    TypeCode = "deco"
)

// IsValid returns true if the type code is recognized.
func (t TypeCode) IsValid() bool {
	switch t {
	case TypeLounger, TypeCabana, TypeParasol, TypeDeco:
		return true
	}
	return false
}

// Zone groups furniture into a named area of the beach map.
type Zone struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Resource is one allocatable furniture item. Number is the painted display
// code and is only unique within a zone; ID is the identity.
type Resource struct {
	ID       uuid.UUID `json:"id"`
	Number   string    `json:"number"`
	ZoneID   uuid.UUID `json:"zone_id"`
	TypeCode TypeCode  `json:"type_code"`
	// Capacity 0 marks purely decorative items that can never be assigned.
	Capacity int  `json:"capacity"`
	Active   bool `json:"active"`

	// Row/Col is the layout grid position used for contiguity checks.
	Row int `json:"row"`
	Col int `json:"col"`

	// Temporary resources exist only inside their validity window.
	Temporary bool       `json:"is_temporary"`
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewResource validates and creates a furniture item.
func NewResource(number string, zoneID uuid.UUID, typeCode TypeCode, capacity, row, col int) (*Resource, error) {
	if number == "" {
		return nil, domain.NewValidationError("furniture number is required")
	}
	if zoneID == uuid.Nil {
		return nil, domain.NewValidationError("zone ID is required")
	}
	if !typeCode.IsValid() {
		return nil, domain.NewValidationError("unknown furniture type: " + string(typeCode))
	}
	if capacity < 0 {
		return nil, domain.NewValidationError("capacity cannot be negative")
	}

	now := time.Now().UTC()
	return &Resource{
		ID:        uuid.New(),
		Number:    number,
		ZoneID:    zoneID,
		TypeCode:  typeCode,
		Capacity:  capacity,
		Active:    true,
		Row:       row,
		Col:       col,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetTemporaryWindow marks the resource as seasonal, valid only in [from, to].
func (r *Resource) SetTemporaryWindow(from, to time.Time) error {
	if to.Before(from) {
		return domain.NewValidationError("temporary window end precedes start")
	}
	r.Temporary = true
	r.ValidFrom = &from
	r.ValidTo = &to
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// AllocatableOn reports whether the resource may receive new assignments on
// date. Inactive, decorative, and out-of-window temporary resources never
// can; historical assignments referencing them stay valid for reporting.
func (r *Resource) AllocatableOn(date time.Time) bool {
	if !r.Active || r.Capacity == 0 {
		return false
	}
	if r.Temporary {
		if r.ValidFrom == nil || r.ValidTo == nil {
			return false
		}
		d := DateOnly(date)
		if d.Before(DateOnly(*r.ValidFrom)) || d.After(DateOnly(*r.ValidTo)) {
			return false
		}
	}
	return true
}

// AdjacentTo reports whether other sits next to r on the layout grid
// (Chebyshev distance at most one, diagonals included).
func (r *Resource) AdjacentTo(other *Resource) bool {
	dr := r.Row - other.Row
	if dr < 0 {
		dr = -dr
	}
	dc := r.Col - other.Col
	if dc < 0 {
		dc = -dc
	}
	return dr <= 1 && dc <= 1 && !(dr == 0 && dc == 0)
}

// DateOnly truncates t to its calendar day in UTC. All availability math
// operates on calendar dates, never instants.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

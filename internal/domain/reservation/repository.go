package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/domain/state"
)

// Holder is the read model the availability engine works on: one
// assignment joined with its reservation's current states and customer.
type Holder struct {
	ResourceID    uuid.UUID
	Date          time.Time
	ReservationID uuid.UUID
	CustomerID    uuid.UUID
	CustomerName  string
	States        state.Set
}

// Repository defines the persistence contract for reservations and their
// furniture assignments. All methods participate in an ambient transaction
// when one is carried by ctx.
type Repository interface {
	// FindByID retrieves one reservation.
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindByTicket retrieves a reservation by its printed ticket number.
	FindByTicket(ctx context.Context, ticket string) (*Reservation, error)

	// FindGroup retrieves a multi-day group: the parent and all children,
	// ordered by date.
	FindGroup(ctx context.Context, parentID uuid.UUID) ([]*Reservation, error)

	// FindByCustomer retrieves a customer's reservations, newest first.
	FindByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*Reservation, int64, error)

	// ListByDate retrieves every reservation for one calendar day.
	ListByDate(ctx context.Context, date time.Time) ([]*Reservation, error)

	// Save inserts a reservation together with its furniture assignments.
	Save(ctx context.Context, r *Reservation, resourceIDs []uuid.UUID) error

	// Update persists changes to an existing reservation.
	Update(ctx context.Context, r *Reservation) error

	// CountTicketsIssued returns how many distinct tickets were already
	// issued for the given day, matched by the ticket's date prefix.
	CountTicketsIssued(ctx context.Context, date time.Time) (int, error)

	// HoldersFor returns every assignment touching the given resources and
	// dates, joined with states and customer name. Pass nil resourceIDs for
	// all resources.
	HoldersFor(ctx context.Context, resourceIDs []uuid.UUID, dates []time.Time) ([]Holder, error)

	// AssignmentsOf returns the assignments of one reservation.
	AssignmentsOf(ctx context.Context, reservationID uuid.UUID) ([]Assignment, error)

	// ReplaceAssignments swaps a reservation's assignments on one date.
	ReplaceAssignments(ctx context.Context, reservationID uuid.UUID, oldDate, newDate time.Time, resourceIDs []uuid.UUID) error

	// UpdateRoomFromDate rewrites room metadata on every reservation of the
	// customer dated on or after from. Returns the number touched.
	UpdateRoomFromDate(ctx context.Context, customerID uuid.UUID, from time.Time, newRoom string) (int64, error)

	// SaveDailyState upserts a per-day state override, keyed by the group
	// root's ID and the overridden day.
	SaveDailyState(ctx context.Context, ds DailyState) error

	// DailyStatesOf returns the per-day overrides of one group, keyed by
	// the group root's ID.
	DailyStatesOf(ctx context.Context, reservationID uuid.UUID) ([]DailyState, error)
}

package reservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/domain/resource"
	"github.com/lidosuite/service-reservation/internal/domain/state"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// TimeSlot is the part of the day a reservation occupies. Furniture is
// allocated per whole date regardless of slot; the slot only drives the
// front-desk schedule view.
type TimeSlot string

const (
	SlotFullDay   TimeSlot = "full_day"
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

// IsValid returns true if the time slot is recognized.
func (t TimeSlot) IsValid() bool {
	switch t {
	case SlotFullDay, SlotMorning, SlotAfternoon, SlotEvening:
		return true
	}
	return false
}

// Reservation is the aggregate root for one reserved day. Multi-day
// bookings are groups of reservations linked through parentID.
type Reservation struct {
	id           uuid.UUID
	customerID   uuid.UUID
	date         time.Time
	startDate    time.Time
	endDate      time.Time
	numPeople    int
	states       state.Set
	ticketNumber string
	parentID     *uuid.UUID
	timeSlot     TimeSlot
	roomNumber   string
	notes        string

	priceCents      int64
	finalPriceCents int64
	paid            bool

	furnitureLocked bool

	createdAt time.Time
	updatedAt time.Time
}

// NewReservation creates a reservation for one calendar day carrying the
// default state. The ticket number is assigned by the lifecycle manager at
// persist time, inside the same transaction as the furniture assignment.
func NewReservation(customerID uuid.UUID, date time.Time, numPeople int, slot TimeSlot, defaultState, roomNumber, notes string) (*Reservation, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if date.IsZero() {
		return nil, domain.NewValidationError("reservation date is required")
	}
	if numPeople <= 0 {
		return nil, domain.NewValidationError("number of people must be positive")
	}
	if slot == "" {
		slot = SlotFullDay
	}
	if !slot.IsValid() {
		return nil, domain.NewValidationError("unknown time slot: " + string(slot))
	}
	if defaultState == "" {
		return nil, domain.NewValidationError("default state is required")
	}

	day := resource.DateOnly(date)
	now := time.Now().UTC()
	return &Reservation{
		id:         uuid.New(),
		customerID: customerID,
		date:       day,
		startDate:  day,
		endDate:    day,
		numPeople:  numPeople,
		states:     state.NewSet(defaultState),
		timeSlot:   slot,
		roomNumber: roomNumber,
		notes:      notes,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Reservation from persistence data (no validation).
func Reconstruct(
	id, customerID uuid.UUID,
	date, startDate, endDate time.Time,
	numPeople int,
	states state.Set,
	ticketNumber string,
	parentID *uuid.UUID,
	timeSlot TimeSlot,
	roomNumber, notes string,
	priceCents, finalPriceCents int64,
	paid, furnitureLocked bool,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:              id,
		customerID:      customerID,
		date:            date,
		startDate:       startDate,
		endDate:         endDate,
		numPeople:       numPeople,
		states:          states,
		ticketNumber:    ticketNumber,
		parentID:        parentID,
		timeSlot:        timeSlot,
		roomNumber:      roomNumber,
		notes:           notes,
		priceCents:      priceCents,
		finalPriceCents: finalPriceCents,
		paid:            paid,
		furnitureLocked: furnitureLocked,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the reservation's unique identifier.
func (r *Reservation) ID() uuid.UUID { return r.id }

// CustomerID returns the owning customer's ID.
func (r *Reservation) CustomerID() uuid.UUID { return r.customerID }

// Date returns the authoritative reservation day.
func (r *Reservation) Date() time.Time { return r.date }

// StartDate returns the legacy range mirror's first day.
func (r *Reservation) StartDate() time.Time { return r.startDate }

// EndDate returns the legacy range mirror's last day.
func (r *Reservation) EndDate() time.Time { return r.endDate }

// NumPeople returns the party size.
func (r *Reservation) NumPeople() int { return r.numPeople }

// States returns the current state set. Never empty.
func (r *Reservation) States() state.Set { return r.states }

// TicketNumber returns the printed 8-digit ticket number.
func (r *Reservation) TicketNumber() string { return r.ticketNumber }

// ParentID returns the parent of a multi-day child leg, or nil.
func (r *Reservation) ParentID() *uuid.UUID { return r.parentID }

// TimeSlot returns the part of day reserved.
func (r *Reservation) TimeSlot() TimeSlot { return r.timeSlot }

// RoomNumber returns the guest's hotel room at booking time.
func (r *Reservation) RoomNumber() string { return r.roomNumber }

// Notes returns free-text notes.
func (r *Reservation) Notes() string { return r.notes }

// PriceCents returns the quoted price. Opaque to this core.
func (r *Reservation) PriceCents() int64 { return r.priceCents }

// FinalPriceCents returns the settled price. Opaque to this core.
func (r *Reservation) FinalPriceCents() int64 { return r.finalPriceCents }

// Paid reports whether the reservation is settled.
func (r *Reservation) Paid() bool { return r.paid }

// FurnitureLocked reports whether reassignment is prevented.
func (r *Reservation) FurnitureLocked() bool { return r.furnitureLocked }

// CreatedAt returns the creation timestamp.
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }

// --- Behavior ---

// AssignTicket sets the ticket number. Called once, inside the creating
// transaction.
func (r *Reservation) AssignTicket(ticket string) error {
	if r.ticketNumber != "" {
		return domain.NewConflictError("ticket number already assigned")
	}
	if err := ValidateTicketNumber(ticket); err != nil {
		return err
	}
	r.ticketNumber = ticket
	return nil
}

// LinkToParent marks this reservation as a child leg of a multi-day group.
func (r *Reservation) LinkToParent(parentID uuid.UUID) {
	r.parentID = &parentID
	r.touch()
}

// SetRange sets the legacy start/end mirror on a multi-day group member.
func (r *Reservation) SetRange(start, end time.Time) {
	r.startDate = resource.DateOnly(start)
	r.endDate = resource.DateOnly(end)
	r.touch()
}

// SetPricing stores the opaque quote from the pricing service.
func (r *Reservation) SetPricing(priceCents, finalPriceCents int64, paid bool) {
	r.priceCents = priceCents
	r.finalPriceCents = finalPriceCents
	r.paid = paid
	r.touch()
}

// AddState adds a state code to the set. Adding a present state is a no-op.
func (r *Reservation) AddState(code string) bool {
	next, added := r.states.Add(code)
	if added {
		r.states = next
		r.touch()
	}
	return added
}

// RemoveState removes a state code. Removing the last state falls back to
// fallbackCode so the set is never empty.
func (r *Reservation) RemoveState(code, fallbackCode string) (bool, error) {
	next, removed := r.states.Remove(code)
	if !removed {
		return false, nil
	}
	if next.IsEmpty() {
		if fallbackCode == "" {
			return false, domain.NewValidationError("no default state configured to fall back to")
		}
		next = state.NewSet(fallbackCode)
	}
	r.states = next
	r.touch()
	return true, nil
}

// ChangeState replaces the whole state set with a single state, subject to
// the transition policy: every current state must allow the target.
func (r *Reservation) ChangeState(code string, policy *state.TransitionPolicy) error {
	for _, from := range r.states.Codes() {
		if !policy.CanTransition(from, code) {
			return domain.NewInvalidTransitionError(from, code)
		}
	}
	r.states = state.NewSet(code)
	r.touch()
	return nil
}

// OverrideStates replaces the state set wholesale, bypassing the
// transition policy. Staff use it to record what actually happened on one
// day of a multi-day group, so the matrix for deliberate transitions does
// not apply.
func (r *Reservation) OverrideStates(codes ...string) error {
	next := state.NewSet(codes...)
	if next.IsEmpty() {
		return domain.NewValidationError("at least one state code is required")
	}
	r.states = next
	r.touch()
	return nil
}

// Cancel transitions the reservation to the cancelled state wholesale and
// appends the audit note. Cancellation is a state change, never a deletion.
func (r *Reservation) Cancel(policy *state.TransitionPolicy, note string) error {
	if err := r.ChangeState(state.CodeCancelled, policy); err != nil {
		return err
	}
	if note != "" {
		if r.notes != "" {
			r.notes += "\n"
		}
		r.notes += note
	}
	return nil
}

// ChangeDate moves the reservation to a new day. The caller re-validates
// availability and moves assignments in the same transaction.
func (r *Reservation) ChangeDate(newDate time.Time) error {
	if newDate.IsZero() {
		return domain.NewValidationError("new date is required")
	}
	day := resource.DateOnly(newDate)
	r.date = day
	if r.parentID == nil && r.startDate.Equal(r.endDate) {
		r.startDate, r.endDate = day, day
	}
	r.touch()
	return nil
}

// ChangeParty updates the party size.
func (r *Reservation) ChangeParty(numPeople int) error {
	if numPeople <= 0 {
		return domain.NewValidationError("number of people must be positive")
	}
	r.numPeople = numPeople
	r.touch()
	return nil
}

// SetRoomNumber updates room metadata, used by the room-change cascade.
func (r *Reservation) SetRoomNumber(room string) {
	r.roomNumber = room
	r.touch()
}

// LockFurniture prevents accidental reassignment of this reservation's
// furniture.
func (r *Reservation) LockFurniture() {
	r.furnitureLocked = true
	r.touch()
}

// UnlockFurniture allows reassignment again.
func (r *Reservation) UnlockFurniture() {
	r.furnitureLocked = false
	r.touch()
}

func (r *Reservation) touch() {
	r.updatedAt = time.Now().UTC()
}

// Assignment links a reservation to one furniture item on one date.
// Uniqueness of (resource, date) across holding reservations is enforced by
// the availability engine inside the creating transaction, not by schema.
type Assignment struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ResourceID    uuid.UUID `json:"resource_id"`
	Date          time.Time `json:"date"`
}

// DailyState records an explicit per-day state override within a group
// (day one seated, day two no-show). ReservationID is the group root.
type DailyState struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Date          time.Time `json:"date"`
	States        state.Set `json:"states"`
}

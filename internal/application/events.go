package application

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics this service publishes to.
const (
	TopicReservationEvents = "reservation.events"
	TopicWaitlistEvents    = "waitlist.events"
)

// Event types carried in the CloudEvent envelope.
const (
	EventReservationCreated      = "reservation.created"
	EventReservationStateChanged = "reservation.state_changed"
	EventReservationCancelled    = "reservation.cancelled"
	EventReservationMoved        = "reservation.moved"
	EventWaitlistConverted       = "waitlist.converted"
)

// ReservationCreatedEvent is published after a reservation (or a linked
// multi-day group) is committed.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID   `json:"reservation_id"`
	TicketNumber  string      `json:"ticket_number"`
	CustomerID    uuid.UUID   `json:"customer_id"`
	Date          time.Time   `json:"date"`
	EndDate       time.Time   `json:"end_date"`
	ResourceIDs   []uuid.UUID `json:"resource_ids"`
	NumPeople     int         `json:"num_people"`
	PriceCents    int64       `json:"price_cents"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// ReservationStateChangedEvent is published on every state mutation,
// including additions and removals of secondary states.
type ReservationStateChangedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	TicketNumber  string    `json:"ticket_number"`
	States        []string  `json:"states"`
	Incident      bool      `json:"incident"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReservationCancelledEvent is published once per cancelled group.
type ReservationCancelledEvent struct {
	ParentID       uuid.UUID `json:"parent_id"`
	TicketNumber   string    `json:"ticket_number"`
	CancelledCount int       `json:"cancelled_count"`
	OnlyFuture     bool      `json:"only_future"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ReservationMovedEvent is published when a reservation changes date or
// furniture.
type ReservationMovedEvent struct {
	ReservationID uuid.UUID   `json:"reservation_id"`
	TicketNumber  string      `json:"ticket_number"`
	Date          time.Time   `json:"date"`
	ResourceIDs   []uuid.UUID `json:"resource_ids"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// WaitlistConvertedEvent is published when a waitlist entry turns into a
// reservation.
type WaitlistConvertedEvent struct {
	EntryID       uuid.UUID `json:"entry_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

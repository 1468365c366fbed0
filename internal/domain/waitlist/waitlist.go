package waitlist

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lidosuite/service-reservation/internal/domain/resource"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// Status is the lifecycle state of a waitlist entry. Once an entry leaves
// waiting it is immutable, except that converted entries carry the created
// reservation's ID.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusContacted Status = "contacted"
	StatusConverted Status = "converted"
	StatusDeclined  Status = "declined"
	StatusNoAnswer  Status = "no_answer"
	StatusExpired   Status = "expired"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusContacted, StatusConverted, StatusDeclined, StatusNoAnswer, StatusExpired:
		return true
	}
	return false
}

// Entry is one unit of unmet demand: a party waiting for furniture to free
// up on a date. The guest may be a profiled customer or a walk-up known
// only by name and phone.
type Entry struct {
	id            uuid.UUID
	customerID    *uuid.UUID
	externalName  string
	externalPhone string
	requestedDate time.Time
	numPeople     int
	preferences   string
	status        Status
	convertedID   *uuid.UUID
	createdAt     time.Time
	updatedAt     time.Time
}

// NewEntry creates a waiting entry for either a profiled customer or a
// walk-up contact.
func NewEntry(customerID *uuid.UUID, externalName, externalPhone string, requestedDate time.Time, numPeople int, preferences string) (*Entry, error) {
	if customerID == nil && strings.TrimSpace(externalName) == "" {
		return nil, domain.NewValidationError("either a customer or an external name is required")
	}
	if requestedDate.IsZero() {
		return nil, domain.NewValidationError("requested date is required")
	}
	if numPeople <= 0 {
		return nil, domain.NewValidationError("number of people must be positive")
	}

	now := time.Now().UTC()
	return &Entry{
		id:            uuid.New(),
		customerID:    customerID,
		externalName:  strings.TrimSpace(externalName),
		externalPhone: strings.TrimSpace(externalPhone),
		requestedDate: resource.DateOnly(requestedDate),
		numPeople:     numPeople,
		preferences:   preferences,
		status:        StatusWaiting,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds an Entry from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	customerID *uuid.UUID,
	externalName, externalPhone string,
	requestedDate time.Time,
	numPeople int,
	preferences string,
	status Status,
	convertedID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Entry {
	return &Entry{
		id:            id,
		customerID:    customerID,
		externalName:  externalName,
		externalPhone: externalPhone,
		requestedDate: requestedDate,
		numPeople:     numPeople,
		preferences:   preferences,
		status:        status,
		convertedID:   convertedID,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the entry's unique identifier.
func (e *Entry) ID() uuid.UUID { return e.id }

// CustomerID returns the profiled customer, or nil for walk-ups.
func (e *Entry) CustomerID() *uuid.UUID { return e.customerID }

// ExternalName returns the walk-up contact name.
func (e *Entry) ExternalName() string { return e.externalName }

// ExternalPhone returns the walk-up contact phone.
func (e *Entry) ExternalPhone() string { return e.externalPhone }

// RequestedDate returns the day the party wants furniture for.
func (e *Entry) RequestedDate() time.Time { return e.requestedDate }

// NumPeople returns the party size.
func (e *Entry) NumPeople() int { return e.numPeople }

// Preferences returns free-text furniture preferences.
func (e *Entry) Preferences() string { return e.preferences }

// Status returns the entry's lifecycle state.
func (e *Entry) Status() Status { return e.status }

// ConvertedReservationID returns the reservation this entry became, or nil.
func (e *Entry) ConvertedReservationID() *uuid.UUID { return e.convertedID }

// CreatedAt returns the creation timestamp.
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (e *Entry) UpdatedAt() time.Time { return e.updatedAt }

// --- Behavior ---

// MarkContacted records that staff reached out about freed furniture.
func (e *Entry) MarkContacted() error {
	if e.status != StatusWaiting {
		return domain.NewInvalidTransitionError(string(e.status), string(StatusContacted))
	}
	e.status = StatusContacted
	e.touch()
	return nil
}

// Convert terminates the entry by linking it to the reservation created
// from it. Converting anything but a waiting or contacted entry fails with
// AlreadyConverted; conversion is single-use.
func (e *Entry) Convert(reservationID uuid.UUID) error {
	if reservationID == uuid.Nil {
		return domain.NewValidationError("reservation ID is required")
	}
	if e.status != StatusWaiting && e.status != StatusContacted {
		return domain.NewAlreadyConvertedError(string(e.status))
	}
	e.status = StatusConverted
	e.convertedID = &reservationID
	e.touch()
	return nil
}

// Decline records that the party no longer wants the spot.
func (e *Entry) Decline() error {
	if e.status != StatusWaiting && e.status != StatusContacted {
		return domain.NewInvalidTransitionError(string(e.status), string(StatusDeclined))
	}
	e.status = StatusDeclined
	e.touch()
	return nil
}

// MarkNoAnswer records a failed contact attempt outcome.
func (e *Entry) MarkNoAnswer() error {
	if e.status != StatusContacted {
		return domain.NewInvalidTransitionError(string(e.status), string(StatusNoAnswer))
	}
	e.status = StatusNoAnswer
	e.touch()
	return nil
}

// ExpireIfStale expires a waiting entry whose requested date is before
// asOf. Returns true when the entry changed.
func (e *Entry) ExpireIfStale(asOf time.Time) bool {
	if e.status != StatusWaiting {
		return false
	}
	if !e.requestedDate.Before(resource.DateOnly(asOf)) {
		return false
	}
	e.status = StatusExpired
	e.touch()
	return true
}

func (e *Entry) touch() {
	e.updatedAt = time.Now().UTC()
}

package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies application errors so the transport layer can map
// them to status codes without inspecting message strings.
type ErrorKind string

const (
	KindNotFound             ErrorKind = "not_found"
	KindValidation           ErrorKind = "validation"
	KindResourceUnavailable  ErrorKind = "resource_unavailable"
	KindCapacityInsufficient ErrorKind = "capacity_insufficient"
	KindAlreadyConverted     ErrorKind = "already_converted"
	KindInvalidTransition    ErrorKind = "invalid_transition"
	KindLocked               ErrorKind = "locked"
	KindConflict             ErrorKind = "conflict"
	KindForbidden            ErrorKind = "forbidden"
)

// ConflictPair identifies one (resource, date) pair that blocked an
// availability check, together with who currently holds it.
type ConflictPair struct {
	ResourceID    string    `json:"resource_id"`
	Date          time.Time `json:"date"`
	ReservationID string    `json:"reservation_id,omitempty"`
	CustomerName  string    `json:"customer_name,omitempty"`
	Blocked       bool      `json:"blocked,omitempty"`
}

// Error is the application error type shared by all services.
type Error struct {
	Kind      ErrorKind
	Message   string
	Conflicts []ConflictPair
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewNotFoundError reports a missing entity by type and identifier.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s with ID %s not found", entity, id)}
}

// NewValidationError reports malformed or incomplete input.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewUnavailableError reports an availability conflict with the full list of
// conflicting (resource, date) pairs so the caller can offer alternatives.
func NewUnavailableError(pairs []ConflictPair) *Error {
	return &Error{
		Kind:      KindResourceUnavailable,
		Message:   fmt.Sprintf("%d resource/date pair(s) unavailable", len(pairs)),
		Conflicts: pairs,
	}
}

// NewCapacityError reports a furniture selection whose combined capacity
// cannot seat the requested party.
func NewCapacityError(capacity, numPeople int) *Error {
	return &Error{
		Kind:    KindCapacityInsufficient,
		Message: fmt.Sprintf("selected furniture seats %d but party is %d", capacity, numPeople),
	}
}

// NewAlreadyConvertedError reports a second conversion attempt on a
// waitlist entry.
func NewAlreadyConvertedError(status string) *Error {
	return &Error{Kind: KindAlreadyConverted, Message: fmt.Sprintf("waitlist entry is %s, not waiting", status)}
}

// NewInvalidTransitionError reports an illegal state-machine transition.
func NewInvalidTransitionError(from, to string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewLockedError reports an operation rejected by a furniture lock.
func NewLockedError(msg string) *Error {
	return &Error{Kind: KindLocked, Message: msg}
}

// NewConflictError reports a write lost to a concurrent transaction.
func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NewForbiddenError reports an operation the caller may not perform.
func NewForbiddenError(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// AsError unwraps err into an *Error if it is one.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsError(err)
	return ok && appErr.Kind == kind
}

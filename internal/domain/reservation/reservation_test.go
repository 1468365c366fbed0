package reservation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidosuite/service-reservation/internal/domain/state"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

func newTestReservation(t *testing.T) *Reservation {
	t.Helper()
	date := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	r, err := NewReservation(uuid.New(), date, 2, SlotFullDay, state.CodeConfirmed, "204", "")
	require.NoError(t, err)
	return r
}

func TestNewReservationValidation(t *testing.T) {
	date := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	_, err := NewReservation(uuid.Nil, date, 2, SlotFullDay, state.CodeConfirmed, "", "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewReservation(uuid.New(), time.Time{}, 2, SlotFullDay, state.CodeConfirmed, "", "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewReservation(uuid.New(), date, 0, SlotFullDay, state.CodeConfirmed, "", "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewReservation(uuid.New(), date, 2, "siesta", state.CodeConfirmed, "", "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	// Empty slot defaults to full day.
	r, err := NewReservation(uuid.New(), date, 2, "", state.CodeConfirmed, "", "")
	require.NoError(t, err)
	assert.Equal(t, SlotFullDay, r.TimeSlot())
}

func TestNewReservationNormalizesDate(t *testing.T) {
	noon := time.Date(2026, 7, 15, 12, 45, 0, 0, time.UTC)
	r, err := NewReservation(uuid.New(), noon, 1, SlotMorning, state.CodeConfirmed, "", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), r.Date())
	assert.Equal(t, r.Date(), r.StartDate())
	assert.Equal(t, r.Date(), r.EndDate())
}

func TestAssignTicketOnce(t *testing.T) {
	r := newTestReservation(t)

	require.NoError(t, r.AssignTicket("26071501"))
	assert.Equal(t, "26071501", r.TicketNumber())

	err := r.AssignTicket("26071502")
	assert.True(t, domain.IsKind(err, domain.KindConflict), "ticket numbers are immutable once printed")
	assert.Equal(t, "26071501", r.TicketNumber())
}

func TestAddRemoveState(t *testing.T) {
	r := newTestReservation(t)

	assert.True(t, r.AddState(state.CodeSeated))
	assert.False(t, r.AddState(state.CodeSeated), "re-adding is a no-op")
	assert.Equal(t, []string{state.CodeConfirmed, state.CodeSeated}, r.States().Codes())

	removed, err := r.RemoveState(state.CodeConfirmed, state.CodeConfirmed)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{state.CodeSeated}, r.States().Codes())

	// Removing the last state falls back to the default.
	removed, err = r.RemoveState(state.CodeSeated, state.CodeConfirmed)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{state.CodeConfirmed}, r.States().Codes())
}

func TestRemoveLastStateWithoutFallback(t *testing.T) {
	r := newTestReservation(t)
	_, err := r.RemoveState(state.CodeConfirmed, "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Equal(t, []string{state.CodeConfirmed}, r.States().Codes(), "failed removal leaves the set intact")
}

func TestChangeStateHonorsPolicy(t *testing.T) {
	policy := state.DefaultTransitionPolicy()
	r := newTestReservation(t)

	require.NoError(t, r.ChangeState(state.CodeSeated, policy))
	assert.Equal(t, []string{state.CodeSeated}, r.States().Codes())

	require.NoError(t, r.ChangeState(state.CodeCancelled, policy))
	err := r.ChangeState(state.CodeSeated, policy)
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))
}

func TestChangeStateRequiresEveryCurrentStateToAllow(t *testing.T) {
	policy := state.DefaultTransitionPolicy()
	r := newTestReservation(t)
	r.AddState(state.CodeCancelled)

	// confirmed allows seated but cancelled does not, so the change fails.
	err := r.ChangeState(state.CodeSeated, policy)
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))
}

func TestCancelAppendsNote(t *testing.T) {
	policy := state.DefaultTransitionPolicy()
	r := newTestReservation(t)

	require.NoError(t, r.Cancel(policy, "guest called ahead"))
	assert.Equal(t, []string{state.CodeCancelled}, r.States().Codes())
	assert.Equal(t, "guest called ahead", r.Notes())

	// A second cancel is an invalid transition.
	err := r.Cancel(policy, "again")
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))
}

func TestChangeDate(t *testing.T) {
	r := newTestReservation(t)
	newDate := time.Date(2026, 7, 20, 18, 0, 0, 0, time.UTC)

	require.NoError(t, r.ChangeDate(newDate))
	day := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, day, r.Date())
	assert.Equal(t, day, r.StartDate())
	assert.Equal(t, day, r.EndDate())

	err := r.ChangeDate(time.Time{})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestFurnitureLock(t *testing.T) {
	r := newTestReservation(t)
	assert.False(t, r.FurnitureLocked())
	r.LockFurniture()
	assert.True(t, r.FurnitureLocked())
	r.UnlockFurniture()
	assert.False(t, r.FurnitureLocked())
}

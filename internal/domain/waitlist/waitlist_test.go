package waitlist

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func waitingEntry(t *testing.T) *Entry {
	t.Helper()
	customerID := uuid.New()
	e, err := NewEntry(&customerID, "", "", day(2026, 7, 15), 2, "front row if possible")
	require.NoError(t, err)
	return e
}

func TestNewEntryValidation(t *testing.T) {
	_, err := NewEntry(nil, "", "", day(2026, 7, 15), 2, "")
	assert.True(t, domain.IsKind(err, domain.KindValidation), "needs a customer or a walk-up name")

	_, err = NewEntry(nil, "Ana Duarte", "", time.Time{}, 2, "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = NewEntry(nil, "Ana Duarte", "", day(2026, 7, 15), 0, "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	e, err := NewEntry(nil, "  Ana Duarte ", "+351 900 000 000", day(2026, 7, 15), 3, "")
	require.NoError(t, err)
	assert.Equal(t, "Ana Duarte", e.ExternalName())
	assert.Equal(t, StatusWaiting, e.Status())
}

func TestConvertIsSingleUse(t *testing.T) {
	e := waitingEntry(t)
	first := uuid.New()

	require.NoError(t, e.Convert(first))
	assert.Equal(t, StatusConverted, e.Status())
	require.NotNil(t, e.ConvertedReservationID())
	assert.Equal(t, first, *e.ConvertedReservationID())

	err := e.Convert(uuid.New())
	assert.True(t, domain.IsKind(err, domain.KindAlreadyConverted))
	assert.Equal(t, first, *e.ConvertedReservationID(), "the original link survives")
}

func TestConvertFromContacted(t *testing.T) {
	e := waitingEntry(t)
	require.NoError(t, e.MarkContacted())
	require.NoError(t, e.Convert(uuid.New()))
}

func TestConvertRequiresReservation(t *testing.T) {
	e := waitingEntry(t)
	err := e.Convert(uuid.Nil)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Equal(t, StatusWaiting, e.Status())
}

func TestContactFlow(t *testing.T) {
	e := waitingEntry(t)

	require.NoError(t, e.MarkContacted())
	assert.Equal(t, StatusContacted, e.Status())

	err := e.MarkContacted()
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))

	require.NoError(t, e.MarkNoAnswer())
	assert.Equal(t, StatusNoAnswer, e.Status())
}

func TestNoAnswerRequiresContact(t *testing.T) {
	e := waitingEntry(t)
	err := e.MarkNoAnswer()
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))
}

func TestDecline(t *testing.T) {
	e := waitingEntry(t)
	require.NoError(t, e.Decline())
	assert.Equal(t, StatusDeclined, e.Status())

	err := e.Decline()
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))
}

func TestExpireIfStale(t *testing.T) {
	e := waitingEntry(t) // requested 2026-07-15

	assert.False(t, e.ExpireIfStale(day(2026, 7, 15)), "the requested day itself is not stale")
	assert.Equal(t, StatusWaiting, e.Status())

	assert.True(t, e.ExpireIfStale(day(2026, 7, 16)))
	assert.Equal(t, StatusExpired, e.Status())

	// Idempotent: a second pass changes nothing.
	assert.False(t, e.ExpireIfStale(day(2026, 7, 17)))
	assert.Equal(t, StatusExpired, e.Status())
}

func TestExpireSkipsConverted(t *testing.T) {
	e := waitingEntry(t)
	require.NoError(t, e.Convert(uuid.New()))
	assert.False(t, e.ExpireIfStale(day(2026, 8, 1)))
	assert.Equal(t, StatusConverted, e.Status())
}

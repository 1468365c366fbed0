package application_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidosuite/service-reservation/internal/application"
	waitlistDomain "github.com/lidosuite/service-reservation/internal/domain/waitlist"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

func TestWaitlistConvertSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	_, loungers, cust := f.seedBeach(t, 1)
	day := futureDay(7)

	entry, err := f.waitlist.CreateEntry(ctx, application.CreateWaitlistEntryRequest{
		CustomerID:    &cust.ID,
		RequestedDate: day,
		NumPeople:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, string(waitlistDomain.StatusWaiting), entry.Status)

	res, err := f.reservations.CreateReservation(ctx, application.CreateReservationRequest{
		CustomerID:  cust.ID,
		Date:        day,
		ResourceIDs: []uuid.UUID{loungers[0].ID},
		NumPeople:   2,
	})
	require.NoError(t, err)

	converted, err := f.waitlist.Convert(ctx, entry.ID, res.ID)
	require.NoError(t, err)
	assert.Equal(t, string(waitlistDomain.StatusConverted), converted.Status)
	require.NotNil(t, converted.ConvertedReservationID)
	assert.Equal(t, res.ID, *converted.ConvertedReservationID)

	// Conversion is single-use and keeps the original link.
	_, err = f.waitlist.Convert(ctx, entry.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAlreadyConverted))

	kept, err := f.waitlist.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, kept.ConvertedReservationID)
	assert.Equal(t, res.ID, *kept.ConvertedReservationID)
}

func TestWaitlistConvertUnknownReservation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	entry, err := f.waitlist.CreateEntry(ctx, application.CreateWaitlistEntryRequest{
		ExternalName:  "Walk-up Party",
		ExternalPhone: "+45 1234",
		RequestedDate: futureDay(7),
		NumPeople:     3,
	})
	require.NoError(t, err)

	_, err = f.waitlist.Convert(ctx, entry.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	// The failed conversion left the entry waiting.
	unchanged, err := f.waitlist.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, string(waitlistDomain.StatusWaiting), unchanged.Status)
}

func TestWaitlistContactFlow(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	entry, err := f.waitlist.CreateEntry(ctx, application.CreateWaitlistEntryRequest{
		ExternalName:  "Walk-up Party",
		RequestedDate: futureDay(7),
		NumPeople:     2,
	})
	require.NoError(t, err)

	contacted, err := f.waitlist.MarkContacted(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, string(waitlistDomain.StatusContacted), contacted.Status)

	_, err = f.waitlist.MarkContacted(ctx, entry.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidTransition))

	declined, err := f.waitlist.Decline(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, string(waitlistDomain.StatusDeclined), declined.Status)
}

func TestWaitlistExpireStaleIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	stale, err := f.waitlist.CreateEntry(ctx, application.CreateWaitlistEntryRequest{
		ExternalName:  "Missed Party",
		RequestedDate: futureDay(-2),
		NumPeople:     2,
	})
	require.NoError(t, err)
	fresh, err := f.waitlist.CreateEntry(ctx, application.CreateWaitlistEntryRequest{
		ExternalName:  "Hopeful Party",
		RequestedDate: futureDay(3),
		NumPeople:     2,
	})
	require.NoError(t, err)

	expired, err := f.waitlist.ExpireStale(ctx, futureDay(0))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, err := f.waitlist.GetEntry(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, string(waitlistDomain.StatusExpired), got.Status)
	got, err = f.waitlist.GetEntry(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, string(waitlistDomain.StatusWaiting), got.Status)

	// A second sweep finds nothing left.
	expired, err = f.waitlist.ExpireStale(ctx, futureDay(0))
	require.NoError(t, err)
	assert.Zero(t, expired)
}

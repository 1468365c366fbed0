package application_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidosuite/service-reservation/internal/application"
	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

func TestBlockAndUnblock(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	_, loungers, _ := f.seedBeach(t, 1)
	lounger := loungers[0]

	block, err := f.registry.CreateBlock(ctx, application.CreateBlockRequest{
		ResourceID: lounger.ID,
		StartDate:  futureDay(7),
		EndDate:    futureDay(10),
		Type:       string(resourceDomain.BlockMaintenance),
		Reason:     "broken slat",
	})
	require.NoError(t, err)

	avail, err := f.availability.CheckAvailability(ctx, []uuid.UUID{lounger.ID}, []time.Time{futureDay(8)}, nil)
	require.NoError(t, err)
	require.False(t, avail.AllAvailable)
	assert.True(t, avail.Unavailable[0].Blocked)
	assert.Nil(t, avail.Unavailable[0].ConflictingReservationID)

	// Repairs finished early in the middle of the range: freeing day 8
	// splits the block in two.
	replacements, err := f.registry.Unblock(ctx, block.ID, futureDay(8), futureDay(8))
	require.NoError(t, err)
	require.Len(t, replacements, 2)

	avail, err = f.availability.CheckAvailability(ctx, []uuid.UUID{lounger.ID}, []time.Time{futureDay(8)}, nil)
	require.NoError(t, err)
	assert.True(t, avail.AllAvailable)

	avail, err = f.availability.CheckAvailability(ctx, []uuid.UUID{lounger.ID}, []time.Time{futureDay(7), futureDay(9)}, nil)
	require.NoError(t, err)
	assert.Len(t, avail.Unavailable, 2)
}

func TestBlockedAndHeldReportBothFacts(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	_, loungers, cust := f.seedBeach(t, 1)
	day := futureDay(7)

	res, err := f.reservations.CreateReservation(ctx, application.CreateReservationRequest{
		CustomerID:  cust.ID,
		Date:        day,
		ResourceIDs: []uuid.UUID{loungers[0].ID},
		NumPeople:   2,
	})
	require.NoError(t, err)

	// Maintenance lands on an already-booked day.
	_, err = f.registry.CreateBlock(ctx, application.CreateBlockRequest{
		ResourceID: loungers[0].ID,
		StartDate:  day,
		EndDate:    day,
		Type:       string(resourceDomain.BlockMaintenance),
		Reason:     "torn canvas",
	})
	require.NoError(t, err)

	avail, err := f.availability.CheckAvailability(ctx, []uuid.UUID{loungers[0].ID}, []time.Time{day}, nil)
	require.NoError(t, err)
	require.Len(t, avail.Unavailable, 1)
	conflict := avail.Unavailable[0]
	assert.True(t, conflict.Blocked)
	require.NotNil(t, conflict.ConflictingReservationID)
	assert.Equal(t, res.ID, *conflict.ConflictingReservationID)
}

func TestCreateBlockUnknownResource(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.CreateBlock(t.Context(), application.CreateBlockRequest{
		ResourceID: uuid.New(),
		StartDate:  futureDay(1),
		EndDate:    futureDay(2),
		Type:       string(resourceDomain.BlockEvent),
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestDeactivateResource(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	_, loungers, cust := f.seedBeach(t, 1)

	// An existing future booking does not stop deactivation.
	_, err := f.reservations.CreateReservation(ctx, application.CreateReservationRequest{
		CustomerID:  cust.ID,
		Date:        futureDay(7),
		ResourceIDs: []uuid.UUID{loungers[0].ID},
		NumPeople:   2,
	})
	require.NoError(t, err)

	require.NoError(t, f.registry.DeactivateResource(ctx, loungers[0].ID))

	r, err := f.registry.GetResource(ctx, loungers[0].ID)
	require.NoError(t, err)
	assert.False(t, r.Active)

	avail, err := f.availability.CheckAvailability(ctx, []uuid.UUID{loungers[0].ID}, []time.Time{futureDay(12)}, nil)
	require.NoError(t, err)
	assert.False(t, avail.AllAvailable)
}

func TestUpdateResourcePartial(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	_, loungers, _ := f.seedBeach(t, 1)

	capacity := 4
	updated, err := f.registry.UpdateResource(ctx, loungers[0].ID, application.UpdateResourceRequest{
		Capacity: &capacity,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Capacity)
	assert.Equal(t, loungers[0].Number, updated.Number)
	assert.Equal(t, loungers[0].Row, updated.Row)

	empty := ""
	_, err = f.registry.UpdateResource(ctx, loungers[0].ID, application.UpdateResourceRequest{Number: &empty})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestTemporaryResourceWindow(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	zone, _, _ := f.seedBeach(t, 1)

	from, to := futureDay(10), futureDay(20)
	r, err := f.registry.CreateResource(ctx, application.CreateResourceRequest{
		Number:    "S01",
		ZoneID:    zone.ID,
		TypeCode:  string(resourceDomain.TypeCabana),
		Capacity:  4,
		Row:       2,
		Col:       1,
		ValidFrom: &from,
		ValidTo:   &to,
	})
	require.NoError(t, err)
	assert.True(t, r.Temporary)

	avail, err := f.availability.CheckAvailability(ctx, []uuid.UUID{r.ID}, []time.Time{futureDay(15)}, nil)
	require.NoError(t, err)
	assert.True(t, avail.AllAvailable)

	avail, err = f.availability.CheckAvailability(ctx, []uuid.UUID{r.ID}, []time.Time{futureDay(25)}, nil)
	require.NoError(t, err)
	assert.False(t, avail.AllAvailable)
}

func TestZoneMapPositionOverride(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	zone, loungers, _ := f.seedBeach(t, 2)
	day := futureDay(7)

	require.NoError(t, f.registry.SetPositionOverride(ctx, loungers[0].ID, day, 3.5, 9.0))

	items, err := f.registry.ZoneMapOn(ctx, zone.ID, day)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := make(map[uuid.UUID]application.MapItem, len(items))
	for _, item := range items {
		byID[item.Resource.ID] = item
	}
	moved := byID[loungers[0].ID]
	assert.True(t, moved.Override)
	assert.Equal(t, 3.5, moved.X)
	assert.Equal(t, 9.0, moved.Y)

	// The other item sits at its grid position.
	still := byID[loungers[1].ID]
	assert.False(t, still.Override)
	assert.Equal(t, float64(loungers[1].Col), still.X)
	assert.Equal(t, float64(loungers[1].Row), still.Y)

	// The override is bound to its date.
	items, err = f.registry.ZoneMapOn(ctx, zone.ID, futureDay(8))
	require.NoError(t, err)
	for _, item := range items {
		assert.False(t, item.Override)
	}
}

//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidosuite/service-reservation/internal/application"
	reservationEvents "github.com/lidosuite/service-reservation/internal/events"
	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// TestConcurrentCreate_NoDoubleBooking fires many concurrent creates for
// the same lounger and date and verifies exactly one wins; the rest fail
// with ResourceUnavailable and the winner's ticket follows the YYMMDDRR
// shape.
func TestConcurrentCreate_NoDoubleBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupReservationStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	_, resourceIDs, customerID := seedBeach(t, stack, 1)
	date := time.Now().UTC().AddDate(0, 0, 7)

	const contenders = 8
	var wg sync.WaitGroup
	results := make([]*application.ReservationDTO, contenders)
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = stack.Reservations.CreateReservation(context.Background(), application.CreateReservationRequest{
				CustomerID:  customerID,
				Date:        date,
				ResourceIDs: resourceIDs,
				NumPeople:   1,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < contenders; i++ {
		if errs[i] == nil {
			winners++
			require.NotNil(t, results[i])
			assert.Len(t, results[i].TicketNumber, 8)
			assert.Equal(t, date.UTC().Format("060102"), results[i].TicketNumber[:6])
		} else {
			assert.True(t, domain.IsKind(errs[i], domain.KindResourceUnavailable),
				"loser %d should fail with ResourceUnavailable, got %v", i, errs[i])
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent create should win")

	// The furniture is unavailable for everyone else now.
	avail, err := stack.Availability.CheckAvailability(context.Background(), resourceIDs, []time.Time{date}, nil)
	require.NoError(t, err)
	assert.False(t, avail.AllAvailable)
}

// TestCancelReleasesFurniture verifies that cancelling frees the lounger
// for the next guest without deleting the reservation row.
func TestCancelReleasesFurniture(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupReservationStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	_, resourceIDs, customerID := seedBeach(t, stack, 1)
	date := time.Now().UTC().AddDate(0, 0, 3)

	first, err := stack.Reservations.CreateReservation(context.Background(), application.CreateReservationRequest{
		CustomerID:  customerID,
		Date:        date,
		ResourceIDs: resourceIDs,
		NumPeople:   1,
	})
	require.NoError(t, err)

	cancelled, err := stack.Reservations.CancelGroup(context.Background(), first.ID, false, "guest called")
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	// Same lounger, same day, different booking: must succeed now.
	second, err := stack.Reservations.CreateReservation(context.Background(), application.CreateReservationRequest{
		CustomerID:  customerID,
		Date:        date,
		ResourceIDs: resourceIDs,
		NumPeople:   1,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.TicketNumber, second.TicketNumber)

	// The cancelled reservation still exists.
	kept, err := stack.Reservations.GetReservation(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Contains(t, kept.States, "cancelled")
}

// TestRoomChanged_CascadesToFutureReservations verifies that a room change
// on the hotel feed updates the guest profile and future reservations but
// leaves past days untouched.
func TestRoomChanged_CascadesToFutureReservations(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupReservationStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	_, resourceIDs, customerID := seedBeach(t, stack, 1)
	future := time.Now().UTC().AddDate(0, 0, 5)

	res, err := stack.Reservations.CreateReservation(context.Background(), application.CreateReservationRequest{
		CustomerID:  customerID,
		Date:        future,
		ResourceIDs: resourceIDs,
		NumPeople:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, "204", res.RoomNumber)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := reservationEvents.RoomChangedEvent{
		GuestName:  "Ingrid Larsen",
		OldRoom:    "204",
		NewRoom:    "512",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, reservationEvents.TopicRoomEvents,
		"service-pms", reservationEvents.RoomChangedType, evt)

	waitForRoomNumber(t, infra.DB, res.ID, "512", 15*time.Second)

	guest, err := stack.Customers.GetCustomer(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, "512", guest.RoomNumber)
}

// TestCreatePublishesReservationCreated verifies the created event lands on
// the reservation topic with the ticket number.
func TestCreatePublishesReservationCreated(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupReservationStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	_, resourceIDs, customerID := seedBeach(t, stack, 2)
	date := time.Now().UTC().AddDate(0, 0, 2)

	res, err := stack.Reservations.CreateReservation(context.Background(), application.CreateReservationRequest{
		CustomerID:  customerID,
		Date:        date,
		ResourceIDs: resourceIDs,
		NumPeople:   2,
	})
	require.NoError(t, err)

	ce := consumeOneEvent(t, infra.KafkaBrokers, application.TopicReservationEvents,
		application.EventReservationCreated, 15*time.Second)

	var created application.ReservationCreatedEvent
	require.NoError(t, ce.ParseData(&created))
	assert.Equal(t, res.ID, created.ReservationID)
	assert.Equal(t, res.TicketNumber, created.TicketNumber)
	assert.Equal(t, 2, created.NumPeople)
}

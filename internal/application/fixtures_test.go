package application_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lidosuite/service-reservation/internal/application"
	customerDomain "github.com/lidosuite/service-reservation/internal/domain/customer"
	reservationDomain "github.com/lidosuite/service-reservation/internal/domain/reservation"
	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	"github.com/lidosuite/service-reservation/internal/repository"
)

// fixture wires the full service stack against an in-memory sqlite
// database. Each test gets its own database; the unique DSN keeps
// parallel tests from sharing state.
type fixture struct {
	db           *gorm.DB
	reservations *application.ReservationService
	availability *application.AvailabilityService
	registry     *application.RegistryService
	waitlist     *application.WaitlistService
	roomChanges  *application.RoomChangeService
	customers    *application.CustomerService
	states       *application.StateService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&repository.ZoneModel{},
		&repository.ResourceModel{},
		&repository.BlockModel{},
		&repository.PositionOverrideModel{},
		&repository.StateModel{},
		&repository.CustomerModel{},
		&repository.ReservationModel{},
		&repository.StateLinkModel{},
		&repository.AssignmentModel{},
		&repository.DailyStateModel{},
		&repository.WaitlistModel{},
	))

	log := zap.NewNop()
	txManager := repository.NewGormTxManager(db)
	stateRepo := repository.NewGormStateRepository(db)
	resourceRepo := repository.NewGormResourceRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	reservationRepo := repository.NewGormReservationRepository(db)
	waitlistRepo := repository.NewGormWaitlistRepository(db)

	require.NoError(t, stateRepo.EnsureSeeded(t.Context()))

	availability := application.NewAvailabilityService(resourceRepo, reservationRepo, stateRepo, log)
	reservations := application.NewReservationService(
		reservationRepo,
		resourceRepo,
		customerRepo,
		stateRepo,
		availability,
		reservationDomain.NewStandardPricingService(),
		txManager,
		nil,
		log,
	)

	return &fixture{
		db:           db,
		reservations: reservations,
		availability: availability,
		registry:     application.NewRegistryService(resourceRepo, reservationRepo, stateRepo, log),
		waitlist:     application.NewWaitlistService(waitlistRepo, reservationRepo, txManager, nil, log),
		roomChanges:  application.NewRoomChangeService(customerRepo, reservationRepo, txManager, log),
		customers:    application.NewCustomerService(customerRepo),
		states:       application.NewStateService(stateRepo),
	}
}

// seedBeach creates one zone with n loungers (capacity 2, laid out in a
// single row) and a guest in room 204. Loungers sit at columns 1..n, so
// any prefix of them forms a contiguous cluster.
func (f *fixture) seedBeach(t *testing.T, n int) (*resourceDomain.Zone, []*resourceDomain.Resource, *customerDomain.Customer) {
	t.Helper()
	ctx := t.Context()

	zone, err := f.registry.CreateZone(ctx, "North Beach")
	require.NoError(t, err)

	loungers := make([]*resourceDomain.Resource, n)
	for i := 0; i < n; i++ {
		r, err := f.registry.CreateResource(ctx, application.CreateResourceRequest{
			Number:   fmt.Sprintf("L%02d", i+1),
			ZoneID:   zone.ID,
			TypeCode: string(resourceDomain.TypeLounger),
			Capacity: 2,
			Row:      1,
			Col:      i + 1,
		})
		require.NoError(t, err)
		loungers[i] = r
	}

	cust, err := f.customers.CreateCustomer(ctx, application.CreateCustomerRequest{
		FullName:   "Ingrid Larsen",
		RoomNumber: "204",
	})
	require.NoError(t, err)

	return zone, loungers, cust
}

// futureDay returns midnight UTC n days from now.
func futureDay(n int) time.Time {
	return resourceDomain.DateOnly(time.Now().UTC().AddDate(0, 0, n))
}

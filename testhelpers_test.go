//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lidosuite/service-reservation/internal/application"
	reservationDomain "github.com/lidosuite/service-reservation/internal/domain/reservation"
	resourceDomain "github.com/lidosuite/service-reservation/internal/domain/resource"
	reservationEvents "github.com/lidosuite/service-reservation/internal/events"
	"github.com/lidosuite/service-reservation/internal/pkg/kafka"
	"github.com/lidosuite/service-reservation/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// reservationStack holds wired-up reservation service components.
type reservationStack struct {
	Reservations    *application.ReservationService
	Availability    *application.AvailabilityService
	Registry        *application.RegistryService
	RoomChanges     *application.RoomChangeService
	Customers       *application.CustomerService
	Consumer        *reservationEvents.RoomEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_reservation",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_reservation sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

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

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, application.TopicReservationEvents, application.TopicWaitlistEvents, reservationEvents.TopicRoomEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupReservationStack wires up the full reservation service stack.
func setupReservationStack(t *testing.T, db *gorm.DB, brokers []string) *reservationStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	txManager := repository.NewGormTxManager(db)
	stateRepo := repository.NewGormStateRepository(db)
	resourceRepo := repository.NewGormResourceRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	reservationRepo := repository.NewGormReservationRepository(db)

	require.NoError(t, stateRepo.EnsureSeeded(context.Background()))

	producer := kafka.NewProducer(brokers, logger)

	availability := application.NewAvailabilityService(resourceRepo, reservationRepo, stateRepo, logger)
	reservations := application.NewReservationService(
		reservationRepo,
		resourceRepo,
		customerRepo,
		stateRepo,
		availability,
		reservationDomain.NewStandardPricingService(),
		txManager,
		producer,
		logger,
	)
	registry := application.NewRegistryService(resourceRepo, reservationRepo, stateRepo, logger)
	roomChanges := application.NewRoomChangeService(customerRepo, reservationRepo, txManager, logger)
	customers := application.NewCustomerService(customerRepo)

	groupID := fmt.Sprintf("test-reservation-%s", uuid.New().String()[:8])
	consumer := reservationEvents.NewRoomEventConsumer(brokers, groupID, roomChanges, logger)

	return &reservationStack{
		Reservations:    reservations,
		Availability:    availability,
		Registry:        registry,
		RoomChanges:     roomChanges,
		Customers:       customers,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedBeach creates a zone with a contiguous row of loungers and one guest.
func seedBeach(t *testing.T, stack *reservationStack, loungers int) (zoneID uuid.UUID, resourceIDs []uuid.UUID, customerID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	zone, err := stack.Registry.CreateZone(ctx, fmt.Sprintf("Zone %s", uuid.New().String()[:8]))
	require.NoError(t, err)

	for i := 0; i < loungers; i++ {
		r, err := stack.Registry.CreateResource(ctx, application.CreateResourceRequest{
			Number:   fmt.Sprintf("L%02d", i+1),
			ZoneID:   zone.ID,
			TypeCode: string(resourceDomain.TypeLounger),
			Capacity: 1,
			Row:      1,
			Col:      i + 1,
		})
		require.NoError(t, err)
		resourceIDs = append(resourceIDs, r.ID)
	}

	guest, err := stack.Customers.CreateCustomer(ctx, application.CreateCustomerRequest{
		FullName:   "Ingrid Larsen",
		RoomNumber: "204",
	})
	require.NoError(t, err)

	return zone.ID, resourceIDs, guest.ID
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForRoomNumber polls the reservations table until the room matches.
func waitForRoomNumber(t *testing.T, db *gorm.DB, reservationID uuid.UUID, expectedRoom string, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		var model repository.ReservationModel
		if err := db.Where("id = ?", reservationID).First(&model).Error; err != nil {
			return false
		}
		return model.RoomNumber == expectedRoom
	}, timeout, 200*time.Millisecond, "reservation room did not change to %s", expectedRoom)
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lidosuite/service-reservation/internal/application"
	"github.com/lidosuite/service-reservation/internal/config"
	reservationDomain "github.com/lidosuite/service-reservation/internal/domain/reservation"
	reservationEvents "github.com/lidosuite/service-reservation/internal/events"
	"github.com/lidosuite/service-reservation/internal/handler"
	"github.com/lidosuite/service-reservation/internal/pkg/database"
	"github.com/lidosuite/service-reservation/internal/pkg/health"
	"github.com/lidosuite/service-reservation/internal/pkg/kafka"
	"github.com/lidosuite/service-reservation/internal/pkg/logger"
	"github.com/lidosuite/service-reservation/internal/pkg/middleware"
	"github.com/lidosuite/service-reservation/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-reservation")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-reservation",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
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
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := cfg.DBConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, cfg.MigrationsDir, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	txManager := repository.NewGormTxManager(db)
	stateRepo := repository.NewGormStateRepository(db)
	resourceRepo := repository.NewGormResourceRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	reservationRepo := repository.NewGormReservationRepository(db)
	waitlistRepo := repository.NewGormWaitlistRepository(db)

	// Seed the canonical reservation states
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := stateRepo.EnsureSeeded(seedCtx); err != nil {
		seedCancel()
		log.Fatal("failed to seed reservation states", zap.Error(err))
	}
	seedCancel()

	// Initialize application services
	availabilityService := application.NewAvailabilityService(resourceRepo, reservationRepo, stateRepo, log)
	reservationService := application.NewReservationService(
		reservationRepo,
		resourceRepo,
		customerRepo,
		stateRepo,
		availabilityService,
		reservationDomain.NewStandardPricingService(),
		txManager,
		kafkaProducer,
		log,
	)
	registryService := application.NewRegistryService(resourceRepo, reservationRepo, stateRepo, log)
	roomChangeService := application.NewRoomChangeService(customerRepo, reservationRepo, txManager, log)
	waitlistService := application.NewWaitlistService(waitlistRepo, reservationRepo, txManager, kafkaProducer, log)
	stateService := application.NewStateService(stateRepo)
	customerService := application.NewCustomerService(customerRepo)

	// Initialize and start the room event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "reservation-service"
	roomConsumer := reservationEvents.NewRoomEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		roomChangeService,
		log,
	)
	defer func() { _ = roomConsumer.Close() }()

	go func() {
		log.Info("starting room event consumer")
		if err := roomConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("room event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	reservationHandler := handler.NewReservationHandler(reservationService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	registryHandler := handler.NewRegistryHandler(registryService)
	waitlistHandler := handler.NewWaitlistHandler(waitlistService)
	adminHandler := handler.NewAdminHandler(stateService, customerService, roomChangeService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ActorMiddleware())
	router.Use(middleware.CORSMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-reservation")
	healthHandler.RegisterRoutes(router)

	// Register routes
	reservationHandler.RegisterRoutes(&router.RouterGroup)
	availabilityHandler.RegisterRoutes(&router.RouterGroup)
	registryHandler.RegisterRoutes(&router.RouterGroup)
	waitlistHandler.RegisterRoutes(&router.RouterGroup)
	adminHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-reservation...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-reservation stopped")
}

package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"freight/internal/app"
	"freight/internal/config"
	"freight/internal/handler"
	internalRedis "freight/internal/redis"
	"freight/internal/repository/postgres"
	"freight/internal/rmq"
	"freight/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Initialize the notification publisher when a broker is configured.
	var publisher *rmq.Publisher
	if cfg.AMQP.Enabled {
		publisher, err = rmq.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer publisher.Close()
		log.Println("Connected to RabbitMQ")
	}

	// Wire dependencies.
	server := wireServer(db, redisClient, publisher, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, publisher *rmq.Publisher, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewTripLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	tripRepo := postgres.NewTripRepository(db)
	milestoneRepo := postgres.NewMilestoneRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	ratingRepo := postgres.NewRatingRepository(db)
	uow := postgres.NewUnitOfWork(db)

	// Initialize services. A typed nil must not reach the Publisher
	// interface, so the broker is only assigned when connected.
	var eventPublisher service.Publisher
	if publisher != nil {
		eventPublisher = publisher
	}
	notificationService := service.NewNotificationService(eventPublisher)
	pricingService := service.NewPricingService()
	bookingService := service.NewBookingService(uow, pricingService, notificationService, cfg.Booking.EstimatedTransit)
	ledgerService := service.NewLedgerService(ledgerRepo, lockStore, cacheStore, notificationService, cfg.Payment.MaxDueAtDeliveryRatio)
	lifecycleService := service.NewLifecycleService(uow, tripRepo, ledgerService, lockStore, cacheStore, notificationService)
	timelineService := service.NewTimelineService(tripRepo, milestoneRepo, lockStore)
	ratingService := service.NewRatingService(uow, ratingRepo, lockStore, cacheStore, notificationService)
	invoiceService := service.NewInvoiceService(tripRepo, ledgerRepo)

	// Initialize handlers.
	bookingHandler := handler.NewBookingHandler(bookingService)
	tripHandler := handler.NewTripHandler(lifecycleService, timelineService, invoiceService)
	paymentHandler := handler.NewPaymentHandler(ledgerService)
	ratingHandler := handler.NewRatingHandler(ratingService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		BookingHandler: bookingHandler,
		TripHandler:    tripHandler,
		PaymentHandler: paymentHandler,
		RatingHandler:  ratingHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		JWTSecret:      cfg.Auth.JWTSecret,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

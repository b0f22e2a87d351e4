package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"freight/internal/handler"
	"freight/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler *handler.BookingHandler
	TripHandler    *handler.TripHandler
	PaymentHandler *handler.PaymentHandler
	RatingHandler  *handler.RatingHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	JWTSecret      string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Actor-ID", "X-Actor-Role"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes. Everything under /v1 requires an actor identity.
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTSecret))
	{
		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("/validate", deps.BookingHandler.ValidateDraft)
			bookings.POST("", deps.BookingHandler.ConfirmBooking)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.GET("", deps.TripHandler.ListTrips)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/transition", deps.TripHandler.Transition)
			trips.POST("/:id/cancel", deps.TripHandler.Cancel)
			trips.GET("/:id/timeline", deps.TripHandler.GetTimeline)
			trips.POST("/:id/milestones", deps.TripHandler.AppendMilestone)
			trips.GET("/:id/invoice", deps.TripHandler.GetInvoice)

			// Ledger routes.
			trips.GET("/:id/ledger", deps.PaymentHandler.GetLedger)
			trips.PUT("/:id/charges", deps.PaymentHandler.UpdateCharges)
			trips.POST("/:id/payments", deps.PaymentHandler.RecordPayment)

			// Rating routes.
			trips.GET("/:id/rating", deps.RatingHandler.GetRating)
			trips.POST("/:id/rating", deps.RatingHandler.SubmitRating)
		}
	}

	return router
}

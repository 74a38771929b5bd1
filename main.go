package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"servicehub-server/config"
	"servicehub-server/database"
	"servicehub-server/jobs"
	"servicehub-server/middleware"
	"servicehub-server/routes"
	"servicehub-server/services"
	ws "servicehub-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	if err := database.SeedCatalog(database.DB); err != nil {
		log.Printf("⚠️ Catalog seeding failed: %v", err)
	}

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Disable automatic redirects for trailing slashes
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security headers (must be first)
	router.Use(middleware.SecurityHeadersMiddleware())

	// Input validation
	router.Use(middleware.InputValidationMiddleware())

	// Rate limiting
	router.Use(middleware.RateLimitMiddleware())

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:8081"}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Device-ID")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "ServiceHub server is running",
			"time":    time.Now().UTC(),
		})
	})

	// WebSocket hub for live booking notifications
	hub := ws.NewHub()
	go hub.Run()

	// Services
	notifier := services.NewNotificationService(database.DB, hub)
	bookingService := services.NewBookingService(database.DB, notifier)
	reviewService := services.NewReviewService(database.DB, bookingService)
	gateway := services.NewRazorpayGateway(
		config.AppConfig.Razorpay.KeyID,
		config.AppConfig.Razorpay.KeySecret,
	)
	paymentService := services.NewPaymentService(
		database.DB,
		gateway,
		notifier,
		config.AppConfig.Razorpay.KeyID,
		config.AppConfig.Razorpay.Currency,
	)

	// API routes
	api := router.Group("/api/v1")
	{
		// Auth routes (no authentication required) - with strict rate limiting
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes)

		// Public catalog routes
		routes.RegisterServiceRoutes(api)

		// WebSocket notifications endpoint (token via query parameter)
		api.GET("/ws/notifications", middleware.WebSocketAuthMiddleware(), ws.ServeNotifications(hub))

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.RegisterBookingRoutes(protected, bookingService, paymentService)
			routes.RegisterWorkerBookingRoutes(protected, bookingService)
			routes.RegisterPaymentRoutes(protected, paymentService)
			routes.RegisterReviewRoutes(protected, api, reviewService)
			routes.RegisterNotificationRoutes(protected)
			routes.RegisterAdminRoutes(protected, bookingService)
		}

		// Worker profile routes (public reads + protected management)
		routes.RegisterWorkerProfileRoutes(api, protected)
	}

	// Start the payout settlement job
	payoutJob := jobs.NewPayoutJob(
		database.DB,
		notifier,
		time.Duration(config.AppConfig.Payout.IntervalSeconds)*time.Second,
	)
	payoutJob.Start()
	defer payoutJob.Stop()

	// Start token cleanup job
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		jwtService := services.NewJWTService()
		for range ticker.C {
			if err := jwtService.CleanupExpiredTokens(); err != nil {
				log.Printf("❌ Token cleanup failed: %v", err)
			}
		}
	}()

	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

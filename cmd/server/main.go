package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/bookit/booking-backend/internal/config"
	"github.com/bookit/booking-backend/internal/database"
	"github.com/bookit/booking-backend/internal/handlers"
	"github.com/bookit/booking-backend/internal/middleware"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/internal/services"
	"github.com/bookit/booking-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting BookIt Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Register the booking status validator with gin's binding engine
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("bookingstatus", models.BookingStatusValidator); err != nil {
			logger.Fatalf("Failed to register booking status validator: %v", err)
		}
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	serviceRepository := database.NewServiceRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	reviewRepository := database.NewReviewRepository(db)
	revokedTokenRepository := database.NewRevokedTokenRepository(db)
	userSessionRepository := database.NewUserSessionRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	authService := services.NewAuthService(
		userRepository,
		revokedTokenRepository,
		userSessionRepository,
		jwtService,
		cfg.Security.BcryptCost,
		logger,
	)
	bookingService := services.NewBookingService(bookingRepository, serviceRepository, cfg.Booking, logger)
	catalogService := services.NewCatalogService(serviceRepository, bookingRepository, logger)
	reviewService := services.NewReviewService(reviewRepository, bookingRepository, logger)

	// Start the background sweep of expired denylist entries and old sessions
	tokenCleanupService := services.NewTokenCleanupService(
		revokedTokenRepository,
		userSessionRepository,
		cfg.Booking.TokenCleanupInterval,
		logger,
	)
	tokenCleanupService.Start()
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	serviceHandler := handlers.NewServiceHandler(catalogService, reviewService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	authRequired := middleware.AuthMiddleware(jwtService, revokedTokenRepository, logger)
	adminOnly := middleware.RequireRole(string(models.RoleAdmin))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			authProtected := auth.Group("")
			authProtected.Use(authRequired)
			{
				authProtected.POST("/logout", authHandler.Logout)
				authProtected.GET("/me", authHandler.Me)
				authProtected.GET("/sessions", authHandler.Sessions)
			}
		}

		// Profile routes (protected)
		users := v1.Group("/users")
		users.Use(authRequired)
		{
			users.GET("/me", userHandler.GetProfile)
			users.PATCH("/me", userHandler.UpdateProfile)
		}

		// Service catalog routes (browsing is public, management is admin only)
		catalog := v1.Group("/services")
		{
			catalog.GET("", serviceHandler.List)
			catalog.GET("/:id", serviceHandler.Get)
			catalog.GET("/:id/reviews", serviceHandler.ListReviews)

			catalogAdmin := catalog.Group("")
			catalogAdmin.Use(authRequired, adminOnly)
			{
				catalogAdmin.POST("", serviceHandler.Create)
				catalogAdmin.PATCH("/:id", serviceHandler.Update)
				catalogAdmin.DELETE("/:id", serviceHandler.Delete)
			}
		}

		// Booking routes (all protected)
		bookings := v1.Group("/bookings")
		bookings.Use(authRequired)
		{
			bookings.POST("", bookingHandler.Create)
			bookings.GET("", bookingHandler.List)
			bookings.GET("/upcoming", bookingHandler.ListUpcoming)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.PATCH("/:id", bookingHandler.Update)
			bookings.POST("/:id/cancel", bookingHandler.Cancel)
			bookings.DELETE("/:id", bookingHandler.Delete)
		}

		// Review routes (reading is public, writing needs an account)
		reviews := v1.Group("/reviews")
		{
			reviews.GET("/booking/:booking_id", reviewHandler.GetByBooking)

			reviewsProtected := reviews.Group("")
			reviewsProtected.Use(authRequired)
			{
				reviewsProtected.POST("", reviewHandler.Create)
				reviewsProtected.PATCH("/:id", reviewHandler.Update)
				reviewsProtected.DELETE("/:id", reviewHandler.Delete)
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop background cleanup
	tokenCleanupService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		// Never log the token itself
		fields["has_auth"] = c.GetHeader("Authorization") != ""

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

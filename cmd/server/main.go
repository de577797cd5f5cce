package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/campus-portal/internal/config"
	"github.com/yukikurage/campus-portal/internal/constants"
	"github.com/yukikurage/campus-portal/internal/database"
	"github.com/yukikurage/campus-portal/internal/handlers"
	"github.com/yukikurage/campus-portal/internal/media"
	"github.com/yukikurage/campus-portal/internal/middleware"
	"github.com/yukikurage/campus-portal/internal/registry"
	"github.com/yukikurage/campus-portal/internal/repository"
	"github.com/yukikurage/campus-portal/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.MigrateDatabase(database.GetDB()); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	db := database.GetDB()

	// The set of user types is fixed for the lifetime of the process
	reg, err := registry.Default(db)
	if err != nil {
		log.Fatalf("Failed to build user type registry: %v", err)
	}
	log.Printf("Registered user types: %v", reg.Types())

	resolver := media.NewResolver(cfg.MediaURL, cfg.SiteURL)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	distributionRepo := repository.NewPointDistributionRepository(db)
	logRepo := repository.NewLogRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	profileService := services.NewProfileService(reg, resolver)
	notificationService := services.NewNotificationService(notificationRepo, userRepo)
	distributionService := services.NewPointDistributionService(distributionRepo)
	auditService := services.NewAuditService(logRepo)
	libraryService := services.NewLibraryService(libraryRepo, reg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	distributionHandler := handlers.NewPointDistributionHandler(distributionService)
	trackingHandler := handlers.NewTrackingHandler(auditService)
	libraryHandler := handlers.NewLibraryHandler(libraryService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Campus Portal API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Profile routes (protected)
		profile := api.Group("/profile")
		profile.Use(middleware.RequireAuth(), middleware.LoadUser(authService))
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PATCH("", profileHandler.UpdateProfile)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth(), middleware.LoadUser(authService))
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/:id/finish", notificationHandler.FinishNotification)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
			notifications.POST("", middleware.RequireStaff(), notificationHandler.SendNotification)
			notifications.POST("/bulk", middleware.RequireStaff(), notificationHandler.BulkSendNotifications)
			notifications.DELETE("/bulk/:bulk_id", middleware.RequireStaff(), notificationHandler.DeleteBulkNotifications)
		}

		// Point distribution routes (staff only)
		points := api.Group("/points/distributions")
		points.Use(middleware.RequireAuth(), middleware.LoadUser(authService), middleware.RequireStaff())
		{
			points.GET("", distributionHandler.ListDistributions)
			points.POST("", distributionHandler.CreateDistribution)
			points.POST("/:id/activate", distributionHandler.ActivateDistribution)
			points.POST("/:id/deactivate", distributionHandler.DeactivateDistribution)
		}

		// Analytics routes (protected)
		logs := api.Group("/logs")
		logs.Use(middleware.RequireAuth())
		{
			logs.POST("/page", trackingHandler.TrackPage)
			logs.POST("/module", trackingHandler.TrackModule)
		}

		// Library routes
		library := api.Group("/library")
		{
			library.GET("/books", libraryHandler.SearchBooks)
			library.GET("/lendinfo",
				middleware.RequireAuth(),
				middleware.LoadUser(authService),
				middleware.RequireUserType(reg, constants.UserTypePerson),
				libraryHandler.LendInfo,
			)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/AugusDogus/whisp-sub001/internal/cache"
	"github.com/AugusDogus/whisp-sub001/internal/handlers"
	"github.com/AugusDogus/whisp-sub001/internal/httpx"
	"github.com/AugusDogus/whisp-sub001/internal/middleware"
	"github.com/AugusDogus/whisp-sub001/internal/push"
	"github.com/AugusDogus/whisp-sub001/internal/repository"
	"github.com/AugusDogus/whisp-sub001/internal/service"
	"github.com/AugusDogus/whisp-sub001/internal/status"
	"github.com/AugusDogus/whisp-sub001/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Whisp Backend",
		// Media goes straight to object storage via presigned PUT; the only
		// uploads through this service are avatars (up to 5MB + overhead).
		BodyLimit: 8 * 1024 * 1024, // 8MB
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Whisp-CSRF",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	inboxCache := cache.NewInboxCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	pushTokenRepo := repository.NewPushTokenRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	versionRepo := repository.NewVersionRepository(db)

	// Initialize S3/MinIO storage (best-effort; feature endpoints return 503 if missing)
	var s3Store *storage.S3Storage
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else if st, err := storage.NewS3Storage(cfg); err != nil {
		log.Printf("WARNING: Failed to initialize S3 storage: %v", err)
	} else {
		s3Store = st
		log.Printf("S3 storage initialized successfully (bucket=%s)", cfg.Bucket)
	}

	// *storage.S3Storage is nil-unsafe behind the FileStore interface; keep
	// the typed nil out of the services when storage is unconfigured.
	var fileStore service.FileStore
	if s3Store != nil {
		fileStore = s3Store
	}

	pushClient := push.NewClient()
	sendTracker := status.NewTracker()

	// Initialize services
	authService := service.NewAuthService(userRepo, refreshTokenRepo)
	userService := service.NewUserService(userRepo)
	notificationService := service.NewNotificationService(pushTokenRepo, userRepo, pushClient)
	friendService := service.NewFriendService(friendRepo, userRepo, notificationService)
	messageService := service.NewMessageService(messageRepo, friendRepo, fileStore, sendTracker, inboxCache, notificationService)
	cleanupService := service.NewCleanupService(messageRepo, fileStore)
	waitlistService := service.NewWaitlistService(waitlistRepo)
	avatarService := service.NewAvatarService(userRepo, s3Store)
	versionService := service.NewVersionService(versionRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	avatarHandler := handlers.NewAvatarHandler(avatarService)
	mediaHandler := handlers.NewMediaHandler(s3Store)
	friendHandler := handlers.NewFriendHandler(friendService)
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	cleanupHandler := handlers.NewCleanupHandler(cleanupService)
	waitlistHandler := handlers.NewWaitlistHandler(waitlistService)
	versionHandler := handlers.NewVersionHandler(versionService)

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed())
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Get("/csrf", authHandler.CSRF)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh) // No CSRF required - protected by HttpOnly refresh token
	auth.Post("/logout", middleware.CSRFRequired(), authHandler.Logout)
	api.Get("/users/check-username", userHandler.CheckUsername) // Public endpoint for username check

	// Version endpoint (public - no auth required for update checks)
	api.Get("/version", versionHandler.GetVersion)
	api.Get("/version/check", versionHandler.CheckUpdate)

	// Scheduled sweep, guarded by the cron secret instead of a user session
	api.Post("/cron/cleanup", middleware.CronSecretRequired(), cleanupHandler.Sweep)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(), middleware.CSRFRequired())
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Put("/users/me", userHandler.UpdateProfile)
	protected.Post(
		"/users/me/avatar",
		limiter.New(limiter.Config{
			Max:        10,
			Expiration: 10 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if uid, err := httpx.LocalUint(c, "userID"); err == nil {
					return "avatar:" + strconv.FormatUint(uint64(uid), 10)
				}
				return c.IP()
			},
		}),
		avatarHandler.UploadMyAvatar,
	)
	protected.Delete("/users/me/avatar", avatarHandler.DeleteMyAvatar)
	protected.Get("/media/avatars/*", mediaHandler.GetAvatar)
	protected.Post("/media/upload-url", mediaHandler.CreateUploadURL)

	// Friend routes
	protected.Get("/friends", friendHandler.ListFriends)
	protected.Get("/friends/search", friendHandler.SearchUsers)
	protected.Get("/friends/requests", friendHandler.IncomingRequests)
	protected.Post("/friends/requests", friendHandler.SendRequest)
	protected.Post("/friends/requests/:id/accept", friendHandler.AcceptRequest)
	protected.Post("/friends/requests/:id/decline", friendHandler.DeclineRequest)
	protected.Post("/friends/requests/:id/cancel", friendHandler.CancelRequest)

	// Message routes
	protected.Post("/messages", messageHandler.Send)
	protected.Get("/messages/inbox", messageHandler.Inbox)
	protected.Get("/messages/outbox", messageHandler.Outbox)
	protected.Get("/messages/unread-count", messageHandler.UnreadCount)
	protected.Get("/messages/send-status", messageHandler.SendStatus)
	protected.Post("/messages/deliveries/:id/read", messageHandler.MarkRead)
	protected.Post("/messages/:id/cleanup", messageHandler.Cleanup)

	// Notification routes
	protected.Get("/notifications/tokens", notificationHandler.ListTokens)
	protected.Post("/notifications/tokens", notificationHandler.RegisterToken)
	protected.Delete("/notifications/tokens", notificationHandler.RemoveToken)
	protected.Get("/notifications/preferences", notificationHandler.GetPreferences)
	protected.Put("/notifications/preferences", notificationHandler.UpdatePreferences)

	// Waitlist routes
	protected.Post("/waitlist", waitlistHandler.Join)
	protected.Get("/waitlist", waitlistHandler.Status)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"message":   "Whisp is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

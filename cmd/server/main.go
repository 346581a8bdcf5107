package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/noteduco342/relay-backend/internal/cache"
	"github.com/noteduco342/relay-backend/internal/config"
	"github.com/noteduco342/relay-backend/internal/handlers"
	"github.com/noteduco342/relay-backend/internal/handlers/ws"
	"github.com/noteduco342/relay-backend/internal/httpx"
	"github.com/noteduco342/relay-backend/internal/logger"
	"github.com/noteduco342/relay-backend/internal/middleware"
	"github.com/noteduco342/relay-backend/internal/notify"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/service"
	"github.com/noteduco342/relay-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := repository.InitDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	store := repository.NewStore(db)

	// Redis holds presence, typing and (by default) the outbox. When it is
	// down presence reads as offline and every recipient gets queued.
	redisCache := cache.NewRedisCache(cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis connection failed, presence degraded")
	} else {
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}
	defer redisCache.Close()

	presence := cache.NewPresenceStore(redisCache, log, cfg.Delivery.PresenceTTL, cfg.Delivery.TypingTTL)
	pages := cache.NewMessageCache(redisCache)

	var outbox service.Outbox
	switch cfg.Delivery.OutboxBackend {
	case "postgres":
		outbox = repository.NewPendingMessageRepository(db, cfg.Delivery.OutboxMaxLen, log)
	default:
		outbox = cache.NewRedisOutbox(redisCache, cfg.Delivery.OutboxMaxLen, log)
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	fanout := &notify.Fanout{Primary: hub, Log: log}
	if cfg.NATS.URL != "" {
		nc, err := notify.Connect(cfg.NATS.URL, "relay-backend", log)
		if err != nil {
			log.Warn().Err(err).Msg("nats unavailable, events stay local")
		} else {
			defer nc.Drain()
			fanout.Mirrors = append(fanout.Mirrors, notify.NewNATSNotifier(nc))
			log.Info().Str("url", cfg.NATS.URL).Msg("nats connected")
		}
	}

	// Initialize services
	runner := service.NewStoreRunner(cfg.Delivery.StoreTimeout, cfg.Delivery.StoreMaxRetries, log)
	receiptService := service.NewReceiptService(store, runner, fanout, log)
	deliveryService := service.NewDeliveryService(service.DeliveryDeps{
		Store:            store,
		Runner:           runner,
		Receipts:         receiptService,
		Presence:         presence,
		Notifier:         fanout,
		Outbox:           outbox,
		Pages:            pages,
		MaxContentLength: cfg.Delivery.MaxMessageLength,
		Log:              log,
	})
	chatService := service.NewChatService(store, runner, pages, log)
	userService := service.NewUserService(store, runner, presence)
	contactService := service.NewContactService(store, runner)
	presenceService := service.NewPresenceService(presence, store, runner, fanout, log)

	// Initialize S3/MinIO storage (best-effort; media endpoints return 503 if missing)
	var objects service.ObjectStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize S3 storage")
		} else if err := s3Store.EnsureBucket(ctx, cfg.S3.Region); err != nil {
			log.Warn().Err(err).Str("bucket", cfg.S3.Bucket).Msg("S3 bucket unavailable")
		} else {
			objects = s3Store
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 storage initialized")
		}
	}
	mediaService := service.NewMediaService(store, runner, objects, pages, cfg.Server.PublicBaseURL, cfg.Delivery.MediaMaxBytes, log)

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(hub, deliveryService, receiptService, presenceService, log)
	userHandler := handlers.NewUserHandler(userService, presenceService)
	chatHandler := handlers.NewChatHandler(chatService, receiptService, presenceService)
	messageHandler := handlers.NewMessageHandler(deliveryService, chatService, receiptService, log)
	mediaHandler := handlers.NewMediaHandler(mediaService, log)
	contactHandler := handlers.NewContactHandler(contactService)

	app := fiber.New(fiber.Config{
		AppName:   "Relay Backend",
		BodyLimit: int(cfg.Delivery.MediaMaxBytes) + 1024*1024,
	})

	app.Use(requestid.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed(cfg.Server.AllowedOrigins))
	registerLimit := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	})
	api.Post("/users", registerLimit, userHandler.Register)
	api.Get("/users/check-username", registerLimit, userHandler.CheckUsername)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(cfg.JWT.Secret))
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Get("/users/:id/presence", userHandler.GetPresence)
	protected.Post("/presence/heartbeat", userHandler.Heartbeat)
	protected.Post("/presence/offline", userHandler.SignOff)

	protected.Post("/chats/direct", chatHandler.CreateDirect)
	protected.Post("/chats/group", chatHandler.CreateGroup)
	protected.Get("/chats", chatHandler.ListChats)
	protected.Get("/chats/:id", chatHandler.GetChat)
	protected.Post("/chats/:id/participants", chatHandler.AddParticipant)
	protected.Post("/chats/:id/leave", chatHandler.Leave)
	protected.Get("/chats/:id/messages", messageHandler.GetMessages)
	protected.Post(
		"/chats/:id/messages",
		limiter.New(limiter.Config{
			Max:        120,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if uid, err := httpx.LocalUUID(c, "userID"); err == nil {
					return "send:" + uid.String()
				}
				return c.IP()
			},
		}),
		messageHandler.SendMessage,
	)
	protected.Post("/chats/:id/read", chatHandler.MarkRead)
	protected.Get("/chats/:id/read-state", chatHandler.ReadState)
	protected.Post("/chats/:id/typing", chatHandler.SetTyping)
	protected.Get("/chats/:id/typing", chatHandler.TypingUsers)

	protected.Patch("/messages/:id", messageHandler.EditMessage)
	protected.Delete("/messages/:id", messageHandler.DeleteMessage)
	protected.Post("/messages/:id/receipt", messageHandler.AdvanceReceipt)
	protected.Get("/messages/:id/receipts", messageHandler.ListReceipts)
	protected.Post("/messages/:id/media", mediaHandler.Upload)
	protected.Get("/media/*", mediaHandler.Get)
	protected.Get("/outbox", messageHandler.DrainOutbox)

	protected.Get("/contacts", contactHandler.List)
	protected.Post("/contacts", contactHandler.Add)
	protected.Put("/contacts/:id", contactHandler.Update)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(cfg.Server.AllowedOrigins),
		middleware.AuthRequired(cfg.JWT.Secret),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "connections": hub.Count()}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
		}
		if err := redisCache.Ping(c.UserContext()); err != nil {
			status["redis"] = "unreachable"
		}
		return c.JSON(status)
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Server.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

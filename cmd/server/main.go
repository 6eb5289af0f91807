package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/cortexcart/cortexcart-api/configs"
	"github.com/cortexcart/cortexcart-api/internal/api/handlers"
	"github.com/cortexcart/cortexcart-api/internal/api/middleware"
	"github.com/cortexcart/cortexcart-api/internal/credentials"
	"github.com/cortexcart/cortexcart-api/internal/dispatcher"
	"github.com/cortexcart/cortexcart-api/internal/inbox"
	job "github.com/cortexcart/cortexcart-api/internal/jobs"
	"github.com/cortexcart/cortexcart-api/internal/publisher"
	"github.com/cortexcart/cortexcart-api/internal/queue"
	"github.com/cortexcart/cortexcart-api/internal/repository"
	"github.com/cortexcart/cortexcart-api/internal/service"
	"github.com/cortexcart/cortexcart-api/pkg/crypto"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	box, err := crypto.NewBox([]byte(cfg.EncryptionKey))
	if err != nil {
		log.Fatalf("Failed to initialize token encryption: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewScheduledPostRepository(db)
	connectionRepo := repository.NewSocialConnectionRepository(db)
	instagramRepo := repository.NewInstagramAccountRepository(db)
	recordRepo := repository.NewPublishRecordRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	credentialStore := credentials.NewStore(connectionRepo, instagramRepo, box)

	registry := publisher.NewRegistry()
	registry.Register("facebook", publisher.NewFacebookPublisher(credentialStore, cfg.PublicBaseURL))
	registry.Register("instagram", publisher.NewInstagramPublisher(credentialStore, cfg.PublicBaseURL))
	registry.Register("pinterest", publisher.NewPinterestPublisher(credentialStore, cfg.PublicBaseURL))
	registry.Register("x", publisher.NewXPublisher(credentialStore))
	registry.Register("youtube", publisher.NewYouTubePublisher(*cfg, credentialStore))

	d := dispatcher.New(postRepo, recordRepo, registry)

	connectService := service.NewConnectService(*cfg, credentialStore, connectionRepo, instagramRepo)
	postService := service.NewPostService(postRepo, recordRepo, registry)
	mediaService := service.NewMediaService(*cfg, mediaAssetRepo)
	inboxService := inbox.NewService(cfg.WhatsAppVerifyToken, connectionRepo, conversationRepo, messageRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	whatsapp := handlers.NewWhatsAppHandler(*cfg, inboxService)
	app.Get("/webhooks/whatsapp", whatsapp.Verify)
	app.Post("/webhooks/whatsapp", whatsapp.Receive)

	dispatch := handlers.NewDispatchHandler(d)
	app.Get("/api/cron/dispatch", authMiddleware.RequireCron(), dispatch.TriggerDispatch)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	connect := handlers.NewConnectHandler(*cfg, connectService)
	app.Get("/connect/:platform/callback", connect.CallbackHandler)
	api.Get("/connect/:platform", connect.Connect)
	api.Get("/connections", connect.ListConnections)
	api.Get("/connections/instagram", connect.ListInstagramAccounts)
	api.Post("/connections/facebook/page", connect.SelectFacebookPage)
	api.Post("/connections/instagram/account", connect.SelectInstagramAccount)

	post := handlers.NewPostHandler(postService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)
	api.Get("/posts/history", post.PublishHistory)

	publish := handlers.NewPublishHandler(registry)
	api.Post("/publish/:platform", publish.Publish)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.Upload)
	api.Get("/media", media.ListAssets)

	inboxH := handlers.NewInboxHandler(inboxService)
	api.Get("/inbox/conversations", inboxH.ListConversations)
	api.Get("/inbox/messages", inboxH.ListMessages)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(credentialStore, connectService)

	// queue
	queueW := queue.NewQueue(postRepo, d)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", func() {
		if _, err := d.Run(context.Background()); err != nil {
			log.Printf("Dispatch sweep failed: %v", err)
		}
	})
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}

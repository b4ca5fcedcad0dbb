package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsscheduler "github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/storyflow/configs"
	"github.com/maheshrc27/storyflow/internal/api/handlers"
	"github.com/maheshrc27/storyflow/internal/api/middleware"
	"github.com/maheshrc27/storyflow/internal/database"
	job "github.com/maheshrc27/storyflow/internal/jobs"
	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/queue"
	"github.com/maheshrc27/storyflow/internal/repository"
	"github.com/maheshrc27/storyflow/internal/scheduler"
	"github.com/maheshrc27/storyflow/internal/service"
	"github.com/maheshrc27/storyflow/pkg/utils"
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

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	if err := database.ApplyMigrations(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	inspector := asynq.NewInspector(redisConn)
	defer inspector.Close()

	codec, err := utils.NewCredentialCodec([]byte(cfg.SecretKey))
	if err != nil {
		log.Fatalf("Invalid SECRET_KEY: %v", err)
	}

	backend, err := newScheduler(cfg, client, inspector)
	if err != nil {
		log.Fatalf("Failed to set up scheduler: %v", err)
	}

	postRepo := repository.NewPostRepository(db)
	storyRepo := repository.NewStoryRepository(db, postRepo)
	platformRepo := repository.NewPlatformRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)
	eventRepo := repository.NewStoryEventRepository(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	scheduleService := service.NewScheduleService(backend, cfg.ScheduleTarget(), cfg.Scheduler.RoleArn)
	instagramService := service.NewInstagramService(cfg.InstagramBaseURL, httpClient)
	retractionService := service.NewRetractionService(codec, map[string]service.PlatformClient{
		models.PlatformInstagram: instagramService,
	}, cfg.RetractionWorkers)
	statusHandler := service.NewStatusHandler(storyRepo, platformRepo, restaurantRepo, scheduleService, retractionService,
		service.WithRetractionWindow(cfg.RetractionWindow))
	dispatcher := service.NewEventDispatcher(statusHandler, eventRepo)

	var publisher service.EventPublisher = dispatcher
	if cfg.EventDispatch == config.EventDispatchQueue {
		publisher = queue.NewPublisher(client, cfg.Scheduler.Queue)
	}

	storyService := service.NewStoryService(db, storyRepo, postRepo, eventRepo, publisher)
	platformService := service.NewPlatformService(platformRepo, codec)

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(nil))

	api := app.Group("/api")

	story := handlers.NewStoryHandler(storyService)
	api.Post("/stories", story.CreateStory)
	api.Get("/stories/:id", story.GetStory)
	api.Put("/stories/:id", story.UpdateStory)
	api.Delete("/stories/:id", story.RemoveStory)

	platform := handlers.NewPlatformHandler(platformService)
	api.Get("/platforms/:id", platform.GetPlatform)
	api.Put("/platforms/:id/credentials", platform.SetCredentials)

	// cron jobs
	relayJob := job.NewOutboxRelayJob(eventRepo, publisher, cfg.OutboxGracePeriod, cfg.OutboxMaxAttempts)

	//queue
	queueW := queue.NewQueue(eventRepo, dispatcher, httpClient)

	c := cron.New()
	if err := c.AddFunc(fmt.Sprintf("@every %s", cfg.OutboxRelayInterval), relayJob.Relay); err != nil {
		log.Fatalf("Invalid OUTBOX_RELAY_INTERVAL: %v", err)
	}
	c.Start()
	defer c.Stop()

	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			cfg.Scheduler.Queue: 6,
			"default":           4,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypeStoryChanged, queueW.HandleStoryChangedTask)
	mux.HandleFunc(scheduler.TaskTypeStoryPublish, queueW.HandleStoryPublishTask)

	log.Println("Starting the Asynq server...")
	if err := server.Start(mux); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, server, db)
}

// newScheduler picks the external scheduler backend.
func newScheduler(cfg *config.Config, client *asynq.Client, inspector *asynq.Inspector) (scheduler.Scheduler, error) {
	switch cfg.Scheduler.Backend {
	case config.SchedulerBackendAsynq:
		return scheduler.NewAsynqScheduler(client, inspector, cfg.Scheduler.Queue), nil

	case config.SchedulerBackendEventBridge:
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.AWS.Region),
		}
		if cfg.AWS.AccessKeyID != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, "")))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return scheduler.NewEventBridgeScheduler(awsscheduler.NewFromConfig(awsCfg), cfg.Scheduler.Group), nil
	}

	return nil, fmt.Errorf("unknown scheduler backend %q", cfg.Scheduler.Backend)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	server.Shutdown()

	closeDB(db)
	log.Println("Server shutdown complete.")
}

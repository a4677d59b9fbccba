package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	config "github.com/devrobins/linkpost/configs"
	"github.com/devrobins/linkpost/internal/api/handlers"
	"github.com/devrobins/linkpost/internal/api/middleware"
	job "github.com/devrobins/linkpost/internal/jobs"
	"github.com/devrobins/linkpost/internal/queue"
	"github.com/devrobins/linkpost/internal/repository"
	"github.com/devrobins/linkpost/internal/scheduler"
	"github.com/devrobins/linkpost/internal/service"
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

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    50 * 1024 * 1024, // 50 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	scheduledPostRepo := repository.NewScheduledPostRepository(db)
	linkedinAccountRepo := repository.NewLinkedInAccountRepository(db)
	publishedPostRepo := repository.NewPublishedPostRepository(db)

	linkedinService := service.NewLinkedInService(*cfg)
	userService := service.NewUserService(userRepo)
	accountService := service.NewAccountService(*cfg, linkedinAccountRepo, userRepo, linkedinService)
	scheduleService := service.NewScheduleService(scheduledPostRepo)
	publishService := service.NewPublishService(*cfg, linkedinAccountRepo, publishedPostRepo, linkedinService)
	statsService := service.NewStatsService(*cfg, linkedinAccountRepo, publishedPostRepo, linkedinService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	account := handlers.NewAccountHandler(*cfg, accountService, linkedinService)
	app.Get("/login", authMiddleware.OptionalAuth(), account.Login)
	app.Get("/login/callback", authMiddleware.OptionalAuth(), account.LoginCallback)

	api := app.Group("/api")
	api.Use(authMiddleware.OptionalAuth())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	api.Get("/linkedin/status", account.Status)
	api.Post("/linkedin/disconnect", account.Disconnect)

	schedule := handlers.NewScheduleHandler(scheduleService, client)
	api.Post("/schedule", schedule.CreateScheduledPost)
	api.Get("/schedule", schedule.ListScheduledPosts)
	api.Put("/schedule/:id", schedule.UpdateScheduledPost)
	api.Delete("/schedule/:id", schedule.CancelScheduledPost)
	api.Post("/dispatch/run", schedule.RunDispatch)

	publish := handlers.NewPublishHandler(publishService, statsService)
	api.Post("/publish", publish.PublishNow)
	api.Get("/posts/published", publish.ListPublished)
	api.Post("/posts/stats/refresh", publish.RefreshStats)

	// background jobs
	publishJob := job.NewPublishJob(scheduledPostRepo, linkedinAccountRepo, publishedPostRepo, linkedinService, []byte(cfg.SecretKey))
	statsJob := job.NewStatsRefreshJob(statsService)

	// queue
	queueW := queue.NewQueue(publishJob)

	sched := scheduler.New()
	sched.Add("@every 00h02m00s", func() {
		if err := queue.EnqueueDispatch(client, 0); err != nil {
			log.Printf("Failed to enqueue dispatch run: %v", err)
		}
	})
	sched.Add("@every 06h00m00s", statsJob.Run)
	sched.Start()
	defer sched.Stop()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeDispatch, queueW.HandleDispatchTask)

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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cleanup-platform/handlers"
	"cleanup-platform/messaging"
	"cleanup-platform/models"
	"cleanup-platform/services"
	"cleanup-platform/utils"
	"cleanup-platform/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	// ROLE selects what this instance runs: "api" (web + schedulers +
	// publishing side), "consumer" (queue workers), or "all".
	role := utils.Env("ROLE", "all")

	dsn := utils.MustEnv("DATABASE_URL")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.CleanupRequest{},
		&models.Participation{},
		&models.CommunityEvent{},
		&models.EventParticipation{},
		&models.Donation{},
		&models.TrainingRun{},
		&models.BadgeDefinition{},
		&models.UserBadge{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.SeedBadges(db); err != nil {
		log.Fatal("failed to seed badges:", err)
	}

	broker, err := messaging.Dial(utils.MustEnv("AMQP_URL"), messaging.DefaultExchange)
	if err != nil {
		log.Fatal("failed to connect to message broker:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notificationService := services.NewNotificationService(db)
	badgeRepo := services.NewGormBadgeRepo(db)
	badgeService := services.NewBadgeService(services.NewGormActivityRepo(db), badgeRepo, notificationService)

	var pipeline *services.SideEffectPipeline
	var scheduler *services.SweepScheduler
	var app *fiber.App

	if role == "all" || role == "api" {
		if err := utils.InitStorage(); err != nil {
			log.Fatal("failed to initialize proof photo storage:", err)
		}

		publisher, err := messaging.NewPublisher(broker)
		if err != nil {
			log.Fatal("failed to create event publisher:", err)
		}
		pipeline = services.NewSideEffectPipeline(notificationService, badgeService, publisher)

		retrainer := services.NewPriceModelService(db, int64(utils.EnvInt("RETRAIN_MIN_SAMPLES", 50)))
		scheduler = services.NewSweepScheduler(badgeService, retrainer)
		if err := scheduler.Start(); err != nil {
			log.Fatal("failed to start schedulers:", err)
		}

		app = fiber.New(fiber.Config{
			BodyLimit: 32 * 1024 * 1024, // proof photos
		})

		allowedOrigins := utils.Env("ALLOWED_ORIGINS", "http://localhost:3000")
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(splitTrim(allowedOrigins), ","),
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
			AllowHeaders: "Origin, Content-Type, Accept, X-Requested-With, X-Request-ID, X-User-ID",
			MaxAge:       86400,
		}))

		handlers.SetupStatusRoutes(app, db, pipeline)
		handlers.SetupNotificationRoutes(app, notificationService, badgeRepo)
		handlers.SetupAuthRoutes(app, db, pipeline)

		addr := ":" + utils.Env("PORT", "5300")
		go func() {
			if err := app.Listen(addr); err != nil {
				log.Printf("Server error: %v", err)
			}
		}()
		log.Printf("✅ Server running on http://localhost%s", addr)
		log.Println("✅ Badge sweep + retrain schedulers running (daily)")
	}

	var consumerWorker *workers.EventConsumerWorker
	if role == "all" || role == "consumer" {
		consumerWorker = workers.NewEventConsumerWorker(broker, services.NewSMTPMailer())
		consumerWorker.Start(ctx)
		log.Println("✅ Event consumer running (request/proof/password-reset mail queues)")
	}

	<-ctx.Done()
	log.Println("Shutting down…")

	if scheduler != nil {
		scheduler.Stop()
	}
	if pipeline != nil {
		pipeline.Wait()
	}
	if app != nil {
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}
	if consumerWorker != nil {
		consumerWorker.Wait()
	}
	if err := broker.Close(); err != nil {
		log.Printf("Broker close error: %v", err)
	}
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/provaboard/prova-api/internal/config"
	"github.com/provaboard/prova-api/internal/database"
	"github.com/provaboard/prova-api/internal/handler"
	"github.com/provaboard/prova-api/internal/middleware"
	"github.com/provaboard/prova-api/internal/models"
	"github.com/provaboard/prova-api/internal/repository"
	"github.com/provaboard/prova-api/internal/router"
	"github.com/provaboard/prova-api/internal/service"
	"github.com/provaboard/prova-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Exam{},
		&models.Section{},
		&models.Question{},
		&models.QuestionOption{},
		&models.RubricCriterion{},
		&models.Invitation{},
		&models.AnswerSheet{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	defer natsConn.Close()

	aiClient, err := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create openai client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	examRepo := repository.NewExamRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	answerSheetRepo := repository.NewAnswerSheetRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationTopic, natsConn, validate, logger)
	examService := service.NewExamService(examRepo, answerSheetRepo, validate, logger)
	sectionService := service.NewSectionService(sectionRepo, examRepo, validate, logger)
	questionService := service.NewQuestionService(questionRepo, sectionRepo, examRepo, aiClient, validate, logger)
	invitationService := service.NewInvitationService(invitationRepo, examRepo, answerSheetRepo, aiClient, notificationService, redisClient, cfg.CandidateCacheTTL, validate, logger)
	suggestionService := service.NewSuggestionService(aiClient, cfg.SuggestionDelay, validate, logger)

	examHandler := handler.NewExamHandler(examService, logger)
	sectionHandler := handler.NewSectionHandler(sectionService, logger)
	questionHandler := handler.NewQuestionHandler(questionService, logger)
	invitationHandler := handler.NewInvitationHandler(invitationService, logger)
	suggestionHandler := handler.NewSuggestionHandler(suggestionService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, 30*time.Second)

	serviceCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()
	notificationService.Start(serviceCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ExamHandler:         examHandler,
		SectionHandler:      sectionHandler,
		QuestionHandler:     questionHandler,
		InvitationHandler:   invitationHandler,
		SuggestionHandler:   suggestionHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/config"
	"github.com/seva-edu/seva-go-api/internal/database"
	"github.com/seva-edu/seva-go-api/internal/handler"
	"github.com/seva-edu/seva-go-api/internal/middleware"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/repository"
	"github.com/seva-edu/seva-go-api/internal/router"
	"github.com/seva-edu/seva-go-api/internal/service"
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
		&models.User{},
		&models.VolunteerProfile{},
		&models.AdminProfile{},
		&models.ChildProfile{},
		&models.College{},
		&models.Video{},
		&models.VideoComment{},
		&models.LiveRoom{},
		&models.LiveMessage{},
		&models.ContentPolicy{},
		&models.SensitiveWord{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	collegeRepo := repository.NewCollegeRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	liveRepo := repository.NewLiveRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	wordRepo := repository.NewSensitiveWordRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditSubject := strings.ReplaceAll(cfg.EventChannelBase, ":", ".") + ".audit"
	auditService := service.NewAuditService(auditRepo, natsConn, auditSubject, logger)
	policyService := service.NewPolicyService(policyRepo, wordRepo, validate, cfg.PolicyCacheTTL, logger)
	moderationService := service.NewModerationService(policyService, logger)
	videoService := service.NewVideoService(videoRepo, userRepo, redisClient, cfg.VideoCacheTTL, validate, auditService, logger)
	liveService := service.NewLiveService(liveRepo, userRepo, validate, auditService, service.DefaultStreamURLs(cfg.StreamHost), logger)
	commentService := service.NewCommentService(commentRepo, videoRepo, liveRepo, moderationService, validate, logger)
	collegeService := service.NewCollegeService(collegeRepo, validate, auditService, logger)
	chatGateway := service.NewChatGateway(commentService, redisClient, cfg.EventChannelBase, natsConn, logger)

	gatewayCtx, stopGateway := context.WithCancel(context.Background())
	defer stopGateway()
	chatGateway.Start(gatewayCtx)

	videoHandler := handler.NewVideoHandler(videoService, logger)
	liveHandler := handler.NewLiveHandler(liveService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	chatHandler := handler.NewChatHandler(chatGateway, logger)
	moderationHandler := handler.NewModerationHandler(policyService, logger)
	auditHandler := handler.NewAuditLogHandler(auditService, logger)
	collegeHandler := handler.NewCollegeHandler(collegeService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		VideoHandler:      videoHandler,
		LiveHandler:       liveHandler,
		CommentHandler:    commentHandler,
		ChatHandler:       chatHandler,
		ModerationHandler: moderationHandler,
		AuditLogHandler:   auditHandler,
		CollegeHandler:    collegeHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopGateway)
}

func waitForShutdown(app *fiber.App, stopGateway context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	stopGateway()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

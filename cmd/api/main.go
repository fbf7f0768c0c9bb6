package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/yafi/support-backend/internal/api/http"
	"github.com/yafi/support-backend/internal/api/http/handlers"
	"github.com/yafi/support-backend/internal/auth"
	"github.com/yafi/support-backend/internal/config"
	"github.com/yafi/support-backend/internal/events"
	"github.com/yafi/support-backend/internal/notify"
	"github.com/yafi/support-backend/internal/observability"
	"github.com/yafi/support-backend/internal/persistence"
	"github.com/yafi/support-backend/internal/realtime"
	"github.com/yafi/support-backend/internal/repository"
	"github.com/yafi/support-backend/internal/service"
	"github.com/yafi/support-backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)
	resetCodeRepo := repository.NewResetCodeRepository(redis.Client)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	hub := realtime.NewHub(logger)
	defer hub.Close()

	emailSender := notify.NewEmailSender(cfg.Mail, logger)
	smsSender := notify.NewSMSSender(cfg.SMS, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:      userRepo,
		ResetCodeRepo: resetCodeRepo,
		Email:         emailSender,
		Logger:        logger,
	})
	userService := service.NewUserService(*cfg, userRepo)
	assignmentService := service.NewAssignmentService(ticketRepo, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Assigner:   assignmentService,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	messageService := service.NewMessageService(messageRepo, ticketRepo)
	statsService := service.NewStatsService(statsRepo, userRepo)
	chatbotService := service.NewChatbotService(*cfg, logger)

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Hub:        hub,
		UserRepo:   userRepo,
		Email:      emailSender,
		SMS:        smsSender,
		Metrics:    metrics,
		Logger:     logger,
	})
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Messages:       handlers.NewMessagesHandler(messageService),
		Stats:          handlers.NewStatsHandler(statsService),
		Chatbot:        handlers.NewChatbotHandler(chatbotService),
		Stream:         handlers.NewStreamHandler(hub, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	hub.Close()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

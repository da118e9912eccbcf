package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-bot/internal/api/http"
	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/counter"
	"github.com/spec-kit/ticket-bot/internal/discord"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/policy"
	"github.com/spec-kit/ticket-bot/internal/presentation"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/transcript"
	"github.com/spec-kit/ticket-bot/internal/worker"
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

	counters := counter.NewStore(cfg.Counters.FilePath, logger)
	counters.Load()

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, logger).RegisterHandlers()
	webhookWorker := worker.StartWebhookWorker(dispatcher, cfg.Notification, logger)

	session, err := discord.NewSession(cfg.Bot.Token)
	if err != nil {
		logger.Fatal("failed to create gateway session", zap.Error(err))
	}
	client := platform.NewSessionClient(session)

	accessPolicy := policy.New(cfg.Tickets)
	builder := presentation.NewBuilder(cfg.Bot.ServerName, cfg.Brand)
	metrics := observability.NewMetrics()

	provisioner := service.NewProvisioner(client, accessPolicy, counters, cfg.Tickets, logger)
	tickets := service.NewTicketService(service.TicketDependencies{
		Client:      client,
		Policy:      accessPolicy,
		Counters:    counters,
		Tickets:     cfg.Tickets,
		Provisioner: provisioner,
		Builder:     builder,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	archive := service.NewArchiveService(client, accessPolicy, cfg.Tickets.ArchiveCategoryID, dispatcher, logger)
	transcripts := transcript.NewService(client, cfg.Transcript.Dir, dispatcher, logger)

	bot := discord.New(session, discord.Dependencies{
		Client:      client,
		Tickets:     tickets,
		Archive:     archive,
		Transcripts: transcripts,
		Policy:      accessPolicy,
		Builder:     builder,
		Counters:    counters,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Config:      cfg,
		Logger:      logger,
	})

	if err := bot.Start(); err != nil {
		logger.Fatal("failed to open gateway", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, bot),
		Status: handlers.NewStatusHandler(counters, metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := bot.Stop(); err != nil {
		logger.Warn("gateway close", zap.Error(err))
	}
	webhookWorker.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

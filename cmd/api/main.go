package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/agent"
	httptransport "github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/api/http"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/api/http/handlers"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/auth"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/config"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/events"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/kb"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/observability"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/persistence"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/service"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/worker"
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

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	suggestionRepo := repository.NewSuggestionRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	recorder := agent.NewRecorder(auditRepo, logger, metrics)
	defer recorder.Close()

	knowledge := kb.NewService(articleRepo, logger)
	provider := buildProvider(cfg.Agent, logger)
	locker := agent.NewRedisLocker(rdb.Client, cfg.Worker.LockTTL(), logger)
	dispatcher := events.NewInMemoryDispatcher()

	triageService := agent.NewService(agent.Dependencies{
		TicketRepo:     ticketRepo,
		SuggestionRepo: suggestionRepo,
		SettingsRepo:   settingsRepo,
		Knowledge:      knowledge,
		Provider:       provider,
		Recorder:       recorder,
		Locker:         locker,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
		Timeouts: agent.Timeouts{
			Classify: cfg.Agent.ClassifyTimeout(),
			Retrieve: cfg.Agent.RetrieveTimeout(),
			Draft:    cfg.Agent.DraftTimeout(),
		},
	})

	queue := worker.NewRedisQueue(rdb.Client, cfg.Worker.DedupTTL())
	worker.RegisterEnqueuer(dispatcher, queue, logger)
	workers := worker.NewPool(queue, triageService, logger, cfg.Worker.Concurrency)
	workers.Start(ctx)
	defer workers.Stop()

	authService := service.NewAuthService(*cfg, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		AuditRepo:  auditRepo,
		Recorder:   recorder,
		Dispatcher: dispatcher,
	})
	reviewService := service.NewAgentReviewService(triageService, suggestionRepo, ticketRepo, recorder)
	kbAdminService := service.NewKBAdminService(articleRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	notificationService.RegisterHandlers()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		KB:             handlers.NewKBHandler(kbAdminService, knowledge),
		Agent:          handlers.NewAgentHandler(reviewService),
		Config:         handlers.NewConfigHandler(settingsRepo),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func buildProvider(cfg config.AgentConfig, logger *zap.Logger) agent.Provider {
	if cfg.Provider == "external" && cfg.APIKey != "" {
		logger.Info("using external triage provider", zap.String("model", cfg.Model))
		return agent.NewExternalProvider(cfg.APIKey, cfg.APIURL, cfg.Model, cfg.PromptVersion)
	}
	var rng *rand.Rand
	if cfg.StubSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.StubSeed))
	}
	logger.Info("using stub triage provider", zap.Int64("seed", cfg.StubSeed))
	return agent.NewStubProvider(cfg.PromptVersion, rng)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

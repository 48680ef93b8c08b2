// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-store-consultant/internal/application"
	"telegram-store-consultant/internal/config"
	"telegram-store-consultant/internal/domain/ports/adapter"
	aiAdapters "telegram-store-consultant/internal/infra/adapters/ai"
	tele "telegram-store-consultant/internal/infra/adapters/telegram"
	"telegram-store-consultant/internal/infra/api"
	pg "telegram-store-consultant/internal/infra/db/postgres"
	"telegram-store-consultant/internal/infra/logging"
	red "telegram-store-consultant/internal/infra/redis"
	"telegram-store-consultant/internal/infra/sched"
	"telegram-store-consultant/internal/infra/security"
	"telegram-store-consultant/internal/infra/worker"
	"telegram-store-consultant/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs and extra tracing")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	txManager := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer func() { _ = redisClient.Close() }()
	rateLimiter := red.NewRateLimiter(redisClient)
	sessionStore := red.NewSessionStore(redisClient, cfg.Redis.TTL)
	cartStore := red.NewCartStore(redisClient, cfg.Redis.TTL)
	locker := red.NewLocker(redisClient)

	// ---- Encryption ----
	encKey := cfg.Security.EncryptionKey
	if len(encKey) != 32 {
		logger.Warn().Msg("security.encryption_key not 32 bytes; using dev key (INSECURE)")
		encKey = "0123456789abcdef0123456789abcdef"
	}
	encSvc, err := security.NewEncryptionService(encKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption init failed")
	}

	// ---- Repositories ----
	catalogRepo := pg.NewPostgresCatalogRepo(pool)
	profileRepo := pg.NewPostgresProfileRepo(pool, encSvc)
	orderRepo := pg.NewPostgresOrderRepo(pool)

	// ---- AI adapter ----
	var aiAdapter adapter.AIServiceAdapter
	if cfg.Runtime.Dev && cfg.AI.APIKey == "noop" {
		aiAdapter = aiAdapters.NewNoopAI()
		logger.Warn().Msg("using noop AI adapter")
	} else {
		aiAdapter, err = aiAdapters.NewOpenAIAdapter(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("ai adapter init failed")
		}
	}

	// ---- Use cases ----
	catalogUC := usecase.NewCatalogUseCase(catalogRepo)
	cartUC := usecase.NewCartUseCase(catalogRepo, cartStore)
	profileUC := usecase.NewProfileUseCase(profileRepo)
	searchUC := usecase.NewSearchUseCase(catalogRepo, aiAdapter, cfg.AI.Model, logger)
	checkoutUC := usecase.NewCheckoutUseCase(cartStore, profileRepo, orderRepo, txManager, logger)
	registry := usecase.NewToolRegistry(catalogUC, cartUC, profileUC, searchUC, checkoutUC, logger)
	consultantUC := usecase.NewConsultantUseCase(
		sessionStore, aiAdapter, registry, locker,
		cfg.AI.Model, cfg.AI.TokenBudget, cfg.Consultant.TurnLockTTL, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(consultantUC, catalogUC, cartUC, profileUC, sessionStore, logger)

	// ---- Worker pool + Telegram ----
	pool2 := worker.NewPool(cfg.Bot.Workers, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, pool2, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Abandoned cart reminders ----
	var reminderBot adapter.BotPort = botAdapter
	if cfg.Runtime.Dev {
		// don't nudge real users from a dev run
		reminderBot = tele.NewNoopBotAdapter(logger)
	}
	reminder := sched.NewCartReminderWorker(
		cfg.Consultant.ReminderInterval, cfg.Consultant.ReminderAfter,
		cartStore, reminderBot, logger)
	go func() { _ = reminder.Run(ctx) }()

	// ---- Ops server (health + metrics) ----
	opsServer := api.NewServer(cfg.Ops.Port, logger)
	go func() {
		if err := opsServer.Start(); err != nil {
			logger.Error().Err(err).Msg("ops server failed")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	cancel()
	botAdapter.StopPolling()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = opsServer.Shutdown(shutdownCtx)
}

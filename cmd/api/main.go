package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/configs"
	"taskboard/internal/advice"
	"taskboard/internal/api"
	"taskboard/internal/api/handlers"
	"taskboard/internal/auth"
	"taskboard/internal/cache"
	"taskboard/internal/repository"
	"taskboard/internal/websocket"
	"taskboard/pkg/database"
	"taskboard/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		logger.ErrorLogger.Error("Application stopped with error", zap.Error(err))
		logger.SyncLoggers()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Load config
	cfg := configs.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Inisialisasi logger
	if err := logger.InitLoggers(cfg.LogDir, cfg.LogStdout); err != nil {
		return fmt.Errorf("init loggers: %w", err)
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]func(context.Context) error{}

	// ----- Inisialisasi repository ----- //
	var store repository.Store
	switch cfg.DBDriver {
	case "memory":
		mem := repository.NewMemory()
		checks["db"] = mem.Ping
		store = mem
		logger.SystemLogger.Warn("Using in-memory store, data is lost on restart")
	case "postgres":
		db, err := database.ConnectDB(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		logger.SystemLogger.Info("Database Connected")

		// Buat tabel jika belum ada
		if err := repository.CreateTableIfNotExists(db); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
		pg := repository.NewPostgres(db)
		checks["db"] = pg.Ping
		store = pg
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	// Inisialisasi Redis; tanpa Redis aplikasi tetap jalan tanpa cache.
	redisClient, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.SystemLogger.Warn("Redis unavailable, task cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		store = cache.New(store, redisClient, cfg.CacheTTL)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		logger.SystemLogger.Info("Redis Connected")
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	advisor := advice.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITimeout)
	if cfg.OpenAIKey == "" {
		logger.SystemLogger.Warn("OPENAI_API_KEY not set, AI task creation will fail")
	}
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)

	h := handlers.New(store, advisor, hub, issuer, cfg.SessionCookie)
	h.Checks = checks
	app := api.NewApp(h, cfg.CORSOrigins, cfg.RateLimitMax)

	errCh := make(chan error, 1)
	go func() {
		logger.SystemLogger.Info("Application ready", zap.String("port", cfg.AppPort))
		errCh <- app.Listen(":" + cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.SystemLogger.Info("Shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"party-deduction/internal/config"
	"party-deduction/internal/db"
	"party-deduction/internal/game"
	"party-deduction/internal/server"

	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	logger, err := server.NewLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := &server.Deps{Logger: logger}
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL, db.Pool{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
		})
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		if err := db.Migrate(conn, logger); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
		deps.DB = conn
	} else {
		logger.Warn("DATABASE_URL not set; rooms and sessions are kept in memory")
	}

	if cfg.RedisAddr != "" {
		rdb, err := server.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		defer rdb.Close()
		deps.Presence = server.NewRedisPresence(rdb, time.Duration(cfg.PresenceTTLSeconds)*time.Second)
	}

	var gen game.Generator
	if cfg.OpenAIAPIKey != "" {
		gen = server.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, time.Duration(cfg.AITimeoutMillis)*time.Millisecond)
		logger.Info("AI speech generation enabled", zap.String("model", cfg.OpenAIModel))
	}
	deps.Generator = gen

	srv := server.New(deps, cfg)
	sweeper, err := server.StartSweeper(srv.Service(), cfg.TickSeconds, cfg.ArchiveAfterHours, logger)
	if err != nil {
		logger.Fatal("sweeper setup failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("party-deduction server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	<-sweeper.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pitwall/pitwall/internal/api"
	"github.com/pitwall/pitwall/internal/config"
	"github.com/pitwall/pitwall/internal/nl2sql"
	"github.com/pitwall/pitwall/internal/observability"
	querypostgres "github.com/pitwall/pitwall/internal/query/postgres"
	"github.com/pitwall/pitwall/internal/ratelimit"
)

func main() {
	cfg, err := config.LoadFromEnv("pitwall-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	db, err := querypostgres.Open(context.Background(), querypostgres.DBConfig{
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	engine := querypostgres.NewEngine(db, cfg.Database.QueryTimeout)

	translator, err := nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize SQL translator", slog.Any("error", err))
		os.Exit(1)
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.RedisAddr != "" {
		store, err := ratelimit.OpenRedis(context.Background(), cfg.RateLimit.RedisAddr)
		if err != nil {
			logger.Warn("rate limit backend unreachable, running unlimited", slog.Any("error", err))
		} else {
			defer func() { _ = store.Close() }()
			limiter = ratelimit.New(store, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger)
		}
	}

	handler := api.NewHandler(cfg, api.Dependencies{
		Logger:            logger,
		Translator:        translator,
		Engine:            engine,
		Limiter:           limiter,
		StaticDir:         cfg.Static.Dir,
		Readiness:         db.PingContext,
		DependencyTimeout: time.Second,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/line-monitor/internal/config"
	"github.com/iliyamo/line-monitor/internal/database"
	"github.com/iliyamo/line-monitor/internal/logger"
	"github.com/iliyamo/line-monitor/internal/middleware"
	"github.com/iliyamo/line-monitor/internal/router"
	"github.com/iliyamo/line-monitor/internal/service"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.EnsureSchema(schemaCtx, db, cfg.DB.Driver)
	cancel()
	if err != nil {
		return err
	}

	rl := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	} else if rl.Enabled {
		log.Warn("redis unavailable; auth rate limiting disabled")
	}

	if cfg.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set; report events are not published")
	}

	e := router.NewServer(router.Deps{
		Cfg:       cfg,
		RateLimit: rl,
		DB:        db,
		Redis:     rdb,
		Events:    service.NewEventPublisher(cfg.RabbitMQURL),
		Log:       log,
		Metrics:   middleware.NewMetrics(),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db_driver", cfg.DB.Driver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}

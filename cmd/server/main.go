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

	"credit-card-account/internal/account"
	"credit-card-account/internal/api"
	"credit-card-account/internal/config"
	"credit-card-account/internal/handler"
	"credit-card-account/internal/logger"
	"credit-card-account/internal/middleware"
	"credit-card-account/internal/observability"
	"credit-card-account/internal/repository"
	"credit-card-account/internal/service"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	closeLog, err := logger.Init(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	shutdownOtel, err := observability.Init(context.Background(), cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}

	acc := account.New(
		cfg.Card.Number,
		cfg.Card.Holder,
		cfg.Card.Expiration,
		cfg.Card.Pin,
		cfg.Card.CreditLimit,
		cfg.Card.Balance,
	)
	journal := repository.NewActivityRepository()
	accountService := service.NewAccountService(acc, journal, cfg.Activity.PageSize)

	idempotencyStore := repository.NewIdempotencyRepository(cfg.Idempotency.TTL)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go cleanupIdempotencyKeys(cleanupCtx, idempotencyStore, time.Hour)

	server := initServer(cfg, accountService, idempotencyStore)

	serverErr := make(chan error, 1)
	go func() {
		logger.Log().Info("starting server", zap.String("port", cfg.Server.Port), zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		logger.Log().Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := shutdownOtel(ctx); err != nil {
		logger.Log().Error("failed to flush telemetry", zap.Error(err))
	}

	logger.Log().Info("server exited")
	return nil
}

func initServer(cfg *config.Config, accountService *service.AccountService, idempotencyStore middleware.IdempotencyStore) *http.Server {
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, accountService, version)
	api.RegisterDocsRoutes(mux)

	var h http.Handler = mux
	h = middleware.Idempotency(idempotencyStore)(h)
	h = middleware.Observability(h)
	h = middleware.CORS(h)

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func cleanupIdempotencyKeys(ctx context.Context, store *repository.IdempotencyRepository, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := store.CleanupExpired(ctx); removed > 0 {
				logger.Log().Debug("expired idempotency keys removed", zap.Int("count", removed))
			}
		}
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labelproof/labelproof/internal/api"
	"github.com/labelproof/labelproof/internal/api/handler"
	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/audit"
	"github.com/labelproof/labelproof/internal/auth"
	"github.com/labelproof/labelproof/internal/config"
	"github.com/labelproof/labelproof/internal/database"
	"github.com/labelproof/labelproof/internal/order"
	"github.com/labelproof/labelproof/internal/product"
	"github.com/labelproof/labelproof/internal/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accounts := auth.NewRepository(db.Pool())
	profiles := profile.NewRepository(db.Pool())
	products := product.NewRepository(db.Pool())
	orders := order.NewRepository(db.Pool())
	auditLogs := audit.NewRepository(db.Pool())

	authService := auth.NewService(accounts, []byte(cfg.TokenSecret),
		time.Duration(cfg.TokenTTLMinutes)*time.Minute, cfg.BcryptCost)

	admin, err := auth.NewAdmin(cfg.ServiceKey, accounts, profiles, cfg.BcryptCost)
	if err != nil {
		slog.Error("failed to initialize privileged executor", "error", err)
		os.Exit(1)
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := admin.Bootstrap(bootCtx); err != nil {
		slog.Error("bootstrap failed", "error", err)
		bootCancel()
		os.Exit(1)
	}
	bootCancel()

	recorder := audit.NewRecorder(auditLogs)

	var recoverer *profile.Recoverer
	if cfg.ProfileAutoRecover {
		recoverer = profile.NewRecoverer(profiles)
	}
	gate := middleware.NewGate(authService, profiles, recoverer)

	router := api.NewRouter(api.RouterDeps{
		Auth:     handler.NewAuthHandler(authService, recorder),
		Users:    handler.NewUserHandler(gate, admin, profiles, recorder),
		Products: handler.NewProductHandler(products, recorder),
		Orders:   handler.NewOrderHandler(gate, orders, products, profiles, recorder),
		Logs:     handler.NewLogHandler(recorder),
		Health:   handler.NewHealthHandler(db, cfg.Version),
		Gate:     gate,

		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting labelproof server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

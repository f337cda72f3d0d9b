package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/chitpool/internal/events"
	"github.com/mmynk/chitpool/internal/ledger"
	"github.com/mmynk/chitpool/internal/server"
	"github.com/mmynk/chitpool/internal/storage/sqlite"
	"github.com/mmynk/chitpool/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// Setup structured logging
	logging.Setup()

	// Get config from env or use defaults
	port := getEnv("PORT", "8080")
	dbPath := getEnv("DB_PATH", "./data/pools.db")
	corsOrigins := strings.Split(getEnv("CORS_ORIGINS", "*"), ",")

	// Initialize SQLite storage
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	bus := events.NewBus()
	defer bus.Close()

	// Restore the ledger from the persisted snapshot
	led, err := ledger.Open(context.Background(), store, ledger.WithBus(bus))
	if err != nil {
		slog.Error("Failed to restore ledger", "error", err)
		os.Exit(1)
	}
	slog.Info("Ledger restored", "pools", led.Count())

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Config{
		Ledger:      led,
		Bus:         bus,
		CORSOrigins: corsOrigins,
	})

	// Wrap with h2c for HTTP/2 without TLS
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: h2c.NewHandler(router, &http2.Server{}),
	}

	go func() {
		slog.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

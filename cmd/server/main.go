package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/psyrax/pokePrices/internal/api"
	"github.com/psyrax/pokePrices/internal/database"
	"github.com/psyrax/pokePrices/internal/logger"
	"github.com/psyrax/pokePrices/internal/metrics"
	"github.com/psyrax/pokePrices/internal/services"
)

func main() {
	log := logger.Log
	defer logger.Sync()

	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./pokeprices.db"
	}

	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	// JustTCG client with explicit configuration; key is optional here,
	// the API decides per call whether it is required.
	client := services.NewJustTCGClient(services.JustTCGConfig{
		APIKey: os.Getenv("JUSTTCG_API_KEY"),
	})

	setService, err := services.NewSetService(client, db, log)
	if err != nil {
		log.Fatalf("Failed to initialize set service: %v", err)
	}

	// Inter-request delay for bulk refresh
	refreshDelay := 500 * time.Millisecond
	if delayStr := os.Getenv("REFRESH_DELAY_MS"); delayStr != "" {
		if ms, err := strconv.Atoi(delayStr); err == nil && ms > 0 {
			refreshDelay = time.Duration(ms) * time.Millisecond
		}
	}
	refresher := services.NewRefresher(client, db, refreshDelay, log)

	currencyService := services.NewCurrencyService()

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional periodic refresh worker
	if intervalStr := os.Getenv("REFRESH_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			log.Fatalf("Invalid REFRESH_INTERVAL %q: %v", intervalStr, err)
		}
		go refresher.Start(ctx, interval)
	}

	metrics.UpdateCatalogMetrics(db)

	// Setup router
	router := api.SetupRouter(client, setService, refresher, currencyService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Stop the refresh worker
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

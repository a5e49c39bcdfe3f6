package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/Income-Clarity-Backend/internal/api"
	"github.com/ndewijer/Income-Clarity-Backend/internal/app"
	"github.com/ndewijer/Income-Clarity-Backend/internal/config"
	"github.com/ndewijer/Income-Clarity-Backend/internal/scheduler"
	"github.com/ndewijer/Income-Clarity-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Income Clarity %s", version.Version)

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	// Background price refresh
	sched := scheduler.New()
	if cfg.Scheduler.Enabled {
		if err := sched.Add("price-refresh", cfg.Scheduler.PriceRefresh, a.Prices.Run); err != nil {
			log.Fatalf("Failed to schedule price refresh: %v", err)
		}
		sched.Start()
		log.Printf("Price refresh scheduled: %s", cfg.Scheduler.PriceRefresh)
	}

	// Create router
	router := api.NewRouter(a.Services, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if cfg.Scheduler.Enabled {
		sched.Stop(ctx)
	}

	log.Println("Server exited")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/config"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/http/server"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/monitoring"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/persistence/postgres"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/persistence/redis"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	log := logger.NewLogger()
	log.Info("Starting CPSM Service")

	cfg, configErr := config.LoadConfig(*configPath)
	if configErr != nil {
		log.Fatal("Failed to load configuration", "error", configErr)
	}

	db, dbErr := postgres.NewConnection(cfg.Database)
	if dbErr != nil {
		log.Fatal("Failed to connect to database", "error", dbErr)
	}
	defer db.Close()

	if migrationErr := postgres.RunMigrations(cfg.Database, log); migrationErr != nil {
		log.Fatal("Failed to run migrations", "error", migrationErr)
	}

	redisConn, err := redis.NewConnection(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisConn.Close()

	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	dbMetricsCollector := monitoring.NewDBMetricsCollector(db.GetDB())
	dbMetricsCollector.StartCollecting(serverCtx, 30*time.Second)

	httpServer := server.NewServer(cfg, db, redisConn, log)

	if limiter := httpServer.RateLimiter(); limiter != nil {
		go limiter.Start(serverCtx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigChan
		shutdownCtx, shutdownCancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer shutdownCancel()

		log.Info("Shutting down server...")
		if limiter := httpServer.RateLimiter(); limiter != nil {
			limiter.Stop()
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}

		serverStopCtx()
	}()

	log.Info("Server starting", "address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed", "error", err)
	}

	<-serverCtx.Done()
	log.Info("Server stopped")
}
